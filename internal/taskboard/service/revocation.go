package service

import (
	"context"
	"time"
)

// RevocationStore remembers revoked tokens until they would have expired
// anyway. Implementations must make a completed Revoke visible to every
// later IsRevoked call.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)

	// Prune drops entries that expired before now and reports how many.
	Prune(ctx context.Context, now time.Time) (int, error)
}
