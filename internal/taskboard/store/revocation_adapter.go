package store

import (
	"context"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/pkg/cryptox"
)

// RevocationAdapter exposes the revoked_tokens table as a revocation set
// keyed by raw token. Only fingerprints reach the database.
type RevocationAdapter struct {
	store Store
	now   func() time.Time
}

// NewRevocationAdapter creates an adapter over s.
func NewRevocationAdapter(s Store) *RevocationAdapter {
	return &RevocationAdapter{store: s, now: time.Now}
}

// Revoke records token until expiresAt.
func (a *RevocationAdapter) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	return a.store.RevokedTokens().RevokeToken(ctx, domain.RevokedToken{
		Fingerprint: cryptox.FingerprintToken(token),
		ExpiresAt:   expiresAt.UTC(),
		RevokedAt:   a.now().UTC(),
	})
}

// IsRevoked reports whether token was revoked and not yet pruned.
func (a *RevocationAdapter) IsRevoked(ctx context.Context, token string) (bool, error) {
	return a.store.RevokedTokens().IsTokenRevoked(ctx, cryptox.FingerprintToken(token))
}

// Prune drops records whose token expired before now.
func (a *RevocationAdapter) Prune(ctx context.Context, now time.Time) (int, error) {
	n, err := a.store.RevokedTokens().DeleteExpiredRevokedTokens(ctx, now)
	return int(n), err
}
