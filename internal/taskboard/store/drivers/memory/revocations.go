// Package memory holds in-process implementations for single instance
// deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/taskboard/pkg/cryptox"
)

// RevocationStore is a revocation set held in process memory. Entries are
// keyed by token fingerprint and kept until the token's own expiry. The
// lock orders every Revoke before any IsRevoked that follows it.
type RevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{entries: make(map[string]time.Time)}
}

func (s *RevocationStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	fp := cryptox.FingerprintToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.entries[fp]; !ok || expiresAt.After(prev) {
		s.entries[fp] = expiresAt
	}
	return nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	fp := cryptox.FingerprintToken(token)

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[fp]
	return ok, nil
}

// Prune drops entries whose token expired before now.
func (s *RevocationStore) Prune(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for fp, exp := range s.entries {
		if exp.Before(now) {
			delete(s.entries, fp)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live entries.
func (s *RevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
