package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store/drivers/memory"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store/drivers/sqlite"
	"github.com/aussiebroadwan/taskboard/pkg/cryptox"
	"github.com/aussiebroadwan/taskboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "taskboard.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// cheapHasher keeps argon2 fast enough for unit tests.
func cheapHasher() *cryptox.PasswordHasher {
	return cryptox.NewPasswordHasher([]byte("test-pepper")).WithParams(cryptox.Argon2Params{
		Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 16, SaltLength: 8,
	})
}

type fixture struct {
	clock       *fakeClock
	store       store.Store
	revocations *memory.RevocationStore
	identities  *IdentityResolver
	tokens      *TokenService
	hasher      *cryptox.PasswordHasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newFakeClock()
	st := newTestStore(t)

	codec, err := jwtx.NewHMACCodec(testKey, jwtx.WithClock(clock.Now), jwtx.WithLeeway(time.Minute))
	require.NoError(t, err)

	f := &fixture{
		clock:       clock,
		store:       st,
		revocations: memory.NewRevocationStore(),
		identities:  NewIdentityResolver(st, 0),
		hasher:      cheapHasher(),
	}
	f.tokens = &TokenService{
		Codec:       codec,
		Revocations: f.revocations,
		Identities:  f.identities,
		AccessTTL:   time.Hour,
		RefreshTTL:  24 * time.Hour,
		Leeway:      time.Minute,
		Now:         clock.Now,
	}
	return f
}

// addUser creates an account with the given password and roles.
func (f *fixture) addUser(t *testing.T, email, password string, roles ...domain.Role) int64 {
	t.Helper()
	ctx := context.Background()

	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)

	id, err := f.store.Users().CreateUser(ctx, domain.User{
		FirstName: "Test", LastName: "User", Email: email, PasswordHash: hash,
	})
	require.NoError(t, err)
	for _, r := range roles {
		require.NoError(t, f.store.Roles().AssignRole(ctx, id, r))
	}
	return id
}

func principal(id int64, roles ...domain.Role) *domain.Principal {
	return &domain.Principal{Subject: "user@example.com", UserID: id, Roles: roles}
}
