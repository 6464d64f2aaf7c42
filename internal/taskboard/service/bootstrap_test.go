package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the admin once", func(t *testing.T) {
		f := newFixture(t)
		svc := &BootstrapService{Store: f.store, Hasher: f.hasher, AdminEmail: "root@x.com", AdminPassword: "Secret1!"}

		created, err := svc.Bootstrap(ctx)
		require.NoError(t, err)
		require.True(t, created)

		p, err := f.identities.Resolve(ctx, "root@x.com")
		require.NoError(t, err)
		require.True(t, p.IsAdmin())
		require.True(t, p.HasRole(domain.RoleUser))

		_, err = newAuthService(f).Login(ctx, "root@x.com", "Secret1!")
		require.NoError(t, err)

		created, err = svc.Bootstrap(ctx)
		require.NoError(t, err)
		require.False(t, created)
	})

	t.Run("generates a password when none is set", func(t *testing.T) {
		f := newFixture(t)
		svc := &BootstrapService{Store: f.store, Hasher: f.hasher, AdminEmail: "root@x.com"}

		created, err := svc.Bootstrap(ctx)
		require.NoError(t, err)
		require.True(t, created)
	})

	t.Run("skips without an email", func(t *testing.T) {
		f := newFixture(t)
		svc := &BootstrapService{Store: f.store, Hasher: f.hasher}

		created, err := svc.Bootstrap(ctx)
		require.NoError(t, err)
		require.False(t, created)

		ok, err := svc.IsBootstrapped(ctx)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("rejects a weak configured password", func(t *testing.T) {
		f := newFixture(t)
		svc := &BootstrapService{Store: f.store, Hasher: f.hasher, AdminEmail: "root@x.com", AdminPassword: "admin"}

		_, err := svc.Bootstrap(ctx)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}
