package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/store"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingPrunesExpiredRevocations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backends := map[string]RevocationStore{
		"memory": f.revocations,
		"sqlite": store.NewRevocationAdapter(f.store),
	}
	for name, rev := range backends {
		t.Run(name, func(t *testing.T) {
			now := f.clock.Now()
			require.NoError(t, rev.Revoke(ctx, name+"-old", now.Add(-time.Minute)))
			require.NoError(t, rev.Revoke(ctx, name+"-live", now.Add(time.Hour)))

			hk := NewHousekeepingService(rev, logger, 0)
			hk.Now = f.clock.Now
			require.Equal(t, time.Hour, hk.Interval)
			require.Equal(t, 1, hk.Cleanup(ctx))

			live, err := rev.IsRevoked(ctx, name+"-live")
			require.NoError(t, err)
			require.True(t, live)
		})
	}
}

func TestHousekeepingLifecycle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.revocations.Revoke(context.Background(), "old", f.clock.Now().Add(-time.Second)))

	hk := NewHousekeepingService(f.revocations, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour)
	hk.Now = f.clock.Now
	hk.Start()

	require.Eventually(t, func() bool { return f.revocations.Len() == 0 }, time.Second, 10*time.Millisecond)
	hk.Stop()
}
