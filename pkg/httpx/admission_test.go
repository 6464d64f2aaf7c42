package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newAdmission(t *testing.T, cfg httpx.AdmissionConfig) (*httpx.AdmissionLimiter, *stepClock) {
	t.Helper()
	clock := &stepClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	a, err := httpx.NewAdmissionLimiter(cfg, httpx.WithAdmissionClock(clock.Now))
	require.NoError(t, err)
	return a, clock
}

func TestAdmissionConfigValidate(t *testing.T) {
	require.NoError(t, httpx.DefaultAdmissionConfig().Validate())

	bad := []httpx.AdmissionConfig{
		{Capacity: 0, Refill: 1, Interval: time.Second},
		{Capacity: 1, Refill: 0, Interval: time.Second},
		{Capacity: 1, Refill: 1, Interval: 0},
	}
	for _, cfg := range bad {
		_, err := httpx.NewAdmissionLimiter(cfg)
		require.Error(t, err)
	}
}

func TestAdmissionLimiterBurstThenReject(t *testing.T) {
	a, _ := newAdmission(t, httpx.DefaultAdmissionConfig())

	for i := range 10 {
		require.True(t, a.TryAdmit(), "request %d should be admitted", i+1)
	}
	require.False(t, a.TryAdmit())
	require.ErrorIs(t, a.Admit(), httpx.ErrRateLimited)

	wait := a.RetryAfter()
	require.Greater(t, wait, time.Duration(0))
	require.LessOrEqual(t, wait, 7*time.Second)
}

func TestAdmissionLimiterRefill(t *testing.T) {
	a, clock := newAdmission(t, httpx.DefaultAdmissionConfig())

	for range 10 {
		require.True(t, a.TryAdmit())
	}
	require.False(t, a.TryAdmit())

	// one token every six seconds at 10 per minute
	clock.Advance(7 * time.Second)
	require.Zero(t, a.RetryAfter())
	require.True(t, a.TryAdmit())
	require.False(t, a.TryAdmit())

	t.Run("refill never exceeds capacity", func(t *testing.T) {
		clock.Advance(time.Hour)
		admitted := 0
		for a.TryAdmit() {
			admitted++
		}
		require.Equal(t, 10, admitted)
	})
}

func TestAdmissionLimiterRetryAfterDoesNotConsume(t *testing.T) {
	a, _ := newAdmission(t, httpx.AdmissionConfig{Capacity: 1, Refill: 1, Interval: time.Minute})

	require.Zero(t, a.RetryAfter())
	require.Zero(t, a.RetryAfter())
	require.True(t, a.TryAdmit())
	require.InDelta(t, time.Minute.Seconds(), a.RetryAfter().Seconds(), 0.01)
}

func TestAdmissionLimiterSharedAcrossClients(t *testing.T) {
	a, _ := newAdmission(t, httpx.AdmissionConfig{Capacity: 2, Refill: 2, Interval: time.Minute})
	h := httpx.Chain(okHandler(), a.Middleware())

	codes := make([]int, 0, 3)
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		req := httptest.NewRequest(http.MethodPost, "/api/authenticate", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests {
			require.Equal(t, "30", rec.Header().Get(httpx.RetryAfterSecondsHeader))
			require.Equal(t, "30", rec.Header().Get("Retry-After"))
			require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
		}
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestAdmissionLimiterConcurrent(t *testing.T) {
	a, _ := newAdmission(t, httpx.DefaultAdmissionConfig())

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if a.TryAdmit() {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(10), admitted.Load())
}

func TestRetryAfterSeconds(t *testing.T) {
	require.Equal(t, 1, httpx.RetryAfterSeconds(0))
	require.Equal(t, 1, httpx.RetryAfterSeconds(200*time.Millisecond))
	require.Equal(t, 6, httpx.RetryAfterSeconds(5100*time.Millisecond))
}
