package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "remote addr", remote: "192.168.1.1:12345", want: "192.168.1.1"},
		{
			name:    "prefers X-Forwarded-For",
			remote:  "192.168.1.1:12345",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.1, 192.168.1.1"},
			want:    "203.0.113.1",
		},
		{
			name:    "X-Real-IP when no X-Forwarded-For",
			remote:  "192.168.1.1:12345",
			headers: map[string]string{"X-Real-IP": "203.0.113.2"},
			want:    "203.0.113.2",
		},
		{name: "remote addr without port", remote: "10.0.0.9", want: "10.0.0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestRateLimitByIP(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := httpx.Chain(okHandler(), httpx.RateLimitByIP(cfg))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/users/register", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	require.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	rec := call("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, rec.Header().Get("Retry-After"), rec.Header().Get(httpx.RetryAfterSecondsHeader))
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	t.Run("other clients are tracked separately", func(t *testing.T) {
		require.Equal(t, http.StatusOK, call("10.0.0.2").Code)
	})
}

func TestRateLimitMiddlewareEmptyKeyAllows(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := httpx.Chain(okHandler(), httpx.RateLimitMiddleware(cfg, func(*http.Request) string { return "" }))

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestFromAdmission(t *testing.T) {
	cfg := httpx.FromAdmission(httpx.AdmissionConfig{Capacity: 3, Refill: 5, Interval: 30 * time.Second})
	require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 5, Window: 30 * time.Second, Burst: 3}, cfg)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	defaults := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 5}

	t.Run("no env uses defaults", func(t *testing.T) {
		require.Equal(t, defaults, httpx.ParseRateLimitFromEnv("TESTNONE", defaults))
	})

	t.Run("overrides every field", func(t *testing.T) {
		t.Setenv("RATELIMIT_TESTALL_REQUESTS", "50")
		t.Setenv("RATELIMIT_TESTALL_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TESTALL_BURST", "20")

		got := httpx.ParseRateLimitFromEnv("TESTALL", defaults)
		require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 50, Window: 30 * time.Second, Burst: 20}, got)
	})

	t.Run("invalid and zero values fall back", func(t *testing.T) {
		t.Setenv("RATELIMIT_TESTBAD_REQUESTS", "lots")
		t.Setenv("RATELIMIT_TESTBAD_WINDOW_SEC", "0")
		t.Setenv("RATELIMIT_TESTBAD_BURST", "-3")

		require.Equal(t, defaults, httpx.ParseRateLimitFromEnv("TESTBAD", defaults))
	})
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	h := httpx.Chain(okHandler(), httpx.RateLimitByIP(cfg))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0." + string(rune('0'+i%10)) + ".1:1234"
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
