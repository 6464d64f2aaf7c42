package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/taskboard/pkg/slogx"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by AdmissionLimiter.Admit when the bucket is
// empty.
var ErrRateLimited = errors.New("httpx: rate limit exceeded")

// RetryAfterSecondsHeader carries the wait in whole seconds alongside the
// standard Retry-After header.
const RetryAfterSecondsHeader = "X-Rate-Limit-Retry-After-Seconds"

// AdmissionConfig describes a token bucket: it holds at most Capacity
// tokens and gains Refill tokens every Interval.
type AdmissionConfig struct {
	Capacity int
	Refill   int
	Interval time.Duration
}

// DefaultAdmissionConfig is 10 requests per minute with a full burst of 10.
func DefaultAdmissionConfig() AdmissionConfig {
	return AdmissionConfig{Capacity: 10, Refill: 10, Interval: time.Minute}
}

// Validate reports settings that cannot form a bucket.
func (c AdmissionConfig) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("admission capacity must be positive, got %d", c.Capacity)
	case c.Refill <= 0:
		return fmt.Errorf("admission refill must be positive, got %d", c.Refill)
	case c.Interval <= 0:
		return fmt.Errorf("admission interval must be positive, got %s", c.Interval)
	}
	return nil
}

// limit converts the refill schedule into the per-second rate x/time/rate
// works with.
func (c AdmissionConfig) limit() rate.Limit {
	return rate.Limit(float64(c.Refill) / c.Interval.Seconds())
}

// AdmissionLimiter is a single process-wide token bucket guarding
// credential endpoints. Every caller draws from the same bucket. The
// underlying rate.Limiter is internally locked, so an AdmissionLimiter is
// safe for concurrent use and never admits more than Capacity requests in
// a burst.
type AdmissionLimiter struct {
	cfg     AdmissionConfig
	limiter *rate.Limiter
	now     func() time.Time
}

type AdmissionOption func(*AdmissionLimiter)

// WithAdmissionClock replaces the wall clock. Tests use it to step time.
func WithAdmissionClock(now func() time.Time) AdmissionOption {
	return func(a *AdmissionLimiter) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAdmissionLimiter builds a full bucket from cfg.
func NewAdmissionLimiter(cfg AdmissionConfig, opts ...AdmissionOption) (*AdmissionLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &AdmissionLimiter{
		cfg:     cfg,
		limiter: rate.NewLimiter(cfg.limit(), cfg.Capacity),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns the bucket settings.
func (a *AdmissionLimiter) Config() AdmissionConfig { return a.cfg }

// TryAdmit takes one token if one is available. It never blocks.
func (a *AdmissionLimiter) TryAdmit() bool {
	return a.limiter.AllowN(a.now(), 1)
}

// Admit is TryAdmit in error form.
func (a *AdmissionLimiter) Admit() error {
	if !a.TryAdmit() {
		return fmt.Errorf("%w: retry after %s", ErrRateLimited, a.RetryAfter())
	}
	return nil
}

// RetryAfter reports how long until the next token is available. It is
// zero when a request would be admitted right now. Calling it does not
// consume a token.
func (a *AdmissionLimiter) RetryAfter() time.Duration {
	now := a.now()
	r := a.limiter.ReserveN(now, 1)
	if !r.OK() {
		return a.cfg.Interval
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return delay
}

// Middleware rejects requests with 429 once the bucket is empty.
func (a *AdmissionLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a.TryAdmit() {
				next.ServeHTTP(w, r)
				return
			}

			wait := a.RetryAfter()
			slogx.FromContext(r.Context()).Info("admission rejected",
				"endpoint", r.URL.Path,
				"retry_after", wait.String(),
			)
			WriteRateLimited(w, wait, a.cfg.Refill, a.cfg.Interval)
		})
	}
}

// RetryAfterSeconds rounds d up to whole seconds, never below one. Excess
// under a millisecond is ignored.
func RetryAfterSeconds(d time.Duration) int {
	return max(int((d+time.Second-time.Millisecond)/time.Second), 1)
}

// WriteRateLimited writes the 429 response shared by every limiter.
func WriteRateLimited(w http.ResponseWriter, wait time.Duration, limit int, window time.Duration) {
	secs := strconv.Itoa(RetryAfterSeconds(wait))
	w.Header().Set("Retry-After", secs)
	w.Header().Set(RetryAfterSecondsHeader, secs)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Window", window.String())

	WriteJSON(w, http.StatusTooManyRequests, map[string]string{
		"error":             "rate_limit_exceeded",
		"error_description": "Too many requests. Please try again later.",
	})
}
