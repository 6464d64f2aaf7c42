package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the smallest HMAC key we accept, 256 bits for HS256.
const MinKeyLength = 32

// HMACCodec signs and verifies tokens with a single process-wide symmetric
// key using HS256. The key is read-only after construction so a codec is
// safe for concurrent use.
type HMACCodec struct {
	key    []byte
	method *jwt.SigningMethodHMAC
	leeway time.Duration
	issuer string
	now    func() time.Time
}

type CodecOption func(*HMACCodec)

// WithLeeway sets how far past expiry a token is still accepted.
func WithLeeway(d time.Duration) CodecOption {
	return func(c *HMACCodec) {
		if d >= 0 {
			c.leeway = d
		}
	}
}

// WithClock replaces the wall clock used for expiry checks. Handy for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *HMACCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIssuer stamps iss on encode and requires it on decode.
func WithIssuer(issuer string) CodecOption {
	return func(c *HMACCodec) { c.issuer = issuer }
}

// NewHMACCodec builds a codec for key. An empty or short key is refused so
// the process cannot start without a usable secret.
func NewHMACCodec(key []byte, opts ...CodecOption) (*HMACCodec, error) {
	if len(key) == 0 {
		return nil, ErrMissingKey
	}
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrWeakKey, MinKeyLength, len(key))
	}

	c := &HMACCodec{
		key:    append([]byte(nil), key...),
		method: jwt.SigningMethodHS256,
		leeway: DefaultLeeway,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Leeway returns the configured clock-skew tolerance.
func (c *HMACCodec) Leeway() time.Duration { return c.leeway }

// Encode signs claims. Claims without a subject, or whose expiry is not
// strictly after issued-at, are rejected.
func (c *HMACCodec) Encode(claims Claims) (string, error) {
	if err := claims.checkShape(); err != nil {
		return "", err
	}
	if c.issuer != "" && claims.Issuer == "" {
		claims.Issuer = c.issuer
	}

	t := jwt.NewWithClaims(c.method, claims)
	return t.SignedString(c.key)
}

// Decode verifies the signature first and then the claims. A genuine token
// that expired beyond the leeway yields ErrExpired, everything else that
// fails yields ErrMalformed.
func (c *HMACCodec) Decode(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %w", ErrExpired, err)
	default:
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if err := claims.checkShape(); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return claims, nil
}
