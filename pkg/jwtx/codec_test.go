package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskboard/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newCodec(t *testing.T, clock *fakeClock, opts ...jwtx.CodecOption) *jwtx.HMACCodec {
	t.Helper()
	opts = append([]jwtx.CodecOption{jwtx.WithClock(clock.Now)}, opts...)
	c, err := jwtx.NewHMACCodec([]byte(testKey), opts...)
	require.NoError(t, err)
	return c
}

func TestNewHMACCodec(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := jwtx.NewHMACCodec(nil)
		require.ErrorIs(t, err, jwtx.ErrMissingKey)
	})

	t.Run("short key", func(t *testing.T) {
		_, err := jwtx.NewHMACCodec([]byte("too-short"))
		require.ErrorIs(t, err, jwtx.ErrWeakKey)
	})

	t.Run("default leeway", func(t *testing.T) {
		c, err := jwtx.NewHMACCodec([]byte(testKey))
		require.NoError(t, err)
		require.Equal(t, jwtx.DefaultLeeway, c.Leeway())
	})
}

func TestCodecRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newCodec(t, clock)

	in := jwtx.NewAccessClaims("a@x.com", 42, []string{"USER", "ADMIN"}, time.Hour, clock.Now())
	token, err := c.Encode(in)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(token, "."), "compact JWS has three segments")

	out, err := c.Decode(token)
	require.NoError(t, err)
	require.Equal(t, in.Subject, out.Subject)
	require.Equal(t, in.ID, out.ID)
	require.Equal(t, in.UserID, out.UserID)
	require.Equal(t, in.Roles, out.Roles)
	require.Equal(t, jwtx.TokenTypeAccess, out.Type)
	require.True(t, in.IssuedAt.Equal(out.IssuedAt.Time))
	require.True(t, in.ExpiresAt.Equal(out.ExpiresAt.Time))
}

func TestCodecEncodeRejectsBadShape(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newCodec(t, clock)

	t.Run("empty subject", func(t *testing.T) {
		_, err := c.Encode(jwtx.NewAccessClaims("", 1, nil, time.Hour, clock.Now()))
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("expiry not after issued-at", func(t *testing.T) {
		_, err := c.Encode(jwtx.NewAccessClaims("a@x.com", 1, nil, 0, clock.Now()))
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}

func TestCodecDecode(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("wrong key is malformed", func(t *testing.T) {
		clock := &fakeClock{t: start}
		other, err := jwtx.NewHMACCodec([]byte("ffffffffffffffffffffffffffffffff"), jwtx.WithClock(clock.Now))
		require.NoError(t, err)

		token, err := other.Encode(jwtx.NewRefreshClaims("a@x.com", time.Hour, clock.Now()))
		require.NoError(t, err)

		_, err = newCodec(t, clock).Decode(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
		require.NotErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("garbage is malformed", func(t *testing.T) {
		_, err := newCodec(t, &fakeClock{t: start}).Decode("not.a.token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("tampered payload is malformed", func(t *testing.T) {
		clock := &fakeClock{t: start}
		c := newCodec(t, clock)
		token, err := c.Encode(jwtx.NewAccessClaims("a@x.com", 1, []string{"USER"}, time.Hour, clock.Now()))
		require.NoError(t, err)

		forged, err := c.Encode(jwtx.NewAccessClaims("a@x.com", 1, []string{"ADMIN"}, time.Hour, clock.Now()))
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		forgedParts := strings.Split(forged, ".")
		_, err = c.Decode(parts[0] + "." + forgedParts[1] + "." + parts[2])
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("other algorithm is malformed", func(t *testing.T) {
		clock := &fakeClock{t: start}
		claims := jwtx.NewAccessClaims("a@x.com", 1, nil, time.Hour, clock.Now())
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testKey))
		require.NoError(t, err)

		_, err = newCodec(t, clock).Decode(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("missing subject is malformed", func(t *testing.T) {
		clock := &fakeClock{t: start}
		claims := jwtx.NewRefreshClaims("", time.Hour, clock.Now())
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testKey))
		require.NoError(t, err)

		_, err = newCodec(t, clock).Decode(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("expired within leeway is accepted", func(t *testing.T) {
		clock := &fakeClock{t: start}
		c := newCodec(t, clock, jwtx.WithLeeway(time.Minute))
		token, err := c.Encode(jwtx.NewAccessClaims("a@x.com", 1, nil, time.Hour, clock.Now()))
		require.NoError(t, err)

		clock.Advance(time.Hour + 30*time.Second)
		_, err = c.Decode(token)
		require.NoError(t, err)
	})

	t.Run("expired beyond leeway is expired", func(t *testing.T) {
		clock := &fakeClock{t: start}
		c := newCodec(t, clock, jwtx.WithLeeway(time.Minute))
		token, err := c.Encode(jwtx.NewAccessClaims("a@x.com", 1, nil, time.Hour, clock.Now()))
		require.NoError(t, err)

		clock.Advance(2 * time.Hour)
		_, err = c.Decode(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
		require.NotErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("issuer enforced", func(t *testing.T) {
		clock := &fakeClock{t: start}
		signer := newCodec(t, clock, jwtx.WithIssuer("someone-else"))
		token, err := signer.Encode(jwtx.NewRefreshClaims("a@x.com", time.Hour, clock.Now()))
		require.NoError(t, err)

		_, err = newCodec(t, clock, jwtx.WithIssuer("taskboard")).Decode(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}
