package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Services override these from configuration.
const (
	// DefaultAccessTokenTTL is the lifetime of a bearer access token.
	DefaultAccessTokenTTL = time.Hour

	// DefaultRefreshTokenTTL is the lifetime of a refresh token.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultLeeway absorbs clock drift between the issuing and the
	// validating process.
	DefaultLeeway = 60 * time.Second
)

// Token kinds carried in the token_use claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the claim set carried by every token we sign. Access tokens
// carry the user id and the roles held at issuance, refresh tokens only
// the subject and timestamps.
type Claims struct {
	jwt.RegisteredClaims

	// Numeric id of the account the subject belongs to.
	UserID int64 `json:"userId,omitempty"`

	// Role names granted when the token was signed, e.g. ["USER"].
	Roles []string `json:"roles,omitempty"`

	// Kind of token, TokenTypeAccess or TokenTypeRefresh.
	Type string `json:"token_use,omitempty"`
}

// NewAccessClaims builds the claim set for an access token.
func NewAccessClaims(subject string, userID int64, roles []string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		UserID: userID,
		Roles:  slices.Clone(roles),
		Type:   TokenTypeAccess,
	}
}

// NewRefreshClaims builds the minimal claim set for a refresh token.
func NewRefreshClaims(subject string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Type: TokenTypeRefresh,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// RequireType reports ErrWrongTokenType when the claims are not of the
// wanted kind.
func (c *Claims) RequireType(want string) error {
	if c.Type != want {
		return fmt.Errorf("%w: want %q, got %q", ErrWrongTokenType, want, c.Type)
	}
	return nil
}

// HasRole reports whether role was granted in the claims.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// checkShape enforces the fields every token must carry: a subject and an
// expiry strictly after issued-at.
func (c *Claims) checkShape() error {
	switch {
	case c.Subject == "":
		return fmt.Errorf("%w: missing sub", ErrInvalidClaim)
	case c.IssuedAt == nil:
		return fmt.Errorf("%w: missing iat", ErrInvalidClaim)
	case c.ExpiresAt == nil:
		return fmt.Errorf("%w: missing exp", ErrInvalidClaim)
	case !c.ExpiresAt.After(c.IssuedAt.Time):
		return fmt.Errorf("%w: exp must be after iat", ErrInvalidClaim)
	}
	return nil
}
