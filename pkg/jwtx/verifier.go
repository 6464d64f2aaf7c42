package jwtx

import (
	"errors"
	"fmt"
)

// Signer turns claims into a compact signed token.
type Signer interface {
	Encode(Claims) (string, error)
}

// Verifier checks a token and gives you back the claims if it's legit.
type Verifier interface {
	Decode(token string) (Claims, error)
}

// Codec signs and verifies with the same key.
type Codec interface {
	Signer
	Verifier
}

var (
	ErrMissingKey = errors.New("jwtx: signing key is required")
	ErrWeakKey    = errors.New("jwtx: signing key too short")

	// ErrMalformed covers bad signatures, bad encodings, unexpected
	// algorithms and missing required claims. It is terminal.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrExpired means the token was genuine but its expiry passed by more
	// than the configured leeway. Clients should refresh.
	ErrExpired = errors.New("jwtx: token expired")

	ErrInvalidClaim = errors.New("jwtx: invalid claims")

	// ErrWrongTokenType is a malformed token of the wrong kind, e.g. a
	// refresh token presented as a bearer credential.
	ErrWrongTokenType = fmt.Errorf("%w: wrong token type", ErrMalformed)
)
