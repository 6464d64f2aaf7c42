package domain

import "time"

// RevokedToken records a token that must be refused until it would have
// expired anyway. Only the fingerprint of the token is kept.
type RevokedToken struct {
	Fingerprint string
	ExpiresAt   time.Time
	RevokedAt   time.Time
}
