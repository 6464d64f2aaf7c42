package domain

import (
	"slices"
	"time"
)

type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string // unique, the token subject
	PasswordHash string // argon2 encoded
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the account holds role.
func (u *User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, role)
}
