package domain

import "slices"

// Principal is the authenticated identity of a request. It lives only in
// the request context and is rebuilt from the bearer token every time.
type Principal struct {
	Subject string
	UserID  int64
	Roles   []Role
}

// HasRole reports whether role was granted. A nil principal has no roles.
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Roles, role)
}

// IsAdmin is HasRole(RoleAdmin).
func (p *Principal) IsAdmin() bool { return p.HasRole(RoleAdmin) }
