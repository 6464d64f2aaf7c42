package domain

import "slices"

// Role is a named grant. Tokens carry role names as plain strings.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole matches known role names exactly.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// RoleNames converts roles to the strings stored in tokens.
func RoleNames(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	slices.Sort(out)
	return out
}

// RolesFromNames keeps the names that are known roles.
func RolesFromNames(names []string) []Role {
	out := make([]Role, 0, len(names))
	for _, n := range names {
		if r, ok := ParseRole(n); ok && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
