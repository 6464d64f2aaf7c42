package service

import "github.com/aussiebroadwan/taskboard/internal/taskboard/domain"

// OwnershipPolicy decides who may touch an owned resource: administrators
// may touch anything, everyone else only what they own. A user record is
// owned by the user it describes.
type OwnershipPolicy struct{}

// CanMutate reports whether p may change a resource owned by ownerID.
func (OwnershipPolicy) CanMutate(p *domain.Principal, ownerID int64) bool {
	if p == nil {
		return false
	}
	return p.IsAdmin() || p.UserID == ownerID
}

// AuthorizeMutation is CanMutate in error form.
func (pol OwnershipPolicy) AuthorizeMutation(p *domain.Principal, ownerID int64) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !pol.CanMutate(p, ownerID) {
		return ErrForbidden
	}
	return nil
}

// RequireRole fails unless p holds role.
func (OwnershipPolicy) RequireRole(p *domain.Principal, role domain.Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !p.HasRole(role) {
		return ErrForbidden
	}
	return nil
}
