package auth

import "github.com/google/uuid"

// CanManage is the single authorization rule for mutating a listing: the
// caller must own it or be a superadmin.
func CanManage(p *Principal, ownerID uuid.UUID) bool {
	if p == nil {
		return false
	}
	return p.ID == ownerID || p.IsSuperAdmin()
}

// HasRole reports whether the principal holds one of the roles.
func HasRole(p *Principal, roles ...string) bool {
	if p == nil {
		return false
	}
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
