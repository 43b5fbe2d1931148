package domain

// Principal is the caller identity resolved from a token for one request.
// It is never persisted.
type Principal struct {
	SubjectID string
	Role      Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// HasRole reports whether the principal's role is one of roles.
func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// AuthorizeMutation admits admins unconditionally and everyone else only when
// they own the resource. Callers must load the resource (and report a missing
// one) before calling this.
func AuthorizeMutation(p Principal, ownerID string) error {
	if p.IsAdmin() {
		return nil
	}
	if p.SubjectID != "" && p.SubjectID == ownerID {
		return nil
	}
	return ErrAccessDenied
}
