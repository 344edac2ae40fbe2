package service

import "github.com/astra-preschool/internal/constants"

// Actor identifies the authenticated caller for scoping checks.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the caller holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}
