// Package auth holds the authenticated principal and the access gate consulted
// before any protected view is rendered or fetches data.
package auth

import (
	"errors"
	"strings"

	"github.com/devmarvs/pmboard/validate"
)

// Role is the dashboard role carried by a principal.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleDeveloper Role = "developer"
)

const (
	// LoginPath is where RedirectLogin sends the user.
	LoginPath = "/"
	// UnauthorizedPath is where RedirectUnauthorized sends the user.
	UnauthorizedPath = "/unauthorized"
)

// ErrUnknownRole indicates a role outside admin, manager and developer.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a backend role string.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	return role, nil
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDeveloper:
		return true
	default:
		return false
	}
}

// HomePath returns the landing view for the role after login.
func (r Role) HomePath() string {
	if !r.Valid() {
		return LoginPath
	}
	return "/" + string(r)
}

// Principal is the authenticated identity held for the session.
//
// Token is non-empty iff Role, Name and ID are all present.
type Principal struct {
	Token string `json:"token" validate:"required"`
	Role  Role   `json:"role" validate:"required,oneof=admin manager developer"`
	Name  string `json:"name" validate:"required"`
	ID    int64  `json:"id" validate:"required,min=1"`
}

// Validate rejects partial principals.
func (p Principal) Validate() error {
	return validate.Form(p, "incomplete principal")
}

// Public returns a copy without the token, safe to hand to a view.
func (p Principal) Public() Principal {
	p.Token = ""
	return p
}

// RoleSet is the static set of roles a view declares as allowed.
type RoleSet []Role

// Roles builds a RoleSet.
func Roles(roles ...Role) RoleSet {
	return RoleSet(roles)
}

// Contains reports whether role is in the set.
func (s RoleSet) Contains(role Role) bool {
	for _, item := range s {
		if item == role {
			return true
		}
	}
	return false
}

// HasRole reports whether a principal is present and has the given role.
func HasRole(principal *Principal, role Role) bool {
	if principal == nil || role == "" {
		return false
	}
	return principal.Role == role
}

// HasAnyRole reports whether a principal has any of the provided roles.
func HasAnyRole(principal *Principal, roles ...Role) bool {
	if principal == nil {
		return false
	}
	return RoleSet(roles).Contains(principal.Role)
}
