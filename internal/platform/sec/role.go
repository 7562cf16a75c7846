// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Global Roles

// UserRole represents the platform-wide authorization level of an account.
//
// Global roles are distinct from per-resource membership roles (host,
// organizer, ...) which live in the authz package. An account holds exactly
// one global role.
type UserRole string

const (
	// Unrestricted access to every resource regardless of membership
	RoleAdmin UserRole = "admin"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// IsAdmin reports whether the role grants the global admin override.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// Valid reports whether the role belongs to the closed set of global roles.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}
