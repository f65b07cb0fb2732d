// Package model defines domain entities for the application.
package model

import "time"

// Role constants for profile authorization.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Identity is the authenticated principal derived from a verified credential.
// It is created and owned by the external identity provider; this service only
// references it.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile is the stored record carrying a principal's role.
// One profile exists per identity, created at signup by an external trigger.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin returns true if the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
