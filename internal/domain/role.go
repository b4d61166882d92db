package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoleID is a value object for role identity.
type RoleID struct{ uuid.UUID }

// NewRoleID creates a new RoleID from uuid.
func NewRoleID(id uuid.UUID) RoleID { return RoleID{UUID: id} }

// String returns the canonical string form.
func (r RoleID) String() string { return r.UUID.String() }

// Role is a globally defined permission tier referenced by grants.
type Role struct {
	ID          RoleID
	Name        string
	Description string
}

// Names of the roles seeded at startup.
const (
	RoleAdmin  = "Admin"
	RoleMember = "Member"
	RoleViewer = "Viewer"
)

// UserProjectRole binds one user to one project with one role. A (user,
// project) pair holds at most one active grant.
type UserProjectRole struct {
	ID        uuid.UUID
	UserID    UserID
	ProjectID ProjectID
	RoleID    RoleID
	GrantedBy UserID
	GrantedAt time.Time
}
