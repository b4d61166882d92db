package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectID is a value object for project identity.
type ProjectID struct{ uuid.UUID }

// NewProjectID creates a new ProjectID from uuid.
func NewProjectID(id uuid.UUID) ProjectID { return ProjectID{UUID: id} }

// ParseProjectID parses the canonical string form.
func ParseProjectID(s string) (ProjectID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ProjectID{}, err
	}
	return ProjectID{UUID: id}, nil
}

// String returns the canonical string form.
func (p ProjectID) String() string { return p.UUID.String() }

// Project is a collaboration space owning grants and tasks.
type Project struct {
	ID          ProjectID
	Name        string
	Description string
	CreatedBy   UserID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectWithRole is a project joined with the role the querying user holds on it.
type ProjectWithRole struct {
	Project
	RoleName string
}
