package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Project struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Role struct {
	ID          uuid.UUID
	Name        string
	Description string
}

type UserProjectRole struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProjectID uuid.UUID
	RoleID    uuid.UUID
	GrantedBy uuid.UUID
	GrantedAt time.Time
}

type Task struct {
	ID          uuid.UUID
	Name        string
	Description string
	Status      string
	Priority    string
	DueDate     pgtype.Date
	Tags        []string
	ProjectID   uuid.UUID
	AssignedTo  pgtype.UUID
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectWithRoleRow joins a project with the role name a user holds on it.
type ProjectWithRoleRow struct {
	Project
	RoleName string
}
