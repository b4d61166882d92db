package ports

import (
	"context"

	"github.com/taskstream/taskstream/internal/domain"
)

// StoreTx exposes the persistence operations available inside (and outside)
// a transaction. Lookups return (nil, nil) when the row does not exist; use
// cases map that to the domain NotFound sentinels.
type StoreTx interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	CreateProject(ctx context.Context, project *domain.Project) error
	GetProjectByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	ListProjectsForUser(ctx context.Context, userID domain.UserID) ([]domain.ProjectWithRole, error)

	GetRoleByName(ctx context.Context, name string) (*domain.Role, error)
	CreateGrant(ctx context.Context, grant *domain.UserProjectRole) error
	GetGrant(ctx context.Context, userID domain.UserID, projectID domain.ProjectID) (*domain.UserProjectRole, error)

	CreateTask(ctx context.Context, task *domain.Task) error
	GetTaskByID(ctx context.Context, id domain.TaskID) (*domain.Task, error)
	UpdateTask(ctx context.Context, task *domain.Task) error
	DeleteTask(ctx context.Context, id domain.TaskID) error
	ListTasksByProject(ctx context.Context, projectID domain.ProjectID) ([]*domain.Task, error)
	ListTasksByAssignee(ctx context.Context, userID domain.UserID) ([]*domain.Task, error)
}

// Store is the transactional domain store. WithTx runs fn atomically: any
// error rolls the whole unit back so partial writes are never observable.
// Methods called on Store directly run outside a transaction.
type Store interface {
	StoreTx
	WithTx(ctx context.Context, fn func(tx StoreTx) error) error
}
