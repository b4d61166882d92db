package project

import (
	"context"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
)

// GetProject fetches one project by id.
type GetProject struct {
	store ports.Store
}

func NewGetProject(store ports.Store) *GetProject {
	return &GetProject{store: store}
}

func (uc *GetProject) Execute(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	project, err := uc.store.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	return project, nil
}

// ListProjectsForUser returns the projects a user holds a grant on, with the
// granted role name, oldest first.
type ListProjectsForUser struct {
	store ports.Store
}

func NewListProjectsForUser(store ports.Store) *ListProjectsForUser {
	return &ListProjectsForUser{store: store}
}

func (uc *ListProjectsForUser) Execute(ctx context.Context, userID domain.UserID) ([]domain.ProjectWithRole, error) {
	user, err := uc.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	return uc.store.ListProjectsForUser(ctx, userID)
}
