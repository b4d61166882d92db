package project

import (
	"context"
	"time"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
)

// UpdateProjectInput is a partial patch; nil fields are left unchanged.
type UpdateProjectInput struct {
	ProjectID   domain.ProjectID
	Name        *string
	Description *string
}

// UpdateProject applies a patch to a project's name and description. Grants
// and tasks are untouched, and no event is published: membership does not
// change, so there is nothing to fan out.
type UpdateProject struct {
	store ports.Store
}

func NewUpdateProject(store ports.Store) *UpdateProject {
	return &UpdateProject{store: store}
}

func (uc *UpdateProject) Execute(ctx context.Context, input UpdateProjectInput) (*domain.Project, error) {
	var updated *domain.Project
	err := uc.store.WithTx(ctx, func(tx ports.StoreTx) error {
		project, err := tx.GetProjectByID(ctx, input.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domerrors.ErrProjectNotFound
		}

		if input.Name != nil {
			project.Name = *input.Name
		}
		if input.Description != nil {
			project.Description = *input.Description
		}
		project.UpdatedAt = time.Now()

		if err := tx.UpdateProject(ctx, project); err != nil {
			return err
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
