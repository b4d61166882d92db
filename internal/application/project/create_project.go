package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
)

// CreateProjectInput carries the fields of a new project.
type CreateProjectInput struct {
	CreatedBy   domain.UserID
	Name        string
	Description string
}

// CreateProjectResult returns the persisted project.
type CreateProjectResult struct {
	Project *domain.Project
}

// CreateProjectAndGrantOwnerRole creates a project and grants its creator the
// configured default role in one atomic unit. A project without the grant
// (or the reverse) is never observable.
type CreateProjectAndGrantOwnerRole struct {
	store       ports.Store
	defaultRole string
}

// NewCreateProjectAndGrantOwnerRole builds the use case. defaultRole is the
// role name granted to creators (DEFAULT_PROJECT_ROLE).
func NewCreateProjectAndGrantOwnerRole(store ports.Store, defaultRole string) *CreateProjectAndGrantOwnerRole {
	return &CreateProjectAndGrantOwnerRole{store: store, defaultRole: defaultRole}
}

// Execute runs the transaction. Fails with ErrUserNotFound when the creator
// does not exist and ErrDefaultRoleNotConfigured when the default role is
// unset or unresolvable; either failure rolls everything back.
func (uc *CreateProjectAndGrantOwnerRole) Execute(ctx context.Context, input CreateProjectInput) (*CreateProjectResult, error) {
	var created *domain.Project
	err := uc.store.WithTx(ctx, func(tx ports.StoreTx) error {
		creator, err := tx.GetUserByID(ctx, input.CreatedBy)
		if err != nil {
			return err
		}
		if creator == nil {
			return domerrors.ErrUserNotFound
		}

		now := time.Now()
		project := &domain.Project{
			ID:          domain.NewProjectID(uuid.New()),
			Name:        input.Name,
			Description: input.Description,
			CreatedBy:   creator.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateProject(ctx, project); err != nil {
			return err
		}

		if uc.defaultRole == "" {
			return domerrors.ErrDefaultRoleNotConfigured
		}
		role, err := tx.GetRoleByName(ctx, uc.defaultRole)
		if err != nil {
			return err
		}
		if role == nil {
			return fmt.Errorf("role %q: %w", uc.defaultRole, domerrors.ErrDefaultRoleNotConfigured)
		}

		grant := &domain.UserProjectRole{
			ID:        uuid.New(),
			UserID:    creator.ID,
			ProjectID: project.ID,
			RoleID:    role.ID,
			GrantedBy: creator.ID,
			GrantedAt: now,
		}
		if err := tx.CreateGrant(ctx, grant); err != nil {
			return err
		}
		created = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CreateProjectResult{Project: created}, nil
}
