package project

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
	"github.com/taskstream/taskstream/internal/domain/events"
)

// AssignUserInput identifies the target user by username, the project, and
// the role to grant. ActingUserID is recorded in the grant's audit fields.
type AssignUserInput struct {
	ActingUserID   domain.UserID
	TargetUsername string
	ProjectID      domain.ProjectID
	RoleName       string
}

// AssignUserResult returns the created grant and the resolved target user.
type AssignUserResult struct {
	Grant  *domain.UserProjectRole
	Target *domain.User
}

// AssignUserToProjectWithRole grants a role to a user on a project. Duplicate
// grants for the same (user, project) pair are rejected with
// ErrRoleAlreadyGranted. A PROJECT_ASSIGNED event addressed to the target
// user is published only after the transaction commits.
type AssignUserToProjectWithRole struct {
	store  ports.Store
	events ports.EventPublisher
	log    zerolog.Logger
}

// NewAssignUserToProjectWithRole builds the use case.
func NewAssignUserToProjectWithRole(store ports.Store, publisher ports.EventPublisher, log zerolog.Logger) *AssignUserToProjectWithRole {
	return &AssignUserToProjectWithRole{store: store, events: publisher, log: log}
}

// Execute resolves target, project and role, inserts the grant atomically,
// then publishes. No event is published when any step fails.
func (uc *AssignUserToProjectWithRole) Execute(ctx context.Context, input AssignUserInput) (*AssignUserResult, error) {
	var (
		grant  *domain.UserProjectRole
		target *domain.User
	)
	err := uc.store.WithTx(ctx, func(tx ports.StoreTx) error {
		var err error
		target, err = tx.GetUserByUsername(ctx, input.TargetUsername)
		if err != nil {
			return err
		}
		if target == nil {
			return domerrors.ErrUserNotFound
		}

		project, err := tx.GetProjectByID(ctx, input.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domerrors.ErrProjectNotFound
		}

		existing, err := tx.GetGrant(ctx, target.ID, project.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domerrors.ErrRoleAlreadyGranted
		}

		role, err := tx.GetRoleByName(ctx, input.RoleName)
		if err != nil {
			return err
		}
		if role == nil {
			return domerrors.ErrRoleNotFound
		}

		grant = &domain.UserProjectRole{
			ID:        uuid.New(),
			UserID:    target.ID,
			ProjectID: project.ID,
			RoleID:    role.ID,
			GrantedBy: input.ActingUserID,
			GrantedAt: time.Now(),
		}
		return tx.CreateGrant(ctx, grant)
	})
	if err != nil {
		return nil, err
	}

	env, err := events.NewEnvelope(events.ActionProjectAssigned, events.ProjectAssignedPayload{
		ProjectID: input.ProjectID.String(),
		UserID:    target.ID.String(),
	})
	if err != nil {
		uc.log.Error().Err(err).Msg("build PROJECT_ASSIGNED envelope")
		return &AssignUserResult{Grant: grant, Target: target}, nil
	}
	if err := uc.events.Publish(ctx, events.QueueProject, env); err != nil {
		// The grant has committed; delivery is best effort.
		uc.log.Warn().Err(err).Str("user_id", target.ID.String()).Msg("publish PROJECT_ASSIGNED failed")
	}
	return &AssignUserResult{Grant: grant, Target: target}, nil
}
