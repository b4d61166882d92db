package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/domain"
	"github.com/taskstream/taskstream/internal/infrastructure/persistence/db"
)

var seedRoles = []struct {
	name        string
	description string
}{
	{domain.RoleAdmin, "Administrator with full access for the project"},
	{domain.RoleMember, "Participates in projects and completes assigned tasks"},
	{domain.RoleViewer, "Can only view project information"},
}

// SeedRoles inserts the built-in roles when missing. Safe to run on every
// startup.
func (s *Store) SeedRoles(ctx context.Context, log zerolog.Logger) error {
	for _, role := range seedRoles {
		existing, err := s.GetRoleByName(ctx, role.name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		err = s.queries.q.CreateRole(ctx, db.CreateRoleParams{
			ID:          uuid.New(),
			Name:        role.name,
			Description: role.description,
		})
		if err != nil {
			return err
		}
		log.Info().Str("role", role.name).Msg("seeded role")
	}
	return nil
}

// HasGrant reports whether the user holds any role on the project. The
// realtime gateway uses it to gate room joins.
func (s *Store) HasGrant(ctx context.Context, userID domain.UserID, projectID domain.ProjectID) (bool, error) {
	grant, err := s.GetGrant(ctx, userID, projectID)
	if err != nil {
		return false, err
	}
	return grant != nil, nil
}
