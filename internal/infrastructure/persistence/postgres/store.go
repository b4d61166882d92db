package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
	"github.com/taskstream/taskstream/internal/infrastructure/persistence/db"
)

const uniqueViolation = "23505"

// Store implements ports.Store over a pgx pool. Methods called on Store run
// against the pool; WithTx runs the closure inside one transaction, rolled
// back on any error.
type Store struct {
	pool *pgxpool.Pool
	queries
}

// NewStore builds a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, queries: queries{q: db.New(pool)}}
}

// WithTx implements ports.Store.
func (s *Store) WithTx(ctx context.Context, fn func(tx ports.StoreTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(queries{q: db.New(tx)}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ ports.Store = (*Store)(nil)

// queries adapts db.Queries to the domain-typed StoreTx surface.
type queries struct {
	q *db.Queries
}

func (s queries) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.q.CreateUser(ctx, db.CreateUserParams{
		ID:           user.ID.UUID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if isUniqueViolation(err) {
		return domerrors.ErrUserExists
	}
	return err
}

func (s queries) GetUserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	u, err := s.q.GetUserByID(ctx, id.UUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dbUserToDomain(u), nil
}

func (s queries) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.q.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dbUserToDomain(u), nil
}

func (s queries) CreateProject(ctx context.Context, project *domain.Project) error {
	return s.q.CreateProject(ctx, db.CreateProjectParams{
		ID:          project.ID.UUID,
		Name:        project.Name,
		Description: project.Description,
		CreatedBy:   project.CreatedBy.UUID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	})
}

func (s queries) UpdateProject(ctx context.Context, project *domain.Project) error {
	return s.q.UpdateProject(ctx, db.UpdateProjectParams{
		ID:          project.ID.UUID,
		Name:        project.Name,
		Description: project.Description,
		UpdatedAt:   project.UpdatedAt,
	})
}

func (s queries) GetProjectByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	p, err := s.q.GetProjectByID(ctx, id.UUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dbProjectToDomain(p), nil
}

func (s queries) ListProjectsForUser(ctx context.Context, userID domain.UserID) ([]domain.ProjectWithRole, error) {
	rows, err := s.q.ListProjectsForUser(ctx, userID.UUID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProjectWithRole, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ProjectWithRole{
			Project:  *dbProjectToDomain(r.Project),
			RoleName: r.RoleName,
		})
	}
	return out, nil
}

func (s queries) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	r, err := s.q.GetRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Role{
		ID:          domain.NewRoleID(r.ID),
		Name:        r.Name,
		Description: r.Description,
	}, nil
}

func (s queries) CreateGrant(ctx context.Context, grant *domain.UserProjectRole) error {
	err := s.q.CreateUserProjectRole(ctx, db.CreateUserProjectRoleParams{
		ID:        grant.ID,
		UserID:    grant.UserID.UUID,
		ProjectID: grant.ProjectID.UUID,
		RoleID:    grant.RoleID.UUID,
		GrantedBy: grant.GrantedBy.UUID,
		GrantedAt: grant.GrantedAt,
	})
	// The unique index on (user_id, project_id) backs the one-grant-per-pair
	// invariant even when two assignments race past the pre-check.
	if isUniqueViolation(err) {
		return domerrors.ErrRoleAlreadyGranted
	}
	return err
}

func (s queries) GetGrant(ctx context.Context, userID domain.UserID, projectID domain.ProjectID) (*domain.UserProjectRole, error) {
	g, err := s.q.GetUserProjectRole(ctx, userID.UUID, projectID.UUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.UserProjectRole{
		ID:        g.ID,
		UserID:    domain.NewUserID(g.UserID),
		ProjectID: domain.NewProjectID(g.ProjectID),
		RoleID:    domain.NewRoleID(g.RoleID),
		GrantedBy: domain.NewUserID(g.GrantedBy),
		GrantedAt: g.GrantedAt,
	}, nil
}

func (s queries) CreateTask(ctx context.Context, task *domain.Task) error {
	return s.q.CreateTask(ctx, db.CreateTaskParams{
		ID:          task.ID.UUID,
		Name:        task.Name,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     dueDateParam(task.DueDate),
		Tags:        task.Tags,
		ProjectID:   task.ProjectID.UUID,
		AssignedTo:  assigneeParam(task.AssignedTo),
		CreatedBy:   task.CreatedBy.UUID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	})
}

func (s queries) GetTaskByID(ctx context.Context, id domain.TaskID) (*domain.Task, error) {
	t, err := s.q.GetTaskByID(ctx, id.UUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dbTaskToDomain(t), nil
}

func (s queries) UpdateTask(ctx context.Context, task *domain.Task) error {
	return s.q.UpdateTask(ctx, db.UpdateTaskParams{
		ID:          task.ID.UUID,
		Name:        task.Name,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     dueDateParam(task.DueDate),
		Tags:        task.Tags,
		AssignedTo:  assigneeParam(task.AssignedTo),
		UpdatedAt:   task.UpdatedAt,
	})
}

func (s queries) DeleteTask(ctx context.Context, id domain.TaskID) error {
	return s.q.DeleteTask(ctx, id.UUID)
}

func (s queries) ListTasksByProject(ctx context.Context, projectID domain.ProjectID) ([]*domain.Task, error) {
	rows, err := s.q.ListTasksByProject(ctx, projectID.UUID)
	if err != nil {
		return nil, err
	}
	return dbTasksToDomain(rows), nil
}

func (s queries) ListTasksByAssignee(ctx context.Context, userID domain.UserID) ([]*domain.Task, error) {
	rows, err := s.q.ListTasksByAssignee(ctx, userID.UUID)
	if err != nil {
		return nil, err
	}
	return dbTasksToDomain(rows), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func dueDateParam(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func assigneeParam(id *domain.UserID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id.UUID, Valid: true}
}

func dbUserToDomain(u db.User) *domain.User {
	return &domain.User{
		ID:           domain.NewUserID(u.ID),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func dbProjectToDomain(p db.Project) *domain.Project {
	return &domain.Project{
		ID:          domain.NewProjectID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   domain.NewUserID(p.CreatedBy),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func dbTaskToDomain(t db.Task) *domain.Task {
	task := &domain.Task{
		ID:          domain.NewTaskID(t.ID),
		Name:        t.Name,
		Description: t.Description,
		Status:      domain.TaskStatus(t.Status),
		Priority:    domain.TaskPriority(t.Priority),
		Tags:        t.Tags,
		ProjectID:   domain.NewProjectID(t.ProjectID),
		CreatedBy:   domain.NewUserID(t.CreatedBy),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate.Valid {
		due := t.DueDate.Time
		task.DueDate = &due
	}
	if t.AssignedTo.Valid {
		assignee := domain.NewUserID(uuid.UUID(t.AssignedTo.Bytes))
		task.AssignedTo = &assignee
	}
	return task
}

func dbTasksToDomain(rows []db.Task) []*domain.Task {
	out := make([]*domain.Task, 0, len(rows))
	for _, t := range rows {
		out = append(out, dbTaskToDomain(t))
	}
	return out
}
