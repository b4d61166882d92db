package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createUserSQL = `
INSERT INTO users (id, username, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`

type CreateUserParams struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.Exec(ctx, createUserSQL, arg.ID, arg.Username, arg.PasswordHash, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const getUserByIDSQL = `
SELECT id, username, password_hash, created_at, updated_at
FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByIDSQL, id)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByUsernameSQL = `
SELECT id, username, password_hash, created_at, updated_at
FROM users WHERE username = $1`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByUsernameSQL, username)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const createProjectSQL = `
INSERT INTO projects (id, name, description, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

type CreateProjectParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) error {
	_, err := q.db.Exec(ctx, createProjectSQL, arg.ID, arg.Name, arg.Description, arg.CreatedBy, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const getProjectByIDSQL = `
SELECT id, name, description, created_by, created_at, updated_at
FROM projects WHERE id = $1`

func (q *Queries) GetProjectByID(ctx context.Context, id uuid.UUID) (Project, error) {
	row := q.db.QueryRow(ctx, getProjectByIDSQL, id)
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const updateProjectSQL = `
UPDATE projects
SET name = $2, description = $3, updated_at = $4
WHERE id = $1`

type UpdateProjectParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	UpdatedAt   time.Time
}

func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) error {
	_, err := q.db.Exec(ctx, updateProjectSQL, arg.ID, arg.Name, arg.Description, arg.UpdatedAt)
	return err
}

const listProjectsForUserSQL = `
SELECT p.id, p.name, p.description, p.created_by, p.created_at, p.updated_at, r.name
FROM user_project_roles upr
JOIN projects p ON p.id = upr.project_id
JOIN roles r ON r.id = upr.role_id
WHERE upr.user_id = $1
ORDER BY p.created_at ASC`

func (q *Queries) ListProjectsForUser(ctx context.Context, userID uuid.UUID) ([]ProjectWithRoleRow, error) {
	rows, err := q.db.Query(ctx, listProjectsForUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProjectWithRoleRow
	for rows.Next() {
		var r ProjectWithRoleRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt, &r.RoleName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getRoleByNameSQL = `
SELECT id, name, description FROM roles WHERE name = $1`

func (q *Queries) GetRoleByName(ctx context.Context, name string) (Role, error) {
	row := q.db.QueryRow(ctx, getRoleByNameSQL, name)
	var r Role
	err := row.Scan(&r.ID, &r.Name, &r.Description)
	return r, err
}

const createRoleSQL = `
INSERT INTO roles (id, name, description) VALUES ($1, $2, $3)`

type CreateRoleParams struct {
	ID          uuid.UUID
	Name        string
	Description string
}

func (q *Queries) CreateRole(ctx context.Context, arg CreateRoleParams) error {
	_, err := q.db.Exec(ctx, createRoleSQL, arg.ID, arg.Name, arg.Description)
	return err
}

const createUserProjectRoleSQL = `
INSERT INTO user_project_roles (id, user_id, project_id, role_id, granted_by, granted_at)
VALUES ($1, $2, $3, $4, $5, $6)`

type CreateUserProjectRoleParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProjectID uuid.UUID
	RoleID    uuid.UUID
	GrantedBy uuid.UUID
	GrantedAt time.Time
}

func (q *Queries) CreateUserProjectRole(ctx context.Context, arg CreateUserProjectRoleParams) error {
	_, err := q.db.Exec(ctx, createUserProjectRoleSQL, arg.ID, arg.UserID, arg.ProjectID, arg.RoleID, arg.GrantedBy, arg.GrantedAt)
	return err
}

const getUserProjectRoleSQL = `
SELECT id, user_id, project_id, role_id, granted_by, granted_at
FROM user_project_roles WHERE user_id = $1 AND project_id = $2`

func (q *Queries) GetUserProjectRole(ctx context.Context, userID, projectID uuid.UUID) (UserProjectRole, error) {
	row := q.db.QueryRow(ctx, getUserProjectRoleSQL, userID, projectID)
	var g UserProjectRole
	err := row.Scan(&g.ID, &g.UserID, &g.ProjectID, &g.RoleID, &g.GrantedBy, &g.GrantedAt)
	return g, err
}

const createTaskSQL = `
INSERT INTO tasks (id, name, description, status, priority, due_date, tags, project_id, assigned_to, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

type CreateTaskParams struct {
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

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) error {
	_, err := q.db.Exec(ctx, createTaskSQL,
		arg.ID, arg.Name, arg.Description, arg.Status, arg.Priority, arg.DueDate,
		arg.Tags, arg.ProjectID, arg.AssignedTo, arg.CreatedBy, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const getTaskByIDSQL = `
SELECT id, name, description, status, priority, due_date, tags, project_id, assigned_to, created_by, created_at, updated_at
FROM tasks WHERE id = $1`

func (q *Queries) GetTaskByID(ctx context.Context, id uuid.UUID) (Task, error) {
	row := q.db.QueryRow(ctx, getTaskByIDSQL, id)
	var t Task
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.Priority, &t.DueDate,
		&t.Tags, &t.ProjectID, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const updateTaskSQL = `
UPDATE tasks
SET name = $2, description = $3, status = $4, priority = $5, due_date = $6,
    tags = $7, assigned_to = $8, updated_at = $9
WHERE id = $1`

type UpdateTaskParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Status      string
	Priority    string
	DueDate     pgtype.Date
	Tags        []string
	AssignedTo  pgtype.UUID
	UpdatedAt   time.Time
}

func (q *Queries) UpdateTask(ctx context.Context, arg UpdateTaskParams) error {
	_, err := q.db.Exec(ctx, updateTaskSQL,
		arg.ID, arg.Name, arg.Description, arg.Status, arg.Priority, arg.DueDate,
		arg.Tags, arg.AssignedTo, arg.UpdatedAt)
	return err
}

const deleteTaskSQL = `DELETE FROM tasks WHERE id = $1`

func (q *Queries) DeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteTaskSQL, id)
	return err
}

const listTasksByProjectSQL = `
SELECT id, name, description, status, priority, due_date, tags, project_id, assigned_to, created_by, created_at, updated_at
FROM tasks WHERE project_id = $1 ORDER BY created_at ASC`

func (q *Queries) ListTasksByProject(ctx context.Context, projectID uuid.UUID) ([]Task, error) {
	return q.listTasks(ctx, listTasksByProjectSQL, projectID)
}

const listTasksByAssigneeSQL = `
SELECT id, name, description, status, priority, due_date, tags, project_id, assigned_to, created_by, created_at, updated_at
FROM tasks WHERE assigned_to = $1 ORDER BY created_at ASC`

func (q *Queries) ListTasksByAssignee(ctx context.Context, userID uuid.UUID) ([]Task, error) {
	return q.listTasks(ctx, listTasksByAssigneeSQL, userID)
}

func (q *Queries) listTasks(ctx context.Context, sql string, arg any) ([]Task, error) {
	rows, err := q.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.Priority, &t.DueDate,
			&t.Tags, &t.ProjectID, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
