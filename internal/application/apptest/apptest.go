// Package apptest provides in-memory fakes for use-case tests: a
// transactional fake store with snapshot rollback and a spy publisher.
package apptest

import (
	"context"
	"sync"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	"github.com/taskstream/taskstream/internal/domain/events"
)

type grantKey struct {
	user    domain.UserID
	project domain.ProjectID
}

// FakeStore is an in-memory ports.Store. WithTx snapshots the maps before
// running fn and restores the snapshot when fn fails, so rollback semantics
// match the real store: a failed unit leaves nothing behind.
type FakeStore struct {
	Users    map[domain.UserID]*domain.User
	Projects map[domain.ProjectID]*domain.Project
	Roles    map[string]*domain.Role
	Grants   map[grantKey]*domain.UserProjectRole
	Tasks    map[domain.TaskID]*domain.Task

	// Injected failures, returned by the matching method when non-nil.
	FailCreateProject error
	FailUpdateProject error
	FailCreateGrant   error
	FailCreateTask    error
	FailUpdateTask    error
	FailDeleteTask    error
	FailCreateUser    error
}

// NewFakeStore returns an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		Users:    make(map[domain.UserID]*domain.User),
		Projects: make(map[domain.ProjectID]*domain.Project),
		Roles:    make(map[string]*domain.Role),
		Grants:   make(map[grantKey]*domain.UserProjectRole),
		Tasks:    make(map[domain.TaskID]*domain.Task),
	}
}

// AddUser seeds a user.
func (s *FakeStore) AddUser(u *domain.User) { s.Users[u.ID] = u }

// AddProject seeds a project.
func (s *FakeStore) AddProject(p *domain.Project) { s.Projects[p.ID] = p }

// AddRole seeds a role.
func (s *FakeStore) AddRole(r *domain.Role) { s.Roles[r.Name] = r }

// AddTask seeds a task.
func (s *FakeStore) AddTask(t *domain.Task) { s.Tasks[t.ID] = t }

// GrantCount reports the number of stored grants.
func (s *FakeStore) GrantCount() int { return len(s.Grants) }

// HasGrant reports whether a grant exists for the pair.
func (s *FakeStore) HasGrant(userID domain.UserID, projectID domain.ProjectID) bool {
	_, ok := s.Grants[grantKey{user: userID, project: projectID}]
	return ok
}

func (s *FakeStore) snapshot() *FakeStore {
	cp := NewFakeStore()
	for k, v := range s.Users {
		cp.Users[k] = v
	}
	for k, v := range s.Projects {
		cp.Projects[k] = v
	}
	for k, v := range s.Roles {
		cp.Roles[k] = v
	}
	for k, v := range s.Grants {
		cp.Grants[k] = v
	}
	for k, v := range s.Tasks {
		cp.Tasks[k] = v
	}
	return cp
}

func (s *FakeStore) restore(snap *FakeStore) {
	s.Users = snap.Users
	s.Projects = snap.Projects
	s.Roles = snap.Roles
	s.Grants = snap.Grants
	s.Tasks = snap.Tasks
}

// WithTx implements ports.Store.
func (s *FakeStore) WithTx(ctx context.Context, fn func(tx ports.StoreTx) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *FakeStore) CreateUser(ctx context.Context, user *domain.User) error {
	if s.FailCreateUser != nil {
		return s.FailCreateUser
	}
	s.Users[user.ID] = user
	return nil
}

func (s *FakeStore) GetUserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.Users[id], nil
}

func (s *FakeStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range s.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *FakeStore) CreateProject(ctx context.Context, project *domain.Project) error {
	if s.FailCreateProject != nil {
		return s.FailCreateProject
	}
	s.Projects[project.ID] = project
	return nil
}

// GetProjectByID returns a copy so in-place edits stay invisible until
// UpdateProject writes them back, matching row semantics.
func (s *FakeStore) GetProjectByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	p, ok := s.Projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *FakeStore) UpdateProject(ctx context.Context, project *domain.Project) error {
	if s.FailUpdateProject != nil {
		return s.FailUpdateProject
	}
	if _, ok := s.Projects[project.ID]; !ok {
		return nil
	}
	s.Projects[project.ID] = project
	return nil
}

func (s *FakeStore) ListProjectsForUser(ctx context.Context, userID domain.UserID) ([]domain.ProjectWithRole, error) {
	var out []domain.ProjectWithRole
	for key, grant := range s.Grants {
		if key.user != userID {
			continue
		}
		project := s.Projects[key.project]
		if project == nil {
			continue
		}
		roleName := ""
		for _, r := range s.Roles {
			if r.ID == grant.RoleID {
				roleName = r.Name
			}
		}
		out = append(out, domain.ProjectWithRole{Project: *project, RoleName: roleName})
	}
	return out, nil
}

func (s *FakeStore) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	return s.Roles[name], nil
}

func (s *FakeStore) CreateGrant(ctx context.Context, grant *domain.UserProjectRole) error {
	if s.FailCreateGrant != nil {
		return s.FailCreateGrant
	}
	s.Grants[grantKey{user: grant.UserID, project: grant.ProjectID}] = grant
	return nil
}

func (s *FakeStore) GetGrant(ctx context.Context, userID domain.UserID, projectID domain.ProjectID) (*domain.UserProjectRole, error) {
	return s.Grants[grantKey{user: userID, project: projectID}], nil
}

func (s *FakeStore) CreateTask(ctx context.Context, task *domain.Task) error {
	if s.FailCreateTask != nil {
		return s.FailCreateTask
	}
	s.Tasks[task.ID] = task
	return nil
}

func (s *FakeStore) GetTaskByID(ctx context.Context, id domain.TaskID) (*domain.Task, error) {
	t, ok := s.Tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *FakeStore) UpdateTask(ctx context.Context, task *domain.Task) error {
	if s.FailUpdateTask != nil {
		return s.FailUpdateTask
	}
	if _, ok := s.Tasks[task.ID]; !ok {
		return nil
	}
	s.Tasks[task.ID] = task
	return nil
}

func (s *FakeStore) DeleteTask(ctx context.Context, id domain.TaskID) error {
	if s.FailDeleteTask != nil {
		return s.FailDeleteTask
	}
	delete(s.Tasks, id)
	return nil
}

func (s *FakeStore) ListTasksByProject(ctx context.Context, projectID domain.ProjectID) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range s.Tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *FakeStore) ListTasksByAssignee(ctx context.Context, userID domain.UserID) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range s.Tasks {
		if t.AssignedTo != nil && *t.AssignedTo == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

var _ ports.Store = (*FakeStore)(nil)

// PublishedEvent is one recorded Publish call.
type PublishedEvent struct {
	RoutingKey string
	Envelope   events.Envelope
}

// SpyPublisher records Publish calls; Err, when set, is returned to the
// caller (who is expected to log and continue).
type SpyPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

func (p *SpyPublisher) Publish(ctx context.Context, routingKey string, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, PublishedEvent{RoutingKey: routingKey, Envelope: env})
	return p.Err
}

// Count reports the number of recorded calls.
func (p *SpyPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events)
}

var _ ports.EventPublisher = (*SpyPublisher)(nil)
