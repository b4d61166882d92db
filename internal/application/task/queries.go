package task

import (
	"context"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
)

// GetTask fetches one task by id.
type GetTask struct {
	store ports.Store
}

func NewGetTask(store ports.Store) *GetTask {
	return &GetTask{store: store}
}

func (uc *GetTask) Execute(ctx context.Context, id domain.TaskID) (*domain.Task, error) {
	task, err := uc.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domerrors.ErrTaskNotFound
	}
	return task, nil
}

// ListTasksByProject returns the tasks of one project.
type ListTasksByProject struct {
	store ports.Store
}

func NewListTasksByProject(store ports.Store) *ListTasksByProject {
	return &ListTasksByProject{store: store}
}

func (uc *ListTasksByProject) Execute(ctx context.Context, projectID domain.ProjectID) ([]*domain.Task, error) {
	return uc.store.ListTasksByProject(ctx, projectID)
}

// ListTasksByAssignee returns the tasks assigned to one user.
type ListTasksByAssignee struct {
	store ports.Store
}

func NewListTasksByAssignee(store ports.Store) *ListTasksByAssignee {
	return &ListTasksByAssignee{store: store}
}

func (uc *ListTasksByAssignee) Execute(ctx context.Context, userID domain.UserID) ([]*domain.Task, error) {
	return uc.store.ListTasksByAssignee(ctx, userID)
}
