package task

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
	"github.com/taskstream/taskstream/internal/domain/events"
)

// UpdateTaskInput is a partial patch; nil fields are left unchanged.
type UpdateTaskInput struct {
	TaskID      domain.TaskID
	Name        *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
	Tags        []string
	AssignedTo  *domain.UserID
}

// UpdateTask applies a patch to an existing task and publishes TASK_UPDATED
// to the task's project after the commit.
type UpdateTask struct {
	store  ports.Store
	events ports.EventPublisher
	log    zerolog.Logger
}

func NewUpdateTask(store ports.Store, publisher ports.EventPublisher, log zerolog.Logger) *UpdateTask {
	return &UpdateTask{store: store, events: publisher, log: log}
}

func (uc *UpdateTask) Execute(ctx context.Context, input UpdateTaskInput) (*domain.Task, error) {
	var updated *domain.Task
	err := uc.store.WithTx(ctx, func(tx ports.StoreTx) error {
		task, err := tx.GetTaskByID(ctx, input.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return domerrors.ErrTaskNotFound
		}

		if input.Name != nil {
			task.Name = *input.Name
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.Priority != nil {
			task.Priority = *input.Priority
		}
		if input.DueDate != nil {
			task.DueDate = input.DueDate
		}
		if input.Tags != nil {
			task.Tags = input.Tags
		}
		if input.AssignedTo != nil {
			task.AssignedTo = input.AssignedTo
		}
		task.UpdatedAt = time.Now()

		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishTaskEvent(ctx, uc.events, uc.log, events.ActionTaskUpdated, updated, snapshotOf(updated))
	return updated, nil
}
