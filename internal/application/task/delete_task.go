package task

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
	"github.com/taskstream/taskstream/internal/domain/events"
)

// DeleteTask removes a task and publishes TASK_DELETED to the task's project
// after the commit.
type DeleteTask struct {
	store  ports.Store
	events ports.EventPublisher
	log    zerolog.Logger
}

func NewDeleteTask(store ports.Store, publisher ports.EventPublisher, log zerolog.Logger) *DeleteTask {
	return &DeleteTask{store: store, events: publisher, log: log}
}

func (uc *DeleteTask) Execute(ctx context.Context, id domain.TaskID) error {
	var deleted *domain.Task
	err := uc.store.WithTx(ctx, func(tx ports.StoreTx) error {
		task, err := tx.GetTaskByID(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return domerrors.ErrTaskNotFound
		}
		if err := tx.DeleteTask(ctx, id); err != nil {
			return err
		}
		deleted = task
		return nil
	})
	if err != nil {
		return err
	}

	publishTaskEvent(ctx, uc.events, uc.log, events.ActionTaskDeleted, deleted, nil)
	return nil
}
