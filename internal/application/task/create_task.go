package task

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

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	Name        string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	Tags        []string
	ProjectID   domain.ProjectID
	AssignedTo  *domain.UserID
	CreatedBy   domain.UserID
}

// CreateTask persists a task and publishes TASK_ADDED to the task's project
// after the commit.
type CreateTask struct {
	store  ports.Store
	events ports.EventPublisher
	log    zerolog.Logger
}

func NewCreateTask(store ports.Store, publisher ports.EventPublisher, log zerolog.Logger) *CreateTask {
	return &CreateTask{store: store, events: publisher, log: log}
}

func (uc *CreateTask) Execute(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	var created *domain.Task
	err := uc.store.WithTx(ctx, func(tx ports.StoreTx) error {
		project, err := tx.GetProjectByID(ctx, input.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domerrors.ErrProjectNotFound
		}

		status := input.Status
		if status == "" {
			status = domain.TaskStatusTodo
		}
		priority := input.Priority
		if priority == "" {
			priority = domain.TaskPriorityMedium
		}
		now := time.Now()
		task := &domain.Task{
			ID:          domain.NewTaskID(uuid.New()),
			Name:        input.Name,
			Description: input.Description,
			Status:      status,
			Priority:    priority,
			DueDate:     input.DueDate,
			Tags:        input.Tags,
			ProjectID:   project.ID,
			AssignedTo:  input.AssignedTo,
			CreatedBy:   input.CreatedBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		created = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishTaskEvent(ctx, uc.events, uc.log, events.ActionTaskAdded, created, snapshotOf(created))
	return created, nil
}
