package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
	"github.com/taskstream/taskstream/internal/domain/events"
)

// taskSnapshot is the task representation carried in the `update` field of
// task lifecycle events; clients reconcile by id.
type taskSnapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ProjectID   string     `json:"projectId"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	CreatedBy   string     `json:"createdBy"`
}

func snapshotOf(t *domain.Task) taskSnapshot {
	s := taskSnapshot{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Tags:        t.Tags,
		ProjectID:   t.ProjectID.String(),
		CreatedBy:   t.CreatedBy.String(),
	}
	if t.AssignedTo != nil {
		assignee := t.AssignedTo.String()
		s.AssignedTo = &assignee
	}
	return s
}

// publishTaskEvent emits a task lifecycle envelope to the task queue after
// the triggering transaction has committed. Failures are logged and
// absorbed: delivery is best effort and the write stands.
func publishTaskEvent(ctx context.Context, publisher ports.EventPublisher, log zerolog.Logger, action events.Action, t *domain.Task, update any) {
	var raw json.RawMessage
	if update != nil {
		body, err := json.Marshal(update)
		if err != nil {
			log.Error().Err(err).Str("task_id", t.ID.String()).Msg("marshal task event update")
			return
		}
		raw = body
	}
	env, err := events.NewEnvelope(action, events.TaskEventPayload{
		TaskID:    t.ID.String(),
		ProjectID: t.ProjectID.String(),
		Update:    raw,
	})
	if err != nil {
		log.Error().Err(err).Str("task_id", t.ID.String()).Msg("build task event envelope")
		return
	}
	if err := publisher.Publish(ctx, events.QueueTask, env); err != nil {
		log.Warn().Err(err).Str("task_id", t.ID.String()).Str("action", string(action)).Msg("publish task event failed")
	}
}
