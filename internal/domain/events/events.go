// Package events defines the envelopes exchanged between services over the
// broker. Envelopes are transient: created after a command commits, consumed
// once per subscribed dispatcher, then discarded.
package events

import (
	"encoding/json"
	"fmt"
)

// Action discriminates envelope handling in dispatchers. The set is closed;
// dispatchers switch exhaustively and discard anything unparseable.
type Action string

const (
	ActionCreateDefaultProject Action = "CREATE_DEFAULT_PROJECT"
	ActionProjectAssigned      Action = "PROJECT_ASSIGNED"
	ActionTaskAdded            Action = "TASK_ADDED"
	ActionTaskUpdated          Action = "TASK_UPDATED"
	ActionTaskDeleted          Action = "TASK_DELETED"
)

// ParseAction validates s against the closed action set.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionCreateDefaultProject, ActionProjectAssigned,
		ActionTaskAdded, ActionTaskUpdated, ActionTaskDeleted:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Routing keys are static per event class; every service agrees on them.
const (
	QueueProject = "project_queue"
	QueueTask    = "task_queue"
)

// Envelope is the wire shape delivered on a queue.
type Envelope struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into an envelope for action.
func NewEnvelope(action Action, payload any) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", action, err)
	}
	return Envelope{Action: action, Payload: body}, nil
}

// DecodePayload unmarshals the payload into v.
func (e Envelope) DecodePayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// CreateDefaultProjectPayload rides ActionCreateDefaultProject, emitted by the
// user service after a registration commits.
type CreateDefaultProjectPayload struct {
	UserID string `json:"userId"`
}

// ProjectAssignedPayload rides ActionProjectAssigned, addressed to the target
// user of a new grant.
type ProjectAssignedPayload struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
}

// TaskEventPayload rides the task lifecycle actions, addressed to the task's
// project. Update carries the task snapshot (or the applied patch) so clients
// can reconcile by ID.
type TaskEventPayload struct {
	TaskID    string          `json:"taskId"`
	ProjectID string          `json:"projectId"`
	Update    json.RawMessage `json:"update,omitempty"`
}
