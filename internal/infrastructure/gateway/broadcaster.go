package gateway

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/domain"
)

const (
	pushTaskAdded       = "taskAdded"
	pushTaskUpdate      = "taskUpdate"
	pushTaskDelete      = "taskDelete"
	pushProjectAssigned = "projectAssignedUpdate"
)

// taskMessage is the payload of task pushes. Type repeats the push name so
// clients can multiplex every room push through one listener.
type taskMessage struct {
	Type string      `json:"type"`
	Data taskMsgBody `json:"data"`
}

type taskMsgBody struct {
	TaskID string `json:"taskId"`
	Update any    `json:"update,omitempty"`
}

type assignedMessage struct {
	Type string          `json:"type"`
	Data assignedMsgBody `json:"data"`
}

type assignedMsgBody struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
}

// Broadcaster fans dispatched events out to live sessions through the
// registry. Delivery is best effort: a session whose outbound buffer is
// full misses the frame.
type Broadcaster struct {
	registry *Registry
	log      zerolog.Logger
}

func NewBroadcaster(registry *Registry, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

func (b *Broadcaster) SendTaskAdded(projectID domain.ProjectID, taskID string, update any) {
	b.toRoom(projectID, pushTaskAdded, taskMessage{
		Type: pushTaskAdded,
		Data: taskMsgBody{TaskID: taskID, Update: update},
	})
}

func (b *Broadcaster) SendTaskUpdate(projectID domain.ProjectID, taskID string, update any) {
	b.toRoom(projectID, pushTaskUpdate, taskMessage{
		Type: pushTaskUpdate,
		Data: taskMsgBody{TaskID: taskID, Update: update},
	})
}

func (b *Broadcaster) SendTaskDelete(projectID domain.ProjectID, taskID string, update any) {
	b.toRoom(projectID, pushTaskDelete, taskMessage{
		Type: pushTaskDelete,
		Data: taskMsgBody{TaskID: taskID, Update: update},
	})
}

// SendProjectAssigned reaches every live session of the user. A user with
// no session is a silent no-op.
func (b *Broadcaster) SendProjectAssigned(projectID domain.ProjectID, userID domain.UserID) {
	raw, err := json.Marshal(serverFrame{
		Event: pushProjectAssigned,
		Payload: assignedMessage{
			Type: pushProjectAssigned,
			Data: assignedMsgBody{ProjectID: projectID.String(), UserID: userID.String()},
		},
	})
	if err != nil {
		return
	}
	for _, c := range b.registry.UserConns(userID) {
		if !c.Send(raw) {
			b.log.Warn().Str("user_id", userID.String()).Msg("dropped push to slow session")
		}
	}
}

func (b *Broadcaster) toRoom(projectID domain.ProjectID, event string, payload any) {
	raw, err := json.Marshal(serverFrame{Event: event, Payload: payload})
	if err != nil {
		return
	}
	for _, c := range b.registry.RoomConns(projectID) {
		if !c.Send(raw) {
			b.log.Warn().Str("project_id", projectID.String()).Msg("dropped push to slow session")
		}
	}
}
