package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/project"
	"github.com/taskstream/taskstream/internal/domain"
	"github.com/taskstream/taskstream/internal/domain/events"
)

type spyCreator struct {
	calls []project.CreateProjectInput
	err   error
}

func (s *spyCreator) Execute(ctx context.Context, input project.CreateProjectInput) (*project.CreateProjectResult, error) {
	s.calls = append(s.calls, input)
	if s.err != nil {
		return nil, s.err
	}
	return &project.CreateProjectResult{}, nil
}

type push struct {
	kind      string
	projectID domain.ProjectID
	userID    domain.UserID
	taskID    string
}

type spyBroadcaster struct {
	mu     sync.Mutex
	pushes []push
}

func (s *spyBroadcaster) record(p push) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes = append(s.pushes, p)
}

func (s *spyBroadcaster) SendTaskAdded(projectID domain.ProjectID, taskID string, update any) {
	s.record(push{kind: "taskAdded", projectID: projectID, taskID: taskID})
}

func (s *spyBroadcaster) SendTaskUpdate(projectID domain.ProjectID, taskID string, update any) {
	s.record(push{kind: "taskUpdate", projectID: projectID, taskID: taskID})
}

func (s *spyBroadcaster) SendTaskDelete(projectID domain.ProjectID, taskID string, update any) {
	s.record(push{kind: "taskDelete", projectID: projectID, taskID: taskID})
}

func (s *spyBroadcaster) SendProjectAssigned(projectID domain.ProjectID, userID domain.UserID) {
	s.record(push{kind: "projectAssigned", projectID: projectID, userID: userID})
}

func newTestDispatcher(creator DefaultProjectCreator, caster *spyBroadcaster) *Dispatcher {
	return &Dispatcher{projects: creator, caster: caster, log: zerolog.Nop()}
}

func mustEnvelope(t *testing.T, action events.Action, payload any) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(action, payload)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	return env
}

func TestDispatchCreateDefaultProject(t *testing.T) {
	creator := &spyCreator{}
	caster := &spyBroadcaster{}
	d := newTestDispatcher(creator, caster)

	userID := uuid.New()
	env := mustEnvelope(t, events.ActionCreateDefaultProject, events.CreateDefaultProjectPayload{UserID: userID.String()})
	d.dispatch(context.Background(), env.Action, env)

	if len(creator.calls) != 1 {
		t.Fatalf("creator calls = %d", len(creator.calls))
	}
	got := creator.calls[0]
	if got.CreatedBy.UUID != userID {
		t.Errorf("created_by = %v", got.CreatedBy)
	}
	if got.Name != "Todo List" {
		t.Errorf("name = %q", got.Name)
	}
	if len(caster.pushes) != 0 {
		t.Error("no push expected for CREATE_DEFAULT_PROJECT")
	}
}

// The registration already committed; a downstream failure is swallowed.
func TestDispatchCreateDefaultProjectFailureSwallowed(t *testing.T) {
	creator := &spyCreator{err: errors.New("db down")}
	d := newTestDispatcher(creator, &spyBroadcaster{})

	env := mustEnvelope(t, events.ActionCreateDefaultProject, events.CreateDefaultProjectPayload{UserID: uuid.NewString()})
	d.dispatch(context.Background(), env.Action, env) // must not panic or propagate
}

func TestDispatchProjectAssigned(t *testing.T) {
	caster := &spyBroadcaster{}
	d := newTestDispatcher(&spyCreator{}, caster)

	projectID := uuid.New()
	userID := uuid.New()
	env := mustEnvelope(t, events.ActionProjectAssigned, events.ProjectAssignedPayload{
		ProjectID: projectID.String(),
		UserID:    userID.String(),
	})
	d.dispatch(context.Background(), env.Action, env)

	if len(caster.pushes) != 1 {
		t.Fatalf("pushes = %d", len(caster.pushes))
	}
	got := caster.pushes[0]
	if got.kind != "projectAssigned" || got.userID.UUID != userID || got.projectID.UUID != projectID {
		t.Errorf("push = %+v", got)
	}
}

func TestDispatchTaskEvents(t *testing.T) {
	caster := &spyBroadcaster{}
	d := newTestDispatcher(&spyCreator{}, caster)

	projectID := uuid.New()
	taskID := uuid.NewString()
	payload := events.TaskEventPayload{TaskID: taskID, ProjectID: projectID.String()}

	for action, kind := range map[events.Action]string{
		events.ActionTaskAdded:   "taskAdded",
		events.ActionTaskUpdated: "taskUpdate",
		events.ActionTaskDeleted: "taskDelete",
	} {
		caster.pushes = nil
		env := mustEnvelope(t, action, payload)
		d.dispatch(context.Background(), env.Action, env)
		if len(caster.pushes) != 1 || caster.pushes[0].kind != kind {
			t.Errorf("%s: pushes = %+v", action, caster.pushes)
		}
	}
}

// At-least-once semantics: a redelivered envelope is pushed again, never
// suppressed.
func TestDispatchRedeliveryPushesTwice(t *testing.T) {
	caster := &spyBroadcaster{}
	d := newTestDispatcher(&spyCreator{}, caster)

	env := mustEnvelope(t, events.ActionTaskUpdated, events.TaskEventPayload{
		TaskID:    uuid.NewString(),
		ProjectID: uuid.NewString(),
	})
	d.dispatch(context.Background(), env.Action, env)
	d.dispatch(context.Background(), env.Action, env)

	if len(caster.pushes) != 2 {
		t.Fatalf("pushes = %d, want 2", len(caster.pushes))
	}
}

func TestHandleEventDiscardsGarbage(t *testing.T) {
	caster := &spyBroadcaster{}
	creator := &spyCreator{}
	d := newTestDispatcher(creator, caster)

	cases := [][]byte{
		[]byte("{not json"),
		[]byte(`{"action":"TASK_EXPLODED","payload":{}}`),
		mustJSON(t, events.Envelope{Action: events.ActionProjectAssigned, Payload: json.RawMessage(`{"projectId":"not-a-uuid","userId":"nope"}`)}),
	}
	for _, payload := range cases {
		if err := d.handleEvent(context.Background(), asynqTask(payload)); err != nil {
			t.Errorf("handleEvent should swallow: %v", err)
		}
	}
	if len(caster.pushes) != 0 || len(creator.calls) != 0 {
		t.Error("garbage envelopes must not reach handlers")
	}
}

func asynqTask(payload []byte) *asynq.Task {
	return asynq.NewTask(TypeProjectEvent, payload)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
