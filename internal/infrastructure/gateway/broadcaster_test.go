package gateway

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/domain"
)

func TestBroadcasterTaskUpdateReachesRoomOnly(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zerolog.Nop())
	project := domain.NewProjectID(uuid.New())
	other := domain.NewProjectID(uuid.New())

	member := &fakeConn{}
	outsider := &fakeConn{}
	r.Register(member, domain.NewUserID(uuid.New()))
	r.Register(outsider, domain.NewUserID(uuid.New()))
	r.JoinRoom(member, project)
	r.JoinRoom(outsider, other)

	b.SendTaskUpdate(project, "task-1", map[string]any{"status": "done"})

	if len(outsider.frames) != 0 {
		t.Fatal("session in another room received the push")
	}
	frame := member.decode(t, 0)
	if frame.Event != pushTaskUpdate {
		t.Errorf("event = %q, want %q", frame.Event, pushTaskUpdate)
	}
	var msg taskMessage
	raw, _ := json.Marshal(frame.Payload)
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("payload: %v", err)
	}
	// Clients switch on the push name in type, not the queue action name.
	if msg.Type != "taskUpdate" {
		t.Errorf("type = %q, want %q", msg.Type, "taskUpdate")
	}
	if msg.Data.TaskID != "task-1" {
		t.Errorf("taskId = %q", msg.Data.TaskID)
	}
}

func TestBroadcasterTaskAddedAndDeleteEvents(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zerolog.Nop())
	project := domain.NewProjectID(uuid.New())
	c := &fakeConn{}
	r.Register(c, domain.NewUserID(uuid.New()))
	r.JoinRoom(c, project)

	b.SendTaskAdded(project, "task-1", nil)
	b.SendTaskDelete(project, "task-1", nil)

	for i, want := range []string{pushTaskAdded, pushTaskDelete} {
		frame := c.decode(t, i)
		if frame.Event != want {
			t.Errorf("event %d = %q, want %q", i, frame.Event, want)
		}
		var msg taskMessage
		raw, _ := json.Marshal(frame.Payload)
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if msg.Type != want {
			t.Errorf("type %d = %q, want %q", i, msg.Type, want)
		}
	}
}

func TestBroadcasterProjectAssignedReachesEverySession(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zerolog.Nop())
	userID := domain.NewUserID(uuid.New())
	project := domain.NewProjectID(uuid.New())

	first := &fakeConn{}
	second := &fakeConn{}
	bystander := &fakeConn{}
	r.Register(first, userID)
	r.Register(second, userID)
	r.Register(bystander, domain.NewUserID(uuid.New()))

	b.SendProjectAssigned(project, userID)

	for i, c := range []*fakeConn{first, second} {
		frame := c.decode(t, 0)
		if frame.Event != pushProjectAssigned {
			t.Errorf("session %d event = %q", i, frame.Event)
		}
		var msg assignedMessage
		raw, _ := json.Marshal(frame.Payload)
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if msg.Type != "projectAssignedUpdate" {
			t.Errorf("type = %q", msg.Type)
		}
		if msg.Data.ProjectID != project.String() {
			t.Errorf("projectId = %q", msg.Data.ProjectID)
		}
		if msg.Data.UserID != userID.String() {
			t.Errorf("userId = %q, want the target user", msg.Data.UserID)
		}
	}
	if len(bystander.frames) != 0 {
		t.Fatal("push leaked to another user's session")
	}
}

func TestBroadcasterNoSessionsIsNoop(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zerolog.Nop())
	// Neither call may panic with an empty registry.
	b.SendProjectAssigned(domain.NewProjectID(uuid.New()), domain.NewUserID(uuid.New()))
	b.SendTaskUpdate(domain.NewProjectID(uuid.New()), "task-1", nil)
}

func TestBroadcasterSkipsSlowSession(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zerolog.Nop())
	project := domain.NewProjectID(uuid.New())

	slow := &fakeConn{full: true}
	healthy := &fakeConn{}
	r.Register(slow, domain.NewUserID(uuid.New()))
	r.Register(healthy, domain.NewUserID(uuid.New()))
	r.JoinRoom(slow, project)
	r.JoinRoom(healthy, project)

	b.SendTaskUpdate(project, "task-1", nil)

	if len(slow.frames) != 0 {
		t.Fatal("full session should not receive frames")
	}
	if len(healthy.frames) != 1 {
		t.Fatal("healthy session missed the push")
	}
}
