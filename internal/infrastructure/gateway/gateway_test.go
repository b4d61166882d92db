package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/domain"
)

type fakeGrants struct {
	allow map[domain.ProjectID]bool
	err   error
}

func (f *fakeGrants) HasGrant(_ context.Context, _ domain.UserID, projectID domain.ProjectID) (bool, error) {
	return f.allow[projectID], f.err
}

func newFrameHandler(grants GrantChecker) *Handler {
	return &Handler{
		registry: NewRegistry(),
		grants:   grants,
		log:      zerolog.Nop(),
	}
}

func newQueuedSession() *session {
	return &session{send: make(chan []byte, sendBufferSize), done: make(chan struct{})}
}

func nextFrame(t *testing.T, sess *session) serverFrame {
	t.Helper()
	select {
	case raw := <-sess.send:
		var frame serverFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("frame: %v", err)
		}
		return frame
	default:
		t.Fatal("no frame queued")
		return serverFrame{}
	}
}

// An event name the gateway does not know is reported as unknown even when
// its data is not a project id.
func TestHandleFrameUnknownEvent(t *testing.T) {
	h := newFrameHandler(&fakeGrants{})
	sess := newQueuedSession()
	userID := domain.NewUserID(uuid.New())
	h.registry.Register(sess, userID)

	h.handleFrame(context.Background(), sess, userID, clientFrame{Event: "subscribe", Data: "not-a-uuid"})

	frame := nextFrame(t, sess)
	if frame.Event != eventError {
		t.Fatalf("event = %q, want %q", frame.Event, eventError)
	}
	if frame.Payload != "unknown event" {
		t.Errorf("payload = %v, want %q", frame.Payload, "unknown event")
	}
}

func TestHandleFrameJoinRequiresGrant(t *testing.T) {
	project := domain.NewProjectID(uuid.New())
	grants := &fakeGrants{allow: map[domain.ProjectID]bool{project: true}}
	h := newFrameHandler(grants)
	userID := domain.NewUserID(uuid.New())

	member := newQueuedSession()
	h.registry.Register(member, userID)
	h.handleFrame(context.Background(), member, userID, clientFrame{Event: eventJoinProject, Data: project.String()})
	if frame := nextFrame(t, member); frame.Event != eventJoined {
		t.Errorf("event = %q, want %q", frame.Event, eventJoined)
	}
	if got := h.registry.RoomConns(project); len(got) != 1 {
		t.Errorf("room size = %d, want 1", len(got))
	}

	outsider := newQueuedSession()
	other := domain.NewProjectID(uuid.New())
	h.registry.Register(outsider, userID)
	h.handleFrame(context.Background(), outsider, userID, clientFrame{Event: eventJoinProject, Data: other.String()})
	if frame := nextFrame(t, outsider); frame.Event != eventError {
		t.Errorf("event = %q, want %q", frame.Event, eventError)
	}
	if got := h.registry.RoomConns(other); len(got) != 0 {
		t.Errorf("refused join still entered the room")
	}
}

func TestHandleFrameJoinInvalidProjectID(t *testing.T) {
	h := newFrameHandler(&fakeGrants{})
	sess := newQueuedSession()
	userID := domain.NewUserID(uuid.New())
	h.registry.Register(sess, userID)

	h.handleFrame(context.Background(), sess, userID, clientFrame{Event: eventJoinProject, Data: "nope"})

	frame := nextFrame(t, sess)
	if frame.Event != eventError {
		t.Fatalf("event = %q, want %q", frame.Event, eventError)
	}
	if frame.Payload != "invalid project id" {
		t.Errorf("payload = %v, want %q", frame.Payload, "invalid project id")
	}
}

func TestHandleFrameLeaveDropsMembership(t *testing.T) {
	project := domain.NewProjectID(uuid.New())
	grants := &fakeGrants{allow: map[domain.ProjectID]bool{project: true}}
	h := newFrameHandler(grants)
	sess := newQueuedSession()
	userID := domain.NewUserID(uuid.New())
	h.registry.Register(sess, userID)

	h.handleFrame(context.Background(), sess, userID, clientFrame{Event: eventJoinProject, Data: project.String()})
	nextFrame(t, sess)
	h.handleFrame(context.Background(), sess, userID, clientFrame{Event: eventLeaveProject, Data: project.String()})

	if frame := nextFrame(t, sess); frame.Event != eventLeft {
		t.Errorf("event = %q, want %q", frame.Event, eventLeft)
	}
	if got := h.registry.RoomConns(project); len(got) != 0 {
		t.Errorf("room size = %d after leave", len(got))
	}
}
