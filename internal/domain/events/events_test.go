package events

import (
	"encoding/json"
	"testing"
)

func TestParseAction(t *testing.T) {
	for _, s := range []string{
		"CREATE_DEFAULT_PROJECT", "PROJECT_ASSIGNED",
		"TASK_ADDED", "TASK_UPDATED", "TASK_DELETED",
	} {
		a, err := ParseAction(s)
		if err != nil {
			t.Errorf("ParseAction(%q): %v", s, err)
		}
		if string(a) != s {
			t.Errorf("ParseAction(%q) = %q", s, a)
		}
	}
	if _, err := ParseAction("TASK_EXPLODED"); err == nil {
		t.Error("expected error for unknown action")
	}
	if _, err := ParseAction(""); err == nil {
		t.Error("expected error for empty action")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(ActionProjectAssigned, ProjectAssignedPayload{
		ProjectID: "7c1e4e9e-9a1a-4b7e-8f4f-0f25a9e3a111",
		UserID:    "a4b0cf15-4e2a-4a7e-9f11-2a1d3c4b5e6f",
	})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}

	// Simulate the broker hop.
	wire, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Envelope
	if err := json.Unmarshal(wire, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Action != ActionProjectAssigned {
		t.Fatalf("action = %q", got.Action)
	}
	var p ProjectAssignedPayload
	if err := got.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if p.ProjectID != "7c1e4e9e-9a1a-4b7e-8f4f-0f25a9e3a111" || p.UserID == "" {
		t.Errorf("payload = %+v", p)
	}
}
