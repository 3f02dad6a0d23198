package schema

import (
	"testing"

	"ai-voice-relay-service/internal/models"
)

func TestValidate_ValidEvent(t *testing.T) {
	v := New()

	ev := models.SessionStarted{
		EventType: "voice.session.started",
		SessionID: "sess-1",
		Model:     "gemini-2.0-flash-exp",
		Timestamp: 1700000000000,
	}

	if err := v.Validate(ev); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_MissingSessionID(t *testing.T) {
	v := New()

	ev := models.SessionEnded{
		EventType: "voice.session.ended",
		CloseCode: 1000,
	}

	if err := v.Validate(ev); err == nil {
		t.Error("expected error for missing sessionId")
	}
}

func TestValidate_MissingEventType(t *testing.T) {
	v := New()

	ev := map[string]any{"sessionId": "sess-1"}

	if err := v.Validate(ev); err == nil {
		t.Error("expected error for missing eventType")
	}
}

func TestValidate_Unserializable(t *testing.T) {
	v := New()

	if err := v.Validate(make(chan int)); err == nil {
		t.Error("expected error for unserializable event")
	}
}
