package eventbus

import (
	"testing"

	"github.com/redis/go-redis/v9"

	"wardwatch-be/events"
)

// TestParseMessage decodes a stream entry back into an event.
func TestParseMessage(t *testing.T) {
	event, err := events.NewEvent(events.IssueCreated, "abc123", events.IssueCreatedPayload{
		IssueID: "abc123",
		Ward:    "ward-34",
	})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	msg := redis.XMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"event_id":   event.EventID,
			"event_type": event.EventType,
			"issue_id":   event.IssueID,
			"payload":    string(data),
		},
	}

	parsed, err := parseMessage(msg)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if parsed.EventID != event.EventID || parsed.EventType != events.IssueCreated {
		t.Errorf("parsed envelope mismatch: %+v", parsed)
	}

	var payload events.IssueCreatedPayload
	if err := parsed.ParsePayload(&payload); err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if payload.Ward != "ward-34" {
		t.Errorf("ward = %q, want ward-34", payload.Ward)
	}
}

// TestParseMessageRejectsMissingPayload covers malformed stream entries.
func TestParseMessageRejectsMissingPayload(t *testing.T) {
	if _, err := parseMessage(redis.XMessage{ID: "1-0", Values: map[string]interface{}{}}); err == nil {
		t.Fatal("expected error for message without payload")
	}
}
