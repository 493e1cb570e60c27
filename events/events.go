package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published after each acknowledged store mutation
const (
	IssueCreated       = "issue.created"
	IssueStatusUpdated = "issue.status.updated"
	IssueUpvoted       = "issue.upvoted"
	IssueDeleted       = "issue.deleted"
	IssueOverdue       = "issue.overdue"
)

// Event is a change notification carried on the issue stream
type Event struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	IssueID   string          `json:"issue_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// IssueCreatedPayload - published when a citizen files an issue
type IssueCreatedPayload struct {
	IssueID    string    `json:"issue_id"`
	ReportedBy string    `json:"reported_by"`
	Ward       string    `json:"ward"`
	Category   string    `json:"category"`
	Title      string    `json:"title"`
	ReportedAt time.Time `json:"reported_at"`
}

// IssueStatusUpdatedPayload - published when an authority moves an issue
type IssueStatusUpdatedPayload struct {
	IssueID    string     `json:"issue_id"`
	OldStatus  string     `json:"old_status"`
	NewStatus  string     `json:"new_status"`
	Ward       string     `json:"ward"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ChangedAt  time.Time  `json:"changed_at"`
}

// IssueUpvotedPayload - published on every upvote toggle
type IssueUpvotedPayload struct {
	IssueID string    `json:"issue_id"`
	UserID  string    `json:"user_id"`
	Voted   bool      `json:"voted"`
	Upvotes int       `json:"upvotes"`
	At      time.Time `json:"at"`
}

// IssueDeletedPayload - published when an authority removes an issue
type IssueDeletedPayload struct {
	IssueID   string    `json:"issue_id"`
	Ward      string    `json:"ward"`
	DeletedBy string    `json:"deleted_by"`
	DeletedAt time.Time `json:"deleted_at"`
}

// IssueOverduePayload - published once when an issue crosses the threshold
type IssueOverduePayload struct {
	IssueID    string    `json:"issue_id"`
	Ward       string    `json:"ward"`
	ReportedAt time.Time `json:"reported_at"`
	DetectedAt time.Time `json:"detected_at"`
}

// NewEvent creates a new Event
func NewEvent(eventType string, issueID string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		IssueID:   issueID,
		Payload:   payloadBytes,
		Timestamp: time.Now(),
	}, nil
}

// ToJSON converts event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses event from JSON bytes
func FromJSON(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ParsePayload parses the payload into the specified type
func (e *Event) ParsePayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}
