package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignedIn        EventType = "signed_in"
	EventSignInFailed    EventType = "sign_in_failed"
	EventSignedOut       EventType = "signed_out"
	EventSessionRestored EventType = "session_restored"
	EventSessionRejected EventType = "session_rejected"
	EventStoreAdded      EventType = "store_added"
)

// AuditedSessionEvents lists the events worth an audit record.
// EventSessionRestored fires on every hydrated request and is left out.
var AuditedSessionEvents = []EventType{
	EventSignedIn,
	EventSignInFailed,
	EventSignedOut,
	EventSessionRejected,
	EventStoreAdded,
}

// Client describes the browser behind a session.
type Client struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Event represents a session lifecycle event.
type Event struct {
	ID               string      `json:"id"`
	Type             EventType   `json:"type"`
	UserID           int64       `json:"user_id,omitempty"`
	Email            string      `json:"email,omitempty"`
	TokenFingerprint string      `json:"token_fingerprint,omitempty"`
	Client           Client      `json:"client"`
	Timestamp        time.Time   `json:"timestamp"`
	Payload          interface{} `json:"payload,omitempty"`
}

// New stamps an event with an id and time.
func New(eventType EventType) Event {
	return Event{ID: uuid.NewString(), Type: eventType, Timestamp: time.Now().UTC()}
}

// FailurePayload carries the server message of a failed operation.
type FailurePayload struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// StoreAddedPayload payload.
type StoreAddedPayload struct {
	StoreID int64  `json:"store_id"`
	Name    string `json:"name"`
}
