package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventID identifies one occurrence; the bus dedupes on it.
	EventID() string

	// EventType returns the event code, e.g. "LIBRARY_SAVED".
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	ID         string
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// NewEvent stamps a fresh id. A zero at means now.
func NewEvent(eventType string, data map[string]interface{}, at time.Time) BaseEvent {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return BaseEvent{ID: uuid.NewString(), Type: eventType, Data: data, OccurredAt: at}
}

func (e BaseEvent) EventID() string                 { return e.ID }
func (e BaseEvent) EventType() string               { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time            { return e.OccurredAt }

const LibraryEventPrefix = "LIBRARY_"

// LibraryEventType maps an action ("saved") to its event code ("LIBRARY_SAVED").
func LibraryEventType(action string) string {
	return LibraryEventPrefix + strings.ToUpper(action)
}

type envelope struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Encode serializes an event for the bus.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(envelope{
		ID:         e.EventID(),
		Type:       e.EventType(),
		OccurredAt: e.Timestamp(),
		Data:       e.Payload(),
	})
}

// Decode reads an encoded event. Bare JSON objects are accepted as the
// payload of an event of eventType.
func Decode(eventType string, raw []byte) (BaseEvent, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}

	if _, wrapped := fields["data"]; wrapped {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return BaseEvent{}, fmt.Errorf("decode event: %w", err)
		}
		if env.Type == "" {
			env.Type = eventType
		}
		return BaseEvent{ID: env.ID, Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return BaseEvent{Type: eventType, Data: data}, nil
}
