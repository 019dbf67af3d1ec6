package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

// AttrEventType is the Pub/Sub message attribute carrying the event type,
// letting consumers filter before decoding the body.
const AttrEventType = "event_type"

// Envelope wraps a domain event for the entitlement event stream.
type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       enums.EventType `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope wraps a payload with a fresh event id.
func NewEnvelope(eventType enums.EventType, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}
