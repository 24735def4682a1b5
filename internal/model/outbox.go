package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutboxEvent represents an outbox event for reliable message delivery.
type OutboxEvent struct {
	ID          int64      `json:"id"`
	AggregateID string     `json:"aggregate_id"`
	EventType   string     `json:"event_type"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// CreateOutboxEventParams represents parameters for creating a new outbox event.
type CreateOutboxEventParams struct {
	AggregateID string
	EventType   string
	Payload     []byte
}

// NewOutboxEventParams marshals payload into outbox parameters for action.
func NewOutboxEventParams(aggregateID string, action EventAction, payload any) (*CreateOutboxEventParams, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	return &CreateOutboxEventParams{
		AggregateID: aggregateID,
		EventType:   string(action),
		Payload:     payloadJSON,
	}, nil
}
