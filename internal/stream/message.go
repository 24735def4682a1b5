// Package stream consumes and publishes JSON events over Redis Streams.
//
// A stream plays the role of a topic and a consumer group the role of a
// subscription. Messages are acknowledged only after their handler
// succeeds; anything left pending is reclaimed and redelivered once it has
// been idle for the configured time.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message field names, shared with the outbox publisher.
const (
	FieldEventType   = "event_type"
	FieldAggregateID = "aggregate_id"
	FieldPayload     = "payload"
)

// ErrMalformed marks a message that can never be processed. Such messages
// are acknowledged and dropped instead of being redelivered.
var ErrMalformed = errors.New("malformed message")

// Message is a single stream entry.
type Message struct {
	ID     string
	Stream string
	Fields map[string]string
}

// EventType returns the event_type field.
func (m Message) EventType() (string, bool) {
	v, ok := m.Fields[FieldEventType]
	return v, ok
}

// Payload returns the payload field.
func (m Message) Payload() ([]byte, bool) {
	v, ok := m.Fields[FieldPayload]
	if !ok {
		return nil, false
	}

	return []byte(v), true
}

type validator interface {
	Validate() error
}

// Decode unmarshals the JSON payload of msg into a T and validates it when
// T has a Validate method. Every failure wraps ErrMalformed.
func Decode[T any](msg Message) (*T, error) {
	payload, ok := msg.Payload()
	if !ok {
		return nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}

	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if val, ok := any(&v).(validator); ok {
		if err := val.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	return &v, nil
}

// Encode builds the fields of an outgoing message.
func Encode(eventType, aggregateID string, payload []byte) map[string]string {
	return map[string]string{
		FieldEventType:   eventType,
		FieldAggregateID: aggregateID,
		FieldPayload:     string(payload),
	}
}
