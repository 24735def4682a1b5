package stream

import (
	"context"
	"fmt"
	"log/slog"
)

// Handler processes one message. Returning an error wrapping ErrMalformed
// drops the message; any other error leaves it pending for redelivery.
type Handler func(ctx context.Context, msg Message) error

// Router dispatches messages by their event_type field.
type Router struct {
	handlers map[string]Handler
	fallback Handler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// Register routes eventType to h.
func (r *Router) Register(eventType string, h Handler) *Router {
	r.handlers[eventType] = h
	return r
}

// Fallback sets the handler for messages that carry no event_type, as
// producers that own a whole stream may omit it.
func (r *Router) Fallback(h Handler) *Router {
	r.fallback = h
	return r
}

// Handle implements Handler.
func (r *Router) Handle(ctx context.Context, msg Message) error {
	eventType, ok := msg.EventType()
	if !ok {
		if r.fallback != nil {
			return r.fallback(ctx, msg)
		}

		return fmt.Errorf("%w: missing event_type", ErrMalformed)
	}

	h, ok := r.handlers[eventType]
	if !ok {
		slog.Warn("unknown event type",
			slog.String("stream", msg.Stream),
			slog.String("message_id", msg.ID),
			slog.String("event_type", eventType),
		)

		return nil
	}

	return h(ctx, msg)
}
