package service

import (
	"context"
	"log/slog"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/repository"
	"github.com/jnst/cloudgames-library/internal/stream"
)

// EventPublisher appends messages to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream string, fields map[string]string) (string, error)
}

// OutboxServiceImpl implements OutboxService for processing outbox events.
type OutboxServiceImpl struct {
	outboxRepo repository.OutboxRepository
	publisher  EventPublisher
	routes     map[model.EventAction]string
}

// NewOutboxServiceImpl creates a new OutboxService implementation. routes maps
// each event type to the stream it is published on.
func NewOutboxServiceImpl(
	outboxRepo repository.OutboxRepository,
	publisher EventPublisher,
	routes map[model.EventAction]string,
) OutboxService {
	return &OutboxServiceImpl{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		routes:     routes,
	}
}

// ProcessUnpublishedEvents publishes up to limit pending outbox events in id
// order. An event that fails to publish stays pending for the next poll; an
// event type with no stream is marked published without being sent.
func (s *OutboxServiceImpl) ProcessUnpublishedEvents(ctx context.Context, limit int) error {
	events, err := s.outboxRepo.GetUnpublishedEvents(ctx, limit)
	if err != nil {
		return err
	}

	for _, event := range events {
		streamKey, ok := s.routes[model.EventAction(event.EventType)]
		if !ok {
			slog.Warn("no stream for outbox event type, discarding",
				slog.Int64("event_id", event.ID),
				slog.String("event_type", event.EventType),
			)

			if err := s.outboxRepo.MarkAsPublished(ctx, event.ID); err != nil {
				slog.Error("failed to discard unroutable event",
					slog.Int64("event_id", event.ID),
					slog.String("error", err.Error()),
				)
			}

			continue
		}

		fields := stream.Encode(event.EventType, event.AggregateID, event.Payload)
		if _, err := s.publisher.Publish(ctx, streamKey, fields); err != nil {
			slog.Error("failed to publish outbox event",
				slog.Int64("event_id", event.ID),
				slog.String("stream", streamKey),
				slog.String("error", err.Error()),
			)

			continue
		}

		if err := s.outboxRepo.MarkAsPublished(ctx, event.ID); err != nil {
			slog.Error("failed to mark event as published",
				slog.Int64("event_id", event.ID),
				slog.String("error", err.Error()),
			)

			continue
		}

		slog.Info("published outbox event",
			slog.Int64("event_id", event.ID),
			slog.String("event_type", event.EventType),
			slog.String("stream", streamKey),
		)
	}

	return nil
}
