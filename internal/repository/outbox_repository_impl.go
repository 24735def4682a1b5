package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jnst/cloudgames-library/internal/db"
	"github.com/jnst/cloudgames-library/internal/model"
)

// OutboxRepositoryImpl implements OutboxRepository using PostgreSQL.
type OutboxRepositoryImpl struct {
	db *db.Queries
}

// NewOutboxRepositoryImpl creates a new OutboxRepository implementation.
func NewOutboxRepositoryImpl(pool *pgxpool.Pool) OutboxRepository {
	return &OutboxRepositoryImpl{db: db.New(pool)}
}

// CreateEvent creates a new outbox event. Inside WithTransaction it is
// written atomically with the state change it describes.
func (r *OutboxRepositoryImpl) CreateEvent(
	ctx context.Context, params *model.CreateOutboxEventParams,
) (*model.OutboxEvent, error) {
	dbEvent, err := queries(ctx, r.db).CreateOutboxEvent(ctx, &db.CreateOutboxEventParams{
		AggregateID: params.AggregateID,
		EventType:   params.EventType,
		Payload:     params.Payload,
	})
	if err != nil {
		return nil, translateError(err)
	}

	return toOutboxEvent(dbEvent), nil
}

// GetUnpublishedEvents retrieves unpublished outbox events.
func (r *OutboxRepositoryImpl) GetUnpublishedEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	dbEvents, err := queries(ctx, r.db).GetUnpublishedEvents(ctx, int32(limit))
	if err != nil {
		return nil, translateError(err)
	}

	events := make([]*model.OutboxEvent, len(dbEvents))
	for i, dbEvent := range dbEvents {
		events[i] = toOutboxEvent(dbEvent)
	}

	return events, nil
}

// MarkAsPublished marks an outbox event as published.
func (r *OutboxRepositoryImpl) MarkAsPublished(ctx context.Context, id int64) error {
	return translateError(queries(ctx, r.db).MarkEventAsPublished(ctx, id))
}
