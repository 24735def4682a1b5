package repository

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jnst/cloudgames-library/internal/db"
	"github.com/jnst/cloudgames-library/internal/model"
)

const uniqueViolation = "23505"

// translateError maps driver errors onto model sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Join(model.ErrDuplicate, err)
	}

	return err
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func nullableTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}

	return timestamptz(*t)
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}

	t := ts.Time

	return &t
}

func toGame(g db.Game) *model.Game {
	return &model.Game{
		ID:        g.ID,
		Code:      int(g.Code),
		Title:     g.Title,
		Category:  model.GameCategory(g.Category),
		UpdatedAt: g.UpdatedAt.Time,
		RemovedAt: timePtr(g.RemovedAt),
		IsActive:  g.IsActive,
	}
}

func toUser(u db.User) *model.User {
	return &model.User{
		ID:        u.ID,
		Code:      int(u.Code),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Time,
	}
}

func toLibrary(l db.Library) *model.Library {
	return &model.Library{
		ID:         l.ID,
		UserID:     l.UserID,
		GameID:     l.GameID,
		PurchaseID: l.PurchaseID,
		AcquiredAt: l.AcquiredAt.Time,
	}
}

func toOutboxEvent(e db.OutboxEvent) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:          e.ID,
		AggregateID: e.AggregateID,
		EventType:   e.EventType,
		Payload:     e.Payload,
		CreatedAt:   e.CreatedAt.Time,
		PublishedAt: timePtr(e.PublishedAt),
	}
}
