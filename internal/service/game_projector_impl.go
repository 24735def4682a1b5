package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/repository"
)

// GameProjectorImpl implements GameProjector.
type GameProjectorImpl struct {
	gameRepo repository.GameRepository
}

// NewGameProjectorImpl creates a new GameProjector implementation.
func NewGameProjectorImpl(gameRepo repository.GameRepository) GameProjector {
	return &GameProjectorImpl{gameRepo: gameRepo}
}

// Apply creates, updates or ignores the game identified by event.Code.
//
// A removal for an unknown code is ignored rather than materialized, and an
// event older than the stored UpdatedAt is ignored as stale. An event with
// the same UpdatedAt is applied again, which leaves the row unchanged.
func (p *GameProjectorImpl) Apply(ctx context.Context, event *model.GameEvent) (Outcome, error) {
	ev := *event
	ev.Normalize()

	existing, err := p.gameRepo.GetByCode(ctx, ev.Code)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return "", fmt.Errorf("failed to get game %d: %w", ev.Code, err)
	}

	if existing == nil {
		if ev.IsRemoval() {
			slog.Info("ignoring removal of unknown game", slog.Int("game_code", ev.Code))
			return OutcomeTombstone, nil
		}

		created, err := p.gameRepo.Create(ctx, model.NewGameFromEvent(&ev))
		if err != nil {
			return "", fmt.Errorf("failed to create game %d: %w", ev.Code, err)
		}

		slog.Info("game created",
			slog.Int("game_code", created.Code),
			slog.String("game_id", created.ID.String()),
			slog.String("category", created.Category.String()),
		)

		return OutcomeCreated, nil
	}

	if existing.UpdatedAt.After(ev.UpdatedAt) {
		slog.Info("ignoring stale game event",
			slog.Int("game_code", ev.Code),
			slog.Time("stored_updated_at", existing.UpdatedAt),
			slog.Time("event_updated_at", ev.UpdatedAt),
		)

		return OutcomeStale, nil
	}

	existing.ApplyEvent(&ev)

	updated, err := p.gameRepo.Update(ctx, existing)
	if err != nil {
		return "", fmt.Errorf("failed to update game %d: %w", ev.Code, err)
	}

	slog.Info("game updated",
		slog.Int("game_code", updated.Code),
		slog.Bool("is_active", updated.IsActive),
	)

	return OutcomeUpdated, nil
}
