package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/repository"
)

// PurchaseProjectorImpl implements PurchaseProjector.
type PurchaseProjectorImpl struct {
	gameRepo       repository.GameRepository
	userRepo       repository.UserRepository
	libraryRepo    repository.LibraryRepository
	outboxRepo     repository.OutboxRepository
	transactionMgr repository.TransactionManager
}

// NewPurchaseProjectorImpl creates a new PurchaseProjector implementation.
func NewPurchaseProjectorImpl(
	gameRepo repository.GameRepository,
	userRepo repository.UserRepository,
	libraryRepo repository.LibraryRepository,
	outboxRepo repository.OutboxRepository,
	transactionMgr repository.TransactionManager,
) PurchaseProjector {
	return &PurchaseProjectorImpl{
		gameRepo:       gameRepo,
		userRepo:       userRepo,
		libraryRepo:    libraryRepo,
		outboxRepo:     outboxRepo,
		transactionMgr: transactionMgr,
	}
}

// Apply grants the purchased game to the user once per purchase.
//
// The game and user must already be projected; otherwise a retryable error
// wrapping model.ErrGameNotProjected or model.ErrUserNotProjected is
// returned so redelivery can succeed once they arrive. The library entry and
// the purchase history outbox event are written in one transaction.
func (p *PurchaseProjectorImpl) Apply(ctx context.Context, event *model.PurchaseCompletedEvent) (Outcome, error) {
	if !event.Success {
		slog.Info("ignoring unsuccessful purchase", slog.String("purchase_id", event.PurchaseID.String()))
		return OutcomeUnsuccessful, nil
	}

	game, err := p.gameRepo.GetByCode(ctx, event.GameCode)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", fmt.Errorf("%w: game code %d", model.ErrGameNotProjected, event.GameCode)
		}

		return "", fmt.Errorf("failed to get game %d: %w", event.GameCode, err)
	}

	user, err := p.userRepo.GetByCode(ctx, event.UserCode)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", fmt.Errorf("%w: user code %d", model.ErrUserNotProjected, event.UserCode)
		}

		return "", fmt.Errorf("failed to get user %d: %w", event.UserCode, err)
	}

	key := model.LibraryKey{PurchaseID: event.PurchaseID, GameID: game.ID, UserID: user.ID}

	if _, err := p.libraryRepo.Get(ctx, key); err == nil {
		slog.Info("ignoring duplicate purchase", slog.String("purchase_id", event.PurchaseID.String()))
		return OutcomeDuplicate, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return "", fmt.Errorf("failed to get library entry: %w", err)
	}

	err = p.transactionMgr.WithTransaction(ctx, func(ctx context.Context) error {
		entry, err := p.libraryRepo.Create(ctx, &model.CreateLibraryParams{
			UserID:     user.ID,
			GameID:     game.ID,
			PurchaseID: event.PurchaseID,
			AcquiredAt: event.ProcessedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to create library entry: %w", err)
		}

		slog.Info("library entry created",
			slog.String("library_id", entry.ID.String()),
			slog.String("purchase_id", event.PurchaseID.String()),
			slog.Int("user_code", user.Code),
			slog.Int("game_code", game.Code),
		)

		return p.createPurchaseHistoryEvent(ctx, model.NewEnrichedPurchase(event, user, game))
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			slog.Info("ignoring concurrently applied purchase", slog.String("purchase_id", event.PurchaseID.String()))
			return OutcomeDuplicate, nil
		}

		return "", err
	}

	return OutcomeCreated, nil
}

func (p *PurchaseProjectorImpl) createPurchaseHistoryEvent(ctx context.Context, purchase *model.EnrichedPurchase) error {
	params, err := model.NewOutboxEventParams(
		fmt.Sprintf("purchase_%s", purchase.PurchaseID),
		model.EventActionPurchaseHistory,
		purchase,
	)
	if err != nil {
		return err
	}

	if _, err := p.outboxRepo.CreateEvent(ctx, params); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	return nil
}
