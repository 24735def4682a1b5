// Package consumer turns stream messages into projector and indexer calls.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/service"
	"github.com/jnst/cloudgames-library/internal/stream"
)

// MessageHandler processes messages from the subscribed streams.
type MessageHandler struct {
	gameProjector     service.GameProjector
	purchaseProjector service.PurchaseProjector
	historyIndexer    service.PurchaseHistoryIndexer
}

// NewMessageHandler creates a new message handler instance.
func NewMessageHandler(
	gameProjector service.GameProjector,
	purchaseProjector service.PurchaseProjector,
	historyIndexer service.PurchaseHistoryIndexer,
) *MessageHandler {
	return &MessageHandler{
		gameProjector:     gameProjector,
		purchaseProjector: purchaseProjector,
		historyIndexer:    historyIndexer,
	}
}

// HandleGameEvent applies a game lifecycle event.
func (h *MessageHandler) HandleGameEvent(ctx context.Context, msg stream.Message) error {
	event, err := stream.Decode[model.GameEvent](msg)
	if err != nil {
		return err
	}

	outcome, err := h.gameProjector.Apply(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to apply game event: %w", err)
	}

	slog.Debug("game event processed",
		slog.String("message_id", msg.ID),
		slog.Int("game_code", event.Code),
		slog.String("outcome", string(outcome)),
	)

	return nil
}

// HandlePurchaseCompleted applies a completed purchase. A purchase whose game
// or user has not been projected yet returns an error so it is redelivered.
func (h *MessageHandler) HandlePurchaseCompleted(ctx context.Context, msg stream.Message) error {
	event, err := stream.Decode[model.PurchaseCompletedEvent](msg)
	if err != nil {
		return err
	}

	outcome, err := h.purchaseProjector.Apply(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to apply purchase %s: %w", event.PurchaseID, err)
	}

	slog.Debug("purchase event processed",
		slog.String("message_id", msg.ID),
		slog.String("purchase_id", event.PurchaseID.String()),
		slog.String("outcome", string(outcome)),
	)

	return nil
}

// HandlePurchaseHistory indexes an enriched purchase. Indexing is best
// effort, so only undecodable messages fail.
func (h *MessageHandler) HandlePurchaseHistory(ctx context.Context, msg stream.Message) error {
	purchase, err := stream.Decode[model.EnrichedPurchase](msg)
	if err != nil {
		return err
	}

	h.historyIndexer.Index(ctx, purchase)

	return nil
}

// HandleUserCreated records the arrival of a new user.
func (*MessageHandler) HandleUserCreated(_ context.Context, msg stream.Message) error {
	event, err := stream.Decode[model.UserCreatedEvent](msg)
	if err != nil {
		return err
	}

	slog.Info("user registered",
		slog.String("message_id", msg.ID),
		slog.Int("user_code", event.Code),
		slog.String("user_id", event.UserID.String()),
	)

	return nil
}

// GameRouter routes the game lifecycle stream. The catalog service owns the
// whole stream, so messages without an event_type are game events.
func (h *MessageHandler) GameRouter() *stream.Router {
	return stream.NewRouter().
		Register(string(model.EventActionGameChanged), h.HandleGameEvent).
		Fallback(h.HandleGameEvent)
}

// PurchaseRouter routes the purchase completion stream.
func (h *MessageHandler) PurchaseRouter() *stream.Router {
	return stream.NewRouter().
		Register(string(model.EventActionPurchaseCompleted), h.HandlePurchaseCompleted).
		Fallback(h.HandlePurchaseCompleted)
}

// PurchaseHistoryRouter routes the enriched purchase stream fed by the outbox.
func (h *MessageHandler) PurchaseHistoryRouter() *stream.Router {
	return stream.NewRouter().
		Register(string(model.EventActionPurchaseHistory), h.HandlePurchaseHistory)
}

// UserRouter routes the user stream fed by the outbox.
func (h *MessageHandler) UserRouter() *stream.Router {
	return stream.NewRouter().
		Register(string(model.EventActionUserCreated), h.HandleUserCreated)
}
