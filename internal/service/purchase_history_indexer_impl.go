package service

import (
	"context"
	"log/slog"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/search"
)

// PurchaseHistoryIndexerImpl implements PurchaseHistoryIndexer.
type PurchaseHistoryIndexerImpl struct {
	index search.Index
}

// NewPurchaseHistoryIndexerImpl creates a new PurchaseHistoryIndexer implementation.
func NewPurchaseHistoryIndexerImpl(index search.Index) PurchaseHistoryIndexer {
	return &PurchaseHistoryIndexerImpl{index: index}
}

// Index writes the purchase as a history document. A lost document only
// degrades recommendations, so errors are logged and swallowed.
func (ix *PurchaseHistoryIndexerImpl) Index(ctx context.Context, purchase *model.EnrichedPurchase) {
	doc := &model.PurchaseHistoryDocument{
		PurchaseID:  purchase.PurchaseID,
		UserCode:    purchase.UserCode,
		UserID:      purchase.UserID,
		GameCode:    purchase.GameCode,
		GameID:      purchase.GameID,
		ProcessedAt: purchase.ProcessedAt,
		GameTitle:   purchase.GameTitle,
		Category:    purchase.Category,
	}

	if err := ix.index.IndexDocument(ctx, doc); err != nil {
		slog.Error("failed to index purchase history",
			slog.String("purchase_id", doc.PurchaseID.String()),
			slog.String("error", err.Error()),
		)

		return
	}

	slog.Debug("indexed purchase history",
		slog.String("purchase_id", doc.PurchaseID.String()),
		slog.Int("user_code", doc.UserCode),
		slog.Int("game_code", doc.GameCode),
	)
}
