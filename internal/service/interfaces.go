// Package service provides business logic layer implementations.
package service

import (
	"context"

	"github.com/jnst/cloudgames-library/internal/model"
)

// UserService defines business logic methods for user management.
type UserService interface {
	CreateUser(ctx context.Context, params *model.CreateUserParams) (*model.User, error)
	GetUser(ctx context.Context, code int) (*model.User, error)
}

// OutboxService defines business logic methods for outbox event processing.
type OutboxService interface {
	ProcessUnpublishedEvents(ctx context.Context, limit int) error
}

// GameProjector applies game lifecycle events to the local catalog.
type GameProjector interface {
	Apply(ctx context.Context, event *model.GameEvent) (Outcome, error)
}

// PurchaseProjector applies completed purchases to user libraries.
type PurchaseProjector interface {
	Apply(ctx context.Context, event *model.PurchaseCompletedEvent) (Outcome, error)
}

// PurchaseHistoryIndexer writes completed purchases to the search index.
// Failures are logged and never returned.
type PurchaseHistoryIndexer interface {
	Index(ctx context.Context, purchase *model.EnrichedPurchase)
}

// RecommendationEngine suggests games a user does not own yet.
type RecommendationEngine interface {
	Suggest(ctx context.Context, userCode, maxSuggestions int) []model.GameSuggestion
}

// LibraryService defines read methods over user libraries.
type LibraryService interface {
	GetUserLibrary(ctx context.Context, userCode int) ([]*model.LibraryItem, error)
}
