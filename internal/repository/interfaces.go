// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"

	"github.com/jnst/cloudgames-library/internal/model"
)

// GameRepository defines methods for game catalog data access.
// Lookups return model.ErrNotFound when no game matches.
type GameRepository interface {
	GetByCode(ctx context.Context, code int) (*model.Game, error)
	Create(ctx context.Context, game *model.Game) (*model.Game, error)
	Update(ctx context.Context, game *model.Game) (*model.Game, error)
	ListActiveByCategory(
		ctx context.Context, category model.GameCategory, excludedCodes []int, limit int,
	) ([]*model.Game, error)
}

// UserRepository defines methods for user data access.
type UserRepository interface {
	Create(ctx context.Context, params *model.CreateUserParams) (*model.User, error)
	GetByCode(ctx context.Context, code int) (*model.User, error)
}

// LibraryRepository defines methods for ownership data access.
type LibraryRepository interface {
	Get(ctx context.Context, key model.LibraryKey) (*model.Library, error)
	Create(ctx context.Context, params *model.CreateLibraryParams) (*model.Library, error)
	ListByUserCode(ctx context.Context, userCode int) ([]*model.LibraryItem, error)
}

// OutboxRepository defines methods for outbox event data access.
type OutboxRepository interface {
	CreateEvent(ctx context.Context, params *model.CreateOutboxEventParams) (*model.OutboxEvent, error)
	GetUnpublishedEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkAsPublished(ctx context.Context, id int64) error
}

// TransactionManager defines methods for database transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
