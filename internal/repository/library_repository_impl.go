package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jnst/cloudgames-library/internal/db"
	"github.com/jnst/cloudgames-library/internal/model"
)

// LibraryRepositoryImpl implements LibraryRepository using PostgreSQL.
type LibraryRepositoryImpl struct {
	db *db.Queries
}

// NewLibraryRepositoryImpl creates a new LibraryRepository implementation.
func NewLibraryRepositoryImpl(pool *pgxpool.Pool) LibraryRepository {
	return &LibraryRepositoryImpl{db: db.New(pool)}
}

// Get retrieves the entry granted by a purchase for a user and game.
func (r *LibraryRepositoryImpl) Get(ctx context.Context, key model.LibraryKey) (*model.Library, error) {
	dbEntry, err := queries(ctx, r.db).GetLibraryEntry(ctx, &db.GetLibraryEntryParams{
		PurchaseID: key.PurchaseID,
		GameID:     key.GameID,
		UserID:     key.UserID,
	})
	if err != nil {
		return nil, translateError(err)
	}

	return toLibrary(dbEntry), nil
}

// Create inserts a new library entry. A repeated (user, game, purchase)
// triple fails with model.ErrDuplicate.
func (r *LibraryRepositoryImpl) Create(ctx context.Context, params *model.CreateLibraryParams) (*model.Library, error) {
	dbEntry, err := queries(ctx, r.db).CreateLibraryEntry(ctx, &db.CreateLibraryEntryParams{
		UserID:     params.UserID,
		GameID:     params.GameID,
		PurchaseID: params.PurchaseID,
		AcquiredAt: timestamptz(params.AcquiredAt),
	})
	if err != nil {
		return nil, translateError(err)
	}

	return toLibrary(dbEntry), nil
}

// ListByUserCode lists a user's library joined with game data.
// An unknown user yields an empty list.
func (r *LibraryRepositoryImpl) ListByUserCode(ctx context.Context, userCode int) ([]*model.LibraryItem, error) {
	rows, err := queries(ctx, r.db).ListLibraryByUserCode(ctx, int32(userCode))
	if err != nil {
		return nil, translateError(err)
	}

	items := make([]*model.LibraryItem, len(rows))
	for i, row := range rows {
		items[i] = &model.LibraryItem{
			ID:         row.ID,
			PurchaseID: row.PurchaseID,
			AcquiredAt: row.AcquiredAt.Time,
			Game: model.Game{
				ID:        row.GameID,
				Code:      int(row.GameCode),
				Title:     row.GameTitle,
				Category:  model.GameCategory(row.GameCategory),
				UpdatedAt: row.GameUpdatedAt.Time,
				RemovedAt: timePtr(row.GameRemovedAt),
				IsActive:  row.GameIsActive,
			},
		}
	}

	return items, nil
}
