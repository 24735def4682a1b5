package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jnst/cloudgames-library/internal/db"
	"github.com/jnst/cloudgames-library/internal/model"
)

// GameRepositoryImpl implements GameRepository using PostgreSQL.
type GameRepositoryImpl struct {
	db *db.Queries
}

// NewGameRepositoryImpl creates a new GameRepository implementation.
func NewGameRepositoryImpl(pool *pgxpool.Pool) GameRepository {
	return &GameRepositoryImpl{db: db.New(pool)}
}

// GetByCode retrieves a game by its business code.
func (r *GameRepositoryImpl) GetByCode(ctx context.Context, code int) (*model.Game, error) {
	dbGame, err := queries(ctx, r.db).GetGameByCode(ctx, int32(code))
	if err != nil {
		return nil, translateError(err)
	}

	return toGame(dbGame), nil
}

// Create inserts a new game.
func (r *GameRepositoryImpl) Create(ctx context.Context, game *model.Game) (*model.Game, error) {
	dbGame, err := queries(ctx, r.db).CreateGame(ctx, &db.CreateGameParams{
		Code:      int32(game.Code),
		Title:     game.Title,
		Category:  int16(game.Category),
		UpdatedAt: timestamptz(game.UpdatedAt),
		RemovedAt: nullableTimestamptz(game.RemovedAt),
		IsActive:  game.IsActive,
	})
	if err != nil {
		return nil, translateError(err)
	}

	return toGame(dbGame), nil
}

// Update overwrites the mutable fields of an existing game.
func (r *GameRepositoryImpl) Update(ctx context.Context, game *model.Game) (*model.Game, error) {
	dbGame, err := queries(ctx, r.db).UpdateGame(ctx, &db.UpdateGameParams{
		ID:        game.ID,
		Title:     game.Title,
		Category:  int16(game.Category),
		UpdatedAt: timestamptz(game.UpdatedAt),
		RemovedAt: nullableTimestamptz(game.RemovedAt),
		IsActive:  game.IsActive,
	})
	if err != nil {
		return nil, translateError(err)
	}

	return toGame(dbGame), nil
}

// ListActiveByCategory lists active games of a category ordered by code,
// skipping excludedCodes.
func (r *GameRepositoryImpl) ListActiveByCategory(
	ctx context.Context, category model.GameCategory, excludedCodes []int, limit int,
) ([]*model.Game, error) {
	excluded := make([]int32, len(excludedCodes))
	for i, code := range excludedCodes {
		excluded[i] = int32(code)
	}

	dbGames, err := queries(ctx, r.db).ListActiveGamesByCategory(ctx, &db.ListActiveGamesByCategoryParams{
		Category:      int16(category),
		ExcludedCodes: excluded,
		RowLimit:      int32(limit),
	})
	if err != nil {
		return nil, translateError(err)
	}

	games := make([]*model.Game, len(dbGames))
	for i, dbGame := range dbGames {
		games[i] = toGame(dbGame)
	}

	return games, nil
}
