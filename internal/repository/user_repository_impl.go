package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jnst/cloudgames-library/internal/db"
	"github.com/jnst/cloudgames-library/internal/model"
)

// UserRepositoryImpl implements UserRepository using PostgreSQL.
type UserRepositoryImpl struct {
	db *db.Queries
}

// NewUserRepositoryImpl creates a new UserRepository implementation.
func NewUserRepositoryImpl(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{db: db.New(pool)}
}

// Create creates a new user.
func (r *UserRepositoryImpl) Create(ctx context.Context, params *model.CreateUserParams) (*model.User, error) {
	dbUser, err := queries(ctx, r.db).CreateUser(ctx, &db.CreateUserParams{
		Code:  int32(params.Code),
		Name:  params.Name,
		Email: params.Email,
	})
	if err != nil {
		return nil, translateError(err)
	}

	return toUser(dbUser), nil
}

// GetByCode retrieves a user by business code.
func (r *UserRepositoryImpl) GetByCode(ctx context.Context, code int) (*model.User, error) {
	dbUser, err := queries(ctx, r.db).GetUserByCode(ctx, int32(code))
	if err != nil {
		return nil, translateError(err)
	}

	return toUser(dbUser), nil
}
