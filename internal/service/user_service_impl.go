package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/repository"
)

// UserServiceImpl implements UserService for user management business logic.
type UserServiceImpl struct {
	userRepo       repository.UserRepository
	outboxRepo     repository.OutboxRepository
	transactionMgr repository.TransactionManager
}

// NewUserServiceImpl creates a new UserService implementation.
func NewUserServiceImpl(
	userRepo repository.UserRepository,
	outboxRepo repository.OutboxRepository,
	transactionMgr repository.TransactionManager,
) UserService {
	return &UserServiceImpl{
		userRepo:       userRepo,
		outboxRepo:     outboxRepo,
		transactionMgr: transactionMgr,
	}
}

// CreateUser creates a new user and records a user_created outbox event.
func (s *UserServiceImpl) CreateUser(ctx context.Context, params *model.CreateUserParams) (*model.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var createdUser *model.User

	err := s.transactionMgr.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.Create(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		createdUser = user

		return s.createOutboxEvent(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return createdUser, nil
}

// GetUser retrieves a user by code.
func (s *UserServiceImpl) GetUser(ctx context.Context, code int) (*model.User, error) {
	user, err := s.userRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (s *UserServiceImpl) createOutboxEvent(ctx context.Context, user *model.User) error {
	params, err := model.NewOutboxEventParams(
		fmt.Sprintf("user_%d", user.Code),
		model.EventActionUserCreated,
		model.UserCreatedEvent{
			UserID: user.ID,
			Code:   user.Code,
			Name:   user.Name,
			Email:  user.Email,
			Action: model.EventActionUserCreated,
		},
	)
	if err != nil {
		return err
	}

	if _, err := s.outboxRepo.CreateEvent(ctx, params); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	return nil
}
