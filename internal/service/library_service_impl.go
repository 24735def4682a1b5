package service

import (
	"context"
	"errors"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/repository"
)

// LibraryServiceImpl implements LibraryService.
type LibraryServiceImpl struct {
	userRepo    repository.UserRepository
	libraryRepo repository.LibraryRepository
}

// NewLibraryServiceImpl creates a new LibraryService implementation.
func NewLibraryServiceImpl(userRepo repository.UserRepository, libraryRepo repository.LibraryRepository) LibraryService {
	return &LibraryServiceImpl{
		userRepo:    userRepo,
		libraryRepo: libraryRepo,
	}
}

// GetUserLibrary lists the games owned by a user.
func (s *LibraryServiceImpl) GetUserLibrary(ctx context.Context, userCode int) ([]*model.LibraryItem, error) {
	if _, err := s.userRepo.GetByCode(ctx, userCode); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrUserNotFound
		}

		return nil, err
	}

	return s.libraryRepo.ListByUserCode(ctx, userCode)
}
