package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user entity.
type User struct {
	ID        uuid.UUID `json:"id"`
	Code      int       `json:"code"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserParams represents parameters for creating a new user.
type CreateUserParams struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate validates the create user parameters.
func (p *CreateUserParams) Validate() error {
	if !ValidCode(p.Code) {
		return ErrInvalidCode
	}

	if p.Name == "" {
		return ErrInvalidName
	}

	if p.Email == "" {
		return ErrInvalidEmail
	}

	return nil
}

// UserCreatedEvent represents the payload for user creation events.
type UserCreatedEvent struct {
	UserID uuid.UUID   `json:"user_id"`
	Code   int         `json:"code"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Action EventAction `json:"action"`
}
