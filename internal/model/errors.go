package model

import "errors"

var (
	// ErrInvalidName is returned when user name is empty or invalid.
	ErrInvalidName = errors.New("name is required")
	// ErrInvalidEmail is returned when user email is empty or invalid.
	ErrInvalidEmail = errors.New("email is required")
	// ErrInvalidCode is returned when a business code is missing or out of range.
	ErrInvalidCode = errors.New("code must be between 1 and 2147483647")
	// ErrInvalidCategory is returned for an unknown game category.
	ErrInvalidCategory = errors.New("unknown game category")
	// ErrInvalidTimestamp is returned when an event carries no timestamp.
	ErrInvalidTimestamp = errors.New("timestamp is required")
	// ErrInvalidPurchase is returned when a purchase id is missing.
	ErrInvalidPurchase = errors.New("purchase id is required")

	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by repositories when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("duplicate")
	// ErrUserNotFound is returned when user is not found in database.
	ErrUserNotFound = errors.New("user not found")

	// ErrGameNotProjected is returned when a purchase references a game the catalog has not seen yet.
	ErrGameNotProjected = errors.New("game not projected yet")
	// ErrUserNotProjected is returned when a purchase references an unknown user.
	ErrUserNotProjected = errors.New("user not projected yet")
)
