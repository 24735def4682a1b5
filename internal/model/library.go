package model

import (
	"time"

	"github.com/google/uuid"
)

// Library is an ownership record: a user owns a game through a purchase.
type Library struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	GameID     uuid.UUID `json:"game_id"`
	PurchaseID uuid.UUID `json:"purchase_id"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// LibraryKey identifies the purchase that granted ownership.
type LibraryKey struct {
	PurchaseID uuid.UUID
	GameID     uuid.UUID
	UserID     uuid.UUID
}

// CreateLibraryParams represents parameters for creating a library entry.
type CreateLibraryParams struct {
	UserID     uuid.UUID
	GameID     uuid.UUID
	PurchaseID uuid.UUID
	AcquiredAt time.Time
}

// LibraryItem is a library entry joined with the owned game.
type LibraryItem struct {
	ID         uuid.UUID `json:"id"`
	PurchaseID uuid.UUID `json:"purchase_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	Game       Game      `json:"game"`
}

// PurchaseCompletedEvent is the payload published by the payments service.
type PurchaseCompletedEvent struct {
	PurchaseID  uuid.UUID `json:"purchase_id"`
	UserCode    int       `json:"user_code"`
	GameCode    int       `json:"game_code"`
	ProcessedAt time.Time `json:"processed_at"`
	Success     bool      `json:"success"`
}

// Validate validates the purchase event payload.
func (e *PurchaseCompletedEvent) Validate() error {
	if e.PurchaseID == uuid.Nil {
		return ErrInvalidPurchase
	}

	if !ValidCode(e.UserCode) || !ValidCode(e.GameCode) {
		return ErrInvalidCode
	}

	if e.ProcessedAt.IsZero() {
		return ErrInvalidTimestamp
	}

	return nil
}
