package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrichedPurchase is a completed purchase joined with user and game data.
type EnrichedPurchase struct {
	PurchaseID  uuid.UUID    `json:"purchase_id"`
	UserCode    int          `json:"user_code"`
	UserID      uuid.UUID    `json:"user_id"`
	GameCode    int          `json:"game_code"`
	GameID      uuid.UUID    `json:"game_id"`
	GameTitle   string       `json:"game_title"`
	ProcessedAt time.Time    `json:"processed_at"`
	Category    GameCategory `json:"category"`
}

// Validate validates the enriched purchase payload.
func (p *EnrichedPurchase) Validate() error {
	if p.PurchaseID == uuid.Nil {
		return ErrInvalidPurchase
	}

	if !ValidCode(p.UserCode) || !ValidCode(p.GameCode) {
		return ErrInvalidCode
	}

	return nil
}

// NewEnrichedPurchase joins a purchase with the projected user and game.
func NewEnrichedPurchase(event *PurchaseCompletedEvent, user *User, game *Game) *EnrichedPurchase {
	return &EnrichedPurchase{
		PurchaseID:  event.PurchaseID,
		UserCode:    user.Code,
		UserID:      user.ID,
		GameCode:    game.Code,
		GameID:      game.ID,
		GameTitle:   game.Title,
		ProcessedAt: event.ProcessedAt,
		Category:    game.Category,
	}
}

// PurchaseHistoryDocument is the search index record used as recommendation input.
type PurchaseHistoryDocument struct {
	PurchaseID  uuid.UUID    `json:"purchase_id"`
	UserCode    int          `json:"user_code"`
	UserID      uuid.UUID    `json:"user_id"`
	GameCode    int          `json:"game_code"`
	GameID      uuid.UUID    `json:"game_id"`
	ProcessedAt time.Time    `json:"processed_at"`
	GameTitle   string       `json:"game_title"`
	Category    GameCategory `json:"category"`
}

// GameSuggestion is a recommended game.
type GameSuggestion struct {
	GameID   uuid.UUID    `json:"game_id"`
	GameCode int          `json:"game_code"`
	Title    string       `json:"title"`
	Category GameCategory `json:"category"`
}

// NewGameSuggestion maps a catalog entry to a suggestion.
func NewGameSuggestion(g *Game) GameSuggestion {
	return GameSuggestion{
		GameID:   g.ID,
		GameCode: g.Code,
		Title:    g.Title,
		Category: g.Category,
	}
}
