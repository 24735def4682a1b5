// Package model defines domain models and data structures.
package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// GameCategory classifies a game in the catalog.
type GameCategory int

// Known game categories. The numeric values are part of the wire format.
const (
	GameCategoryAction GameCategory = iota + 1
	GameCategoryAdventure
	GameCategoryRPG
	GameCategoryStrategy
	GameCategorySports
	GameCategoryRacing
	GameCategoryCasual
	GameCategoryPuzzle
	GameCategorySimulation
	GameCategoryShooter
)

var gameCategoryNames = map[GameCategory]string{
	GameCategoryAction:     "action",
	GameCategoryAdventure:  "adventure",
	GameCategoryRPG:        "rpg",
	GameCategoryStrategy:   "strategy",
	GameCategorySports:     "sports",
	GameCategoryRacing:     "racing",
	GameCategoryCasual:     "casual",
	GameCategoryPuzzle:     "puzzle",
	GameCategorySimulation: "simulation",
	GameCategoryShooter:    "shooter",
}

// Valid reports whether c is a known category.
func (c GameCategory) Valid() bool {
	_, ok := gameCategoryNames[c]
	return ok
}

func (c GameCategory) String() string {
	if name, ok := gameCategoryNames[c]; ok {
		return name
	}

	return "unknown(" + strconv.Itoa(int(c)) + ")"
}

// ParseGameCategory parses the numeric key used by aggregations.
func ParseGameCategory(key string) (GameCategory, error) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, ErrInvalidCategory
	}

	c := GameCategory(n)
	if !c.Valid() {
		return 0, ErrInvalidCategory
	}

	return c, nil
}

// Game represents a catalog entry projected from game lifecycle events.
type Game struct {
	ID        uuid.UUID    `json:"id"`
	Code      int          `json:"code"`
	Title     string       `json:"title"`
	Category  GameCategory `json:"category"`
	UpdatedAt time.Time    `json:"updated_at"`
	RemovedAt *time.Time   `json:"removed_at,omitempty"`
	IsActive  bool         `json:"is_active"`
}

// ApplyEvent overwrites the mutable fields of g with the event state.
func (g *Game) ApplyEvent(event *GameEvent) {
	g.Title = event.Title
	g.Category = event.Category
	g.UpdatedAt = event.UpdatedAt
	g.RemovedAt = event.RemovedAt
	g.IsActive = event.RemovedAt == nil
}

// NewGameFromEvent builds a catalog entry for a code seen for the first time.
func NewGameFromEvent(event *GameEvent) *Game {
	g := &Game{Code: event.Code}
	g.ApplyEvent(event)

	return g
}

// GameEvent is the payload of a game lifecycle event.
type GameEvent struct {
	Code      int          `json:"code"`
	Title     string       `json:"title"`
	Category  GameCategory `json:"category"`
	UpdatedAt time.Time    `json:"updated_at"`
	RemovedAt *time.Time   `json:"removed_at,omitempty"`
}

// Validate validates the game event payload.
func (e *GameEvent) Validate() error {
	if !ValidCode(e.Code) {
		return ErrInvalidCode
	}

	if e.UpdatedAt.IsZero() {
		return ErrInvalidTimestamp
	}

	if !e.Category.Valid() {
		return ErrInvalidCategory
	}

	return nil
}

// IsRemoval reports whether the event is a tombstone.
func (e *GameEvent) IsRemoval() bool {
	return e.RemovedAt != nil
}

// Normalize truncates timestamps to the store resolution so a redelivered
// event compares equal to the state it produced.
func (e *GameEvent) Normalize() {
	e.UpdatedAt = e.UpdatedAt.UTC().Truncate(time.Microsecond)
	if e.RemovedAt != nil {
		removed := e.RemovedAt.UTC().Truncate(time.Microsecond)
		e.RemovedAt = &removed
	}
}
