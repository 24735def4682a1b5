package model

// EventAction represents the type of event action.
type EventAction string

const (
	// EventActionUserCreated represents the user creation event action.
	EventActionUserCreated EventAction = "user_created"
	// EventActionGameChanged represents a game lifecycle change (create, update or removal).
	EventActionGameChanged EventAction = "game_changed"
	// EventActionPurchaseCompleted represents a finished purchase from the payments service.
	EventActionPurchaseCompleted EventAction = "purchase_completed"
	// EventActionPurchaseHistory represents an enriched purchase waiting to be indexed.
	EventActionPurchaseHistory EventAction = "purchase_history"
)
