package service

// Outcome describes what a projector did with an event.
type Outcome string

const (
	// OutcomeCreated means a new row was written.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means an existing row was overwritten.
	OutcomeUpdated Outcome = "updated"
	// OutcomeStale means the event is older than the stored state.
	OutcomeStale Outcome = "ignored_stale"
	// OutcomeTombstone means a removal arrived for an entity never projected.
	OutcomeTombstone Outcome = "ignored_tombstone"
	// OutcomeDuplicate means the event was already applied.
	OutcomeDuplicate Outcome = "ignored_duplicate"
	// OutcomeUnsuccessful means the purchase did not succeed and grants nothing.
	OutcomeUnsuccessful Outcome = "ignored_unsuccessful"
)

// Changed reports whether the outcome wrote state.
func (o Outcome) Changed() bool {
	return o == OutcomeCreated || o == OutcomeUpdated
}
