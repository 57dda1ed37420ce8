package search

import (
	"time"

	"github.com/google/uuid"
)

// EventKind represents the type of search session event.
type EventKind string

const (
	// EventQueryChanged indicates the query text was replaced.
	EventQueryChanged EventKind = "query_changed"
	// EventSearchStarted indicates a search pipeline was dispatched.
	EventSearchStarted EventKind = "search_started"
	// EventSearchCompleted indicates a search pipeline wrote results.
	EventSearchCompleted EventKind = "search_completed"
	// EventSearchFailed indicates a search pipeline ended in an error.
	EventSearchFailed EventKind = "search_failed"
	// EventFilterAdded indicates a filter was added or replaced.
	EventFilterAdded EventKind = "filter_added"
	// EventFilterRemoved indicates a filter was removed.
	EventFilterRemoved EventKind = "filter_removed"
	// EventFilterCleared indicates all filters were removed.
	EventFilterCleared EventKind = "filter_cleared"
	// EventSortChanged indicates the sort criteria were replaced.
	EventSortChanged EventKind = "sort_changed"
	// EventPageChanged indicates the pagination window moved.
	EventPageChanged EventKind = "page_changed"
	// EventSuggestionsRequested indicates a suggestion pipeline was dispatched.
	EventSuggestionsRequested EventKind = "suggestions_requested"
	// EventSuggestionsReceived indicates suggestions were written.
	EventSuggestionsReceived EventKind = "suggestions_received"
	// EventSuggestionsFailed indicates a suggestion pipeline failed.
	EventSuggestionsFailed EventKind = "suggestions_failed"
	// EventSuggestionSelected indicates the UI accepted a suggestion.
	EventSuggestionSelected EventKind = "suggestion_selected"
	// EventResultClicked indicates the UI opened a result.
	EventResultClicked EventKind = "result_clicked"
)

// Event is the envelope for all search session events. Events are
// appended to the state container's bounded history and fanned out to
// subscribers and telemetry clients.
type Event struct {
	ID        uuid.UUID `json:"event_id"`
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent creates an Event with a fresh id and the current time.
func NewEvent(kind EventKind, payload any) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
