package state

import "github.com/jonesrussell/searchkit/search"

// History limit sentinels for Options.HistoryLimit.
const (
	// DefaultHistoryLimit bounds the event history when no limit is given.
	DefaultHistoryLimit = 100
	// HistoryDisabled records no events at all.
	HistoryDisabled = 0
	// HistoryUnbounded keeps every event for the session lifetime.
	HistoryUnbounded = -1
)

// eventHistory is a bounded, insertion-ordered event buffer. Trimming
// only ever drops from the oldest end.
type eventHistory struct {
	limit  int
	events []search.Event
}

func newEventHistory(limit int) *eventHistory {
	return &eventHistory{limit: limit}
}

func (h *eventHistory) append(ev search.Event) {
	if h.limit == HistoryDisabled {
		return
	}
	h.events = append(h.events, ev)
	h.trim()
}

func (h *eventHistory) trim() {
	if h.limit > 0 && len(h.events) > h.limit {
		trimmed := make([]search.Event, h.limit)
		copy(trimmed, h.events[len(h.events)-h.limit:])
		h.events = trimmed
	}
}

func (h *eventHistory) setLimit(limit int) {
	h.limit = limit
	if limit == HistoryDisabled {
		h.events = nil
		return
	}
	h.trim()
}

func (h *eventHistory) list() []search.Event {
	out := make([]search.Event, len(h.events))
	copy(out, h.events)
	return out
}

func (h *eventHistory) reset() {
	h.events = nil
}
