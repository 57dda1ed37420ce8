// Package telemetry is the fire-and-forget observer side-channel for
// searchkit. Clients receive sanitized copies of session events and
// pipeline timings; a failing client never affects the search pipeline.
package telemetry

import (
	"time"

	"github.com/jonesrussell/searchkit/logger"
	"github.com/jonesrussell/searchkit/search"
)

// Client receives session events. Implementations must be safe for
// concurrent use.
type Client interface {
	TrackEvent(ev search.Event, category string, context map[string]any)
}

// TimingTracker is an optional extension for clients that record
// operation durations.
type TimingTracker interface {
	TrackTiming(name string, d time.Duration, metadata map[string]any)
}

// ErrorTracker is an optional extension for clients that record
// pipeline failures. source is "search" or "suggestions".
type ErrorTracker interface {
	TrackError(err error, source string, context map[string]any)
}

// Dispatcher fans out to zero or more clients. Panics raised by a
// client are recovered and logged; they are never propagated.
type Dispatcher struct {
	log     logger.Logger
	clients []Client
}

// NewDispatcher creates a dispatcher over the given clients. A nil
// logger is replaced with the no-op logger.
func NewDispatcher(log logger.Logger, clients ...Client) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{log: log, clients: clients}
}

// Event delivers an event to every client.
func (d *Dispatcher) Event(ev search.Event, category string, context map[string]any) {
	if d == nil {
		return
	}
	for _, c := range d.clients {
		d.deliver(func() { c.TrackEvent(ev, category, context) })
	}
}

// Timing delivers a duration measurement to clients that track timings.
func (d *Dispatcher) Timing(name string, dur time.Duration, metadata map[string]any) {
	if d == nil {
		return
	}
	for _, c := range d.clients {
		if t, ok := c.(TimingTracker); ok {
			d.deliver(func() { t.TrackTiming(name, dur, metadata) })
		}
	}
}

// Error delivers a pipeline failure to clients that track errors.
func (d *Dispatcher) Error(err error, source string, context map[string]any) {
	if d == nil {
		return
	}
	for _, c := range d.clients {
		if t, ok := c.(ErrorTracker); ok {
			d.deliver(func() { t.TrackError(err, source, context) })
		}
	}
}

func (d *Dispatcher) deliver(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("telemetry client panicked", logger.Any("panic", r))
		}
	}()
	fn()
}
