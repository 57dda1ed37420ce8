package telemetry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jonesrussell/searchkit/search"
	"github.com/jonesrussell/searchkit/telemetry"
)

// recordingClient implements Client, TimingTracker, and ErrorTracker.
type recordingClient struct {
	events  []search.Event
	timings []string
	errs    []error
}

func (c *recordingClient) TrackEvent(ev search.Event, _ string, _ map[string]any) {
	c.events = append(c.events, ev)
}

func (c *recordingClient) TrackTiming(name string, _ time.Duration, _ map[string]any) {
	c.timings = append(c.timings, name)
}

func (c *recordingClient) TrackError(err error, _ string, _ map[string]any) {
	c.errs = append(c.errs, err)
}

// eventOnlyClient implements just Client.
type eventOnlyClient struct {
	events int
}

func (c *eventOnlyClient) TrackEvent(search.Event, string, map[string]any) {
	c.events++
}

// panickyClient always panics.
type panickyClient struct{}

func (panickyClient) TrackEvent(search.Event, string, map[string]any) {
	panic("bad client")
}

func TestDispatcher_FansOut(t *testing.T) {
	t.Helper()

	a := &recordingClient{}
	b := &eventOnlyClient{}
	d := telemetry.NewDispatcher(nil, a, b)

	d.Event(search.NewEvent(search.EventQueryChanged, nil), "session", nil)
	d.Timing("search", 120*time.Millisecond, nil)
	d.Error(errors.New("boom"), "search", nil)

	if len(a.events) != 1 || len(a.timings) != 1 || len(a.errs) != 1 {
		t.Errorf("full client got %d/%d/%d deliveries, want 1/1/1",
			len(a.events), len(a.timings), len(a.errs))
	}
	// Optional interfaces are skipped, not errors.
	if b.events != 1 {
		t.Errorf("event-only client got %d events, want 1", b.events)
	}
}

func TestDispatcher_RecoversClientPanics(t *testing.T) {
	t.Helper()

	healthy := &recordingClient{}
	d := telemetry.NewDispatcher(nil, panickyClient{}, healthy)

	d.Event(search.NewEvent(search.EventQueryChanged, nil), "session", nil)

	if len(healthy.events) != 1 {
		t.Errorf("healthy client got %d events, want 1 despite the panic", len(healthy.events))
	}
}

func TestDispatcher_NilIsSafe(t *testing.T) {
	t.Helper()

	var d *telemetry.Dispatcher
	d.Event(search.NewEvent(search.EventQueryChanged, nil), "session", nil)
	d.Timing("search", time.Millisecond, nil)
	d.Error(errors.New("x"), "search", nil)
}
