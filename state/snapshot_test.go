package state_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jonesrussell/searchkit/search"
	"github.com/jonesrussell/searchkit/state"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Helper()

	s := state.New(state.Options{PageSize: 10})
	s.SetQuery("rick")
	s.AddFilter(search.FilterSpec{Field: "status", Kind: search.FilterTerm, Value: "alive"})
	s.AddFilter(search.FilterSpec{Field: "species", Kind: search.FilterTerms, Value: []string{"human", "alien"}, Operator: search.OperatorOr})
	s.SetSort([]search.SortSpec{{Field: "name", Order: search.SortAsc}})
	s.SetPage(2)
	s.SetResults([]search.Result{{ID: "1", Score: 1.5}}, 27)
	s.SetSuggestions([]search.Suggestion{{Text: "rick sanchez"}})

	snap := s.Snapshot()

	restored := state.New(state.Options{})
	restored.Restore(snap)

	if restored.QueryText() != "rick" {
		t.Errorf("QueryText() = %q, want rick", restored.QueryText())
	}
	if restored.CurrentPage() != 2 || restored.PageSize() != 10 {
		t.Errorf("pagination = %d/%d, want 2/10", restored.CurrentPage(), restored.PageSize())
	}
	if restored.Total() != 27 {
		t.Errorf("Total() = %d, want 27", restored.Total())
	}
	filters := restored.Filters()
	if len(filters) != 2 || filters[0].Field != "status" || filters[1].Field != "species" {
		t.Errorf("filters = %+v, want status then species", filters)
	}
	if len(restored.Suggestions()) != 1 {
		t.Errorf("len(suggestions) = %d, want 1", len(restored.Suggestions()))
	}
	// The composed query must survive the round trip.
	if restored.Query().Signature() != s.Query().Signature() {
		t.Error("restored query signature differs from the original")
	}
	// History is not carried.
	if len(restored.Events()) != 0 {
		t.Errorf("restored history has %d events, want 0", len(restored.Events()))
	}
}

func TestSnapshot_ErrorAsString(t *testing.T) {
	t.Helper()

	s := state.New(state.Options{})
	s.SetError(errors.New("backend down"))

	snap := s.Snapshot()
	if snap.Error != "backend down" {
		t.Fatalf("snap.Error = %q, want backend down", snap.Error)
	}

	restored := state.New(state.Options{})
	restored.Restore(snap)
	if restored.Err() == nil || restored.Err().Error() != "backend down" {
		t.Errorf("restored Err() = %v, want backend down", restored.Err())
	}
}

func TestSnapshot_SerializesToJSON(t *testing.T) {
	t.Helper()

	s := state.New(state.Options{})
	s.SetQuery("rick")

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if snap.QueryText != "rick" {
		t.Errorf("QueryText = %q, want rick", snap.QueryText)
	}
}

func TestRestore_ClampsInvalidPagination(t *testing.T) {
	t.Helper()

	s := state.New(state.Options{PageSize: 25})
	s.Restore(state.Snapshot{Page: 0, PageSize: -1})

	if s.CurrentPage() != 1 {
		t.Errorf("CurrentPage() = %d, want 1", s.CurrentPage())
	}
	if s.PageSize() != 25 {
		t.Errorf("PageSize() = %d, want the initial 25", s.PageSize())
	}
}
