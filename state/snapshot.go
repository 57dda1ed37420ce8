package state

import (
	"errors"

	"github.com/jonesrussell/searchkit/search"
)

// Snapshot is a serializable copy of the full store state, used to hand
// a session across a process boundary (for example server to client).
// The event history is intentionally not carried. There is no version
// field; schema evolution is the integrator's responsibility.
type Snapshot struct {
	QueryText    string                              `json:"query_text"`
	Results      []search.Result                     `json:"results,omitempty"`
	Loading      bool                                `json:"loading"`
	Error        string                              `json:"error,omitempty"`
	Total        int64                               `json:"total"`
	Filters      []search.FilterSpec                 `json:"filters,omitempty"`
	Sort         []search.SortSpec                   `json:"sort,omitempty"`
	Page         int                                 `json:"page"`
	PageSize     int                                 `json:"page_size"`
	Aggregations map[string]search.AggregationResult `json:"aggregations,omitempty"`
	Suggestions  []search.Suggestion                 `json:"suggestions,omitempty"`
}

// Snapshot captures the current state. Filters keep insertion order so
// a restore reproduces the same composed query.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		QueryText: s.queryText,
		Results:   append([]search.Result(nil), s.results...),
		Loading:   s.loading,
		Total:     s.total,
		Filters:   append([]search.FilterSpec(nil), s.filters...),
		Sort:      append([]search.SortSpec(nil), s.sort...),
		Page:      s.page,
		PageSize:  s.pageSize,
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	if s.aggregations != nil {
		snap.Aggregations = make(map[string]search.AggregationResult, len(s.aggregations))
		for k, v := range s.aggregations {
			snap.Aggregations[k] = v
		}
	}
	if s.suggestions != nil {
		snap.Suggestions = append([]search.Suggestion(nil), s.suggestions...)
	}
	return snap
}

// Restore replaces every state field from the snapshot. The event
// history is not replayed and no events are recorded.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queryText = snap.QueryText
	s.results = append([]search.Result(nil), snap.Results...)
	s.loading = snap.Loading
	s.err = nil
	if snap.Error != "" {
		s.err = errors.New(snap.Error)
	}
	s.total = snap.Total
	s.filters = append([]search.FilterSpec(nil), snap.Filters...)
	s.sort = append([]search.SortSpec(nil), snap.Sort...)
	s.page = snap.Page
	if s.page < 1 {
		s.page = 1
	}
	s.pageSize = snap.PageSize
	if s.pageSize < 1 {
		s.pageSize = s.initialSize
	}
	s.aggregations = nil
	if snap.Aggregations != nil {
		s.aggregations = make(map[string]search.AggregationResult, len(snap.Aggregations))
		for k, v := range snap.Aggregations {
			s.aggregations[k] = v
		}
	}
	s.suggestions = append([]search.Suggestion(nil), snap.Suggestions...)
}
