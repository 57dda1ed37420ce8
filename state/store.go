// Package state implements the searchkit state container: the single
// source of truth for query text, filters, sort, pagination, results,
// loading/error flags, aggregations, suggestions, and the session event
// history. All mutations are synchronous; each one updates internal
// state and records at most one event. Networking lives elsewhere.
package state

import (
	"strings"
	"sync"

	"github.com/jonesrussell/searchkit/logger"
	"github.com/jonesrussell/searchkit/search"
)

// DefaultPageSize is used when Options.PageSize is not set.
const DefaultPageSize = 20

// Options configures a Store.
type Options struct {
	// PageSize is the initial page size. Defaults to DefaultPageSize.
	PageSize int
	// HistoryLimit bounds the event history. Nil means
	// DefaultHistoryLimit; HistoryDisabled and HistoryUnbounded are
	// accepted values.
	HistoryLimit *int
	// Logger is used for internal diagnostics only.
	Logger logger.Logger
}

// Store holds all search session state behind controlled mutation
// methods. A Store supports a single logical writer; read methods may
// be called concurrently.
type Store struct {
	mu  sync.RWMutex
	log logger.Logger

	queryText string
	// insertion-ordered, unique by Field
	filters      []search.FilterSpec
	sort         []search.SortSpec
	page         int
	pageSize     int
	initialSize  int
	total        int64
	results      []search.Result
	loading      bool
	err          error
	aggregations map[string]search.AggregationResult
	suggestions  []search.Suggestion

	history   *eventHistory
	subs      []subscriber
	nextSubID int
}

type subscriber struct {
	id int
	fn func(search.Event)
}

// New creates a Store with the given options.
func New(opts Options) *Store {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	limit := DefaultHistoryLimit
	if opts.HistoryLimit != nil {
		limit = *opts.HistoryLimit
	}
	return &Store{
		log:         opts.Logger,
		page:        1,
		pageSize:    opts.PageSize,
		initialSize: opts.PageSize,
		history:     newEventHistory(limit),
	}
}

// Subscribe registers a callback invoked synchronously for every
// recorded event, in subscription order. The returned function removes
// the subscription.
func (s *Store) Subscribe(fn func(search.Event)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// record appends the event to history and notifies subscribers after
// releasing the lock, so handlers may call back into the store.
func (s *Store) record(ev search.Event) {
	s.mu.Lock()
	s.history.append(ev)
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// RecordEvent appends a lifecycle event without mutating search state.
// The coordinator uses this for search/suggestion pipeline events; UI
// glue uses it for suggestion_selected and result_clicked.
func (s *Store) RecordEvent(kind search.EventKind, payload any) {
	s.record(search.NewEvent(kind, payload))
}

// SetQuery replaces the query text and resets the page to 1.
func (s *Store) SetQuery(text string) {
	s.mu.Lock()
	s.queryText = text
	s.page = 1
	s.mu.Unlock()
	s.record(search.NewEvent(search.EventQueryChanged, map[string]any{"text": text}))
}

// AddFilter adds a filter, replacing any existing filter for the same
// field, and resets the page to 1.
func (s *Store) AddFilter(f search.FilterSpec) {
	s.mu.Lock()
	replaced := false
	for i := range s.filters {
		if s.filters[i].Field == f.Field {
			s.filters[i] = f
			replaced = true
			break
		}
	}
	if !replaced {
		s.filters = append(s.filters, f)
	}
	s.page = 1
	s.mu.Unlock()
	s.record(search.NewEvent(search.EventFilterAdded, f))
}

// RemoveFilter removes the filter for the given field, if any, and
// resets the page to 1. Unknown fields are a no-op.
func (s *Store) RemoveFilter(field string) {
	s.mu.Lock()
	removed := false
	for i := range s.filters {
		if s.filters[i].Field == field {
			s.filters = append(s.filters[:i], s.filters[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.page = 1
	}
	s.mu.Unlock()
	if removed {
		s.record(search.NewEvent(search.EventFilterRemoved, map[string]any{"field": field}))
	}
}

// ClearFilters removes all filters and resets the page to 1.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	s.filters = nil
	s.page = 1
	s.mu.Unlock()
	s.record(search.NewEvent(search.EventFilterCleared, nil))
}

// SetSort replaces the sort criteria and resets the page to 1.
func (s *Store) SetSort(specs []search.SortSpec) {
	s.mu.Lock()
	s.sort = append([]search.SortSpec(nil), specs...)
	s.page = 1
	s.mu.Unlock()
	s.record(search.NewEvent(search.EventSortChanged, specs))
}

// SetPage moves to the given page. The store does not clamp: page
// validation is the caller's responsibility.
func (s *Store) SetPage(page int) {
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	s.record(search.NewEvent(search.EventPageChanged, map[string]any{"page": page}))
}

// SetPagination sets page and page size together.
func (s *Store) SetPagination(page, pageSize int) {
	s.mu.Lock()
	s.page = page
	s.pageSize = pageSize
	s.mu.Unlock()
	s.record(search.NewEvent(search.EventPageChanged, map[string]any{
		"page":      page,
		"page_size": pageSize,
	}))
}

// SetResults replaces the result list and the total hit count in a
// single write. Pagination totals and the raw total always come from
// the same call, so a torn read between them is not possible.
func (s *Store) SetResults(results []search.Result, total int64) {
	s.mu.Lock()
	s.results = append([]search.Result(nil), results...)
	s.total = total
	s.mu.Unlock()
}

// ApplyResponse writes every field of a successful backend response in
// one critical section: results, total, and, when present,
// aggregations and suggestions.
func (s *Store) ApplyResponse(resp *search.Response) {
	if resp == nil {
		return
	}
	s.mu.Lock()
	s.results = append([]search.Result(nil), resp.Results...)
	s.total = resp.Total
	if resp.Aggregations != nil {
		aggs := make(map[string]search.AggregationResult, len(resp.Aggregations))
		for k, v := range resp.Aggregations {
			aggs[k] = v
		}
		s.aggregations = aggs
	}
	if resp.Suggestions != nil {
		s.suggestions = append([]search.Suggestion(nil), resp.Suggestions...)
	}
	s.mu.Unlock()
}

// SetLoading sets the loading flag. Loading and error are mutually
// exclusive: entering the loading state clears any existing error.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	if loading {
		s.err = nil
	}
	s.mu.Unlock()
}

// SetError sets the error value. A non-nil error clears loading.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	s.err = err
	if err != nil {
		s.loading = false
	}
	s.mu.Unlock()
}

// SetAggregations replaces the aggregation map.
func (s *Store) SetAggregations(aggs map[string]search.AggregationResult) {
	s.mu.Lock()
	if aggs == nil {
		s.aggregations = nil
	} else {
		cp := make(map[string]search.AggregationResult, len(aggs))
		for k, v := range aggs {
			cp[k] = v
		}
		s.aggregations = cp
	}
	s.mu.Unlock()
}

// SetSuggestions replaces the suggestion list.
func (s *Store) SetSuggestions(suggestions []search.Suggestion) {
	s.mu.Lock()
	s.suggestions = append([]search.Suggestion(nil), suggestions...)
	s.mu.Unlock()
}

// ClearSuggestions removes all suggestions.
func (s *Store) ClearSuggestions() {
	s.mu.Lock()
	s.suggestions = nil
	s.mu.Unlock()
}

// SetHistoryLimit reconfigures the event history bound, trimming from
// the oldest end if the new limit is smaller.
func (s *Store) SetHistoryLimit(limit int) {
	s.mu.Lock()
	s.history.setLimit(limit)
	s.mu.Unlock()
}

// Reset restores every field, including the event history, to its
// initial default. Subscriptions survive a reset.
func (s *Store) Reset() {
	s.mu.Lock()
	s.queryText = ""
	s.filters = nil
	s.sort = nil
	s.page = 1
	s.pageSize = s.initialSize
	s.total = 0
	s.results = nil
	s.loading = false
	s.err = nil
	s.aggregations = nil
	s.suggestions = nil
	s.history.reset()
	s.mu.Unlock()
}

// QueryText returns the current query text.
func (s *Store) QueryText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryText
}

// Filters returns the active filters in insertion order.
func (s *Store) Filters() []search.FilterSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]search.FilterSpec(nil), s.filters...)
}

// Filter returns the filter for the given field, if any.
func (s *Store) Filter(field string) (search.FilterSpec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.filters {
		if f.Field == field {
			return f, true
		}
	}
	return search.FilterSpec{}, false
}

// Sort returns the current sort criteria.
func (s *Store) Sort() []search.SortSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]search.SortSpec(nil), s.sort...)
}

// Results returns the current result list.
func (s *Store) Results() []search.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]search.Result(nil), s.results...)
}

// Suggestions returns the current suggestion list.
func (s *Store) Suggestions() []search.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]search.Suggestion(nil), s.suggestions...)
}

// Aggregations returns the current aggregation map.
func (s *Store) Aggregations() map[string]search.AggregationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.aggregations == nil {
		return nil
	}
	cp := make(map[string]search.AggregationResult, len(s.aggregations))
	for k, v := range s.aggregations {
		cp[k] = v
	}
	return cp
}

// Loading reports whether a search is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last pipeline error, or nil.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Total returns the total hit count from the last successful search.
func (s *Store) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Pagination returns the current pagination state.
func (s *Store) Pagination() search.Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return search.Pagination{Page: s.page, PageSize: s.pageSize, Total: s.total}
}

// CurrentPage returns the current page number.
func (s *Store) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// PageSize returns the current page size.
func (s *Store) PageSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageSize
}

// TotalPages returns the number of pages covering the current total.
func (s *Store) TotalPages() int {
	return s.Pagination().TotalPages()
}

// HasNextPage reports whether a page follows the current one.
func (s *Store) HasNextPage() bool {
	p := s.Pagination()
	return p.Page < p.TotalPages()
}

// HasPrevPage reports whether a page precedes the current one.
func (s *Store) HasPrevPage() bool {
	return s.CurrentPage() > 1
}

// HasQuery reports whether the trimmed query text is non-empty.
func (s *Store) HasQuery() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strings.TrimSpace(s.queryText) != ""
}

// HasResults reports whether the result list is non-empty.
func (s *Store) HasResults() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results) > 0
}

// IsEmpty reports a finished search with a query but no results.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loading && len(s.results) == 0 && strings.TrimSpace(s.queryText) != ""
}

// IsInitial reports the untouched state: no query, no results, not
// loading.
func (s *Store) IsInitial() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loading && len(s.results) == 0 && strings.TrimSpace(s.queryText) == ""
}

// Query assembles the complete backend query from the current state.
func (s *Store) Query() search.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := search.Pagination{Page: s.page, PageSize: s.pageSize}
	return search.Query{
		Text:    s.queryText,
		Size:    s.pageSize,
		Offset:  p.Offset(),
		Sort:    append([]search.SortSpec(nil), s.sort...),
		Filters: append([]search.FilterSpec(nil), s.filters...),
	}
}

// Events returns a copy of the event history, oldest first.
func (s *Store) Events() []search.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.list()
}
