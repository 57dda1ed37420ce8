package facet

import (
	"sort"
	"sync"

	"github.com/jonesrussell/searchkit/logger"
	"github.com/jonesrussell/searchkit/search"
)

// Manager owns the set of configured facets. Operations on unknown
// facet ids log a warning and are a no-op: registration and user
// interaction may race in the UI layer and must degrade gracefully.
type Manager struct {
	mu        sync.Mutex
	log       logger.Logger
	order     []string
	facets    map[string]*facetState
	listeners []func(ChangeEvent)
}

// facetState is the internal, mutable form of State.
type facetState struct {
	config    Config
	values    []Value
	selected  []string
	collapsed bool
	loading   bool
}

// NewManager creates an empty facet manager. A nil logger is replaced
// with the no-op logger.
func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		log:    log,
		facets: make(map[string]*facetState),
	}
}

// OnChange registers a callback invoked synchronously for every
// selection change, in registration order.
func (m *Manager) OnChange(fn func(ChangeEvent)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// AddFacet registers a facet. Re-registering an existing id replaces
// its config and values while carrying the selection set over; keys no
// longer present in the value list stay selected but inert.
func (m *Manager) AddFacet(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fs, exists := m.facets[cfg.ID]
	if !exists {
		fs = &facetState{}
		m.facets[cfg.ID] = fs
		m.order = append(m.order, cfg.ID)
	}
	fs.config = cfg
	fs.collapsed = cfg.Collapsed
	fs.values = append([]Value(nil), cfg.StaticOptions...)
	applySelection(fs.values, fs.selected)
}

// AddFacets registers multiple facets in order.
func (m *Manager) AddFacets(cfgs []Config) {
	for _, cfg := range cfgs {
		m.AddFacet(cfg)
	}
}

// RemoveFacet unregisters a facet. Unknown ids are a no-op.
func (m *Manager) RemoveFacet(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.facets[id]; !ok {
		return
	}
	delete(m.facets, id)
	for i, fid := range m.order {
		if fid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Facet returns a copy of the state for one facet.
func (m *Manager) Facet(id string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fs, ok := m.facets[id]
	if !ok {
		return State{}, false
	}
	return fs.snapshot(), true
}

// Facets returns copies of all facet states in registration order.
func (m *Manager) Facets() []State {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]State, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.facets[id].snapshot())
	}
	return out
}

// UpdateSelection replaces the selection set for a facet, recomputes
// value flags, derives the backend filter, and emits a ChangeEvent
// carrying old and new selections.
func (m *Manager) UpdateSelection(id string, keys []string) {
	m.mu.Lock()
	fs, ok := m.facets[id]
	if !ok {
		m.mu.Unlock()
		m.log.Warn("selection update for unknown facet", logger.String("facet_id", id))
		return
	}

	previous := append([]string(nil), fs.selected...)
	fs.selected = dedupe(keys)
	applySelection(fs.values, fs.selected)

	ev := ChangeEvent{
		FacetID:  id,
		Selected: append([]string(nil), fs.selected...),
		Previous: previous,
		Config:   fs.config,
		Filter:   deriveFilter(fs.config, fs.selected),
	}
	listeners := append(([]func(ChangeEvent))(nil), m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// ClearFacet empties the selection for one facet.
func (m *Manager) ClearFacet(id string) {
	m.UpdateSelection(id, nil)
}

// ClearAllFacets empties the selection for every registered facet.
func (m *Manager) ClearAllFacets() {
	m.mu.Lock()
	ids := append([]string(nil), m.order...)
	m.mu.Unlock()

	for _, id := range ids {
		m.UpdateSelection(id, nil)
	}
}

// ToggleCollapsed flips the collapsed flag. Unknown ids are a no-op.
func (m *Manager) ToggleCollapsed(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fs, ok := m.facets[id]
	if !ok {
		m.log.Warn("collapse toggle for unknown facet", logger.String("facet_id", id))
		return
	}
	fs.collapsed = !fs.collapsed
}

// SetLoading marks a facet's value list as refreshing.
func (m *Manager) SetLoading(id string, loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if fs, ok := m.facets[id]; ok {
		fs.loading = loading
	}
}

// UpdateValuesFromAggregation rebuilds a facet's value list from
// backend bucket data, preserving selection flags and applying the
// configured sort order and truncation. Selections whose keys vanish
// from the list stay in the selection set but are never invented as
// values.
func (m *Manager) UpdateValuesFromAggregation(id string, agg search.AggregationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fs, ok := m.facets[id]
	if !ok {
		m.log.Warn("aggregation update for unknown facet", logger.String("facet_id", id))
		return
	}
	fs.values = buildValues(fs.config, agg)
	applySelection(fs.values, fs.selected)
	fs.loading = false
}

// UpdateAllFromAggregations refreshes every facet whose field (or id)
// appears in the aggregation map.
func (m *Manager) UpdateAllFromAggregations(aggs map[string]search.AggregationResult) {
	m.mu.Lock()
	ids := append([]string(nil), m.order...)
	m.mu.Unlock()

	for _, id := range ids {
		m.mu.Lock()
		fs, ok := m.facets[id]
		if !ok {
			m.mu.Unlock()
			continue
		}
		agg, found := aggs[fs.config.Field]
		if !found {
			agg, found = aggs[id]
		}
		m.mu.Unlock()
		if found {
			m.UpdateValuesFromAggregation(id, agg)
		}
	}
}

// AppliedFilters returns the non-empty derived filters across all
// facets, in registration order. This is the canonical filter set to
// merge into a state container.
func (m *Manager) AppliedFilters() []search.FilterSpec {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []search.FilterSpec
	for _, id := range m.order {
		fs := m.facets[id]
		if f := deriveFilter(fs.config, fs.selected); f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// buildValues maps aggregation buckets to facet values. Static options
// come first and receive bucket counts by key; buckets without a static
// option are appended.
func buildValues(cfg Config, agg search.AggregationResult) []Value {
	values := append([]Value(nil), cfg.StaticOptions...)
	known := make(map[string]int, len(values))
	for i, v := range values {
		known[v.Key] = i
	}

	for _, b := range agg.Buckets {
		if i, ok := known[b.Key]; ok {
			values[i].Count = b.Count
			continue
		}
		values = append(values, Value{Key: b.Key, Label: b.Key, Count: b.Count})
	}

	switch cfg.SortBy {
	case SortByKey:
		sort.SliceStable(values, func(i, j int) bool {
			return values[i].Key < values[j].Key
		})
	case SortByCustom:
		// keep backend order
	default:
		sort.SliceStable(values, func(i, j int) bool {
			return values[i].Count > values[j].Count
		})
	}

	if cfg.MaxValues > 0 && len(values) > cfg.MaxValues {
		values = values[:cfg.MaxValues]
	}
	return values
}

// applySelection recomputes the Selected flag on each value.
func applySelection(values []Value, selected []string) {
	set := make(map[string]struct{}, len(selected))
	for _, k := range selected {
		set[k] = struct{}{}
	}
	for i := range values {
		_, values[i].Selected = set[values[i].Key]
	}
}

// dedupe removes duplicate keys, keeping first-seen order. Range facet
// pairs rely on the preserved ordering.
func dedupe(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func (fs *facetState) snapshot() State {
	return State{
		Config:    fs.config,
		Values:    append([]Value(nil), fs.values...),
		Selected:  append([]string(nil), fs.selected...),
		Collapsed: fs.collapsed,
		Loading:   fs.loading,
	}
}
