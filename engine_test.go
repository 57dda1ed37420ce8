package searchkit_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	searchkit "github.com/jonesrussell/searchkit"
	"github.com/jonesrussell/searchkit/config"
	"github.com/jonesrussell/searchkit/coordinator"
	"github.com/jonesrussell/searchkit/facet"
	"github.com/jonesrussell/searchkit/logger"
	"github.com/jonesrussell/searchkit/search"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// memoryAdapter serves canned hits filtered by query text and status.
type memoryAdapter struct {
	mu    sync.Mutex
	calls int
	docs  []map[string]any
}

func newMemoryAdapter() *memoryAdapter {
	return &memoryAdapter{docs: []map[string]any{
		{"id": "1", "name": "Rick Sanchez", "status": "alive"},
		{"id": "2", "name": "Morty Smith", "status": "alive"},
		{"id": "3", "name": "Birdperson", "status": "dead"},
	}}
}

func (m *memoryAdapter) Search(_ context.Context, q search.Query) (*search.Response, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	var status string
	for _, f := range q.Filters {
		if f.Field == "status" {
			status, _ = f.Value.(string)
		}
	}

	resp := &search.Response{Aggregations: map[string]search.AggregationResult{
		"status": {Buckets: []search.Bucket{{Key: "alive", Count: 2}, {Key: "dead", Count: 1}}},
	}}
	for _, doc := range m.docs {
		name := doc["name"].(string)
		if q.Text != "" && !containsFold(name, q.Text) {
			continue
		}
		if status != "" && doc["status"] != status {
			continue
		}
		resp.Results = append(resp.Results, search.Result{ID: doc["id"].(string), Data: doc})
	}
	resp.Total = int64(len(resp.Results))
	return resp, nil
}

func (m *memoryAdapter) Suggest(_ context.Context, text string, _ coordinator.SuggestOptions) ([]search.Suggestion, error) {
	var out []search.Suggestion
	for _, doc := range m.docs {
		name := doc["name"].(string)
		if containsFold(name, text) {
			out = append(out, search.Suggestion{Text: name})
		}
	}
	return out, nil
}

func (m *memoryAdapter) searchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			PageSize:       10,
			MinQueryLength: 2,
			AutoSearch:     true,
		},
		Elasticsearch: config.ElasticsearchConfig{URL: "http://localhost:9200", Index: "test"},
		Logging:       config.LoggingConfig{Level: "info"},
		Facets: []facet.Config{
			{ID: "status", Field: "status", Kind: facet.KindCheckbox, Label: "Status"},
		},
	}
}

func newEngine(t *testing.T) (*searchkit.Engine, *memoryAdapter) {
	t.Helper()

	adapter := newMemoryAdapter()
	engine, err := searchkit.New(testConfig(), searchkit.Options{
		Adapter: adapter,
		Logger:  logger.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine, adapter
}

func TestEngine_SessionLifecycle(t *testing.T) {
	engine, _ := newEngine(t)
	store := engine.Store()

	require.True(t, store.IsInitial())
	require.False(t, store.HasQuery())
	require.False(t, store.IsEmpty())

	engine.SetQuery("rick")
	require.Eventually(t, func() bool {
		return store.HasResults() && !store.Loading()
	}, waitFor, tick)

	require.True(t, store.HasQuery())
	require.False(t, store.IsInitial())
	require.False(t, store.IsEmpty())
	require.EqualValues(t, 1, store.Total())
	require.Equal(t, "1", store.Results()[0].ID)

	// A query that matches nothing lands in the empty state.
	engine.SetQuery("nothing matches this")
	require.Eventually(t, func() bool {
		return !store.Loading() && store.IsEmpty()
	}, waitFor, tick)
	require.True(t, store.HasQuery())
	require.False(t, store.HasResults())
}

func TestEngine_FacetSelectionDrivesFilters(t *testing.T) {
	engine, adapter := newEngine(t)
	store := engine.Store()

	engine.SetQuery("")
	engine.SelectFacet("status", []string{"dead"})

	require.Eventually(t, func() bool {
		results := store.Results()
		return len(results) == 1 && results[0].ID == "3" && !store.Loading()
	}, waitFor, tick)

	f, ok := store.Filter("status")
	require.True(t, ok)
	require.Equal(t, search.FilterTerm, f.Kind)
	require.Equal(t, "dead", f.Value)

	// Clearing the facet removes the filter. With no query text and no
	// filters left, auto-search has nothing to run.
	before := adapter.searchCalls()
	engine.SelectFacet("status", nil)
	_, ok = store.Filter("status")
	require.False(t, ok)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, before, adapter.searchCalls())
}

func TestEngine_AggregationsRefreshFacets(t *testing.T) {
	engine, _ := newEngine(t)

	engine.SetQuery("rick")
	require.Eventually(t, func() bool {
		st, ok := engine.Facets().Facet("status")
		return ok && len(st.Values) == 2
	}, waitFor, tick)

	st, _ := engine.Facets().Facet("status")
	require.Equal(t, "alive", st.Values[0].Key)
	require.EqualValues(t, 2, st.Values[0].Count)
}

func TestEngine_Suggestions(t *testing.T) {
	engine, _ := newEngine(t)
	store := engine.Store()

	engine.Suggest("rick")
	require.Eventually(t, func() bool { return len(store.Suggestions()) == 1 }, waitFor, tick)
	require.Equal(t, "Rick Sanchez", store.Suggestions()[0].Text)
}

func TestEngine_IsReady(t *testing.T) {
	engine, _ := newEngine(t)

	ready, err := engine.IsReady(context.Background())
	require.NoError(t, err)
	require.True(t, ready)
}
