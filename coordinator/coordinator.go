// Package coordinator drives the search and suggestion pipelines. It
// owns debouncing, request supersession, auto-search, and the adapter
// boundary; all resulting state lands in a state.Store.
//
// Both pipelines follow a cancel-superseded policy: dispatching a new
// request bumps a generation counter and cancels the context of the
// previous one. A request that completes after being superseded is
// discarded silently, so the store only ever reflects the most recent
// dispatch.
package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jonesrussell/searchkit/logger"
	"github.com/jonesrussell/searchkit/search"
	"github.com/jonesrussell/searchkit/state"
	"github.com/jonesrussell/searchkit/telemetry"
)

// Sentinel errors reported through telemetry and returned by the
// direct lookup methods.
var (
	// ErrNoAdapter is reported when a pipeline runs without a backend
	// adapter installed.
	ErrNoAdapter = errors.New("coordinator: no backend adapter installed")
	// ErrClosed is reported for operations after Close.
	ErrClosed = errors.New("coordinator: closed")
)

// Telemetry source labels.
const (
	sourceSearch      = "search"
	sourceSuggestions = "suggestions"
)

// Options configures a Coordinator.
type Options struct {
	// Adapter is the backend. It may be nil at construction and
	// installed later via SetAdapter.
	Adapter Adapter
	// Config tunes the pipelines. Nil means DefaultConfig.
	Config *Config
	// Logger is used for internal diagnostics only.
	Logger logger.Logger
	// Telemetry receives pipeline timings and failures. May be nil.
	Telemetry *telemetry.Dispatcher
}

// Coordinator connects a state.Store to a backend Adapter.
type Coordinator struct {
	store *state.Store
	log   logger.Logger
	tel   *telemetry.Dispatcher

	mu            sync.Mutex
	cfg           Config
	adapter       Adapter
	searchGen     uint64
	suggestGen    uint64
	searchCancel  context.CancelFunc
	suggestCancel context.CancelFunc
	lastAutoSig   string
	closed        bool

	suggestCache *expirable.LRU[string, []search.Suggestion]
	unsubscribe  func()
	wg           sync.WaitGroup
}

// New creates a coordinator bound to the given store and subscribes to
// it for auto-search.
func New(store *state.Store, opts Options) *Coordinator {
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
		cfg.setDefaults()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	c := &Coordinator{
		store:   store,
		log:     opts.Logger,
		tel:     opts.Telemetry,
		cfg:     cfg,
		adapter: opts.Adapter,
	}
	if cfg.SuggestionCacheSize > 0 {
		c.suggestCache = expirable.NewLRU[string, []search.Suggestion](
			cfg.SuggestionCacheSize, nil, cfg.SuggestionCacheTTL)
	}
	if cfg.EventHistoryLimit != nil {
		store.SetHistoryLimit(*cfg.EventHistoryLimit)
	}
	c.unsubscribe = store.Subscribe(c.onStateEvent)
	return c
}

// Store returns the coordinator's state container.
func (c *Coordinator) Store() *state.Store { return c.store }

// SetAdapter swaps the backend adapter. The suggestion pipeline is
// cancelled and the suggestion cache purged, since cached entries came
// from the old backend. An in-flight search keeps its captured adapter.
func (c *Coordinator) SetAdapter(a Adapter) {
	c.mu.Lock()
	c.adapter = a
	c.suggestGen++
	if c.suggestCancel != nil {
		c.suggestCancel()
		c.suggestCancel = nil
	}
	c.mu.Unlock()

	if c.suggestCache != nil {
		c.suggestCache.Purge()
	}
}

// SetConfig merges a partial configuration. In-flight pipelines keep
// the settings they were dispatched with.
func (c *Coordinator) SetConfig(patch ConfigPatch) {
	c.mu.Lock()
	c.cfg.apply(patch)
	c.mu.Unlock()

	if patch.EventHistoryLimit != nil {
		c.store.SetHistoryLimit(*patch.EventHistoryLimit)
	}
}

// Config returns the current configuration.
func (c *Coordinator) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Search dispatches a search. A nil query searches the store's current
// composed query. Non-empty text shorter than the configured minimum is
// rejected silently. The previous search, if still in flight, is
// superseded.
func (c *Coordinator) Search(q *search.Query) {
	c.mu.Lock()
	adapter := c.adapter
	cfg := c.cfg
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return
	}
	if adapter == nil {
		// Configuration error: logged and reported, but the session
		// state is left exactly as it was.
		c.log.Error("search requested with no adapter installed")
		c.tel.Error(ErrNoAdapter, sourceSearch, nil)
		return
	}

	var query search.Query
	if q != nil {
		query = *q
	} else {
		query = c.store.Query()
	}
	// Non-empty text below the minimum length is rejected silently,
	// unless filters alone make the query worth running.
	trimmed := strings.TrimSpace(query.Text)
	if trimmed != "" && len([]rune(trimmed)) < cfg.MinQueryLength && len(query.Filters) == 0 {
		return
	}

	gen, ctx := c.nextSearch()

	c.store.RecordEvent(search.EventSearchStarted, map[string]any{"text": query.Text})
	c.store.SetLoading(true)

	c.wg.Add(1)
	go c.runSearch(ctx, gen, adapter, query, cfg)
}

// nextSearch supersedes the current search pipeline and opens a new
// generation.
func (c *Coordinator) nextSearch() (uint64, context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchGen++
	if c.searchCancel != nil {
		c.searchCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.searchCancel = cancel
	return c.searchGen, ctx
}

func (c *Coordinator) runSearch(ctx context.Context, gen uint64, adapter Adapter, query search.Query, cfg Config) {
	defer c.wg.Done()

	if !c.debounce(ctx, cfg.DebounceInterval) {
		return
	}
	if !c.currentSearch(gen) {
		return
	}

	start := time.Now()
	resp, err := adapter.Search(ctx, query)
	elapsed := time.Since(start)

	if !c.currentSearch(gen) {
		// Superseded while in flight. Not an error, not telemetry.
		return
	}

	if err != nil {
		c.log.Warn("search failed",
			logger.String("query", query.Text),
			logger.Error(err))
		c.store.SetError(err)
		c.store.RecordEvent(search.EventSearchFailed, map[string]any{
			"text":  query.Text,
			"error": err.Error(),
		})
		c.tel.Error(err, sourceSearch, map[string]any{"text": query.Text})
		return
	}

	c.store.ApplyResponse(resp)
	c.store.SetLoading(false)
	c.store.RecordEvent(search.EventSearchCompleted, map[string]any{
		"text":       query.Text,
		"total":      resp.Total,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	c.tel.Timing(sourceSearch, elapsed, map[string]any{"total": resp.Total})
}

// Suggest dispatches a suggestion lookup for the given text. Text below
// the minimum length clears the current suggestions instead. Adapters
// that do not implement Suggester disable the pipeline.
func (c *Coordinator) Suggest(text string) {
	c.mu.Lock()
	adapter := c.adapter
	cfg := c.cfg
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return
	}
	if adapter == nil {
		c.log.Error("suggestions requested with no adapter installed")
		c.tel.Error(ErrNoAdapter, sourceSuggestions, nil)
		return
	}
	sg, ok := adapter.(Suggester)
	if !ok {
		return
	}

	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < cfg.MinQueryLength {
		c.store.ClearSuggestions()
		return
	}

	if c.suggestCache != nil {
		if cached, ok := c.suggestCache.Get(trimmed); ok {
			// A cache hit is still the newest request: any lookup in
			// flight is superseded so its late result cannot overwrite
			// the cached list.
			c.supersedeSuggest()
			c.store.SetSuggestions(cached)
			c.store.RecordEvent(search.EventSuggestionsReceived, map[string]any{
				"text":   trimmed,
				"count":  len(cached),
				"cached": true,
			})
			return
		}
	}

	gen, ctx := c.nextSuggest()
	c.store.RecordEvent(search.EventSuggestionsRequested, map[string]any{"text": trimmed})

	c.wg.Add(1)
	go c.runSuggest(ctx, gen, sg, trimmed, cfg)
}

// supersedeSuggest invalidates any in-flight suggestion pipeline
// without opening a new generation.
func (c *Coordinator) supersedeSuggest() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.suggestGen++
	if c.suggestCancel != nil {
		c.suggestCancel()
		c.suggestCancel = nil
	}
}

func (c *Coordinator) nextSuggest() (uint64, context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.suggestGen++
	if c.suggestCancel != nil {
		c.suggestCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.suggestCancel = cancel
	return c.suggestGen, ctx
}

func (c *Coordinator) runSuggest(ctx context.Context, gen uint64, sg Suggester, text string, cfg Config) {
	defer c.wg.Done()

	if !c.debounce(ctx, cfg.DebounceInterval) {
		return
	}
	if !c.currentSuggest(gen) {
		return
	}

	start := time.Now()
	suggestions, err := sg.Suggest(ctx, text, SuggestOptions{MaxSuggestions: cfg.MaxSuggestions})
	elapsed := time.Since(start)

	if !c.currentSuggest(gen) {
		return
	}

	if err != nil {
		// Suggestion failures never surface through the store's error
		// field; the last suggestions simply stay put.
		c.log.Warn("suggestion lookup failed",
			logger.String("text", text),
			logger.Error(err))
		c.store.RecordEvent(search.EventSuggestionsFailed, map[string]any{
			"text":  text,
			"error": err.Error(),
		})
		c.tel.Error(err, sourceSuggestions, map[string]any{"text": text})
		return
	}

	if c.suggestCache != nil {
		c.suggestCache.Add(text, suggestions)
	}
	c.store.SetSuggestions(suggestions)
	c.store.RecordEvent(search.EventSuggestionsReceived, map[string]any{
		"text":  text,
		"count": len(suggestions),
	})
	c.tel.Timing(sourceSuggestions, elapsed, map[string]any{"count": len(suggestions)})
}

// Cancel supersedes any in-flight search and clears the loading flag.
// The cancelled request's result, if it ever arrives, is discarded.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.searchGen++
	if c.searchCancel != nil {
		c.searchCancel()
		c.searchCancel = nil
	}
	c.mu.Unlock()

	c.store.SetLoading(false)
}

// GetByID fetches a single document through the adapter, bypassing the
// pipelines and the store. A missing document is (nil, nil).
func (c *Coordinator) GetByID(ctx context.Context, id string) (any, error) {
	c.mu.Lock()
	adapter := c.adapter
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if adapter == nil {
		return nil, ErrNoAdapter
	}
	g, ok := adapter.(Getter)
	if !ok {
		return nil, nil
	}
	return g.GetByID(ctx, id)
}

// IsReady probes backend readiness through the adapter. Adapters
// without a readiness check are always ready.
func (c *Coordinator) IsReady(ctx context.Context) (bool, error) {
	c.mu.Lock()
	adapter := c.adapter
	c.mu.Unlock()

	if adapter == nil {
		return false, ErrNoAdapter
	}
	r, ok := adapter.(ReadinessChecker)
	if !ok {
		return true, nil
	}
	return r.IsReady(ctx)
}

// Close cancels both pipelines, detaches from the store, waits for
// worker goroutines, and destroys the adapter if it supports it. Close
// is idempotent; the coordinator is unusable afterwards.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.searchGen++
	c.suggestGen++
	if c.searchCancel != nil {
		c.searchCancel()
		c.searchCancel = nil
	}
	if c.suggestCancel != nil {
		c.suggestCancel()
		c.suggestCancel = nil
	}
	adapter := c.adapter
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	c.wg.Wait()

	if d, ok := adapter.(Destroyer); ok {
		d.Destroy()
	}
}

// onStateEvent re-runs the search when a state change alters the
// composed query. The query signature dedupe keeps mutations that
// compose to the same query (and the search lifecycle's own events)
// from dispatching twice.
func (c *Coordinator) onStateEvent(ev search.Event) {
	switch ev.Kind {
	case search.EventQueryChanged, search.EventFilterAdded,
		search.EventFilterRemoved, search.EventFilterCleared,
		search.EventSortChanged, search.EventPageChanged:
	default:
		return
	}

	c.mu.Lock()
	cfg := c.cfg
	enabled := cfg.AutoSearch && c.adapter != nil && !c.closed
	c.mu.Unlock()
	if !enabled {
		return
	}

	q := c.store.Query()
	trimmed := strings.TrimSpace(q.Text)
	if len([]rune(trimmed)) < cfg.MinQueryLength && len(q.Filters) == 0 {
		return
	}

	sig := q.Signature()
	c.mu.Lock()
	if sig == c.lastAutoSig {
		c.mu.Unlock()
		return
	}
	c.lastAutoSig = sig
	c.mu.Unlock()

	c.Search(&q)
}

// currentSearch reports whether gen is still the latest search
// generation.
func (c *Coordinator) currentSearch(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.searchGen && !c.closed
}

func (c *Coordinator) currentSuggest(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.suggestGen && !c.closed
}

// debounce waits out the quiet period. It reports false when the
// pipeline was cancelled while waiting.
func (c *Coordinator) debounce(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
