// Package searchkit wires the state container, query coordinator, and
// facet manager into one search engine facade. Applications that need
// finer control can use the subpackages directly; the Engine covers the
// common case of one store, one backend, and a configured facet set.
package searchkit

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonesrussell/searchkit/config"
	"github.com/jonesrussell/searchkit/coordinator"
	"github.com/jonesrussell/searchkit/facet"
	"github.com/jonesrussell/searchkit/logger"
	"github.com/jonesrussell/searchkit/search"
	"github.com/jonesrussell/searchkit/state"
	"github.com/jonesrussell/searchkit/telemetry"
)

// Options configures an Engine beyond what the file config carries.
type Options struct {
	// Adapter is the backend. May be nil and installed later through
	// Coordinator().SetAdapter.
	Adapter coordinator.Adapter
	// Logger overrides the logger built from config.
	Logger logger.Logger
	// TelemetryClients receive session events and pipeline timings.
	TelemetryClients []telemetry.Client
	// Registerer receives the Prometheus metrics when the config
	// enables them. Nil means prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Engine bundles a state container, a query coordinator, and a facet
// manager behind one lifecycle.
type Engine struct {
	cfg    *config.Config
	log    logger.Logger
	store  *state.Store
	coord  *coordinator.Coordinator
	facets *facet.Manager
	tel    *telemetry.Dispatcher

	unsubscribe func()
	closeOnce   sync.Once
}

// New builds an engine from configuration. Facet selections feed the
// store as filters; aggregations from completed searches flow back into
// the facet value lists.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	log := opts.Logger
	if log == nil {
		var err error
		log, err = logger.New(logger.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, err
		}
	}

	clients := append([]telemetry.Client(nil), opts.TelemetryClients...)
	if cfg.Telemetry.Prometheus {
		reg := opts.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		clients = append(clients, telemetry.NewPrometheus(reg))
	}
	var tel *telemetry.Dispatcher
	if len(clients) > 0 {
		tel = telemetry.NewDispatcher(log, clients...)
	}

	storeOpts := state.Options{PageSize: cfg.Engine.PageSize, Logger: log}
	if cfg.Engine.EventHistoryLimit != 0 {
		limit := cfg.Engine.EventHistoryLimit
		storeOpts.HistoryLimit = &limit
	}
	store := state.New(storeOpts)

	coordCfg := coordinator.Config{
		DebounceInterval:    cfg.Engine.DebounceInterval,
		MinQueryLength:      cfg.Engine.MinQueryLength,
		AutoSearch:          cfg.Engine.AutoSearch,
		MaxSuggestions:      cfg.Engine.MaxSuggestions,
		SuggestionCacheSize: cfg.Engine.SuggestionCacheSize,
		SuggestionCacheTTL:  cfg.Engine.SuggestionCacheTTL,
	}
	coord := coordinator.New(store, coordinator.Options{
		Adapter:   opts.Adapter,
		Config:    &coordCfg,
		Logger:    log,
		Telemetry: tel,
	})

	facets := facet.NewManager(log)
	facets.AddFacets(cfg.Facets)
	facets.OnChange(func(ev facet.ChangeEvent) {
		if ev.Filter != nil {
			store.AddFilter(*ev.Filter)
			return
		}
		store.RemoveFilter(ev.Config.Field)
	})

	e := &Engine{
		cfg:    cfg,
		log:    log,
		store:  store,
		coord:  coord,
		facets: facets,
		tel:    tel,
	}
	e.unsubscribe = store.Subscribe(e.onStoreEvent)
	return e, nil
}

// onStoreEvent fans events out to telemetry and refreshes facet values
// after every completed search.
func (e *Engine) onStoreEvent(ev search.Event) {
	e.tel.Event(ev, "session", nil)
	if ev.Kind == search.EventSearchCompleted {
		if aggs := e.store.Aggregations(); len(aggs) > 0 {
			e.facets.UpdateAllFromAggregations(aggs)
		}
	}
}

// Store returns the engine's state container.
func (e *Engine) Store() *state.Store { return e.store }

// Coordinator returns the engine's query coordinator.
func (e *Engine) Coordinator() *coordinator.Coordinator { return e.coord }

// Facets returns the engine's facet manager.
func (e *Engine) Facets() *facet.Manager { return e.facets }

// SetQuery updates the query text. With auto-search enabled this is all
// a caller needs for type-ahead search.
func (e *Engine) SetQuery(text string) { e.store.SetQuery(text) }

// Search dispatches a search for the current state.
func (e *Engine) Search() { e.coord.Search(nil) }

// Suggest dispatches a suggestion lookup.
func (e *Engine) Suggest(text string) { e.coord.Suggest(text) }

// SelectFacet replaces the selection for one facet and, through the
// change wiring, updates the store's filters.
func (e *Engine) SelectFacet(id string, keys []string) {
	e.facets.UpdateSelection(id, keys)
}

// IsReady probes backend readiness.
func (e *Engine) IsReady(ctx context.Context) (bool, error) {
	return e.coord.IsReady(ctx)
}

// Close shuts the coordinator down and detaches the engine from the
// store. The store stays readable for final snapshots.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.coord.Close()
		if e.unsubscribe != nil {
			e.unsubscribe()
		}
		_ = e.log.Sync()
	})
}
