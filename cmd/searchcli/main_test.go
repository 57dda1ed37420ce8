package main

import (
	"testing"

	searchkit "github.com/jonesrussell/searchkit"
	"github.com/jonesrussell/searchkit/config"
	"github.com/jonesrussell/searchkit/facet"
	"github.com/jonesrussell/searchkit/logger"
)

func newTestEngine(t *testing.T) *searchkit.Engine {
	t.Helper()

	cfg := &config.Config{
		Engine:        config.EngineConfig{PageSize: 10, MinQueryLength: 2},
		Elasticsearch: config.ElasticsearchConfig{URL: "http://localhost:9200", Index: "test"},
		Logging:       config.LoggingConfig{Level: "info"},
		Facets: []facet.Config{
			{ID: "status", Field: "status", Kind: facet.KindCheckbox, Label: "Status"},
		},
	}
	engine, err := searchkit.New(cfg, searchkit.Options{Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestApplySession_PageSurvivesQueryAndFacets(t *testing.T) {
	t.Helper()

	engine := newTestEngine(t)
	if err := applySession(engine, "rick", "status=alive", 3); err != nil {
		t.Fatalf("applySession() error: %v", err)
	}

	store := engine.Store()
	if got := store.QueryText(); got != "rick" {
		t.Errorf("query text = %q, want rick", got)
	}
	if got := store.CurrentPage(); got != 3 {
		t.Errorf("page = %d, want 3", got)
	}
	if _, ok := store.Filter("status"); !ok {
		t.Error("facet selection did not reach the filters")
	}
}

func TestApplySession_BadFacetFlag(t *testing.T) {
	t.Helper()

	engine := newTestEngine(t)
	if err := applySession(engine, "", "status:alive", 1); err == nil {
		t.Error("applySession() should reject a selection without '='")
	}
}
