// Command searchcli runs one query through a configured searchkit
// engine and prints the resulting session state as JSON. It doubles as
// a smoke test for an Elasticsearch backend.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	searchkit "github.com/jonesrussell/searchkit"
	"github.com/jonesrussell/searchkit/adapter/elastic"
	"github.com/jonesrussell/searchkit/config"
	"github.com/jonesrussell/searchkit/facet"
	"github.com/jonesrussell/searchkit/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", config.GetConfigPath("config.yml"), "path to the config file")
		queryText  = flag.String("query", "", "query text")
		facetSel   = flag.String("facet", "", "facet selection as id=key1,key2")
		page       = flag.Int("page", 1, "result page")
		timeout    = flag.Duration("timeout", 10*time.Second, "time to wait for the search to finish")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()
	log = log.With(logger.String("component", "searchcli"))

	log.Info("Connecting to Elasticsearch",
		logger.String("url", cfg.Elasticsearch.URL),
		logger.String("index", cfg.Elasticsearch.Index),
	)
	adapter, err := elastic.New(elasticConfig(cfg), log)
	if err != nil {
		log.Error("Failed to create Elasticsearch adapter", logger.Error(err))
		return 1
	}

	engine, err := searchkit.New(cfg, searchkit.Options{Adapter: adapter, Logger: log})
	if err != nil {
		log.Error("Failed to build engine", logger.Error(err))
		return 1
	}
	defer engine.Close()

	store := engine.Store()
	if err := applySession(engine, *queryText, *facetSel, *page); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	engine.Search()

	if !waitForResult(engine, *timeout) {
		log.Error("Search did not finish in time")
		return 1
	}
	if err := store.Err(); err != nil {
		log.Error("Search failed", logger.Error(err))
		return 1
	}

	out := map[string]any{
		"total":      store.Total(),
		"page":       store.CurrentPage(),
		"pages":      store.TotalPages(),
		"results":    store.Results(),
		"facets":     engine.Facets().Facets(),
		"query_text": store.QueryText(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error("Failed to encode output", logger.Error(err))
		return 1
	}
	return 0
}

// applySession pushes the CLI flags into the engine. Facet selections
// and the query text reset pagination, so the page is applied last.
func applySession(engine *searchkit.Engine, queryText, facetSel string, page int) error {
	if facetSel != "" {
		id, keys, ok := strings.Cut(facetSel, "=")
		if !ok {
			return fmt.Errorf("facet selection must look like id=key1,key2")
		}
		engine.SelectFacet(id, strings.Split(keys, ","))
	}
	engine.SetQuery(queryText)
	if page > 1 {
		engine.Store().SetPage(page)
	}
	return nil
}

// waitForResult polls until the pipeline clears the loading flag.
func waitForResult(engine *searchkit.Engine, timeout time.Duration) bool {
	store := engine.Store()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !store.Loading() && (store.HasResults() || store.Err() != nil || store.IsEmpty()) {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	return false
}

// elasticConfig maps the file config onto the adapter, deriving one
// terms aggregation per configured facet.
func elasticConfig(cfg *config.Config) elastic.Config {
	aggs := make(map[string]map[string]any, len(cfg.Facets))
	for _, f := range cfg.Facets {
		switch f.Kind {
		case facet.KindNumberRange, facet.KindRange, facet.KindSlider:
			aggs[f.Field] = elastic.StatsAggregation(f.Field)
		default:
			aggs[f.Field] = elastic.TermsAggregation(f.Field, f.MaxValues)
		}
	}
	return elastic.Config{
		URL:                   cfg.Elasticsearch.URL,
		Username:              cfg.Elasticsearch.Username,
		Password:              cfg.Elasticsearch.Password,
		Index:                 cfg.Elasticsearch.Index,
		MaxRetries:            cfg.Elasticsearch.MaxRetries,
		Timeout:               cfg.Elasticsearch.Timeout,
		SearchFields:          cfg.Elasticsearch.SearchFields,
		SuggestField:          cfg.Elasticsearch.SuggestField,
		HighlightEnabled:      cfg.Elasticsearch.HighlightEnabled,
		HighlightFragmentSize: cfg.Elasticsearch.HighlightFragmentSize,
		HighlightMaxFragments: cfg.Elasticsearch.HighlightMaxFragments,
		Aggregations:          aggs,
	}
}
