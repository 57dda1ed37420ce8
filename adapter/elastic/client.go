// Package elastic implements the coordinator adapter on Elasticsearch 8
// using the official client. One adapter serves one index (or index
// pattern); query shaping is driven by Config.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/searchkit/coordinator"
	"github.com/jonesrussell/searchkit/logger"
	"github.com/jonesrussell/searchkit/search"
)

// Config holds connection and query shaping settings for the adapter.
type Config struct {
	// URL of the Elasticsearch node. A bare host:port gets an http
	// scheme prepended.
	URL      string
	Username string
	Password string
	// Index is the index name or pattern every query runs against.
	Index      string
	MaxRetries int
	Timeout    time.Duration
	// SearchFields are the multi_match targets, with optional caret
	// boosts ("title^3").
	SearchFields []string
	// SuggestField is the field queried by match_phrase_prefix for
	// autocomplete.
	SuggestField          string
	HighlightEnabled      bool
	HighlightFragmentSize int
	HighlightMaxFragments int
	// Aggregations are named aggregation bodies sent verbatim with
	// every search.
	Aggregations map[string]map[string]any
}

func (c *Config) setDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if len(c.SearchFields) == 0 {
		c.SearchFields = []string{"title^3", "description^2", "body"}
	}
	if c.SuggestField == "" {
		c.SuggestField = "title"
	}
	if c.HighlightFragmentSize == 0 {
		c.HighlightFragmentSize = 150
	}
	if c.HighlightMaxFragments == 0 {
		c.HighlightMaxFragments = 3
	}
}

// Adapter is an Elasticsearch-backed coordinator adapter.
type Adapter struct {
	es  *es.Client
	cfg Config
	log logger.Logger
}

// Interface checks.
var (
	_ coordinator.Adapter          = (*Adapter)(nil)
	_ coordinator.Suggester        = (*Adapter)(nil)
	_ coordinator.Getter           = (*Adapter)(nil)
	_ coordinator.ReadinessChecker = (*Adapter)(nil)
)

// New creates an adapter and verifies connectivity with a short ping.
func New(cfg Config, log logger.Logger) (*Adapter, error) {
	cfg.setDefaults()
	if cfg.Index == "" {
		return nil, fmt.Errorf("elastic: index is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	addr := cfg.URL
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	clientConfig := es.Config{
		Addresses:  []string{addr},
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.Username != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	a := &Adapter{es: client, cfg: cfg, log: log}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.ping(ctx); err != nil {
		return nil, fmt.Errorf("ping elasticsearch: %w", err)
	}
	return a, nil
}

// Search executes one query against the configured index.
func (a *Adapter) Search(ctx context.Context, q search.Query) (*search.Response, error) {
	body, err := json.Marshal(a.buildBody(q))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := a.es.Search(
		a.es.Search.WithContext(ctx),
		a.es.Search.WithIndex(a.cfg.Index),
		a.es.Search.WithBody(bytes.NewReader(body)),
		a.es.Search.WithTimeout(a.cfg.Timeout),
		a.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search returned error [%d]: %s", res.StatusCode, string(raw))
	}

	return parseSearchResponse(res.Body)
}

// Suggest runs a match_phrase_prefix lookup on the suggest field and
// deduplicates the returned texts.
func (a *Adapter) Suggest(ctx context.Context, text string, opts coordinator.SuggestOptions) ([]search.Suggestion, error) {
	size := opts.MaxSuggestions
	if size <= 0 {
		size = 10
	}
	field := a.cfg.SuggestField
	if len(opts.Fields) > 0 {
		field = opts.Fields[0]
	}

	prefix := map[string]any{"query": text}
	if opts.Fuzzy {
		prefix["slop"] = 1
	}
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"match_phrase_prefix": map[string]any{field: prefix},
		},
		"size":    size,
		"_source": []string{field},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal suggest query: %w", err)
	}

	res, err := a.es.Search(
		a.es.Search.WithContext(ctx),
		a.es.Search.WithIndex(a.cfg.Index),
		a.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("suggest request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("suggest returned error [%d]: %s", res.StatusCode, string(raw))
	}

	return parseSuggestResponse(res.Body, field)
}

// GetByID fetches one document. A missing document is (nil, nil).
func (a *Adapter) GetByID(ctx context.Context, id string) (any, error) {
	res, err := a.es.Get(a.cfg.Index, id, a.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("get returned error [%d]: %s", res.StatusCode, string(raw))
	}

	var doc struct {
		Source map[string]any `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc.Source, nil
}

// IsReady reports whether the cluster answers pings.
func (a *Adapter) IsReady(ctx context.Context) (bool, error) {
	if err := a.ping(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) ping(ctx context.Context) error {
	res, err := a.es.Ping(a.es.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch ping failed: %s", string(raw))
	}
	return nil
}
