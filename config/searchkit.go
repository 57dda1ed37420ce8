package config

import (
	"fmt"
	"time"

	"github.com/jonesrussell/searchkit/facet"
)

// Config is the top-level searchkit configuration.
type Config struct {
	Engine        EngineConfig        `yaml:"engine"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Facets        []facet.Config      `yaml:"facets"`
	Logging       LoggingConfig       `yaml:"logging"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
}

// EngineConfig tunes the state container and the coordinator.
type EngineConfig struct {
	PageSize            int           `yaml:"page_size"             env:"SEARCHKIT_PAGE_SIZE"`
	DebounceInterval    time.Duration `yaml:"debounce_interval"     env:"SEARCHKIT_DEBOUNCE"`
	MinQueryLength      int           `yaml:"min_query_length"      env:"SEARCHKIT_MIN_QUERY_LENGTH"`
	AutoSearch          bool          `yaml:"auto_search"           env:"SEARCHKIT_AUTO_SEARCH"`
	EventHistoryLimit   int           `yaml:"event_history_limit"`
	MaxSuggestions      int           `yaml:"max_suggestions"`
	SuggestionCacheSize int           `yaml:"suggestion_cache_size"`
	SuggestionCacheTTL  time.Duration `yaml:"suggestion_cache_ttl"`
}

// ElasticsearchConfig holds backend connection and query shaping
// settings.
type ElasticsearchConfig struct {
	URL                   string        `yaml:"url"      env:"ELASTICSEARCH_URL"`
	Username              string        `yaml:"username" env:"ELASTICSEARCH_USERNAME"`
	Password              string        `yaml:"password" env:"ELASTICSEARCH_PASSWORD"`
	Index                 string        `yaml:"index"    env:"ELASTICSEARCH_INDEX"`
	MaxRetries            int           `yaml:"max_retries"`
	Timeout               time.Duration `yaml:"timeout"`
	SearchFields          []string      `yaml:"search_fields"`
	SuggestField          string        `yaml:"suggest_field"`
	HighlightEnabled      bool          `yaml:"highlight_enabled"`
	HighlightFragmentSize int           `yaml:"highlight_fragment_size"`
	HighlightMaxFragments int           `yaml:"highlight_max_fragments"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"       env:"LOG_LEVEL"`
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT"`
}

// TelemetryConfig holds telemetry configuration.
type TelemetryConfig struct {
	Prometheus bool `yaml:"prometheus" env:"SEARCHKIT_PROMETHEUS"`
}

// LoadConfig loads, defaults, and validates the searchkit configuration.
func LoadConfig(path string) (*Config, error) {
	cfg, err := LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Engine.PageSize == 0 {
		cfg.Engine.PageSize = 20
	}
	if cfg.Engine.DebounceInterval == 0 {
		cfg.Engine.DebounceInterval = 250 * time.Millisecond
	}
	if cfg.Engine.MinQueryLength == 0 {
		cfg.Engine.MinQueryLength = 2
	}
	if cfg.Engine.MaxSuggestions == 0 {
		cfg.Engine.MaxSuggestions = 10
	}
	if cfg.Engine.SuggestionCacheSize == 0 {
		cfg.Engine.SuggestionCacheSize = 128
	}
	if cfg.Engine.SuggestionCacheTTL == 0 {
		cfg.Engine.SuggestionCacheTTL = 5 * time.Minute
	}

	if cfg.Elasticsearch.URL == "" {
		cfg.Elasticsearch.URL = "http://localhost:9200"
	}
	if cfg.Elasticsearch.MaxRetries == 0 {
		cfg.Elasticsearch.MaxRetries = 3
	}
	if cfg.Elasticsearch.Timeout == 0 {
		cfg.Elasticsearch.Timeout = 30 * time.Second
	}
	if len(cfg.Elasticsearch.SearchFields) == 0 {
		cfg.Elasticsearch.SearchFields = []string{"title^3", "description^2", "body"}
	}
	if cfg.Elasticsearch.SuggestField == "" {
		cfg.Elasticsearch.SuggestField = "title"
	}
	if cfg.Elasticsearch.HighlightFragmentSize == 0 {
		cfg.Elasticsearch.HighlightFragmentSize = 150
	}
	if cfg.Elasticsearch.HighlightMaxFragments == 0 {
		cfg.Elasticsearch.HighlightMaxFragments = 3
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks the configuration for values the engine cannot run
// with.
func (c *Config) Validate() error {
	if c.Engine.PageSize < 1 {
		return &ValidationError{Field: "engine.page_size", Message: "must be greater than 0"}
	}
	if c.Engine.MinQueryLength < 1 {
		return &ValidationError{Field: "engine.min_query_length", Message: "must be greater than 0"}
	}
	if c.Elasticsearch.URL == "" {
		return &ValidationError{Field: "elasticsearch.url", Message: "is required"}
	}
	if c.Elasticsearch.Index == "" {
		return &ValidationError{Field: "elasticsearch.index", Message: "is required"}
	}
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Facets))
	for i, f := range c.Facets {
		if f.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("facets[%d].id", i), Message: "is required"}
		}
		if f.Field == "" {
			return &ValidationError{Field: fmt.Sprintf("facets[%d].field", i), Message: "is required"}
		}
		if _, dup := seen[f.ID]; dup {
			return &ValidationError{Field: fmt.Sprintf("facets[%d].id", i), Message: "duplicate facet id " + f.ID}
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}
