package coordinator

import "time"

// Default configuration values.
const (
	DefaultDebounceInterval    = 250 * time.Millisecond
	DefaultMinQueryLength      = 2
	DefaultMaxSuggestions      = 10
	DefaultSuggestionCacheSize = 128
	DefaultSuggestionCacheTTL  = 5 * time.Minute
)

// Config tunes the coordinator pipelines.
type Config struct {
	// DebounceInterval is the quiet period before a dispatched search
	// or suggestion request reaches the adapter.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
	// MinQueryLength rejects non-empty query text shorter than this.
	MinQueryLength int `yaml:"min_query_length"`
	// AutoSearch re-runs the search whenever the composed query
	// changes.
	AutoSearch bool `yaml:"auto_search"`
	// EventHistoryLimit bounds the store's event history when set. Zero
	// disables history, negative means unbounded, nil keeps the store's
	// configured limit.
	EventHistoryLimit *int `yaml:"event_history_limit"`
	// MaxSuggestions caps suggestion responses.
	MaxSuggestions int `yaml:"max_suggestions"`
	// SuggestionCacheSize bounds the suggestion LRU. Negative disables
	// caching.
	SuggestionCacheSize int `yaml:"suggestion_cache_size"`
	// SuggestionCacheTTL expires cached suggestion lists.
	SuggestionCacheTTL time.Duration `yaml:"suggestion_cache_ttl"`
}

// DefaultConfig returns the default coordinator configuration with
// auto-search enabled.
func DefaultConfig() Config {
	return Config{
		DebounceInterval:    DefaultDebounceInterval,
		MinQueryLength:      DefaultMinQueryLength,
		AutoSearch:          true,
		MaxSuggestions:      DefaultMaxSuggestions,
		SuggestionCacheSize: DefaultSuggestionCacheSize,
		SuggestionCacheTTL:  DefaultSuggestionCacheTTL,
	}
}

// setDefaults fills zero numeric fields. AutoSearch is taken as given:
// a caller-provided Config is explicit about it.
func (c *Config) setDefaults() {
	if c.MinQueryLength <= 0 {
		c.MinQueryLength = DefaultMinQueryLength
	}
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = DefaultMaxSuggestions
	}
	if c.SuggestionCacheSize == 0 {
		c.SuggestionCacheSize = DefaultSuggestionCacheSize
	}
	if c.SuggestionCacheTTL <= 0 {
		c.SuggestionCacheTTL = DefaultSuggestionCacheTTL
	}
}

// ConfigPatch is a partial configuration merged by SetConfig. Nil
// fields leave the current value untouched.
type ConfigPatch struct {
	DebounceInterval  *time.Duration
	MinQueryLength    *int
	AutoSearch        *bool
	EventHistoryLimit *int
	MaxSuggestions    *int
}

func (c *Config) apply(p ConfigPatch) {
	if p.DebounceInterval != nil {
		c.DebounceInterval = *p.DebounceInterval
	}
	if p.MinQueryLength != nil {
		c.MinQueryLength = *p.MinQueryLength
	}
	if p.AutoSearch != nil {
		c.AutoSearch = *p.AutoSearch
	}
	if p.EventHistoryLimit != nil {
		limit := *p.EventHistoryLimit
		c.EventHistoryLimit = &limit
	}
	if p.MaxSuggestions != nil {
		c.MaxSuggestions = *p.MaxSuggestions
	}
}
