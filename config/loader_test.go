package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/searchkit/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
elasticsearch:
  index: characters
`

func TestLoadConfig_Defaults(t *testing.T) {
	t.Helper()

	cfg, err := config.LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Engine.PageSize != 20 {
		t.Errorf("page size = %d, want 20", cfg.Engine.PageSize)
	}
	if cfg.Engine.DebounceInterval != 250*time.Millisecond {
		t.Errorf("debounce = %v, want 250ms", cfg.Engine.DebounceInterval)
	}
	if cfg.Engine.MinQueryLength != 2 {
		t.Errorf("min query length = %d, want 2", cfg.Engine.MinQueryLength)
	}
	if cfg.Elasticsearch.URL != "http://localhost:9200" {
		t.Errorf("url = %q, want localhost default", cfg.Elasticsearch.URL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	t.Helper()

	cfg, err := config.LoadConfig(writeConfig(t, `
engine:
  page_size: 50
  debounce_interval: 100ms
  auto_search: true
elasticsearch:
  url: http://search.internal:9200
  index: characters
facets:
  - id: status
    field: status
    kind: checkbox
    label: Status
  - id: price
    field: price
    kind: number-range
`))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Engine.PageSize != 50 {
		t.Errorf("page size = %d, want 50", cfg.Engine.PageSize)
	}
	if cfg.Engine.DebounceInterval != 100*time.Millisecond {
		t.Errorf("debounce = %v, want 100ms", cfg.Engine.DebounceInterval)
	}
	if !cfg.Engine.AutoSearch {
		t.Error("auto_search should be true")
	}
	if len(cfg.Facets) != 2 {
		t.Fatalf("len(facets) = %d, want 2", len(cfg.Facets))
	}
	if cfg.Facets[0].ID != "status" || cfg.Facets[0].Kind != "checkbox" {
		t.Errorf("facets[0] = %+v", cfg.Facets[0])
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Helper()

	t.Setenv("ELASTICSEARCH_URL", "http://override:9200")
	t.Setenv("SEARCHKIT_PAGE_SIZE", "35")
	t.Setenv("SEARCHKIT_AUTO_SEARCH", "yes")

	cfg, err := config.LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Elasticsearch.URL != "http://override:9200" {
		t.Errorf("url = %q, want the env override", cfg.Elasticsearch.URL)
	}
	if cfg.Engine.PageSize != 35 {
		t.Errorf("page size = %d, want 35 from env", cfg.Engine.PageSize)
	}
	if !cfg.Engine.AutoSearch {
		t.Error("auto_search should accept yes")
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Helper()

	tests := []struct {
		name string
		yaml string
	}{
		{"missing index", `
elasticsearch:
  url: http://localhost:9200
`},
		{"duplicate facet id", `
elasticsearch:
  index: characters
facets:
  - id: status
    field: status
  - id: status
    field: other
`},
		{"facet without field", `
elasticsearch:
  index: characters
facets:
  - id: status
`},
		{"bad log level", `
elasticsearch:
  index: characters
logging:
  level: loud
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.LoadConfig(writeConfig(t, tt.yaml)); err == nil {
				t.Error("LoadConfig() should fail validation")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Helper()

	if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("LoadConfig() should fail for a missing file")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Helper()

	if got := config.GetConfigPath("default.yml"); got != "default.yml" {
		t.Errorf("GetConfigPath() = %q, want default.yml", got)
	}
	t.Setenv("CONFIG_PATH", "/etc/searchkit.yml")
	if got := config.GetConfigPath("default.yml"); got != "/etc/searchkit.yml" {
		t.Errorf("GetConfigPath() = %q, want the env value", got)
	}
}
