package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults should be intentional, so each one is pinned here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default seeds are the four UCI departments", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Seeds) != 4 {
			t.Fatalf("expected 4 seeds, got %d", len(cfg.Seeds))
		}
		if cfg.Seeds[0] != "https://www.ics.uci.edu" {
			t.Errorf("expected first seed https://www.ics.uci.edu, got %s", cfg.Seeds[0])
		}
	})

	t.Run("default Workers is 1", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 1 {
			t.Errorf("expected Workers to be 1, got %d", cfg.Workers)
		}
	})

	t.Run("default PolitenessDelay is 500ms", func(t *testing.T) {
		t.Parallel()
		if cfg.PolitenessDelay != 500*time.Millisecond {
			t.Errorf("expected PolitenessDelay to be 500ms, got %v", cfg.PolitenessDelay)
		}
	})

	t.Run("default word bounds are 10 to 100000", func(t *testing.T) {
		t.Parallel()
		if cfg.MinWords != 10 || cfg.MaxWords != 100000 {
			t.Errorf("expected 10..100000, got %d..%d", cfg.MinWords, cfg.MaxWords)
		}
	})

	t.Run("default duplicate settings", func(t *testing.T) {
		t.Parallel()
		if cfg.TextCacheSize != 100 || cfg.TokenCacheSize != 100 {
			t.Errorf("expected cache sizes 100, got %d and %d", cfg.TextCacheSize, cfg.TokenCacheSize)
		}
		if cfg.SimilarityThreshold != 0.9 {
			t.Errorf("expected threshold 0.9, got %v", cfg.SimilarityThreshold)
		}
	})

	t.Run("default output files", func(t *testing.T) {
		t.Parallel()
		if cfg.ReportFile != "pages.txt" {
			t.Errorf("expected ReportFile pages.txt, got %s", cfg.ReportFile)
		}
		if cfg.PageLogFile != "urlcontents.txt" {
			t.Errorf("expected PageLogFile urlcontents.txt, got %s", cfg.PageLogFile)
		}
		if cfg.ReportFormat != "text" {
			t.Errorf("expected ReportFormat text, got %s", cfg.ReportFormat)
		}
	})

	t.Run("default DBDir is the XDG data directory", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %s, got %s", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("defaults are copies", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.Seeds[0] = "https://example.com"
		if DefaultSeeds[0] == "https://example.com" {
			t.Error("modifying a config must not change DefaultSeeds")
		}
	})
}

// TestConfigValidate tests the Validate method of Config.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "no seeds", modify: func(c *Config) { c.Seeds = nil }, wantErr: ErrNoSeeds},
		{name: "relative seed", modify: func(c *Config) { c.Seeds = []string{"/about"} }, wantErr: ErrInvalidSeed},
		{name: "ftp seed", modify: func(c *Config) { c.Seeds = []string{"ftp://ics.uci.edu"} }, wantErr: ErrInvalidSeed},
		{name: "no domains", modify: func(c *Config) { c.Domains = nil }, wantErr: ErrNoDomains},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }, wantErr: ErrInvalidWorkers},
		{name: "negative delay", modify: func(c *Config) { c.PolitenessDelay = -time.Second }, wantErr: ErrInvalidPolitenessDelay},
		{name: "zero delay is valid", modify: func(c *Config) { c.PolitenessDelay = 0 }},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "zero body size", modify: func(c *Config) { c.MaxBodySize = 0 }, wantErr: ErrInvalidMaxBodySize},
		{name: "inverted word bounds", modify: func(c *Config) { c.MinWords, c.MaxWords = 50, 10 }, wantErr: ErrInvalidWordBounds},
		{name: "negative min words", modify: func(c *Config) { c.MinWords = -1 }, wantErr: ErrInvalidWordBounds},
		{name: "zero text cache", modify: func(c *Config) { c.TextCacheSize = 0 }, wantErr: ErrInvalidCacheSize},
		{name: "zero token cache", modify: func(c *Config) { c.TokenCacheSize = 0 }, wantErr: ErrInvalidCacheSize},
		{name: "threshold above one", modify: func(c *Config) { c.SimilarityThreshold = 1.5 }, wantErr: ErrInvalidThreshold},
		{name: "threshold of one is valid", modify: func(c *Config) { c.SimilarityThreshold = 1 }},
		{name: "zero threshold", modify: func(c *Config) { c.SimilarityThreshold = 0 }, wantErr: ErrInvalidThreshold},
		{name: "zero top words", modify: func(c *Config) { c.TopWords = 0 }, wantErr: ErrInvalidTopWords},
		{name: "empty report file", modify: func(c *Config) { c.ReportFile = "" }, wantErr: ErrNoReportFile},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

const sampleConfig = `
seeds:
  - https://www.ics.uci.edu
crawl:
  workers: 4
  delay: 250ms
fetch:
  timeout: 10s
  userAgent: test-agent
  proxy: 127.0.0.1:9050
  headers:
    X-Crawler: domaincrawl
filter:
  domains:
    - name: ics.uci.edu
    - name: today.uci.edu
      pathPrefix: /department/
  traps:
    - /calendar
  ignorePatterns:
    - "**/print"
content:
  minWords: 20
  stopWords: [foo, bar]
dedup:
  threshold: 0.8
output:
  report: out.md
  reportFormat: markdown
  appendPageLog: true
`

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("parses every section", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile: %v", err)
		}
		if f.Crawl.Workers != 4 || f.Crawl.Delay != 250*time.Millisecond {
			t.Errorf("unexpected crawl section: %+v", f.Crawl)
		}
		if f.Fetch.Timeout != 10*time.Second {
			t.Errorf("expected timeout 10s, got %v", f.Fetch.Timeout)
		}
		if len(f.Filter.Domains) != 2 || f.Filter.Domains[1].PathPrefix != "/department/" {
			t.Errorf("unexpected domains: %+v", f.Filter.Domains)
		}
		if f.Dedup.Threshold != 0.8 {
			t.Errorf("expected threshold 0.8, got %v", f.Dedup.Threshold)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml returns an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("crawl: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("non-zero values override defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
			t.Fatal(err)
		}
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatal(err)
		}

		cfg := NewConfig()
		f.Apply(cfg)

		if len(cfg.Seeds) != 1 {
			t.Errorf("expected 1 seed, got %v", cfg.Seeds)
		}
		if cfg.Workers != 4 || cfg.PolitenessDelay != 250*time.Millisecond {
			t.Errorf("crawl section not applied: workers=%d delay=%v", cfg.Workers, cfg.PolitenessDelay)
		}
		if cfg.UserAgent != "test-agent" || cfg.ProxyAddress != "127.0.0.1:9050" {
			t.Errorf("fetch section not applied: %q %q", cfg.UserAgent, cfg.ProxyAddress)
		}
		if cfg.Headers["X-Crawler"] != "domaincrawl" {
			t.Errorf("headers not applied: %v", cfg.Headers)
		}
		if cfg.MinWords != 20 || cfg.MaxWords != DefaultMaxWords {
			t.Errorf("word bounds: got %d..%d", cfg.MinWords, cfg.MaxWords)
		}
		if cfg.SimilarityThreshold != 0.8 {
			t.Errorf("expected threshold 0.8, got %v", cfg.SimilarityThreshold)
		}
		if cfg.ReportFile != "out.md" || cfg.ReportFormat != "markdown" {
			t.Errorf("output section not applied: %q %q", cfg.ReportFile, cfg.ReportFormat)
		}
		if !cfg.AppendPageLog {
			t.Error("expected AppendPageLog to be true")
		}
		if cfg.PageLogFile != DefaultPageLogFile {
			t.Errorf("expected page log to keep default, got %q", cfg.PageLogFile)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("applied config should be valid: %v", err)
		}
	})

	t.Run("empty file leaves defaults untouched", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		(&File{}).Apply(cfg)
		if cfg.Workers != DefaultWorkers || len(cfg.Seeds) != len(DefaultSeeds) {
			t.Errorf("defaults changed: %+v", cfg)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("seeds: []"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); got != "" {
			t.Errorf("expected empty, got %s", got)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing path is an error", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("explicit file is applied and recorded", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("crawl:\n  workers: 3\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Workers != 3 {
			t.Errorf("expected 3 workers, got %d", cfg.Workers)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("expected ConfigFilePath %s, got %s", path, cfg.ConfigFilePath)
		}
	})
}
