package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/conduit-lang/ormschema/internal/orm/merge"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if len(cfg.Definitions.Paths) != 1 || cfg.Definitions.Paths[0] != "metadata" {
		t.Errorf("expected default definitions path 'metadata', got %v", cfg.Definitions.Paths)
	}
	if cfg.Definitions.Mode() != merge.Replace {
		t.Errorf("expected default merge mode replace, got %s", cfg.Definitions.Mode())
	}
	if cfg.Definitions.Concurrency != 8 {
		t.Errorf("expected default concurrency 8, got %d", cfg.Definitions.Concurrency)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected default format 'json', got %s", cfg.Output.Format)
	}
	if cfg.Index.MaxLength != 60 {
		t.Errorf("expected default index max length 60, got %d", cfg.Index.MaxLength)
	}
	if cfg.FullText.Mode != FullTextNever {
		t.Errorf("expected default fulltext mode 'never', got %s", cfg.FullText.Mode)
	}
	if cfg.Cache.Backend != CacheNone || cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	configContent := `
definitions:
  paths: [core, custom]
  merge_mode: append
  concurrency: 4
output:
  path: build/schema.yaml
  format: yaml
index:
  max_length: 64
fulltext:
  mode: database
database:
  driver: mysql
  url: user:pass@tcp(localhost:3306)/crm
cache:
  backend: redis
  ttl: 1h
  redis:
    addr: redis:6379
    db: 2
log:
  level: debug
  format: json
`
	os.WriteFile("ormschema.yaml", []byte(configContent), 0644)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if strings.Join(cfg.Definitions.Paths, ",") != "core,custom" {
		t.Errorf("expected paths core,custom, got %v", cfg.Definitions.Paths)
	}
	if cfg.Definitions.Mode() != merge.Append {
		t.Errorf("expected merge mode append, got %s", cfg.Definitions.Mode())
	}
	if cfg.Definitions.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", cfg.Definitions.Concurrency)
	}
	if cfg.Output.Path != "build/schema.yaml" || cfg.Output.Format != "yaml" {
		t.Errorf("unexpected output config: %+v", cfg.Output)
	}
	if cfg.Index.MaxLength != 64 {
		t.Errorf("expected index max length 64, got %d", cfg.Index.MaxLength)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("expected driver mysql, got %s", cfg.Database.Driver)
	}
	if cfg.Cache.TTL != time.Hour || cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	os.WriteFile(path, []byte("output:\n  format: yaml\n"), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error loading %s, got %v", path, err)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("expected format yaml, got %s", cfg.Output.Format)
	}

	if _, err := Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ORMSCHEMA_LOG_LEVEL", "warn")
	t.Setenv("ORMSCHEMA_INDEX_MAX_LENGTH", "40")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level from environment, got %s", cfg.Log.Level)
	}
	if cfg.Index.MaxLength != 40 {
		t.Errorf("expected index max length from environment, got %d", cfg.Index.MaxLength)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Definitions: DefinitionsConfig{Paths: []string{"metadata"}, Concurrency: 8},
			Output:      OutputConfig{Format: "json"},
			Index:       IndexConfig{MaxLength: 60},
			FullText:    FullTextConfig{Mode: FullTextNever},
			Cache:       CacheConfig{Backend: CacheNone},
			Log:         LogConfig{Level: "info", Format: "console"},
		}
	}

	if err := validateConfig(valid()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no paths", func(c *Config) { c.Definitions.Paths = nil }, "definitions.paths"},
		{"merge mode", func(c *Config) { c.Definitions.MergeMode = "zip" }, "definitions.merge_mode"},
		{"concurrency", func(c *Config) { c.Definitions.Concurrency = 0 }, "definitions.concurrency"},
		{"format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"max length", func(c *Config) { c.Index.MaxLength = 8 }, "index.max_length"},
		{"fulltext mode", func(c *Config) { c.FullText.Mode = "sometimes" }, "fulltext.mode"},
		{"database url", func(c *Config) { c.FullText.Mode = FullTextDatabase }, "database.url"},
		{"database driver", func(c *Config) {
			c.FullText.Mode = FullTextDatabase
			c.Database.URL = "postgres://localhost/crm"
			c.Database.Driver = "oracle"
		}, "database.driver"},
		{"cache backend", func(c *Config) { c.Cache.Backend = "disk" }, "cache.backend"},
		{"redis addr", func(c *Config) { c.Cache.Backend = CacheRedis }, "cache.redis.addr"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
