package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/ormschema/internal/orm/capability"
	"github.com/conduit-lang/ormschema/internal/orm/merge"
)

// EnvPrefix prefixes environment overrides, e.g. ORMSCHEMA_LOG_LEVEL
const EnvPrefix = "ORMSCHEMA"

// Full-text modes
const (
	FullTextNever    = "never"
	FullTextAlways   = "always"
	FullTextDatabase = "database"
)

// Cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// MinIndexKeyLength is the smallest index.max_length that still leaves
// room for the hash suffix of truncated keys
const MinIndexKeyLength = 16

// Config represents the ormschema configuration
type Config struct {
	Definitions DefinitionsConfig `mapstructure:"definitions"`
	Output      OutputConfig      `mapstructure:"output"`
	Index       IndexConfig       `mapstructure:"index"`
	FullText    FullTextConfig    `mapstructure:"fulltext"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Log         LogConfig         `mapstructure:"log"`
}

// DefinitionsConfig lists the definition roots, later roots overriding earlier ones
type DefinitionsConfig struct {
	Paths       []string `mapstructure:"paths"`
	MergeMode   string   `mapstructure:"merge_mode"`
	Concurrency int      `mapstructure:"concurrency"`
}

// OutputConfig represents compiled schema output
type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

// IndexConfig represents index naming
type IndexConfig struct {
	MaxLength int `mapstructure:"max_length"`
}

// FullTextConfig selects how full-text support is decided
type FullTextConfig struct {
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig represents the database consulted by the capability probe
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

// CacheConfig represents the definition cache
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig represents the redis cache backend
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig represents logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads the configuration from path, or from ormschema.yaml in the
// working directory when path is empty
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("definitions.paths", []string{"metadata"})
	v.SetDefault("definitions.merge_mode", merge.Replace.String())
	v.SetDefault("definitions.concurrency", 8)
	v.SetDefault("output.path", "")
	v.SetDefault("output.format", "json")
	v.SetDefault("index.max_length", 60)
	v.SetDefault("fulltext.mode", FullTextNever)
	v.SetDefault("database.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("cache.backend", CacheNone)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ormschema")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Mode returns the parsed definitions merge mode
func (c DefinitionsConfig) Mode() merge.Mode {
	mode, _ := merge.ParseMode(c.MergeMode)
	return mode
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Definitions.Paths) == 0 {
		return fmt.Errorf("definitions.paths must list at least one directory")
	}
	if _, err := merge.ParseMode(cfg.Definitions.MergeMode); err != nil {
		return fmt.Errorf("definitions.merge_mode: %w", err)
	}
	if cfg.Definitions.Concurrency < 1 {
		return fmt.Errorf("definitions.concurrency must be positive, got: %d", cfg.Definitions.Concurrency)
	}

	switch cfg.Output.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("output.format must be json or yaml, got: %s", cfg.Output.Format)
	}

	if cfg.Index.MaxLength < MinIndexKeyLength {
		return fmt.Errorf("index.max_length must be at least %d, got: %d", MinIndexKeyLength, cfg.Index.MaxLength)
	}

	switch cfg.FullText.Mode {
	case FullTextNever, FullTextAlways:
	case FullTextDatabase:
		if cfg.Database.URL == "" {
			return fmt.Errorf("fulltext.mode %s requires database.url", FullTextDatabase)
		}
		if _, err := capability.ParseDialect(cfg.Database.Driver); err != nil {
			return fmt.Errorf("database.driver: %w", err)
		}
	default:
		return fmt.Errorf("fulltext.mode must be never, always or database, got: %s", cfg.FullText.Mode)
	}

	switch cfg.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if cfg.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be none, memory or redis, got: %s", cfg.Cache.Backend)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got: %s", cfg.Log.Format)
	}
	return nil
}
