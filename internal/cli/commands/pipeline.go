package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/ormschema/internal/cache"
	"github.com/conduit-lang/ormschema/internal/cli/config"
	"github.com/conduit-lang/ormschema/internal/orm/capability"
	"github.com/conduit-lang/ormschema/internal/orm/converter"
	"github.com/conduit-lang/ormschema/internal/orm/loader"
	"github.com/conduit-lang/ormschema/internal/orm/metadata"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath  string
	logLevel    string
	definitions []string
	noColor     bool
}

// pipeline wires configuration, loader, probe and converter for one command
type pipeline struct {
	cfg       *config.Config
	logger    *zap.Logger
	loader    *loader.Loader
	converter *converter.Converter
	probe     *capability.Cached
	closers   []func() error
}

func newPipeline(ctx context.Context, opts *globalOptions) (*pipeline, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", metadata.ErrConfiguration, err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if len(opts.definitions) > 0 {
		cfg.Definitions.Paths = opts.definitions
	}

	p := &pipeline{cfg: cfg, logger: newLogger(cfg.Log)}

	loaderOpts := []loader.Option{
		loader.WithMergeMode(cfg.Definitions.Mode()),
		loader.WithConcurrency(cfg.Definitions.Concurrency),
		loader.WithLogger(p.logger.Named("loader")),
	}
	store, err := p.treeStore(ctx)
	if err != nil {
		p.Close()
		return nil, err
	}
	if store != nil {
		loaderOpts = append(loaderOpts, loader.WithCache(store))
	}
	p.loader = loader.New(cfg.Definitions.Paths, loaderOpts...)

	probe, err := p.openProbe(ctx)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.probe = capability.NewCached(probe)

	p.converter = converter.New(
		converter.WithProbe(p.probe),
		converter.WithIndexMaxLength(cfg.Index.MaxLength),
		converter.WithLogger(p.logger.Named("converter")),
	)
	return p, nil
}

func newLogger(cfg config.LogConfig) *zap.Logger {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (p *pipeline) treeStore(ctx context.Context) (*cache.TreeStore, error) {
	cacheCfg := cache.DefaultConfig()
	if p.cfg.Cache.TTL > 0 {
		cacheCfg.DefaultTTL = p.cfg.Cache.TTL
	}

	switch p.cfg.Cache.Backend {
	case config.CacheMemory:
		return cache.NewTreeStore(cache.NewMemory(cacheCfg), 0), nil
	case config.CacheRedis:
		r, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     p.cfg.Cache.Redis.Addr,
			Password: p.cfg.Cache.Redis.Password,
			DB:       p.cfg.Cache.Redis.DB,
		}, cacheCfg)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, r.Close)
		return cache.NewTreeStore(r, 0), nil
	default:
		return nil, nil
	}
}

func (p *pipeline) openProbe(ctx context.Context) (capability.Probe, error) {
	switch p.cfg.FullText.Mode {
	case config.FullTextAlways:
		return capability.Always(), nil
	case config.FullTextDatabase:
		dialect, err := capability.ParseDialect(p.cfg.Database.Driver)
		if err != nil {
			return nil, err
		}
		probe, err := capability.Open(ctx, dialect, p.cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, probe.Close)
		p.logger.Debug("capability probe connected", zap.String("dialect", string(dialect)))
		return probe, nil
	default:
		return capability.Never(), nil
	}
}

// compile loads the current snapshot and compiles it
func (p *pipeline) compile(ctx context.Context) (*schema.Schema, error) {
	snap, err := p.loader.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("definitions loaded", zap.String("fingerprint", p.loader.Fingerprint()))
	return p.converter.Process(ctx, snap)
}

// recompile reloads definitions from disk and compiles them
func (p *pipeline) recompile(ctx context.Context) (*schema.Schema, error) {
	snap, err := p.loader.Reload(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info("definitions reloaded", zap.String("fingerprint", p.loader.Fingerprint()))
	p.probe.Reset()
	return p.converter.Process(ctx, snap)
}

// Close releases connections opened for the pipeline
func (p *pipeline) Close() error {
	var first error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	if p.logger != nil {
		_ = p.logger.Sync()
	}
	return first
}

// selectEntities keeps the named entities of s in the given order
func selectEntities(s *schema.Schema, names []string) (*schema.Schema, error) {
	if len(names) == 0 {
		return s, nil
	}
	out := schema.New()
	for _, name := range names {
		e, ok := s.Entity(name)
		if !ok {
			return nil, &entityNotFoundError{name: name, known: s.Names()}
		}
		out = out.Merge(schema.Single(name, e))
	}
	return out, nil
}

type entityNotFoundError struct {
	name  string
	known []string
}

func (e *entityNotFoundError) Error() string {
	return fmt.Sprintf("entity %s is not defined", e.name)
}

// encodeSchema writes s in the given format
func encodeSchema(w io.Writer, s *schema.Schema, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// writeOutput writes data produced by fn to path, or to stdout when path
// is empty. Files are replaced atomically.
func writeOutput(stdout io.Writer, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(stdout)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
