// Package loader reads definition roots from disk into metadata snapshots.
//
// A root is a directory holding entityDefs/, fields/, links/ and scopes/
// subdirectories with one YAML or JSON file per entity or type. Roots are
// layered in order, later roots overriding earlier ones.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/ormschema/internal/cache"
	"github.com/conduit-lang/ormschema/internal/orm/merge"
	"github.com/conduit-lang/ormschema/internal/orm/metadata"
)

// Sections read from every root
var Sections = []string{
	metadata.SectionEntityDefs,
	metadata.SectionFields,
	metadata.SectionLinks,
	metadata.SectionScopes,
}

// Extensions of definition files
var Extensions = []string{".yaml", ".yml", ".json"}

// DefaultConcurrency bounds parallel file parsing
const DefaultConcurrency = 8

// Loader builds snapshots from definition roots. Snapshot and Reload are
// safe for concurrent use.
type Loader struct {
	roots       []string
	store       *cache.TreeStore
	mode        merge.Mode
	concurrency int
	logger      *zap.Logger

	mu       sync.Mutex
	snapshot *metadata.Snapshot
	current  string
}

// Option configures a Loader
type Option func(*Loader)

// WithCache keeps decoded trees in store
func WithCache(store *cache.TreeStore) Option {
	return func(l *Loader) { l.store = store }
}

// WithMergeMode sets how lists from later roots combine with earlier ones
func WithMergeMode(mode merge.Mode) Option {
	return func(l *Loader) { l.mode = mode }
}

// WithConcurrency bounds parallel file parsing
func WithConcurrency(n int) Option {
	return func(l *Loader) { l.concurrency = n }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a loader over roots
func New(roots []string, opts ...Option) *Loader {
	l := &Loader{
		roots:       append([]string(nil), roots...),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.concurrency <= 0 {
		l.concurrency = DefaultConcurrency
	}
	return l
}

// Roots returns the configured roots
func (l *Loader) Roots() []string {
	return append([]string(nil), l.roots...)
}

// Dirs returns every directory definitions are read from: each root
// followed by its section directories
func (l *Loader) Dirs() []string {
	dirs := make([]string, 0, len(l.roots)*(len(Sections)+1))
	for _, root := range l.roots {
		dirs = append(dirs, root)
		for _, section := range Sections {
			dirs = append(dirs, filepath.Join(root, section))
		}
	}
	return dirs
}

// Fingerprint returns the source fingerprint of the current snapshot
func (l *Loader) Fingerprint() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Snapshot returns the current snapshot, loading it on first use
func (l *Loader) Snapshot(ctx context.Context) (*metadata.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snapshot != nil {
		return l.snapshot, nil
	}
	return l.load(ctx)
}

// Reload reads the roots again and replaces the current snapshot. The
// previous snapshot stays current when loading fails.
func (l *Loader) Reload(ctx context.Context) (*metadata.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

type sourceFile struct {
	section string
	name    string
	path    string
	data    []byte
}

func (l *Loader) load(ctx context.Context) (*metadata.Snapshot, error) {
	files, err := l.discover()
	if err != nil {
		return nil, err
	}
	fingerprint := fingerprintOf(files)

	var tree map[string]any
	if l.store != nil {
		cached, ok, err := l.store.Load(ctx, fingerprint)
		if err != nil {
			l.logger.Warn("definition cache unavailable", zap.Error(err))
		}
		if ok {
			tree = cached
			l.logger.Debug("definitions loaded from cache", zap.String("fingerprint", fingerprint))
		}
	}

	if tree == nil {
		tree, err = l.parse(ctx, files)
		if err != nil {
			return nil, err
		}
		if l.store != nil {
			if err := l.store.Save(ctx, fingerprint, tree); err != nil {
				l.logger.Warn("failed to cache definitions", zap.Error(err))
			}
		}
	}

	snap, err := metadata.NewSnapshot(tree)
	if err != nil {
		return nil, err
	}

	l.snapshot = snap
	l.current = fingerprint
	l.logger.Info("definitions loaded",
		zap.Int("files", len(files)),
		zap.Int("entities", len(snap.EntityNames())),
		zap.String("fingerprint", fingerprint),
	)
	return snap, nil
}

// discover lists definition files in layering order and reads them
func (l *Loader) discover() ([]sourceFile, error) {
	var files []sourceFile
	for _, root := range l.roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("definition root %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("definition root %s is not a directory", root)
		}

		for _, section := range Sections {
			entries, err := os.ReadDir(filepath.Join(root, section))
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", filepath.Join(root, section), err)
			}

			names := make([]string, 0, len(entries))
			for _, e := range entries {
				if !e.IsDir() && IsDefinitionFile(e.Name()) {
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)

			for _, name := range names {
				path := filepath.Join(root, section, name)
				data, err := os.ReadFile(path)
				if err != nil {
					return nil, fmt.Errorf("failed to read %s: %w", path, err)
				}
				files = append(files, sourceFile{
					section: section,
					name:    strings.TrimSuffix(name, filepath.Ext(name)),
					path:    path,
					data:    data,
				})
			}
		}
	}
	return files, nil
}

// parse decodes files concurrently and layers them in discovery order
func (l *Loader) parse(ctx context.Context, files []sourceFile) (map[string]any, error) {
	parsed := make([]any, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc any
			if err := yaml.Unmarshal(f.data, &doc); err != nil {
				return fmt.Errorf("%w: failed to parse %s: %v", metadata.ErrConfiguration, f.path, err)
			}
			parsed[i] = merge.Normalize(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tree := map[string]any{}
	for i, f := range files {
		layer := map[string]any{f.section: map[string]any{f.name: parsed[i]}}
		tree = merge.MergeWith(l.mode, tree, layer)
	}
	return tree, nil
}

// IsDefinitionFile reports whether name has a definition file extension
func IsDefinitionFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// fingerprintOf hashes file locations and contents
func fingerprintOf(files []sourceFile) string {
	h := sha256.New()
	for _, f := range files {
		h.Write([]byte(f.path))
		h.Write([]byte{0})
		h.Write(f.data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
