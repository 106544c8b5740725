// Package converter compiles entity definitions into a storage schema.
//
// Each entity is compiled in stages: seed fields, declared fields, field
// type post-processors, links, full-text search, indexes and collection
// defaults. Stage results are merged into the running schema, never
// written into it. A global normalization pass and the junction entities of
// many-to-many relations finish the run.
package converter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/ormschema/internal/orm/capability"
	"github.com/conduit-lang/ormschema/internal/orm/fields"
	"github.com/conduit-lang/ormschema/internal/orm/fieldtype"
	"github.com/conduit-lang/ormschema/internal/orm/fulltext"
	"github.com/conduit-lang/ormschema/internal/orm/index"
	"github.com/conduit-lang/ormschema/internal/orm/metadata"
	"github.com/conduit-lang/ormschema/internal/orm/relationships"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

// Converter compiles definitions into a schema. It holds no per-run state
// and is safe for concurrent use.
type Converter struct {
	probe    capability.Probe
	registry *fields.Registry
	diag     Diagnostics
	indexes  *index.Synthesizer
	logger   *zap.Logger
}

// Option configures a Converter
type Option func(*Converter)

// WithProbe sets the storage capability probe
func WithProbe(p capability.Probe) Option {
	return func(c *Converter) { c.probe = p }
}

// WithRegistry sets the field post-processor registry
func WithRegistry(r *fields.Registry) Option {
	return func(c *Converter) { c.registry = r }
}

// WithDiagnostics sets the diagnostics sink
func WithDiagnostics(d Diagnostics) Option {
	return func(c *Converter) { c.diag = d }
}

// WithIndexMaxLength bounds generated index keys
func WithIndexMaxLength(n int) Option {
	return func(c *Converter) { c.indexes = index.NewSynthesizer(n) }
}

// WithLogger sets the logger used for run summaries and, unless
// WithDiagnostics is given, for diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// New creates a converter. Without a probe, full-text indexes are never
// generated.
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.probe == nil {
		c.probe = capability.Never()
	}
	if c.registry == nil {
		c.registry = fields.NewRegistry()
	}
	if c.diag == nil {
		c.diag = NewZapDiagnostics(c.logger)
	}
	if c.indexes == nil {
		c.indexes = index.NewSynthesizer(index.DefaultMaxLength)
	}
	return c
}

// Process compiles every entity of defs. Entities with empty definitions
// are reported as critical and skipped; configuration errors abort the run.
func (c *Converter) Process(ctx context.Context, defs metadata.Definitions) (*schema.Schema, error) {
	r := &run{
		Converter:  c,
		defs:       defs,
		id:         uuid.NewString(),
		fieldTypes: fieldtype.NewResolver(defs),
		links:      relationships.NewResolver(defs),
		fulltext:   fulltext.NewAggregator(defs, c.probe),
	}
	return r.process(ctx)
}

// run carries the state of one Process call
type run struct {
	*Converter
	defs       metadata.Definitions
	id         string
	fieldTypes *fieldtype.Resolver
	links      *relationships.Resolver
	fulltext   *fulltext.Aggregator
}

func (r *run) process(ctx context.Context) (*schema.Schema, error) {
	start := time.Now()
	out := schema.New()
	skipped := 0

	for _, name := range r.defs.EntityNames() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		def, ok := r.defs.EntityDefinition(name)
		if !ok || def == nil {
			r.diag.Critical("entity metadata cannot be converted into a schema",
				zap.String("entity", name),
				zap.String("run_id", r.id),
			)
			skipped++
			continue
		}

		next, err := r.convertEntity(ctx, name, def, out)
		if err != nil {
			return nil, err
		}
		out = next
	}

	out, err := r.normalize(out)
	if err != nil {
		return nil, err
	}

	junctions, err := r.normalize(r.junctions(out))
	if err != nil {
		return nil, err
	}
	out = out.Merge(junctions)

	r.logger.Info("schema compiled",
		zap.String("run_id", r.id),
		zap.Int("entities", out.Len()),
		zap.Int("junctions", junctions.Len()),
		zap.Int("skipped", skipped),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

func (r *run) logFields(entity string, extra ...zap.Field) []zap.Field {
	return append([]zap.Field{zap.String("entity", entity), zap.String("run_id", r.id)}, extra...)
}
