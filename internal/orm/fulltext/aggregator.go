// Package fulltext builds the full-text search column list and index of an
// entity from its text filter fields.
package fulltext

import (
	"context"
	"fmt"

	"github.com/conduit-lang/ormschema/internal/orm/capability"
	"github.com/conduit-lang/ormschema/internal/orm/metadata"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
	ustrings "github.com/conduit-lang/ormschema/internal/util/strings"
)

// IndexName is the reserved name of the full-text index
const IndexName = "system_fullTextSearch"

// DefaultTextFilterFields is used when an entity declares no filter fields
var DefaultTextFilterFields = []string{"name"}

// Aggregator derives full-text search metadata
type Aggregator struct {
	defs  metadata.Definitions
	probe capability.Probe
}

// NewAggregator creates an aggregator
func NewAggregator(defs metadata.Definitions, probe capability.Probe) *Aggregator {
	return &Aggregator{defs: defs, probe: probe}
}

// Apply returns a fragment carrying the full-text column list and index of
// entity, or nil when the entity does not opt in, the backend cannot index
// its table or no column qualifies.
func (a *Aggregator) Apply(ctx context.Context, entity string, def *metadata.EntityDefinition) (*schema.EntitySchema, error) {
	if def == nil || def.Collection == nil || !def.Collection.FullTextSearch {
		return nil, nil
	}

	table := ustrings.TableName(entity)
	ok, err := a.probe.SupportsFullText(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("full-text capability of %s: %w", table, err)
	}
	if !ok {
		return nil, nil
	}

	columns := a.Columns(def)
	if len(columns) == 0 {
		return nil, nil
	}

	e := schema.NewEntity()
	e.FullTextSearchColumnList = columns
	e.Indexes.Set(IndexName, &schema.Index{
		Columns: append([]string(nil), columns...),
		Flags:   []string{schema.FlagFullText},
	})
	return e, nil
}

// Columns lists the storage columns searched for def's text filter fields
func (a *Aggregator) Columns(def *metadata.EntityDefinition) []string {
	fields := DefaultTextFilterFields
	if def.Collection != nil && len(def.Collection.TextFilterFields) > 0 {
		fields = def.Collection.TextFilterFields
	}

	var columns []string
	for _, name := range fields {
		decl, ok := def.Field(name)
		if !ok {
			continue
		}
		fieldType := decl.Type()
		if fieldType == "" || decl.IsNotStorable() {
			continue
		}
		meta := a.defs.FieldTypeMetadata(fieldType)
		if !meta.FullTextSearch {
			continue
		}

		if len(meta.FullTextSearchColumnList) == 0 {
			columns = append(columns, name)
			continue
		}
		for _, part := range meta.FullTextSearchColumnList {
			if meta.NamingConvention() == metadata.NamingPrefix {
				columns = append(columns, part+ustrings.UpperFirst(name))
			} else {
				columns = append(columns, name+ustrings.UpperFirst(part))
			}
		}
	}
	return columns
}
