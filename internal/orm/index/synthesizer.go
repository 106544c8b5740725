// Package index derives indexes from field flags and assigns stable,
// length-bounded storage keys to every index.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/conduit-lang/ormschema/internal/orm/metadata"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
	ustrings "github.com/conduit-lang/ormschema/internal/util/strings"
)

// DefaultMaxLength bounds generated keys when no limit is configured
const DefaultMaxLength = 60

// Key prefixes per index kind
const (
	TagIndex    = "IDX"
	TagUnique   = "UNIQ"
	TagFullText = "FT"
)

const hashLen = 8

// Synthesizer builds the index section of a compiled entity
type Synthesizer struct {
	maxLength int
}

// NewSynthesizer creates a synthesizer bounding keys to maxLength
// characters. Values below the hashed suffix length use DefaultMaxLength.
func NewSynthesizer(maxLength int) *Synthesizer {
	if maxLength <= hashLen+1 {
		maxLength = DefaultMaxLength
	}
	return &Synthesizer{maxLength: maxLength}
}

// MaxLength returns the key length bound
func (s *Synthesizer) MaxLength() int {
	return s.maxLength
}

// Apply returns e with field-derived indexes added beneath the explicitly
// declared ones and every missing key filled in.
func (s *Synthesizer) Apply(e *schema.EntitySchema) *schema.EntitySchema {
	out := e.Clone()

	derived := FieldIndexes(e.Fields)
	derived.Each(func(name string, idx *schema.Index) {
		if !out.Indexes.Has(name) {
			out.Indexes.Set(name, idx)
		}
	})

	out.Indexes = s.withKeys(out.Indexes)

	for _, name := range out.Relations.Keys() {
		rel, _ := out.Relations.Get(name)
		if rel.Indexes.Len() == 0 {
			continue
		}
		next := rel.Clone()
		next.Indexes = s.withKeys(rel.Indexes)
		out.Relations.Set(name, next)
	}
	return out
}

func (s *Synthesizer) withKeys(indexes *schema.Ordered[*schema.Index]) *schema.Ordered[*schema.Index] {
	out := schema.NewOrdered[*schema.Index]()
	indexes.Each(func(name string, idx *schema.Index) {
		next := idx.Clone()
		if next.Key == "" {
			next.Key = s.KeyName(name, idx.Kind())
		}
		out.Set(name, next)
	})
	return out
}

// KeyName derives the storage key of an index from its name and kind only.
// Keys longer than the bound are truncated and suffixed with a hash of the
// full key.
func (s *Synthesizer) KeyName(name string, kind schema.IndexKind) string {
	key := tag(kind) + "_" + strings.ToUpper(ustrings.ToSnakeCase(name))
	if len(key) <= s.maxLength {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	suffix := "_" + strings.ToUpper(hex.EncodeToString(sum[:]))[:hashLen]
	cut := s.maxLength - len(suffix)
	for cut > 0 && !utf8.RuneStart(key[cut]) {
		cut--
	}
	return key[:cut] + suffix
}

func tag(kind schema.IndexKind) string {
	switch kind {
	case schema.KindUnique:
		return TagUnique
	case schema.KindFullText:
		return TagFullText
	default:
		return TagIndex
	}
}

// FieldIndexes collects indexes requested by unique and index flags on
// storable fields. Fields naming the same index share it as a composite.
func FieldIndexes(fields *schema.Ordered[*schema.Field]) *schema.Ordered[*schema.Index] {
	out := schema.NewOrdered[*schema.Index]()
	add := func(name, column string, kind schema.IndexKind) {
		idx, ok := out.Get(name)
		if !ok {
			out.Set(name, &schema.Index{Type: kind, Columns: []string{column}})
			return
		}
		if kind == schema.KindUnique {
			idx.Type = schema.KindUnique
		}
		for _, c := range idx.Columns {
			if c == column {
				return
			}
		}
		idx.Columns = append(idx.Columns, column)
	}

	fields.Each(func(name string, f *schema.Field) {
		if f.IsNotStorable() {
			return
		}
		if f.Unique != nil && f.Unique.Enabled {
			add(f.Unique.IndexName(name), name, schema.KindUnique)
		}
		if f.Index != nil && f.Index.Enabled {
			add(f.Index.IndexName(name), name, schema.KindIndex)
		}
	})
	return out
}

// FromDeclarations converts explicitly declared entity indexes, sorted by name
func FromDeclarations(decls map[string]metadata.IndexDeclaration) *schema.Ordered[*schema.Index] {
	out := schema.NewOrdered[*schema.Index]()
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		d := decls[name]
		idx := &schema.Index{
			Type:    schema.IndexKind(d.Type),
			Columns: append([]string(nil), d.Columns...),
			Key:     d.Key,
		}
		if len(d.Flags) > 0 {
			idx.Flags = append([]string(nil), d.Flags...)
		}
		if d.Unique {
			idx.Type = schema.KindUnique
		}
		out.Set(name, idx)
	}
	return out
}
