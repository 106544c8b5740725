package schema

import (
	"fmt"

	"github.com/conduit-lang/ormschema/internal/orm/merge"
)

// Collection holds the default list ordering of an entity
type Collection struct {
	OrderBy string `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	Order   string `json:"order,omitempty" yaml:"order,omitempty"`
}

func (c *Collection) clone() *Collection {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (c *Collection) merge(overlay *Collection) *Collection {
	if c == nil {
		return overlay.clone()
	}
	if overlay == nil {
		return c.clone()
	}
	return &Collection{
		OrderBy: pickString(c.OrderBy, overlay.OrderBy),
		Order:   pickString(c.Order, overlay.Order),
	}
}

// EntitySchema is the compiled schema of one entity
type EntitySchema struct {
	Fields                   *Ordered[*Field]    `json:"fields" yaml:"fields"`
	Relations                *Ordered[*Relation] `json:"relations,omitempty" yaml:"relations,omitempty"`
	Indexes                  *Ordered[*Index]    `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	FullTextSearchColumnList []string            `json:"fullTextSearchColumnList,omitempty" yaml:"fullTextSearchColumnList,omitempty"`
	Collection               *Collection         `json:"collection,omitempty" yaml:"collection,omitempty"`
	AdditionalTables         map[string]any      `json:"additionalTables,omitempty" yaml:"additionalTables,omitempty"`
	SkipRebuild              *bool               `json:"skipRebuild,omitempty" yaml:"skipRebuild,omitempty"`
}

// NewEntity creates an entity schema with empty sections
func NewEntity() *EntitySchema {
	return &EntitySchema{
		Fields:    NewOrdered[*Field](),
		Relations: NewOrdered[*Relation](),
		Indexes:   NewOrdered[*Index](),
	}
}

// Field returns the named compiled field
func (e *EntitySchema) Field(name string) (*Field, bool) {
	if e == nil {
		return nil, false
	}
	return e.Fields.Get(name)
}

// Relation returns the named compiled relation
func (e *EntitySchema) Relation(name string) (*Relation, bool) {
	if e == nil {
		return nil, false
	}
	return e.Relations.Get(name)
}

// Index returns the named compiled index
func (e *EntitySchema) Index(name string) (*Index, bool) {
	if e == nil {
		return nil, false
	}
	return e.Indexes.Get(name)
}

// IsSkipRebuild reports whether storage maintenance must leave the entity alone
func (e *EntitySchema) IsSkipRebuild() bool {
	return e != nil && boolValue(e.SkipRebuild)
}

// Clone returns a deep copy
func (e *EntitySchema) Clone() *EntitySchema {
	if e == nil {
		return nil
	}
	out := &EntitySchema{
		Fields:                   cloneOrdered(e.Fields, (*Field).Clone),
		Relations:                cloneOrdered(e.Relations, (*Relation).Clone),
		Indexes:                  cloneOrdered(e.Indexes, (*Index).Clone),
		FullTextSearchColumnList: cloneStrings(e.FullTextSearchColumnList),
		Collection:               e.Collection.clone(),
		SkipRebuild:              cloneBool(e.SkipRebuild),
	}
	if e.AdditionalTables != nil {
		out.AdditionalTables = merge.Merge(nil, e.AdditionalTables)
	}
	out.ensureSections()
	return out
}

// Merge returns e with overlay layered on top
func (e *EntitySchema) Merge(overlay *EntitySchema) *EntitySchema {
	if e == nil {
		return overlay.Clone()
	}
	if overlay == nil {
		return e.Clone()
	}
	out := &EntitySchema{
		Fields:                   mergeOrdered(e.Fields, overlay.Fields, (*Field).Merge, (*Field).Clone),
		Relations:                mergeOrdered(e.Relations, overlay.Relations, (*Relation).Merge, (*Relation).Clone),
		Indexes:                  mergeOrdered(e.Indexes, overlay.Indexes, (*Index).Merge, (*Index).Clone),
		FullTextSearchColumnList: pickStrings(e.FullTextSearchColumnList, overlay.FullTextSearchColumnList),
		Collection:               e.Collection.merge(overlay.Collection),
		SkipRebuild:              pickBool(e.SkipRebuild, overlay.SkipRebuild),
	}
	switch {
	case overlay.AdditionalTables != nil:
		out.AdditionalTables = merge.Merge(e.AdditionalTables, overlay.AdditionalTables)
	case e.AdditionalTables != nil:
		out.AdditionalTables = merge.Merge(nil, e.AdditionalTables)
	}
	out.ensureSections()
	return out
}

func (e *EntitySchema) ensureSections() {
	if e.Fields == nil {
		e.Fields = NewOrdered[*Field]()
	}
	if e.Relations == nil {
		e.Relations = NewOrdered[*Relation]()
	}
	if e.Indexes == nil {
		e.Indexes = NewOrdered[*Index]()
	}
}

// without returns a copy of e with the addressed entry or attribute removed
func (e *EntitySchema) without(p Path) (*EntitySchema, error) {
	out := e.Clone()
	switch p.Section {
	case SectionFields:
		if p.Attribute == "" {
			out.Fields.Delete(p.Name)
			break
		}
		f, ok := out.Fields.Get(p.Name)
		if !ok {
			break
		}
		if err := f.Unset(p.Attribute); err != nil {
			return nil, fmt.Errorf("unset %s: %w", p, err)
		}
	case SectionRelations:
		out.Relations.Delete(p.Name)
	case SectionIndexes:
		out.Indexes.Delete(p.Name)
	default:
		return nil, fmt.Errorf("unset %s: unknown section %q", p, p.Section)
	}
	return out, nil
}
