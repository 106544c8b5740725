// Package metadata models the declarative entity definitions fed into the
// converter: per entity field and link declarations plus the per field type
// and per link type metadata that shapes how declarations compile.
package metadata

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/conduit-lang/ormschema/internal/orm/merge"
)

// Definitions is the read-only view the converter compiles from
type Definitions interface {
	// EntityNames lists every declared entity, malformed ones included.
	EntityNames() []string
	// EntityDefinition returns the named definition. A nil definition with
	// ok == true marks an entity whose declaration is empty or malformed.
	EntityDefinition(name string) (def *EntityDefinition, ok bool)
	FieldTypeMetadata(fieldType string) FieldTypeMetadata
	LinkTypeMetadata(linkType string) LinkTypeMetadata
	Scope(entity string) ScopeMetadata
}

// Naming selects how full-text column parts combine with a field name
type Naming string

const (
	NamingPrefix  Naming = "prefix"
	NamingPostfix Naming = "postfix"
)

// FieldDeclaration is one declared field
type FieldDeclaration struct {
	Name   string
	Params Params
}

// Type returns the declared field type
func (d FieldDeclaration) Type() string {
	return d.Params.String("type")
}

// IsNotStorable reports whether the declaration carries the not-storable marker
func (d FieldDeclaration) IsNotStorable() bool {
	return d.Params.True("notStorable")
}

// SkipOrmDefs reports whether the declaration opts out of compilation
func (d FieldDeclaration) SkipOrmDefs() bool {
	return d.Params.True("skipOrmDefs")
}

// DefaultAttributes returns the attribute defaults keyed by field name
func (d FieldDeclaration) DefaultAttributes() map[string]any {
	return d.Params.Map("defaultAttributes")
}

// ColumnDeclaration is an extra junction column of a many-to-many link
type ColumnDeclaration struct {
	Type      string `mapstructure:"type"`
	Len       *int   `mapstructure:"len"`
	MaxLength *int   `mapstructure:"maxLength"`
	Default   any    `mapstructure:"default"`
}

// IndexDeclaration is an explicitly declared index
type IndexDeclaration struct {
	Type    string   `mapstructure:"type"`
	Columns []string `mapstructure:"columns"`
	Flags   []string `mapstructure:"flags"`
	Key     string   `mapstructure:"key"`
	Unique  bool     `mapstructure:"unique"`
}

// LinkDeclaration is one declared link. Params keeps the raw declaration.
type LinkDeclaration struct {
	Name              string                       `mapstructure:"-"`
	Type              string                       `mapstructure:"type"`
	Entity            string                       `mapstructure:"entity"`
	EntityList        []string                     `mapstructure:"entityList"`
	Foreign           string                       `mapstructure:"foreign"`
	ForeignName       string                       `mapstructure:"foreignName"`
	Key               string                       `mapstructure:"key"`
	ForeignKey        string                       `mapstructure:"foreignKey"`
	RelationName      string                       `mapstructure:"relationName"`
	MidKeys           []string                     `mapstructure:"midKeys"`
	AdditionalColumns map[string]ColumnDeclaration `mapstructure:"additionalColumns"`
	Conditions        map[string]any               `mapstructure:"conditions"`
	Indexes           map[string]IndexDeclaration  `mapstructure:"indexes"`
	OrderBy           string                       `mapstructure:"orderBy"`
	Order             string                       `mapstructure:"order"`
	NoJoin            bool                         `mapstructure:"noJoin"`
	NoIndex           bool                         `mapstructure:"noIndex"`
	SkipOrmDefs       bool                         `mapstructure:"skipOrmDefs"`
	Params            Params                       `mapstructure:"-"`
}

// CollectionOptions are the declared list defaults of an entity
type CollectionOptions struct {
	OrderBy          *string  `mapstructure:"orderBy"`
	OrderByColumn    *string  `mapstructure:"orderByColumn"`
	Order            *string  `mapstructure:"order"`
	FullTextSearch   bool     `mapstructure:"fullTextSearch"`
	TextFilterFields []string `mapstructure:"textFilterFields"`
}

// EntityDefinition is the declared metadata of one entity. Fields and
// links are kept sorted by name.
type EntityDefinition struct {
	Name             string
	Fields           []FieldDeclaration
	Links            []LinkDeclaration
	Collection       *CollectionOptions
	Indexes          map[string]IndexDeclaration
	AdditionalTables map[string]any
	SkipRebuild      bool
}

// Field returns the named field declaration
func (e *EntityDefinition) Field(name string) (FieldDeclaration, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDeclaration{}, false
}

// Link returns the named link declaration
func (e *EntityDefinition) Link(name string) (LinkDeclaration, bool) {
	for _, l := range e.Links {
		if l.Name == name {
			return l, true
		}
	}
	return LinkDeclaration{}, false
}

// FieldTypeMetadata describes how fields of one type compile
type FieldTypeMetadata struct {
	FieldDefs                map[string]any `mapstructure:"fieldDefs"`
	SkipOrmDefs              bool           `mapstructure:"skipOrmDefs"`
	FullTextSearch           bool           `mapstructure:"fullTextSearch"`
	FullTextSearchColumnList []string       `mapstructure:"fullTextSearchColumnList"`
	Naming                   Naming         `mapstructure:"naming"`
	LinkDefs                 map[string]any `mapstructure:"linkDefs"`
}

// NamingConvention returns the effective naming, postfix unless prefix is declared
func (m FieldTypeMetadata) NamingConvention() Naming {
	if m.Naming == NamingPrefix {
		return NamingPrefix
	}
	return NamingPostfix
}

// LinkTypeMetadata describes how links of one kind compile
type LinkTypeMetadata struct {
	SkipOrmDefs bool           `mapstructure:"skipOrmDefs"`
	Defaults    map[string]any `mapstructure:"defaults"`
}

// ScopeMetadata carries per entity scope flags
type ScopeMetadata struct {
	Stream bool `mapstructure:"stream"`
}

func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// DecodeLink decodes a raw link declaration
func DecodeLink(entity, name string, raw map[string]any) (LinkDeclaration, error) {
	var l LinkDeclaration
	raw, _ = merge.Normalize(raw).(map[string]any)
	if err := decode(raw, &l); err != nil {
		return LinkDeclaration{}, linkError(entity, name, err)
	}
	l.Name = name
	l.Params = Params(raw)
	return l, nil
}

// DecodeEntity decodes a raw entity definition. It returns nil, nil when the
// definition is empty or not a mapping.
func DecodeEntity(name string, raw any) (*EntityDefinition, error) {
	m, ok := merge.Normalize(raw).(map[string]any)
	if !ok || len(m) == 0 {
		return nil, nil
	}

	def := &EntityDefinition{Name: name}

	fields, err := section(m, "fields")
	if err != nil {
		return nil, fieldError(name, "", err)
	}
	for _, fname := range sortedKeys(fields) {
		params, err := paramsOf(fields[fname])
		if err != nil {
			return nil, fieldError(name, fname, err)
		}
		def.Fields = append(def.Fields, FieldDeclaration{Name: fname, Params: params})
	}

	links, err := section(m, "links")
	if err != nil {
		return nil, linkError(name, "", err)
	}
	for _, lname := range sortedKeys(links) {
		params, err := paramsOf(links[lname])
		if err != nil {
			return nil, linkError(name, lname, err)
		}
		l, err := DecodeLink(name, lname, params)
		if err != nil {
			return nil, err
		}
		def.Links = append(def.Links, l)
	}

	if raw, ok := m["collection"]; ok && !emptyMap(raw) {
		var c CollectionOptions
		if err := decode(raw, &c); err != nil {
			return nil, NewConfigError(name, "invalid collection options", err)
		}
		def.Collection = &c
	}

	if raw, ok := m["indexes"]; ok && raw != nil {
		if err := decode(raw, &def.Indexes); err != nil {
			return nil, NewConfigError(name, "invalid indexes", err)
		}
	}

	if raw, ok := m["additionalTables"].(map[string]any); ok {
		def.AdditionalTables = raw
	}

	def.SkipRebuild = Params(m).True("skipRebuild")
	return def, nil
}

func emptyMap(v any) bool {
	if v == nil {
		return true
	}
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}

func section(m map[string]any, key string) (map[string]any, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	out, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping, got %T", key, raw)
	}
	return out, nil
}

func paramsOf(raw any) (Params, error) {
	if raw == nil {
		return Params{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("declaration must be a mapping, got %T", raw)
	}
	return Params(m), nil
}
