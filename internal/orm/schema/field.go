package schema

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"github.com/conduit-lang/ormschema/internal/orm/merge"
)

// IndexFlag is the value of a field's unique or index attribute: either a
// plain switch or the name of a composite index the field belongs to.
type IndexFlag struct {
	Enabled bool
	Name    string
}

// IndexOn returns a flag that puts the field into its own index
func IndexOn() *IndexFlag {
	return &IndexFlag{Enabled: true}
}

// IndexNamed returns a flag that groups the field into the named index
func IndexNamed(name string) *IndexFlag {
	return &IndexFlag{Enabled: true, Name: name}
}

// ParseIndexFlag converts a declared unique/index value
func ParseIndexFlag(v any) (*IndexFlag, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		switch s {
		case "", "false", "0":
			return &IndexFlag{}, nil
		case "true", "1":
			return IndexOn(), nil
		default:
			return IndexNamed(s), nil
		}
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, err
	}
	return &IndexFlag{Enabled: b}, nil
}

// IndexName returns the index the field joins, defaulting to the field name
func (f *IndexFlag) IndexName(field string) string {
	if f.Name != "" {
		return f.Name
	}
	return field
}

// MarshalJSON encodes the flag as its name or as a boolean
func (f IndexFlag) MarshalJSON() ([]byte, error) {
	if f.Name != "" {
		return json.Marshal(f.Name)
	}
	return json.Marshal(f.Enabled)
}

// MarshalYAML encodes the flag as its name or as a boolean
func (f IndexFlag) MarshalYAML() (interface{}, error) {
	if f.Name != "" {
		return f.Name, nil
	}
	return f.Enabled, nil
}

func (f *IndexFlag) clone() *IndexFlag {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// Field is a compiled storage field. Nil attributes are absent.
type Field struct {
	Type             FieldType  `json:"type,omitempty" yaml:"type,omitempty"`
	DBType           string     `json:"dbType,omitempty" yaml:"dbType,omitempty"`
	Len              *int       `json:"len,omitempty" yaml:"len,omitempty"`
	NotNull          *bool      `json:"notNull,omitempty" yaml:"notNull,omitempty"`
	NotExportable    *bool      `json:"notExportable,omitempty" yaml:"notExportable,omitempty"`
	Autoincrement    *bool      `json:"autoincrement,omitempty" yaml:"autoincrement,omitempty"`
	Entity           string     `json:"entity,omitempty" yaml:"entity,omitempty"`
	NotStorable      *bool      `json:"notStorable,omitempty" yaml:"notStorable,omitempty"`
	Relation         string     `json:"relation,omitempty" yaml:"relation,omitempty"`
	Foreign          string     `json:"foreign,omitempty" yaml:"foreign,omitempty"`
	Unique           *IndexFlag `json:"unique,omitempty" yaml:"unique,omitempty"`
	Index            *IndexFlag `json:"index,omitempty" yaml:"index,omitempty"`
	Default          any        `json:"default,omitempty" yaml:"default,omitempty"`
	Select           any        `json:"select,omitempty" yaml:"select,omitempty"`
	OrderBy          any        `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	Where            any        `json:"where,omitempty" yaml:"where,omitempty"`
	StoreArrayValues *bool      `json:"storeArrayValues,omitempty" yaml:"storeArrayValues,omitempty"`
	Binary           *bool      `json:"binary,omitempty" yaml:"binary,omitempty"`
	FieldType        string     `json:"fieldType,omitempty" yaml:"fieldType,omitempty"`
}

// IsNotStorable reports whether the field has no column of its own
func (f *Field) IsNotStorable() bool {
	return f != nil && boolValue(f.NotStorable)
}

// Set assigns a compiled attribute from a loosely typed value. A nil
// value clears the attribute.
func (f *Field) Set(attr string, v any) error {
	if v == nil {
		return f.Unset(attr)
	}

	var err error
	switch attr {
	case "type":
		var s string
		s, err = cast.ToStringE(v)
		f.Type = FieldType(s)
	case "dbType":
		f.DBType, err = cast.ToStringE(v)
	case "len":
		f.Len, err = intPtr(v)
	case "notNull":
		f.NotNull, err = boolPtr(v)
	case "notExportable":
		f.NotExportable, err = boolPtr(v)
	case "autoincrement":
		f.Autoincrement, err = boolPtr(v)
	case "entity":
		f.Entity, err = cast.ToStringE(v)
	case "notStorable":
		f.NotStorable, err = boolPtr(v)
	case "relation":
		f.Relation, err = cast.ToStringE(v)
	case "foreign":
		f.Foreign, err = cast.ToStringE(v)
	case "unique":
		f.Unique, err = ParseIndexFlag(v)
	case "index":
		f.Index, err = ParseIndexFlag(v)
	case "default":
		f.Default = merge.Clone(v)
	case "select":
		f.Select = merge.Clone(v)
	case "orderBy":
		f.OrderBy = merge.Clone(v)
	case "where":
		f.Where = merge.Clone(v)
	case "storeArrayValues":
		f.StoreArrayValues, err = boolPtr(v)
	case "binary":
		f.Binary, err = boolPtr(v)
	case "fieldType":
		f.FieldType, err = cast.ToStringE(v)
	default:
		return fmt.Errorf("unknown field attribute %q", attr)
	}
	if err != nil {
		return fmt.Errorf("field attribute %q: %w", attr, err)
	}
	return nil
}

// Unset clears a compiled attribute
func (f *Field) Unset(attr string) error {
	switch attr {
	case "type":
		f.Type = ""
	case "dbType":
		f.DBType = ""
	case "len":
		f.Len = nil
	case "notNull":
		f.NotNull = nil
	case "notExportable":
		f.NotExportable = nil
	case "autoincrement":
		f.Autoincrement = nil
	case "entity":
		f.Entity = ""
	case "notStorable":
		f.NotStorable = nil
	case "relation":
		f.Relation = ""
	case "foreign":
		f.Foreign = ""
	case "unique":
		f.Unique = nil
	case "index":
		f.Index = nil
	case "default":
		f.Default = nil
	case "select":
		f.Select = nil
	case "orderBy":
		f.OrderBy = nil
	case "where":
		f.Where = nil
	case "storeArrayValues":
		f.StoreArrayValues = nil
	case "binary":
		f.Binary = nil
	case "fieldType":
		f.FieldType = ""
	default:
		return fmt.Errorf("unknown field attribute %q", attr)
	}
	return nil
}

// Clone returns a deep copy
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	return &Field{
		Type:             f.Type,
		DBType:           f.DBType,
		Len:              cloneInt(f.Len),
		NotNull:          cloneBool(f.NotNull),
		NotExportable:    cloneBool(f.NotExportable),
		Autoincrement:    cloneBool(f.Autoincrement),
		Entity:           f.Entity,
		NotStorable:      cloneBool(f.NotStorable),
		Relation:         f.Relation,
		Foreign:          f.Foreign,
		Unique:           f.Unique.clone(),
		Index:            f.Index.clone(),
		Default:          merge.Clone(f.Default),
		Select:           merge.Clone(f.Select),
		OrderBy:          merge.Clone(f.OrderBy),
		Where:            merge.Clone(f.Where),
		StoreArrayValues: cloneBool(f.StoreArrayValues),
		Binary:           cloneBool(f.Binary),
		FieldType:        f.FieldType,
	}
}

// Merge returns f with every attribute present in overlay replaced.
// Map valued attributes merge recursively.
func (f *Field) Merge(overlay *Field) *Field {
	if f == nil {
		return overlay.Clone()
	}
	if overlay == nil {
		return f.Clone()
	}
	out := f.Clone()
	if overlay.Type != "" {
		out.Type = overlay.Type
	}
	out.DBType = pickString(f.DBType, overlay.DBType)
	out.Len = pickInt(f.Len, overlay.Len)
	out.NotNull = pickBool(f.NotNull, overlay.NotNull)
	out.NotExportable = pickBool(f.NotExportable, overlay.NotExportable)
	out.Autoincrement = pickBool(f.Autoincrement, overlay.Autoincrement)
	out.Entity = pickString(f.Entity, overlay.Entity)
	out.NotStorable = pickBool(f.NotStorable, overlay.NotStorable)
	out.Relation = pickString(f.Relation, overlay.Relation)
	out.Foreign = pickString(f.Foreign, overlay.Foreign)
	if overlay.Unique != nil {
		out.Unique = overlay.Unique.clone()
	}
	if overlay.Index != nil {
		out.Index = overlay.Index.clone()
	}
	out.Default = merge.Value(f.Default, overlay.Default)
	out.Select = merge.Value(f.Select, overlay.Select)
	out.OrderBy = merge.Value(f.OrderBy, overlay.OrderBy)
	out.Where = merge.Value(f.Where, overlay.Where)
	out.StoreArrayValues = pickBool(f.StoreArrayValues, overlay.StoreArrayValues)
	out.Binary = pickBool(f.Binary, overlay.Binary)
	out.FieldType = pickString(f.FieldType, overlay.FieldType)
	return out
}

func boolPtr(v any) (*bool, error) {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func intPtr(v any) (*int, error) {
	i, err := cast.ToIntE(v)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
