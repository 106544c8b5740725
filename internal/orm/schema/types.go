// Package schema defines the compiled storage schema: per entity fields,
// relations, indexes and collection defaults.
//
// Compiled values are treated as immutable. Every combining operation
// (Merge, Unset, Clone) returns a new value and leaves its inputs intact.
package schema

// FieldType is the storage level type of a compiled field
type FieldType string

const (
	TypeID          FieldType = "id"
	TypeVarchar     FieldType = "varchar"
	TypeInt         FieldType = "int"
	TypeFloat       FieldType = "float"
	TypeText        FieldType = "text"
	TypeBool        FieldType = "bool"
	TypeForeignID   FieldType = "foreignId"
	TypeForeign     FieldType = "foreign"
	TypeForeignType FieldType = "foreignType"
	TypeDate        FieldType = "date"
	TypeDatetime    FieldType = "datetime"
	TypeJSONArray   FieldType = "jsonArray"
	TypeJSONObject  FieldType = "jsonObject"
	TypePassword    FieldType = "password"
	TypeEmail       FieldType = "email"
	TypePhone       FieldType = "phone"
)

var knownTypes = map[FieldType]bool{
	TypeID:          true,
	TypeVarchar:     true,
	TypeInt:         true,
	TypeFloat:       true,
	TypeText:        true,
	TypeBool:        true,
	TypeForeignID:   true,
	TypeForeign:     true,
	TypeForeignType: true,
	TypeDate:        true,
	TypeDatetime:    true,
	TypeJSONArray:   true,
	TypeJSONObject:  true,
	TypePassword:    true,
	TypeEmail:       true,
	TypePhone:       true,
}

// IsKnown reports whether the storage layer understands the type
func (t FieldType) IsKnown() bool {
	return knownTypes[t]
}

// String returns the type tag
func (t FieldType) String() string {
	return string(t)
}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to i
func Int(i int) *int {
	return &i
}

func boolValue(p *bool) bool {
	return p != nil && *p
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	return Bool(*p)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func pickString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func pickBool(base, overlay *bool) *bool {
	if overlay != nil {
		return cloneBool(overlay)
	}
	return cloneBool(base)
}

func pickInt(base, overlay *int) *int {
	if overlay != nil {
		return cloneInt(overlay)
	}
	return cloneInt(base)
}

func pickStrings(base, overlay []string) []string {
	if overlay != nil {
		return cloneStrings(overlay)
	}
	return cloneStrings(base)
}

// Section names a keyed collection inside an entity schema
type Section string

const (
	SectionFields    Section = "fields"
	SectionRelations Section = "relations"
	SectionIndexes   Section = "indexes"
)

// Path addresses an entry, or a single field attribute, inside a Schema.
type Path struct {
	Entity    string
	Section   Section
	Name      string
	Attribute string
}

// FieldPath addresses a whole field
func FieldPath(entity, field string) Path {
	return Path{Entity: entity, Section: SectionFields, Name: field}
}

// AttributePath addresses one attribute of a field
func AttributePath(entity, field, attribute string) Path {
	return Path{Entity: entity, Section: SectionFields, Name: field, Attribute: attribute}
}

// String returns the dotted form of the path
func (p Path) String() string {
	s := p.Entity
	if p.Section != "" {
		s += "." + string(p.Section)
	}
	if p.Name != "" {
		s += "." + p.Name
	}
	if p.Attribute != "" {
		s += "." + p.Attribute
	}
	return s
}
