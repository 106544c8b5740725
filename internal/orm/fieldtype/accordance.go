// Package fieldtype compiles declared fields into storage fields and
// normalizes compiled fields into their final storage shape.
package fieldtype

import "github.com/conduit-lang/ormschema/internal/orm/schema"

// Accordance maps a declared parameter onto a compiled attribute
type Accordance struct {
	Declared string
	Compiled string
}

// Accordances lists every declared parameter copied into compiled fields
var Accordances = []Accordance{
	{"type", "type"},
	{"dbType", "dbType"},
	{"maxLength", "len"},
	{"len", "len"},
	{"notNull", "notNull"},
	{"exportDisabled", "notExportable"},
	{"autoincrement", "autoincrement"},
	{"entity", "entity"},
	{"notStorable", "notStorable"},
	{"link", "relation"},
	{"field", "foreign"},
	{"unique", "unique"},
	{"index", "index"},
	{"default", "default"},
	{"select", "select"},
	{"orderBy", "orderBy"},
	{"where", "where"},
	{"storeArrayValues", "storeArrayValues"},
	{"binary", "binary"},
}

// CompiledAttribute returns the compiled attribute of a declared parameter
func CompiledAttribute(declared string) (string, bool) {
	for _, a := range Accordances {
		if a.Declared == declared {
			return a.Compiled, true
		}
	}
	return "", false
}

// DeclaredParameter returns the declared parameter of a compiled attribute,
// preferring a parameter with the same name.
func DeclaredParameter(compiled string) (string, bool) {
	found := ""
	for _, a := range Accordances {
		if a.Compiled != compiled {
			continue
		}
		if a.Declared == compiled {
			return a.Declared, true
		}
		if found == "" {
			found = a.Declared
		}
	}
	return found, found != ""
}

// DefaultLengths holds the length applied when a field declares none
var DefaultLengths = map[schema.FieldType]int{
	schema.TypeVarchar: 255,
	schema.TypeInt:     11,
}

// Identifier storage parameters
const (
	IDDBType = "varchar"
	IDLen    = 24
)

// ForeignTypeLen is the default length of polymorphic type columns
const ForeignTypeLen = 255

// DefaultType replaces types the storage layer does not know
const DefaultType = schema.TypeVarchar

// BaseType marks field types whose storability depends on a declared dbType
const BaseType = "base"
