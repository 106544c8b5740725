package fieldtype

import (
	"github.com/conduit-lang/ormschema/internal/orm/merge"
	"github.com/conduit-lang/ormschema/internal/orm/metadata"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

// Resolver compiles field declarations against the field type metadata
type Resolver struct {
	defs metadata.Definitions
}

// NewResolver creates a resolver reading type metadata from defs
func NewResolver(defs metadata.Definitions) *Resolver {
	return &Resolver{defs: defs}
}

// Resolve compiles one declared field. It returns nil when the declaration
// or its type opts out of compilation.
func (r *Resolver) Resolve(entity string, decl metadata.FieldDeclaration) (*schema.Field, error) {
	meta := r.defs.FieldTypeMetadata(decl.Type())

	params := decl.Params.Clone()
	if params == nil {
		params = metadata.Params{}
	}
	if len(meta.FieldDefs) > 0 {
		params = metadata.Params(merge.Merge(meta.FieldDefs, params))
	}

	if params.String("type") == BaseType && params.Has("dbType") {
		params["notStorable"] = false
	}

	if meta.SkipOrmDefs || params.True("skipOrmDefs") {
		return nil, nil
	}

	if notNull, ok := params.Bool("notNull"); ok && !notNull && params.True("required") {
		delete(params, "notNull")
	}

	field := &schema.Field{}
	for _, a := range Accordances {
		v, ok := params[a.Declared]
		if !ok {
			continue
		}
		if a.Declared == "default" {
			d := metadata.ParseDefault(v)
			if !d.IsStatic() {
				continue
			}
			v = d.Value
		}
		if err := field.Set(a.Compiled, v); err != nil {
			return nil, &metadata.ConfigError{
				Entity: entity,
				Field:  decl.Name,
				Reason: "invalid field parameter",
				Err:    err,
			}
		}
	}

	field.FieldType = params.String("type")

	if db, ok := params.Bool("db"); ok && !db {
		field.NotStorable = schema.Bool(true)
	}

	if field.Type != "" && field.Len == nil {
		if l, ok := DefaultLengths[field.Type]; ok {
			field.Len = schema.Int(l)
		}
	}

	return field, nil
}
