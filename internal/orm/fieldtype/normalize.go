package fieldtype

import (
	"github.com/spf13/cast"

	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

// Normalize rewrites a compiled field into its final storage shape. The
// second result is false when the field must be removed: it has no type
// and is storable.
func Normalize(f *schema.Field) (*schema.Field, bool) {
	if f == nil {
		return nil, false
	}
	if f.Type == "" && !f.IsNotStorable() {
		return nil, false
	}

	out := f.Clone()
	switch out.Type {
	case schema.TypeID:
		if out.DBType != "int" {
			applyIdentifier(out)
		}
	case schema.TypeForeignID:
		if out.DBType != "int" {
			applyIdentifier(out)
		}
		out.NotNull = schema.Bool(false)
	case schema.TypeForeignType:
		out.DBType = "varchar"
		if out.Len == nil || *out.Len == 0 {
			out.Len = schema.Int(ForeignTypeLen)
		}
	case schema.TypeBool:
		out.Default = out.Default != nil && cast.ToBool(out.Default)
	case schema.TypeEmail, schema.TypePhone:
	default:
		if !out.Type.IsKnown() {
			out.Type = DefaultType
		}
	}
	return out, true
}

func applyIdentifier(f *schema.Field) {
	f.DBType = IDDBType
	if f.Len == nil {
		f.Len = schema.Int(IDLen)
	}
}
