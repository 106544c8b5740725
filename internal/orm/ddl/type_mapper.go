// Package ddl renders compiled schemas as PostgreSQL DDL statements.
package ddl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/spf13/cast"

	"github.com/conduit-lang/ormschema/internal/orm/fieldtype"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

// dbTypes maps explicit dbType overrides to PostgreSQL column types
var dbTypes = map[string]string{
	"int":        "INTEGER",
	"integer":    "INTEGER",
	"smallint":   "SMALLINT",
	"bigint":     "BIGINT",
	"float":      "DOUBLE PRECISION",
	"double":     "DOUBLE PRECISION",
	"decimal":    "NUMERIC",
	"bool":       "BOOLEAN",
	"boolean":    "BOOLEAN",
	"text":       "TEXT",
	"mediumtext": "TEXT",
	"longtext":   "TEXT",
	"date":       "DATE",
	"datetime":   "TIMESTAMP",
	"timestamp":  "TIMESTAMP",
	"json":       "JSONB",
	"blob":       "BYTEA",
}

// TypeMapper maps compiled field types to PostgreSQL column types
type TypeMapper struct{}

// NewTypeMapper creates a new TypeMapper
func NewTypeMapper() *TypeMapper {
	return &TypeMapper{}
}

// MapType converts a compiled field to a PostgreSQL column type
func (tm *TypeMapper) MapType(f *schema.Field) (string, error) {
	if f == nil {
		return "", fmt.Errorf("field cannot be nil")
	}

	switch f.Type {
	case schema.TypeID, schema.TypeForeignID:
		if strings.EqualFold(f.DBType, "int") {
			if f.Type == schema.TypeID && f.Autoincrement != nil && *f.Autoincrement {
				return "SERIAL", nil
			}
			return "INTEGER", nil
		}
		return varchar(f.Len, fieldtype.IDLen), nil

	case schema.TypeVarchar, schema.TypePassword, schema.TypeEmail, schema.TypePhone, schema.TypeForeignType:
		if f.DBType != "" && !strings.EqualFold(f.DBType, "varchar") {
			return tm.mapDBType(f)
		}
		return varchar(f.Len, fieldtype.DefaultLengths[schema.TypeVarchar]), nil

	case schema.TypeText:
		return "TEXT", nil

	case schema.TypeInt:
		if f.Autoincrement != nil && *f.Autoincrement {
			return "SERIAL", nil
		}
		if f.DBType != "" {
			return tm.mapDBType(f)
		}
		return "INTEGER", nil

	case schema.TypeFloat:
		if f.DBType != "" {
			return tm.mapDBType(f)
		}
		return "DOUBLE PRECISION", nil

	case schema.TypeBool:
		return "BOOLEAN", nil

	case schema.TypeDate:
		return "DATE", nil

	case schema.TypeDatetime:
		return "TIMESTAMP", nil

	case schema.TypeJSONArray, schema.TypeJSONObject:
		return "JSONB", nil

	default:
		if f.DBType != "" {
			return tm.mapDBType(f)
		}
		return "", fmt.Errorf("unsupported type: %s", f.Type)
	}
}

func (tm *TypeMapper) mapDBType(f *schema.Field) (string, error) {
	t, ok := dbTypes[strings.ToLower(f.DBType)]
	if !ok {
		return "", fmt.Errorf("unsupported dbType: %s", f.DBType)
	}
	return t, nil
}

func varchar(length *int, fallback int) string {
	n := fallback
	if length != nil && *length > 0 {
		n = *length
	}
	return fmt.Sprintf("VARCHAR(%d)", n)
}

// MapNullability returns the NOT NULL constraint, or an empty string
func (tm *TypeMapper) MapNullability(f *schema.Field) string {
	if f.NotNull != nil && *f.NotNull {
		return "NOT NULL"
	}
	return ""
}

// MapDefault formats the static default of a field as a SQL literal. An
// empty string means no default.
func (tm *TypeMapper) MapDefault(f *schema.Field) (string, error) {
	if f.Default == nil {
		return "", nil
	}

	switch f.Type {
	case schema.TypeBool:
		b, err := cast.ToBoolE(f.Default)
		if err != nil {
			return "", fmt.Errorf("invalid boolean default: %w", err)
		}
		if b {
			return "TRUE", nil
		}
		return "FALSE", nil

	case schema.TypeInt:
		n, err := cast.ToInt64E(f.Default)
		if err != nil {
			return "", fmt.Errorf("invalid integer default: %w", err)
		}
		return fmt.Sprintf("%d", n), nil

	case schema.TypeFloat:
		n, err := cast.ToFloat64E(f.Default)
		if err != nil {
			return "", fmt.Errorf("invalid float default: %w", err)
		}
		return cast.ToString(n), nil

	case schema.TypeJSONArray, schema.TypeJSONObject:
		data, err := json.Marshal(f.Default)
		if err != nil {
			return "", fmt.Errorf("invalid json default: %w", err)
		}
		return pq.QuoteLiteral(string(data)) + "::jsonb", nil
	}

	s, err := cast.ToStringE(f.Default)
	if err != nil {
		return "", fmt.Errorf("invalid default: %w", err)
	}
	return pq.QuoteLiteral(s), nil
}
