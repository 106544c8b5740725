package ddl

import (
	"strings"
	"testing"

	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

func accountEntity() *schema.EntitySchema {
	e := schema.NewEntity()
	e.Fields.Set("name", &schema.Field{Type: schema.TypeVarchar, Len: schema.Int(150), NotNull: schema.Bool(true)})
	e.Fields.Set("id", &schema.Field{Type: schema.TypeID, DBType: "varchar", Len: schema.Int(24)})
	e.Fields.Set("deleted", &schema.Field{Type: schema.TypeBool, Default: false})
	e.Fields.Set("assignedUserId", &schema.Field{Type: schema.TypeForeignID, Len: schema.Int(24), Index: schema.IndexOn()})
	e.Fields.Set("assignedUserName", &schema.Field{Type: schema.TypeForeign, NotStorable: schema.Bool(true)})
	e.Fields.Set("fullName", &schema.Field{Type: schema.TypeVarchar, NotStorable: schema.Bool(true)})
	e.Fields.Set("description", &schema.Field{Type: schema.TypeText})
	e.Indexes.Set("assignedUser", &schema.Index{Columns: []string{"assignedUserId", "deleted"}, Key: "IDX_ASSIGNED_USER"})
	e.Indexes.Set("name", &schema.Index{Type: schema.KindUnique, Columns: []string{"name"}, Key: "UNIQ_NAME"})
	e.Indexes.Set("system_fullTextSearch", &schema.Index{Columns: []string{"name", "description"}, Flags: []string{schema.FlagFullText}, Key: "FT_SYSTEM_FULL_TEXT_SEARCH"})
	return e
}

func TestGenerator_GenerateCreateTable(t *testing.T) {
	gen := NewGenerator()

	result, err := gen.GenerateCreateTable("Account", accountEntity())
	if err != nil {
		t.Fatalf("GenerateCreateTable() error = %v", err)
	}

	expected := []string{
		`CREATE TABLE IF NOT EXISTS "account" (`,
		`  "id" VARCHAR(24),`,
		`"name" VARCHAR(150) NOT NULL`,
		`"deleted" BOOLEAN DEFAULT FALSE`,
		`"assigned_user_id" VARCHAR(24)`,
		`"description" TEXT`,
		`PRIMARY KEY ("id")`,
	}
	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("GenerateCreateTable() missing %q\nGot:\n%s", exp, result)
		}
	}

	for _, absent := range []string{"assigned_user_name", "full_name"} {
		if strings.Contains(result, absent) {
			t.Errorf("GenerateCreateTable() should not render %q\nGot:\n%s", absent, result)
		}
	}

	if !strings.HasPrefix(strings.Split(result, "\n")[1], `  "id"`) {
		t.Errorf("primary key column should come first\nGot:\n%s", result)
	}
}

func TestGenerator_GenerateIndexes(t *testing.T) {
	gen := NewGenerator()

	stmts := gen.GenerateIndexes("Account", accountEntity())
	expected := []string{
		`CREATE INDEX IF NOT EXISTS "account_idx_assigned_user" ON "account" ("assigned_user_id", "deleted");`,
		`CREATE UNIQUE INDEX IF NOT EXISTS "account_uniq_name" ON "account" ("name");`,
		`CREATE INDEX IF NOT EXISTS "account_ft_system_full_text_search" ON "account" USING GIN (to_tsvector('simple', coalesce("name", '') || ' ' || coalesce("description", '')));`,
	}

	if len(stmts) != len(expected) {
		t.Fatalf("GenerateIndexes() returned %d statements, want %d: %v", len(stmts), len(expected), stmts)
	}
	for i, exp := range expected {
		if stmts[i] != exp {
			t.Errorf("GenerateIndexes()[%d] = %q, want %q", i, stmts[i], exp)
		}
	}
}

func TestGenerator_Generate(t *testing.T) {
	junction := schema.NewEntity()
	junction.Fields.Set("id", &schema.Field{Type: schema.TypeID, DBType: "int", Autoincrement: schema.Bool(true)})
	junction.Fields.Set("accountId", &schema.Field{Type: schema.TypeForeignID, Len: schema.Int(24)})

	s := schema.Single("Account", accountEntity()).Merge(schema.Single("AccountContact", junction))

	result, err := NewGenerator().Generate(s)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	accountAt := strings.Index(result, `CREATE TABLE IF NOT EXISTS "account" (`)
	junctionAt := strings.Index(result, `CREATE TABLE IF NOT EXISTS "account_contact" (`)
	if accountAt < 0 || junctionAt < 0 || junctionAt < accountAt {
		t.Fatalf("Generate() should render tables in schema order\nGot:\n%s", result)
	}
	if !strings.Contains(result, `"id" SERIAL`) {
		t.Errorf("Generate() missing autoincrement id\nGot:\n%s", result)
	}
}

func TestGenerator_Errors(t *testing.T) {
	gen := NewGenerator()

	if _, err := gen.Generate(nil); err == nil {
		t.Error("Generate(nil) expected error")
	}

	e := schema.NewEntity()
	e.Fields.Set("weird", &schema.Field{Type: "geometry"})
	if _, err := gen.GenerateCreateTable("Place", e); err == nil {
		t.Error("GenerateCreateTable() expected error for unsupported type")
	}
}

func TestTypeMapper_MapType(t *testing.T) {
	tm := NewTypeMapper()

	tests := []struct {
		name  string
		field *schema.Field
		want  string
	}{
		{"varchar default length", &schema.Field{Type: schema.TypeVarchar}, "VARCHAR(255)"},
		{"varchar length", &schema.Field{Type: schema.TypeVarchar, Len: schema.Int(100)}, "VARCHAR(100)"},
		{"email", &schema.Field{Type: schema.TypeEmail}, "VARCHAR(255)"},
		{"id", &schema.Field{Type: schema.TypeID}, "VARCHAR(24)"},
		{"int id", &schema.Field{Type: schema.TypeID, DBType: "int"}, "INTEGER"},
		{"int foreign id", &schema.Field{Type: schema.TypeForeignID, DBType: "int"}, "INTEGER"},
		{"int", &schema.Field{Type: schema.TypeInt}, "INTEGER"},
		{"bigint", &schema.Field{Type: schema.TypeInt, DBType: "bigint"}, "BIGINT"},
		{"autoincrement int", &schema.Field{Type: schema.TypeInt, Autoincrement: schema.Bool(true)}, "SERIAL"},
		{"float", &schema.Field{Type: schema.TypeFloat}, "DOUBLE PRECISION"},
		{"bool", &schema.Field{Type: schema.TypeBool}, "BOOLEAN"},
		{"date", &schema.Field{Type: schema.TypeDate}, "DATE"},
		{"datetime", &schema.Field{Type: schema.TypeDatetime}, "TIMESTAMP"},
		{"json array", &schema.Field{Type: schema.TypeJSONArray}, "JSONB"},
		{"json object", &schema.Field{Type: schema.TypeJSONObject}, "JSONB"},
		{"text dbType", &schema.Field{Type: schema.TypeVarchar, DBType: "text"}, "TEXT"},
		{"custom type with dbType", &schema.Field{Type: "wysiwyg", DBType: "mediumtext"}, "TEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tm.MapType(tt.field)
			if err != nil {
				t.Fatalf("MapType() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MapType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeMapper_MapDefault(t *testing.T) {
	tm := NewTypeMapper()

	tests := []struct {
		name  string
		field *schema.Field
		want  string
	}{
		{"none", &schema.Field{Type: schema.TypeVarchar}, ""},
		{"bool true", &schema.Field{Type: schema.TypeBool, Default: true}, "TRUE"},
		{"bool string", &schema.Field{Type: schema.TypeBool, Default: "false"}, "FALSE"},
		{"int", &schema.Field{Type: schema.TypeInt, Default: 5}, "5"},
		{"float", &schema.Field{Type: schema.TypeFloat, Default: 1.5}, "1.5"},
		{"string", &schema.Field{Type: schema.TypeVarchar, Default: "New"}, "'New'"},
		{"quote", &schema.Field{Type: schema.TypeVarchar, Default: "O'Brien"}, "'O''Brien'"},
		{"json", &schema.Field{Type: schema.TypeJSONArray, Default: []any{"a"}}, `'["a"]'::jsonb`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tm.MapDefault(tt.field)
			if err != nil {
				t.Fatalf("MapDefault() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MapDefault() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := tm.MapDefault(&schema.Field{Type: schema.TypeInt, Default: "many"}); err == nil {
		t.Error("MapDefault() expected error for non-numeric int default")
	}
}
