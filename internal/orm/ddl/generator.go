package ddl

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/conduit-lang/ormschema/internal/orm/schema"
	ustrings "github.com/conduit-lang/ormschema/internal/util/strings"
)

// TextSearchConfig is the text search configuration of fulltext indexes
const TextSearchConfig = "simple"

// Generator generates PostgreSQL DDL statements from compiled schemas
type Generator struct {
	typeMapper *TypeMapper
}

// NewGenerator creates a new DDL generator
func NewGenerator() *Generator {
	return &Generator{
		typeMapper: NewTypeMapper(),
	}
}

// Generate renders every entity of s in schema order: the table followed
// by its indexes.
func (g *Generator) Generate(s *schema.Schema) (string, error) {
	if s == nil {
		return "", fmt.Errorf("schema cannot be nil")
	}

	var b strings.Builder
	for i, name := range s.Names() {
		e, _ := s.Entity(name)
		stmts, err := g.GenerateEntity(name, e)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("\n")
		}
		for _, stmt := range stmts {
			b.WriteString(stmt)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// GenerateEntity returns the CREATE TABLE and CREATE INDEX statements of
// one entity
func (g *Generator) GenerateEntity(name string, e *schema.EntitySchema) ([]string, error) {
	table, err := g.GenerateCreateTable(name, e)
	if err != nil {
		return nil, err
	}
	stmts := []string{table}
	stmts = append(stmts, g.GenerateIndexes(name, e)...)
	return stmts, nil
}

// GenerateCreateTable generates a CREATE TABLE statement for an entity.
// Non-storable and foreign fields have no column.
func (g *Generator) GenerateCreateTable(name string, e *schema.EntitySchema) (string, error) {
	if e == nil {
		return "", fmt.Errorf("entity %s: schema cannot be nil", name)
	}

	var defs []string
	var primary string
	for _, fieldName := range e.Fields.Keys() {
		f, _ := e.Fields.Get(fieldName)
		if !hasColumn(f) {
			continue
		}
		def, err := g.generateColumnDefinition(fieldName, f)
		if err != nil {
			return "", fmt.Errorf("entity %s field %s: %w", name, fieldName, err)
		}
		if f.Type == schema.TypeID && primary == "" {
			primary = fieldName
			defs = append([]string{def}, defs...)
			continue
		}
		defs = append(defs, def)
	}
	if primary != "" {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", column(primary)))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", pq.QuoteIdentifier(ustrings.TableName(name))))
	for i, def := range defs {
		b.WriteString("  ")
		b.WriteString(def)
		if i < len(defs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")
	return b.String(), nil
}

func (g *Generator) generateColumnDefinition(name string, f *schema.Field) (string, error) {
	parts := []string{column(name)}

	columnType, err := g.typeMapper.MapType(f)
	if err != nil {
		return "", fmt.Errorf("mapping type: %w", err)
	}
	parts = append(parts, columnType)

	if nullability := g.typeMapper.MapNullability(f); nullability != "" {
		parts = append(parts, nullability)
	}

	defaultValue, err := g.typeMapper.MapDefault(f)
	if err != nil {
		return "", fmt.Errorf("mapping default value: %w", err)
	}
	if defaultValue != "" {
		parts = append(parts, "DEFAULT "+defaultValue)
	}

	return strings.Join(parts, " "), nil
}

// GenerateIndexes generates CREATE INDEX statements for an entity. Index
// names are prefixed with the table name since PostgreSQL index names are
// unique per schema.
func (g *Generator) GenerateIndexes(name string, e *schema.EntitySchema) []string {
	if e == nil {
		return nil
	}

	table := ustrings.TableName(name)
	var stmts []string
	e.Indexes.Each(func(indexName string, idx *schema.Index) {
		if len(idx.Columns) == 0 {
			return
		}
		key := idx.Key
		if key == "" {
			key = indexName
		}
		ident := pq.QuoteIdentifier(table + "_" + strings.ToLower(key))

		columns := make([]string, len(idx.Columns))
		for i, c := range idx.Columns {
			columns[i] = column(c)
		}

		switch idx.Kind() {
		case schema.KindUnique:
			stmts = append(stmts, fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s);",
				ident, pq.QuoteIdentifier(table), strings.Join(columns, ", ")))
		case schema.KindFullText:
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (%s);",
				ident, pq.QuoteIdentifier(table), tsvector(columns)))
		default:
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s);",
				ident, pq.QuoteIdentifier(table), strings.Join(columns, ", ")))
		}
	})
	return stmts
}

func tsvector(columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("coalesce(%s, '')", c)
	}
	return fmt.Sprintf("to_tsvector(%s, %s)", pq.QuoteLiteral(TextSearchConfig), strings.Join(parts, " || ' ' || "))
}

func column(field string) string {
	return pq.QuoteIdentifier(ustrings.ColumnName(field))
}

func hasColumn(f *schema.Field) bool {
	return f != nil && !f.IsNotStorable() && f.Type != schema.TypeForeign
}
