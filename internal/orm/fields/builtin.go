package fields

import (
	"context"
	"fmt"

	"github.com/conduit-lang/ormschema/internal/orm/schema"
	ustrings "github.com/conduit-lang/ormschema/internal/util/strings"
)

// Built-in composite field types
const (
	TypePersonName = "personName"
	TypeCurrency   = "currency"
)

// Name part lengths of a personName field
const (
	SalutationLen = 255
	NamePartLen   = 100
	CurrencyLen   = 6
)

// PersonName splits a personName field into salutation, first and last
// name columns and turns the field itself into a computed one.
type PersonName struct{}

// Process implements Processor
func (PersonName) Process(_ context.Context, field, entity string, current *schema.Schema) (Result, error) {
	suffix := ustrings.UpperFirst(field)
	salutation := "salutation" + suffix
	first := "first" + suffix
	last := "last" + suffix

	table := ustrings.TableName(entity)
	firstCol := table + "." + ustrings.ColumnName(first)
	lastCol := table + "." + ustrings.ColumnName(last)
	concat := fmt.Sprintf("CONCAT(IFNULL(%s, ''), ' ', IFNULL(%s, ''))", firstCol, lastCol)

	e := schema.NewEntity()
	e.Fields.Set(field, &schema.Field{
		Type:        schema.TypeVarchar,
		NotStorable: schema.Bool(true),
		Select:      "TRIM(" + concat + ")",
		OrderBy:     fmt.Sprintf("%s {direction}, %s {direction}", firstCol, lastCol),
		Where: map[string]any{
			"LIKE": fmt.Sprintf("(%s LIKE {value} OR %s LIKE {value} OR %s LIKE {value})", firstCol, lastCol, concat),
			"=":    fmt.Sprintf("(%s = {value} OR %s = {value} OR %s = {value})", firstCol, lastCol, concat),
		},
	})

	existing, _ := current.Entity(entity)
	parts := []struct {
		name string
		len  int
	}{
		{salutation, SalutationLen},
		{first, NamePartLen},
		{last, NamePartLen},
	}
	for _, p := range parts {
		if _, ok := existing.Field(p.name); ok {
			continue
		}
		e.Fields.Set(p.name, &schema.Field{Type: schema.TypeVarchar, Len: schema.Int(p.len)})
	}

	return Result{
		Fragment: schema.Single(entity, e),
		Unset: []schema.Path{
			schema.AttributePath(entity, field, "len"),
			schema.AttributePath(entity, field, "unique"),
			schema.AttributePath(entity, field, "index"),
		},
	}, nil
}

// Currency stores an amount as float with a sibling currency code column
// and a computed converted amount.
type Currency struct{}

// Process implements Processor
func (Currency) Process(_ context.Context, field, entity string, current *schema.Schema) (Result, error) {
	code := field + "Currency"
	converted := field + "Converted"
	table := ustrings.TableName(entity)

	e := schema.NewEntity()
	e.Fields.Set(field, &schema.Field{Type: schema.TypeFloat})

	existing, _ := current.Entity(entity)
	if _, ok := existing.Field(code); !ok {
		e.Fields.Set(code, &schema.Field{Type: schema.TypeVarchar, Len: schema.Int(CurrencyLen)})
	}
	e.Fields.Set(converted, &schema.Field{
		Type:        schema.TypeFloat,
		NotStorable: schema.Bool(true),
		Select: fmt.Sprintf("%s.%s * %sCurrencyRate.rate",
			table, ustrings.ColumnName(field), field),
	})

	return Result{
		Fragment: schema.Single(entity, e),
		Unset:    []schema.Path{schema.AttributePath(entity, field, "len")},
	}, nil
}
