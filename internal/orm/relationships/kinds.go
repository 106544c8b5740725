package relationships

import (
	"sort"

	"github.com/conduit-lang/ormschema/internal/orm/merge"
	"github.com/conduit-lang/ormschema/internal/orm/metadata"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
	ustrings "github.com/conduit-lang/ormschema/internal/util/strings"
)

func (r *Resolver) belongsTo(entity string, l metadata.LinkDeclaration) (*schema.EntitySchema, error) {
	if _, err := r.target(entity, l); err != nil {
		return nil, err
	}

	key := l.Key
	if key == "" {
		key = l.Name + "Id"
	}
	foreignName := l.ForeignName
	if foreignName == "" {
		foreignName = "name"
	}

	e := fragment()
	idField := &schema.Field{Type: schema.TypeForeignID}
	if !l.NoIndex {
		idField.Index = schema.IndexOn()
	}
	e.Fields.Set(key, idField)
	e.Fields.Set(l.Name+"Name", &schema.Field{
		Type:        schema.TypeForeign,
		Relation:    l.Name,
		Foreign:     foreignName,
		NotStorable: schema.Bool(true),
	})
	e.Relations.Set(l.Name, &schema.Relation{
		Type:       schema.RelationBelongsTo,
		Entity:     l.Entity,
		Key:        key,
		ForeignKey: "id",
		Foreign:    l.Foreign,
		NoJoin:     noJoin(l),
	})
	return e, nil
}

func (r *Resolver) hasOne(entity string, l metadata.LinkDeclaration) (*schema.EntitySchema, error) {
	if _, err := r.target(entity, l); err != nil {
		return nil, err
	}

	foreignKey := l.ForeignKey
	switch {
	case foreignKey != "":
	case l.Foreign != "":
		foreignKey = l.Foreign + "Id"
	default:
		foreignKey = lowerID(entity)
	}

	e := fragment()
	e.Fields.Set(l.Name+"Id", &schema.Field{
		Type:        schema.TypeForeign,
		Relation:    l.Name,
		Foreign:     "id",
		NotStorable: schema.Bool(true),
	})
	e.Fields.Set(l.Name+"Name", &schema.Field{
		Type:        schema.TypeForeign,
		Relation:    l.Name,
		Foreign:     "name",
		NotStorable: schema.Bool(true),
	})
	e.Relations.Set(l.Name, &schema.Relation{
		Type:       schema.RelationHasOne,
		Entity:     l.Entity,
		ForeignKey: foreignKey,
		Foreign:    l.Foreign,
		NoJoin:     noJoin(l),
	})
	return e, nil
}

func (r *Resolver) hasMany(entity string, l metadata.LinkDeclaration) (*schema.EntitySchema, error) {
	target, err := r.target(entity, l)
	if err != nil {
		return nil, err
	}

	foreignKey := l.ForeignKey
	if foreignKey == "" {
		if cp, ok := counterpart(target, l); ok && cp.Type == BelongsTo && cp.Key != "" {
			foreignKey = cp.Key
		}
	}
	if foreignKey == "" {
		if l.Foreign != "" {
			foreignKey = l.Foreign + "Id"
		} else {
			foreignKey = lowerID(entity)
		}
	}

	e := fragment()
	multipleFields(e, l.Name)
	e.Relations.Set(l.Name, &schema.Relation{
		Type:       schema.RelationHasMany,
		Entity:     l.Entity,
		ForeignKey: foreignKey,
		Foreign:    l.Foreign,
		Conditions: cloneConditions(l.Conditions),
		OrderBy:    l.OrderBy,
		Order:      l.Order,
	})
	return e, nil
}

func (r *Resolver) manyMany(entity string, l metadata.LinkDeclaration) (*schema.EntitySchema, error) {
	target, err := r.target(entity, l)
	if err != nil {
		return nil, err
	}
	cp, hasCounterpart := counterpart(target, l)

	relationName := l.RelationName
	if relationName == "" && hasCounterpart {
		relationName = cp.RelationName
	}
	if relationName == "" {
		relationName = ustrings.JoinName(entity, l.Entity)
	}

	midKeys := l.MidKeys
	if len(midKeys) == 0 && hasCounterpart && len(cp.MidKeys) == 2 {
		midKeys = []string{cp.MidKeys[1], cp.MidKeys[0]}
	}
	if len(midKeys) == 0 {
		midKeys = defaultMidKeys(entity, l)
	}

	e := fragment()
	multipleFields(e, l.Name)
	e.Relations.Set(l.Name, &schema.Relation{
		Type:              schema.RelationManyMany,
		Entity:            l.Entity,
		RelationName:      relationName,
		Key:               "id",
		ForeignKey:        "id",
		MidKeys:           append([]string(nil), midKeys...),
		Foreign:           l.Foreign,
		Conditions:        cloneConditions(l.Conditions),
		AdditionalColumns: additionalColumns(l.AdditionalColumns),
		Indexes:           relationIndexes(l.Indexes),
		OrderBy:           l.OrderBy,
		Order:             l.Order,
		NoJoin:            noJoin(l),
	})
	return e, nil
}

// defaultMidKeys names the junction columns after both entities. A
// self-referencing link uses leftId/rightId, mirrored on the side whose
// name sorts after its counterpart.
func defaultMidKeys(entity string, l metadata.LinkDeclaration) []string {
	if entity != l.Entity {
		return []string{lowerID(entity), lowerID(l.Entity)}
	}
	if l.Foreign != "" && l.Foreign < l.Name {
		return []string{"rightId", "leftId"}
	}
	return []string{"leftId", "rightId"}
}

func (r *Resolver) hasChildren(entity string, l metadata.LinkDeclaration) (*schema.EntitySchema, error) {
	if _, err := r.target(entity, l); err != nil {
		return nil, err
	}

	foreign := l.Foreign
	if foreign == "" {
		foreign = DefaultParentForeign
	}

	e := fragment()
	multipleFields(e, l.Name)
	e.Relations.Set(l.Name, &schema.Relation{
		Type:        schema.RelationHasChildren,
		Entity:      l.Entity,
		ForeignKey:  foreign + "Id",
		ForeignType: foreign + "Type",
		Foreign:     foreign,
		Conditions:  cloneConditions(l.Conditions),
	})
	return e, nil
}

func (r *Resolver) belongsToParent(l metadata.LinkDeclaration) *schema.EntitySchema {
	e := fragment()
	e.Fields.Set(l.Name+"Id", &schema.Field{
		Type:  schema.TypeForeignID,
		Index: schema.IndexNamed(l.Name),
	})
	e.Fields.Set(l.Name+"Type", &schema.Field{
		Type:    schema.TypeForeignType,
		NotNull: schema.Bool(false),
		Index:   schema.IndexNamed(l.Name),
		Len:     schema.Int(ParentTypeLen),
	})
	e.Fields.Set(l.Name+"Name", &schema.Field{
		Type:        schema.TypeVarchar,
		NotStorable: schema.Bool(true),
	})

	var entityList []string
	if len(l.EntityList) > 0 {
		entityList = append(entityList, l.EntityList...)
	}
	e.Relations.Set(l.Name, &schema.Relation{
		Type:       schema.RelationBelongsToParent,
		Key:        l.Name + "Id",
		Foreign:    l.Foreign,
		EntityList: entityList,
	})
	return e
}

func additionalColumns(decls map[string]metadata.ColumnDeclaration) *schema.Ordered[*schema.Column] {
	if len(decls) == 0 {
		return nil
	}
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	out := schema.NewOrdered[*schema.Column]()
	for _, name := range names {
		d := decls[name]
		col := &schema.Column{
			Type:    schema.FieldType(d.Type),
			Default: merge.Clone(d.Default),
		}
		switch {
		case d.Len != nil:
			col.Len = schema.Int(*d.Len)
		case d.MaxLength != nil:
			col.Len = schema.Int(*d.MaxLength)
		}
		out.Set(name, col)
	}
	return out
}

func cloneConditions(c map[string]any) map[string]any {
	if len(c) == 0 {
		return nil
	}
	return merge.Merge(nil, c)
}
