package converter

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conduit-lang/ormschema/internal/orm/fieldtype"
	"github.com/conduit-lang/ormschema/internal/orm/index"
	"github.com/conduit-lang/ormschema/internal/orm/merge"
	"github.com/conduit-lang/ormschema/internal/orm/metadata"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
	ustrings "github.com/conduit-lang/ormschema/internal/util/strings"
)

// DefaultOrder is the collection order used when none is declared
const DefaultOrder = "ASC"

var upper = cases.Upper(language.Und)

// convertEntity compiles one entity and returns global with it merged in
func (r *run) convertEntity(ctx context.Context, name string, def *metadata.EntityDefinition, global *schema.Schema) (*schema.Schema, error) {
	e := schema.NewEntity()
	if def.SkipRebuild {
		e.SkipRebuild = schema.Bool(true)
	}
	if len(def.Indexes) > 0 {
		e.Indexes = index.FromDeclarations(def.Indexes)
	}
	if def.AdditionalTables != nil {
		e.AdditionalTables = merge.Merge(nil, def.AdditionalTables)
	}

	compiled, links, err := r.convertFields(name, def)
	if err != nil {
		return nil, err
	}
	e.Fields = compiled
	global = global.Merge(schema.Single(name, e))

	global, err = r.correctFields(ctx, name, def, global)
	if err != nil {
		return nil, err
	}

	ent, ok := global.Entity(name)
	if !ok || ent == nil {
		r.diag.Warn("entity removed by a field processor", r.logFields(name)...)
		return global, nil
	}
	for _, l := range links {
		frag, err := r.links.Resolve(name, l, ent)
		if err != nil {
			return nil, err
		}
		if frag != nil {
			ent = ent.Merge(frag)
		}
	}

	frag, err := r.fulltext.Apply(ctx, name, def)
	switch {
	case err != nil:
		r.diag.Warn("full-text capability unknown, skipping full-text index", r.logFields(name, zap.Error(err))...)
	case frag != nil:
		ent = ent.Merge(frag)
	}

	ent = r.indexes.Apply(ent)

	if c := collection(def, ent); c != nil {
		ent = ent.Merge(&schema.EntitySchema{Collection: c})
	}

	return global.Merge(schema.Single(name, ent)), nil
}

// seedFields returns the fields every entity starts with
func seedFields() *schema.Ordered[*schema.Field] {
	out := schema.NewOrdered[*schema.Field]()
	out.Set("id", &schema.Field{Type: schema.TypeID, DBType: fieldtype.IDDBType})
	out.Set("name", &schema.Field{Type: schema.TypeVarchar, NotStorable: schema.Bool(true)})
	out.Set("deleted", &schema.Field{Type: schema.TypeBool, Default: false})
	return out
}

// convertFields compiles declared fields over the seed fields. It also
// returns the entity's links extended with those implied by field types.
func (r *run) convertFields(entity string, def *metadata.EntityDefinition) (*schema.Ordered[*schema.Field], []metadata.LinkDeclaration, error) {
	out := seedFields()
	links := append([]metadata.LinkDeclaration(nil), def.Links...)

	for _, decl := range def.Fields {
		fieldType := decl.Type()
		if fieldType == "" && !decl.IsNotStorable() {
			if !decl.SkipOrmDefs() {
				r.diag.Warn("field declares no type, dropped", r.logFields(entity, zap.String("field", decl.Name))...)
			}
			continue
		}

		f, err := r.fieldTypes.Resolve(entity, decl)
		if err != nil {
			return nil, nil, err
		}
		if f != nil {
			// A declared name field replaces the seed instead of refining it.
			if existing, ok := out.Get(decl.Name); ok && decl.Name != "name" {
				f = existing.Merge(f)
			}
			out.Set(decl.Name, f)
		}

		meta := r.defs.FieldTypeMetadata(fieldType)
		if len(meta.LinkDefs) > 0 {
			links, err = withLinkDefs(entity, decl.Name, meta.LinkDefs, links)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return out, links, nil
}

// withLinkDefs adds the link a field type implies. A link declared under
// the same name wins over the implied parameters.
func withLinkDefs(entity, name string, linkDefs map[string]any, links []metadata.LinkDeclaration) ([]metadata.LinkDeclaration, error) {
	placeholders := strings.NewReplacer("{entity}", entity, "{field}", name)
	linkDefs = substitute(merge.Clone(linkDefs), placeholders).(map[string]any)
	for i, l := range links {
		if l.Name != name {
			continue
		}
		merged, err := metadata.DecodeLink(entity, name, merge.Merge(linkDefs, l.Params))
		if err != nil {
			return nil, err
		}
		out := append([]metadata.LinkDeclaration(nil), links...)
		out[i] = merged
		return out, nil
	}

	l, err := metadata.DecodeLink(entity, name, linkDefs)
	if err != nil {
		return nil, err
	}
	return append(links, l), nil
}

// substitute replaces the {entity} and {field} placeholders of link
// definitions in every string of v, in place
func substitute(v any, r *strings.Replacer) any {
	switch t := v.(type) {
	case string:
		return r.Replace(t)
	case map[string]any:
		for k, item := range t {
			t[k] = substitute(item, r)
		}
	case []any:
		for i, item := range t {
			t[i] = substitute(item, r)
		}
	case []string:
		for i, item := range t {
			t[i] = r.Replace(item)
		}
	}
	return v
}

// correctFields runs field type post-processors, per field default
// attributes and scope implied fields.
func (r *run) correctFields(ctx context.Context, entity string, def *metadata.EntityDefinition, global *schema.Schema) (*schema.Schema, error) {
	ent, _ := global.Entity(entity)

	for _, name := range ent.Fields.Keys() {
		f, _ := ent.Fields.Get(name)

		if f.Type != "" {
			if p, ok := r.registry.Lookup(string(f.Type)); ok {
				res, err := p.Process(ctx, name, entity, global)
				if err != nil {
					return nil, fmt.Errorf("process %s field %s.%s: %w", f.Type, entity, name, err)
				}
				next, err := global.Unset(res.Unset...)
				if err != nil {
					return nil, fmt.Errorf("process %s field %s.%s: %w", f.Type, entity, name, err)
				}
				global = next.Merge(res.Fragment)
				if _, ok := global.Entity(entity); !ok {
					return global, nil
				}
			}
		}

		decl, ok := def.Field(name)
		if !ok {
			continue
		}
		v, ok := decl.DefaultAttributes()[name]
		if !ok {
			continue
		}
		if d := metadata.ParseDefault(v); d.IsStatic() {
			global = global.Merge(fieldFragment(entity, name, &schema.Field{Default: d.Value}))
		}
	}

	if r.defs.Scope(entity).Stream {
		global = global.Merge(streamFields(entity, global))
	}
	return global, nil
}

func fieldFragment(entity, name string, f *schema.Field) *schema.Schema {
	e := schema.NewEntity()
	e.Fields.Set(name, f)
	return schema.Single(entity, e)
}

// streamFields adds the follower fields of stream enabled entities
func streamFields(entity string, global *schema.Schema) *schema.Schema {
	current, _ := global.Entity(entity)
	e := schema.NewEntity()
	implied := []struct {
		name  string
		field *schema.Field
	}{
		{"isFollowed", &schema.Field{Type: schema.TypeVarchar, NotStorable: schema.Bool(true)}},
		{"followersIds", &schema.Field{Type: schema.TypeJSONArray, NotStorable: schema.Bool(true)}},
		{"followersNames", &schema.Field{Type: schema.TypeJSONObject, NotStorable: schema.Bool(true)}},
	}
	for _, f := range implied {
		if _, ok := current.Field(f.name); ok {
			continue
		}
		e.Fields.Set(f.name, f.field)
	}
	return schema.Single(entity, e)
}

// collection resolves the declared list ordering
func collection(def *metadata.EntityDefinition, ent *schema.EntitySchema) *schema.Collection {
	cd := def.Collection
	if cd == nil {
		return nil
	}

	c := &schema.Collection{Order: DefaultOrder}
	switch {
	case cd.OrderByColumn != nil && *cd.OrderByColumn != "":
		c.OrderBy = *cd.OrderByColumn
	case cd.OrderBy != nil && ent.Fields.Has(*cd.OrderBy):
		c.OrderBy = *cd.OrderBy
	}
	if cd.Order != nil && *cd.Order != "" {
		c.Order = upper.String(*cd.Order)
	}
	return c
}

// normalize rewrites every compiled field into its storage shape and
// removes typeless storable fields.
func (r *run) normalize(s *schema.Schema) (*schema.Schema, error) {
	var prune []schema.Path
	patch := schema.New()

	s.Each(func(entity string, e *schema.EntitySchema) {
		frag := schema.NewEntity()
		e.Fields.Each(func(name string, f *schema.Field) {
			nf, keep := fieldtype.Normalize(f)
			if !keep {
				r.diag.Warn("field has no type, removed", r.logFields(entity, zap.String("field", name))...)
				prune = append(prune, schema.FieldPath(entity, name))
				return
			}
			frag.Fields.Set(name, nf)
		})
		patch = patch.Merge(schema.Single(entity, frag))
	})

	out, err := s.Unset(prune...)
	if err != nil {
		return nil, err
	}
	return out.Merge(patch), nil
}

// junctions builds the storage entities backing many-to-many relations
func (r *run) junctions(s *schema.Schema) *schema.Schema {
	out := schema.New()
	s.Each(func(_ string, e *schema.EntitySchema) {
		e.Relations.Each(func(_ string, rel *schema.Relation) {
			if rel.Type != schema.RelationManyMany || rel.RelationName == "" {
				return
			}
			out = out.Merge(schema.Single(ustrings.UpperFirst(rel.RelationName), junctionEntity(rel)))
		})
	})
	return out
}

func junctionEntity(rel *schema.Relation) *schema.EntitySchema {
	e := schema.NewEntity()
	e.SkipRebuild = schema.Bool(true)
	e.Fields.Set("id", &schema.Field{
		Type:          schema.TypeID,
		Autoincrement: schema.Bool(true),
		DBType:        fieldtype.IDDBType,
	})
	e.Fields.Set("deleted", &schema.Field{Type: schema.TypeBool})

	for _, key := range rel.MidKeys {
		e.Fields.Set(key, &schema.Field{Type: schema.TypeForeignID})
	}

	rel.AdditionalColumns.Each(func(name string, col *schema.Column) {
		f := &schema.Field{Type: col.Type, Len: col.Len, Default: col.Default}
		if f.Type == "" {
			f.Type = fieldtype.DefaultType
		}
		f = f.Clone()
		if f.Len == nil {
			if l, ok := fieldtype.DefaultLengths[f.Type]; ok {
				f.Len = schema.Int(l)
			}
		}
		e.Fields.Set(name, f)
	})

	rel.Indexes.Each(func(name string, idx *schema.Index) {
		e.Indexes.Set(name, idx.Clone())
	})
	return e
}
