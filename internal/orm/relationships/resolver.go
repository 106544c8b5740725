// Package relationships compiles declared links into relations and the
// fields those relations imply on the owning entity.
package relationships

import (
	"github.com/conduit-lang/ormschema/internal/orm/index"
	"github.com/conduit-lang/ormschema/internal/orm/merge"
	"github.com/conduit-lang/ormschema/internal/orm/metadata"
	"github.com/conduit-lang/ormschema/internal/orm/schema"
	ustrings "github.com/conduit-lang/ormschema/internal/util/strings"
)

// Link kinds understood by the resolver
const (
	BelongsTo       = "belongsTo"
	HasMany         = "hasMany"
	HasOne          = "hasOne"
	ManyMany        = "manyMany"
	HasChildren     = "hasChildren"
	BelongsToParent = "belongsToParent"
)

// DefaultParentForeign is the foreign name of a hasChildren link that
// declares none
const DefaultParentForeign = "parent"

// ParentTypeLen is the length of the type column of a belongsToParent link
const ParentTypeLen = 100

// Resolver compiles links against the full set of definitions so that a
// link can read its counterpart on the target entity.
type Resolver struct {
	defs metadata.Definitions
}

// NewResolver creates a resolver
func NewResolver(defs metadata.Definitions) *Resolver {
	return &Resolver{defs: defs}
}

// Resolve compiles one link of entity into an entity schema fragment that
// holds the relation and its implied fields. Implied fields never override
// fields already compiled on current. A nil fragment means the link opts
// out of compilation.
func (r *Resolver) Resolve(entity string, link metadata.LinkDeclaration, current *schema.EntitySchema) (*schema.EntitySchema, error) {
	meta := r.defs.LinkTypeMetadata(link.Type)
	if len(meta.Defaults) > 0 {
		merged, err := metadata.DecodeLink(entity, link.Name, merge.Merge(meta.Defaults, link.Params))
		if err != nil {
			return nil, err
		}
		link = merged
	}

	if meta.SkipOrmDefs || link.SkipOrmDefs {
		return nil, nil
	}

	var (
		frag *schema.EntitySchema
		err  error
	)
	switch link.Type {
	case BelongsTo:
		frag, err = r.belongsTo(entity, link)
	case HasOne:
		frag, err = r.hasOne(entity, link)
	case HasMany:
		frag, err = r.hasMany(entity, link)
	case ManyMany:
		frag, err = r.manyMany(entity, link)
	case HasChildren:
		frag, err = r.hasChildren(entity, link)
	case BelongsToParent:
		frag = r.belongsToParent(link)
	default:
		return nil, &metadata.ConfigError{Entity: entity, Link: link.Name, Reason: link.Type, Err: ErrUnknownLinkType}
	}
	if err != nil {
		return nil, err
	}

	return underExisting(frag, current), nil
}

// underExisting lets fields already compiled on current win over implied ones
func underExisting(frag, current *schema.EntitySchema) *schema.EntitySchema {
	if current == nil {
		return frag
	}
	out := frag.Clone()
	frag.Fields.Each(func(name string, implied *schema.Field) {
		if existing, ok := current.Field(name); ok {
			out.Fields.Set(name, implied.Merge(existing))
		}
	})
	return out
}

// target looks up the entity a link points at
func (r *Resolver) target(entity string, link metadata.LinkDeclaration) (*metadata.EntityDefinition, error) {
	if link.Entity == "" {
		return nil, &metadata.ConfigError{Entity: entity, Link: link.Name, Reason: "link declares no entity", Err: ErrMissingTarget}
	}
	def, ok := r.defs.EntityDefinition(link.Entity)
	if !ok {
		return nil, &metadata.ConfigError{Entity: entity, Link: link.Name, Reason: link.Entity, Err: ErrMissingTarget}
	}
	return def, nil
}

// counterpart returns the link on the target entity named by link.Foreign
func counterpart(target *metadata.EntityDefinition, link metadata.LinkDeclaration) (metadata.LinkDeclaration, bool) {
	if target == nil || link.Foreign == "" {
		return metadata.LinkDeclaration{}, false
	}
	return target.Link(link.Foreign)
}

func fragment() *schema.EntitySchema {
	return schema.NewEntity()
}

func multipleFields(e *schema.EntitySchema, name string) {
	e.Fields.Set(name+"Ids", &schema.Field{Type: schema.TypeJSONArray, NotStorable: schema.Bool(true)})
	e.Fields.Set(name+"Names", &schema.Field{Type: schema.TypeJSONObject, NotStorable: schema.Bool(true)})
}

func relationIndexes(decls map[string]metadata.IndexDeclaration) *schema.Ordered[*schema.Index] {
	if len(decls) == 0 {
		return nil
	}
	return index.FromDeclarations(decls)
}

func lowerID(entity string) string {
	return ustrings.LowerFirst(entity) + "Id"
}

func noJoin(l metadata.LinkDeclaration) *bool {
	if l.NoJoin {
		return schema.Bool(true)
	}
	return nil
}
