package schema

import "github.com/conduit-lang/ormschema/internal/orm/merge"

// RelationType is the kind of a compiled relation
type RelationType string

const (
	RelationBelongsTo       RelationType = "belongsTo"
	RelationHasMany         RelationType = "hasMany"
	RelationHasOne          RelationType = "hasOne"
	RelationManyMany        RelationType = "manyMany"
	RelationHasChildren     RelationType = "hasChildren"
	RelationBelongsToParent RelationType = "belongsToParent"
)

// Column is an extra column stored in a many-to-many junction
type Column struct {
	Type    FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Len     *int      `json:"len,omitempty" yaml:"len,omitempty"`
	Default any       `json:"default,omitempty" yaml:"default,omitempty"`
}

// Clone returns a deep copy
func (c *Column) Clone() *Column {
	if c == nil {
		return nil
	}
	return &Column{Type: c.Type, Len: cloneInt(c.Len), Default: merge.Clone(c.Default)}
}

// Merge returns c with the attributes present in overlay replaced
func (c *Column) Merge(overlay *Column) *Column {
	if c == nil {
		return overlay.Clone()
	}
	if overlay == nil {
		return c.Clone()
	}
	return &Column{
		Type:    FieldType(pickString(string(c.Type), string(overlay.Type))),
		Len:     pickInt(c.Len, overlay.Len),
		Default: merge.Value(c.Default, overlay.Default),
	}
}

// Relation is a compiled relation between two entities
type Relation struct {
	Type              RelationType      `json:"type" yaml:"type"`
	Entity            string            `json:"entity,omitempty" yaml:"entity,omitempty"`
	EntityList        []string          `json:"entityList,omitempty" yaml:"entityList,omitempty"`
	RelationName      string            `json:"relationName,omitempty" yaml:"relationName,omitempty"`
	Key               string            `json:"key,omitempty" yaml:"key,omitempty"`
	ForeignKey        string            `json:"foreignKey,omitempty" yaml:"foreignKey,omitempty"`
	ForeignType       string            `json:"foreignType,omitempty" yaml:"foreignType,omitempty"`
	MidKeys           []string          `json:"midKeys,omitempty" yaml:"midKeys,omitempty"`
	Foreign           string            `json:"foreign,omitempty" yaml:"foreign,omitempty"`
	Conditions        map[string]any    `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	AdditionalColumns *Ordered[*Column] `json:"additionalColumns,omitempty" yaml:"additionalColumns,omitempty"`
	Indexes           *Ordered[*Index]  `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	OrderBy           string            `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	Order             string            `json:"order,omitempty" yaml:"order,omitempty"`
	NoJoin            *bool             `json:"noJoin,omitempty" yaml:"noJoin,omitempty"`
}

// Clone returns a deep copy
func (r *Relation) Clone() *Relation {
	if r == nil {
		return nil
	}
	out := *r
	out.EntityList = cloneStrings(r.EntityList)
	out.MidKeys = cloneStrings(r.MidKeys)
	if r.Conditions != nil {
		out.Conditions = merge.Merge(nil, r.Conditions)
	}
	out.AdditionalColumns = cloneOrdered(r.AdditionalColumns, (*Column).Clone)
	out.Indexes = cloneOrdered(r.Indexes, (*Index).Clone)
	out.NoJoin = cloneBool(r.NoJoin)
	return &out
}

// Merge returns r with the attributes present in overlay replaced
func (r *Relation) Merge(overlay *Relation) *Relation {
	if r == nil {
		return overlay.Clone()
	}
	if overlay == nil {
		return r.Clone()
	}
	out := r.Clone()
	out.Type = RelationType(pickString(string(r.Type), string(overlay.Type)))
	out.Entity = pickString(r.Entity, overlay.Entity)
	out.EntityList = pickStrings(r.EntityList, overlay.EntityList)
	out.RelationName = pickString(r.RelationName, overlay.RelationName)
	out.Key = pickString(r.Key, overlay.Key)
	out.ForeignKey = pickString(r.ForeignKey, overlay.ForeignKey)
	out.ForeignType = pickString(r.ForeignType, overlay.ForeignType)
	out.MidKeys = pickStrings(r.MidKeys, overlay.MidKeys)
	out.Foreign = pickString(r.Foreign, overlay.Foreign)
	if overlay.Conditions != nil {
		out.Conditions = merge.Merge(r.Conditions, overlay.Conditions)
	}
	out.AdditionalColumns = mergeOrdered(r.AdditionalColumns, overlay.AdditionalColumns, (*Column).Merge, (*Column).Clone)
	out.Indexes = mergeOrdered(r.Indexes, overlay.Indexes, (*Index).Merge, (*Index).Clone)
	out.OrderBy = pickString(r.OrderBy, overlay.OrderBy)
	out.Order = pickString(r.Order, overlay.Order)
	out.NoJoin = pickBool(r.NoJoin, overlay.NoJoin)
	return out
}
