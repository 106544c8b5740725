// Package diff compares two compiled schemas and classifies the storage
// impact of every change.
package diff

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"

	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

// ChangeType represents the type of schema change
type ChangeType int

const (
	ChangeAddEntity ChangeType = iota
	ChangeDropEntity
	ChangeAddField
	ChangeDropField
	ChangeModifyField
	ChangeAddRelation
	ChangeDropRelation
	ChangeModifyRelation
	ChangeAddIndex
	ChangeDropIndex
	ChangeModifyIndex
)

// String returns the string representation of the change type
func (c ChangeType) String() string {
	switch c {
	case ChangeAddEntity:
		return "add_entity"
	case ChangeDropEntity:
		return "drop_entity"
	case ChangeAddField:
		return "add_field"
	case ChangeDropField:
		return "drop_field"
	case ChangeModifyField:
		return "modify_field"
	case ChangeAddRelation:
		return "add_relation"
	case ChangeDropRelation:
		return "drop_relation"
	case ChangeModifyRelation:
		return "modify_relation"
	case ChangeAddIndex:
		return "add_index"
	case ChangeDropIndex:
		return "drop_index"
	case ChangeModifyIndex:
		return "modify_index"
	default:
		return "unknown"
	}
}

// Change is one difference between two schemas. Name is empty for entity
// level changes.
type Change struct {
	Type     ChangeType
	Entity   string
	Name     string
	OldValue interface{}
	NewValue interface{}
	Breaking bool
	DataLoss bool
}

// Compute returns the changes turning old into new, ordered by entity name
// and then by section and member name
func Compute(old, new *schema.Schema) []Change {
	var changes []Change

	oldNames := sorted(old.Names())
	newNames := sorted(new.Names())

	for _, name := range difference(newNames, oldNames) {
		e, _ := new.Entity(name)
		changes = append(changes, Change{Type: ChangeAddEntity, Entity: name, NewValue: e})
	}

	for _, name := range difference(oldNames, newNames) {
		e, _ := old.Entity(name)
		changes = append(changes, Change{
			Type:     ChangeDropEntity,
			Entity:   name,
			OldValue: e,
			Breaking: true,
			DataLoss: hasColumns(e),
		})
	}

	for _, name := range intersection(oldNames, newNames) {
		oldEntity, _ := old.Entity(name)
		newEntity, _ := new.Entity(name)
		changes = append(changes, diffFields(name, oldEntity, newEntity)...)
		changes = append(changes, diffRelations(name, oldEntity, newEntity)...)
		changes = append(changes, diffIndexes(name, oldEntity, newEntity)...)
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Entity < changes[j].Entity
	})
	return changes
}

// HasBreaking reports whether any change is breaking
func HasBreaking(changes []Change) bool {
	for _, c := range changes {
		if c.Breaking {
			return true
		}
	}
	return false
}

func diffFields(entity string, old, new *schema.EntitySchema) []Change {
	var changes []Change
	oldKeys, newKeys := sorted(old.Fields.Keys()), sorted(new.Fields.Keys())

	for _, name := range difference(newKeys, oldKeys) {
		f, _ := new.Fields.Get(name)
		changes = append(changes, Change{
			Type:     ChangeAddField,
			Entity:   entity,
			Name:     name,
			NewValue: f,
			Breaking: stored(f) && isTrue(f.NotNull) && f.Default == nil,
		})
	}

	for _, name := range difference(oldKeys, newKeys) {
		f, _ := old.Fields.Get(name)
		changes = append(changes, Change{
			Type:     ChangeDropField,
			Entity:   entity,
			Name:     name,
			OldValue: f,
			Breaking: stored(f),
			DataLoss: stored(f),
		})
	}

	for _, name := range intersection(oldKeys, newKeys) {
		o, _ := old.Fields.Get(name)
		n, _ := new.Fields.Get(name)
		if same(o, n) {
			continue
		}
		changes = append(changes, Change{
			Type:     ChangeModifyField,
			Entity:   entity,
			Name:     name,
			OldValue: o,
			NewValue: n,
			Breaking: isBreakingFieldChange(o, n),
			DataLoss: causesDataLoss(o, n),
		})
	}

	return changes
}

func diffRelations(entity string, old, new *schema.EntitySchema) []Change {
	var changes []Change
	oldKeys, newKeys := sorted(old.Relations.Keys()), sorted(new.Relations.Keys())

	for _, name := range difference(newKeys, oldKeys) {
		r, _ := new.Relations.Get(name)
		changes = append(changes, Change{Type: ChangeAddRelation, Entity: entity, Name: name, NewValue: r})
	}

	for _, name := range difference(oldKeys, newKeys) {
		r, _ := old.Relations.Get(name)
		changes = append(changes, Change{Type: ChangeDropRelation, Entity: entity, Name: name, OldValue: r, Breaking: true})
	}

	for _, name := range intersection(oldKeys, newKeys) {
		o, _ := old.Relations.Get(name)
		n, _ := new.Relations.Get(name)
		if same(o, n) {
			continue
		}
		changes = append(changes, Change{
			Type:     ChangeModifyRelation,
			Entity:   entity,
			Name:     name,
			OldValue: o,
			NewValue: n,
			Breaking: o.Type != n.Type || o.Entity != n.Entity || o.RelationName != n.RelationName,
		})
	}

	return changes
}

func diffIndexes(entity string, old, new *schema.EntitySchema) []Change {
	var changes []Change
	oldKeys, newKeys := sorted(old.Indexes.Keys()), sorted(new.Indexes.Keys())

	for _, name := range difference(newKeys, oldKeys) {
		idx, _ := new.Indexes.Get(name)
		// existing rows may violate a new unique index
		changes = append(changes, Change{
			Type:     ChangeAddIndex,
			Entity:   entity,
			Name:     name,
			NewValue: idx,
			Breaking: idx.Kind() == schema.KindUnique,
		})
	}

	for _, name := range difference(oldKeys, newKeys) {
		idx, _ := old.Indexes.Get(name)
		changes = append(changes, Change{Type: ChangeDropIndex, Entity: entity, Name: name, OldValue: idx})
	}

	for _, name := range intersection(oldKeys, newKeys) {
		o, _ := old.Indexes.Get(name)
		n, _ := new.Indexes.Get(name)
		if same(o, n) {
			continue
		}
		changes = append(changes, Change{
			Type:     ChangeModifyIndex,
			Entity:   entity,
			Name:     name,
			OldValue: o,
			NewValue: n,
			Breaking: n.Kind() == schema.KindUnique,
		})
	}

	return changes
}

// isBreakingFieldChange determines if a field change is breaking
func isBreakingFieldChange(old, new *schema.Field) bool {
	if stored(old) != stored(new) {
		return true
	}
	if !stored(new) {
		return false
	}
	if old.Type != new.Type || old.DBType != new.DBType {
		return true
	}
	// Nullability change: optional -> required
	if !isTrue(old.NotNull) && isTrue(new.NotNull) {
		return true
	}
	return shrinks(old.Len, new.Len)
}

// causesDataLoss determines if a field change can drop stored values
func causesDataLoss(old, new *schema.Field) bool {
	if stored(old) && !stored(new) {
		return true
	}
	if !stored(old) || !stored(new) {
		return false
	}
	if old.Type != new.Type || old.DBType != new.DBType {
		return true
	}
	return shrinks(old.Len, new.Len)
}

// same compares compiled values by their encoded form
func same(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ja, jb)
}

func shrinks(old, new *int) bool {
	return old != nil && new != nil && *new < *old
}

func stored(f *schema.Field) bool {
	return f != nil && !f.IsNotStorable() && f.Type != schema.TypeForeign
}

func hasColumns(e *schema.EntitySchema) bool {
	found := false
	e.Fields.Each(func(_ string, f *schema.Field) {
		if stored(f) {
			found = true
		}
	})
	return found
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

func sorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}

// difference returns elements in a that are not in b
func difference(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, item := range b {
		set[item] = struct{}{}
	}
	var out []string
	for _, item := range a {
		if _, ok := set[item]; !ok {
			out = append(out, item)
		}
	}
	return out
}

// intersection returns elements present in both a and b
func intersection(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, item := range b {
		set[item] = struct{}{}
	}
	var out []string
	for _, item := range a {
		if _, ok := set[item]; ok {
			out = append(out, item)
		}
	}
	return out
}
