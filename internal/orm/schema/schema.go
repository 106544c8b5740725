package schema

import "fmt"

// Schema maps entity names to their compiled schema
type Schema struct {
	entities *Ordered[*EntitySchema]
}

// New creates an empty schema
func New() *Schema {
	return &Schema{entities: NewOrdered[*EntitySchema]()}
}

// Single creates a schema fragment holding one entity
func Single(name string, e *EntitySchema) *Schema {
	s := New()
	s.entities.Set(name, e)
	return s
}

// Len returns the number of entities
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return s.entities.Len()
}

// Names returns entity names in insertion order
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	return s.entities.Keys()
}

// Entity returns the named entity schema
func (s *Schema) Entity(name string) (*EntitySchema, bool) {
	if s == nil {
		return nil, false
	}
	return s.entities.Get(name)
}

// Clone returns a deep copy
func (s *Schema) Clone() *Schema {
	if s == nil {
		return New()
	}
	out := cloneOrdered(s.entities, (*EntitySchema).Clone)
	if out == nil {
		out = NewOrdered[*EntitySchema]()
	}
	return &Schema{entities: out}
}

// Merge returns s with overlay layered on top. Neither input changes.
func (s *Schema) Merge(overlay *Schema) *Schema {
	var base, top *Ordered[*EntitySchema]
	if s != nil {
		base = s.entities
	}
	if overlay != nil {
		top = overlay.entities
	}
	out := mergeOrdered(base, top, (*EntitySchema).Merge, (*EntitySchema).Clone)
	if out == nil {
		out = NewOrdered[*EntitySchema]()
	}
	return &Schema{entities: out}
}

// Unset returns a copy of s with every addressed entry removed. Paths that
// address nothing are ignored.
func (s *Schema) Unset(paths ...Path) (*Schema, error) {
	out := s.Clone()
	for _, p := range paths {
		e, ok := out.entities.Get(p.Entity)
		if !ok {
			continue
		}
		if p.Section == "" {
			out.entities.Delete(p.Entity)
			continue
		}
		if p.Name == "" {
			return nil, fmt.Errorf("unset %s: missing entry name", p)
		}
		next, err := e.without(p)
		if err != nil {
			return nil, err
		}
		out.entities.Set(p.Entity, next)
	}
	return out, nil
}

// Each calls fn for every entity in order
func (s *Schema) Each(fn func(name string, e *EntitySchema)) {
	if s == nil {
		return
	}
	s.entities.Each(fn)
}

// MarshalJSON encodes the schema as an ordered JSON object
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return s.entities.MarshalJSON()
}

// MarshalYAML encodes the schema as an ordered YAML mapping
func (s *Schema) MarshalYAML() (interface{}, error) {
	if s == nil {
		return New().entities.MarshalYAML()
	}
	return s.entities.MarshalYAML()
}
