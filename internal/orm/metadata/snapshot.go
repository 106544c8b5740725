package metadata

import "github.com/conduit-lang/ormschema/internal/orm/merge"

// Top level sections of a metadata tree
const (
	SectionEntityDefs = "entityDefs"
	SectionFields     = "fields"
	SectionLinks      = "links"
	SectionScopes     = "scopes"
)

// Snapshot is an immutable, decoded metadata tree
type Snapshot struct {
	names      []string
	entities   map[string]*EntityDefinition
	fieldTypes map[string]FieldTypeMetadata
	linkTypes  map[string]LinkTypeMetadata
	scopes     map[string]ScopeMetadata
}

var _ Definitions = (*Snapshot)(nil)

// NewSnapshot decodes a raw metadata tree keyed by section name
func NewSnapshot(raw map[string]any) (*Snapshot, error) {
	tree, _ := merge.Normalize(raw).(map[string]any)

	s := &Snapshot{
		entities:   make(map[string]*EntityDefinition),
		fieldTypes: make(map[string]FieldTypeMetadata),
		linkTypes:  make(map[string]LinkTypeMetadata),
		scopes:     make(map[string]ScopeMetadata),
	}

	entityDefs, err := section(tree, SectionEntityDefs)
	if err != nil {
		return nil, sectionError("section", SectionEntityDefs, err)
	}
	s.names = sortedKeys(entityDefs)
	for _, name := range s.names {
		def, err := DecodeEntity(name, entityDefs[name])
		if err != nil {
			return nil, err
		}
		s.entities[name] = def
	}

	fieldTypes, err := section(tree, SectionFields)
	if err != nil {
		return nil, sectionError("section", SectionFields, err)
	}
	for name, raw := range fieldTypes {
		var m FieldTypeMetadata
		if err := decode(raw, &m); err != nil {
			return nil, sectionError("field type", name, err)
		}
		s.fieldTypes[name] = m
	}

	linkTypes, err := section(tree, SectionLinks)
	if err != nil {
		return nil, sectionError("section", SectionLinks, err)
	}
	for name, raw := range linkTypes {
		var m LinkTypeMetadata
		if err := decode(raw, &m); err != nil {
			return nil, sectionError("link type", name, err)
		}
		s.linkTypes[name] = m
	}

	scopes, err := section(tree, SectionScopes)
	if err != nil {
		return nil, sectionError("section", SectionScopes, err)
	}
	for name, raw := range scopes {
		var m ScopeMetadata
		if err := decode(raw, &m); err != nil {
			return nil, sectionError("scope", name, err)
		}
		s.scopes[name] = m
	}

	return s, nil
}

// EntityNames returns every declared entity name, sorted
func (s *Snapshot) EntityNames() []string {
	return append([]string(nil), s.names...)
}

// EntityDefinition returns the named definition
func (s *Snapshot) EntityDefinition(name string) (*EntityDefinition, bool) {
	def, ok := s.entities[name]
	return def, ok
}

// FieldTypeMetadata returns the metadata of a field type, empty when undeclared
func (s *Snapshot) FieldTypeMetadata(fieldType string) FieldTypeMetadata {
	return s.fieldTypes[fieldType]
}

// LinkTypeMetadata returns the metadata of a link kind, empty when undeclared
func (s *Snapshot) LinkTypeMetadata(linkType string) LinkTypeMetadata {
	return s.linkTypes[linkType]
}

// Scope returns the scope flags of an entity
func (s *Snapshot) Scope(entity string) ScopeMetadata {
	return s.scopes[entity]
}
