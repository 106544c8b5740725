package schema

// IndexKind classifies an index for naming and rendering
type IndexKind string

const (
	KindIndex    IndexKind = "index"
	KindUnique   IndexKind = "unique"
	KindFullText IndexKind = "fulltext"
)

// FlagFullText marks an index as a full-text index
const FlagFullText = "fulltext"

// Index is a compiled index over one or more fields
type Index struct {
	Type    IndexKind `json:"type,omitempty" yaml:"type,omitempty"`
	Columns []string  `json:"columns" yaml:"columns"`
	Flags   []string  `json:"flags,omitempty" yaml:"flags,omitempty"`
	Key     string    `json:"key,omitempty" yaml:"key,omitempty"`
}

// Kind resolves the effective index kind
func (i *Index) Kind() IndexKind {
	if i.Type == KindUnique {
		return KindUnique
	}
	for _, f := range i.Flags {
		if f == FlagFullText {
			return KindFullText
		}
	}
	if i.Type == KindFullText {
		return KindFullText
	}
	return KindIndex
}

// Clone returns a deep copy
func (i *Index) Clone() *Index {
	if i == nil {
		return nil
	}
	return &Index{
		Type:    i.Type,
		Columns: cloneStrings(i.Columns),
		Flags:   cloneStrings(i.Flags),
		Key:     i.Key,
	}
}

// Merge returns i with the attributes present in overlay replaced
func (i *Index) Merge(overlay *Index) *Index {
	if i == nil {
		return overlay.Clone()
	}
	if overlay == nil {
		return i.Clone()
	}
	return &Index{
		Type:    IndexKind(pickString(string(i.Type), string(overlay.Type))),
		Columns: pickStrings(i.Columns, overlay.Columns),
		Flags:   pickStrings(i.Flags, overlay.Flags),
		Key:     pickString(i.Key, overlay.Key),
	}
}
