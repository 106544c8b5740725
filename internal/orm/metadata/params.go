package metadata

import (
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/conduit-lang/ormschema/internal/orm/merge"
)

// Params is the raw parameter set of a declaration
type Params map[string]any

// Has reports whether key was declared
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns key as a string, empty when absent
func (p Params) String(key string) string {
	return cast.ToString(p[key])
}

// Bool returns key as a boolean and whether it was declared
func (p Params) Bool(key string) (bool, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return false, false
	}
	return cast.ToBool(v), true
}

// True reports whether key is declared and truthy
func (p Params) True(key string) bool {
	b, _ := p.Bool(key)
	return b
}

// Map returns key as a nested map
func (p Params) Map(key string) map[string]any {
	m, _ := merge.Normalize(p[key]).(map[string]any)
	return m
}

// Strings returns key as a list of strings
func (p Params) Strings(key string) []string {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	return cast.ToStringSlice(v)
}

// Clone returns a deep copy
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return Params(merge.Merge(nil, p))
}

// Merge returns p layered beneath overlay
func (p Params) Merge(overlay Params) Params {
	return Params(merge.Merge(p, overlay))
}

// ComputedPrefix marks a default value evaluated by the client rather than
// stored in the schema
const ComputedPrefix = "javascript:"

// DefaultKind distinguishes stored defaults from computed ones
type DefaultKind int

const (
	StaticDefault DefaultKind = iota
	ComputedDefault
)

// DefaultValue is a declared field default
type DefaultValue struct {
	Kind       DefaultKind
	Value      any
	Expression string
}

// ParseDefault classifies a declared default value
func ParseDefault(v any) DefaultValue {
	if s, ok := v.(string); ok && len(s) >= len(ComputedPrefix) &&
		strings.EqualFold(s[:len(ComputedPrefix)], ComputedPrefix) {
		return DefaultValue{Kind: ComputedDefault, Expression: strings.TrimSpace(s[len(ComputedPrefix):])}
	}
	return DefaultValue{Kind: StaticDefault, Value: v}
}

// IsStatic reports whether the default belongs in the compiled schema
func (d DefaultValue) IsStatic() bool {
	return d.Kind == StaticDefault
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
