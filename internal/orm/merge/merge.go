// Package merge implements the recursive map merge used to layer metadata
// trees and schema fragments.
//
// Merging is pure: neither input is modified and the result shares no
// mutable state with them. Maps merge key by key, an overlay scalar replaces
// the base value, and scalar lists either replace or extend the base list
// depending on the Mode.
package merge

import (
	"fmt"
	"reflect"
)

// Mode selects how two lists of scalars are combined.
type Mode int

const (
	// Replace makes the overlay list win.
	Replace Mode = iota
	// Append extends the base list with overlay elements it does not hold yet.
	Append
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case Replace:
		return "replace"
	case Append:
		return "append"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "replace":
		return Replace, nil
	case "append":
		return Append, nil
	default:
		return Replace, fmt.Errorf("unknown merge mode %q", s)
	}
}

// Merge combines overlay onto base using Replace mode.
func Merge(base, overlay map[string]any) map[string]any {
	return MergeWith(Replace, base, overlay)
}

// MergeWith combines overlay onto base using the given mode.
func MergeWith(mode Mode, base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = Clone(v)
	}
	for k, v := range overlay {
		existing, ok := out[k]
		if !ok {
			out[k] = Clone(v)
			continue
		}
		out[k] = mergeValue(mode, existing, v)
	}
	return out
}

// Value merges two arbitrary values using Replace mode. Nil overlays keep
// the base value.
func Value(base, overlay any) any {
	if overlay == nil {
		return Clone(base)
	}
	return mergeValue(Replace, base, overlay)
}

func mergeValue(mode Mode, base, overlay any) any {
	bm, bok := asMap(base)
	om, ook := asMap(overlay)
	if bok && ook {
		return MergeWith(mode, bm, om)
	}

	if mode == Append {
		bl, bok := base.([]any)
		ol, ook := overlay.([]any)
		if bok && ook && scalars(bl) && scalars(ol) {
			return appendUnique(bl, ol)
		}
	}

	return Clone(overlay)
}

func appendUnique(base, overlay []any) []any {
	out := make([]any, 0, len(base)+len(overlay))
	out = append(out, base...)
	for _, v := range overlay {
		if !containsScalar(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func containsScalar(list []any, v any) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func scalars(list []any) bool {
	for _, v := range list {
		if v == nil {
			continue
		}
		switch reflect.TypeOf(v).Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer:
			return false
		}
	}
	return true
}

// Clone deep-copies maps and lists. Other values are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Clone(item)
		}
		return out
	case map[any]any:
		m, _ := asMap(t)
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Normalize converts decoder output into the canonical shape used by the
// merge functions: string keyed maps and []any lists.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = Clone(item)
		}
		return out, true
	default:
		return nil, false
	}
}
