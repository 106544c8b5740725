package schema

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Ordered is a string keyed map that remembers insertion order. The zero
// value and a nil pointer are both usable as an empty map for reads.
type Ordered[V any] struct {
	keys []string
	vals map[string]V
}

// NewOrdered creates an empty ordered map
func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{vals: make(map[string]V)}
}

// Len returns the number of entries
func (o *Ordered[V]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order
func (o *Ordered[V]) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Get returns the value stored under key
func (o *Ordered[V]) Get(key string) (V, bool) {
	var zero V
	if o == nil || o.vals == nil {
		return zero, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether key is present
func (o *Ordered[V]) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores value under key. New keys are appended, existing keys keep
// their position.
func (o *Ordered[V]) Set(key string, value V) {
	if o.vals == nil {
		o.vals = make(map[string]V)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = value
}

// Delete removes key
func (o *Ordered[V]) Delete(key string) {
	if o == nil || o.vals == nil {
		return
	}
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// Each calls fn for every entry in order
func (o *Ordered[V]) Each(fn func(key string, value V)) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		fn(k, o.vals[k])
	}
}

func cloneOrdered[V any](o *Ordered[V], clone func(V) V) *Ordered[V] {
	if o == nil {
		return nil
	}
	out := &Ordered[V]{
		keys: append([]string(nil), o.keys...),
		vals: make(map[string]V, len(o.vals)),
	}
	for k, v := range o.vals {
		out.vals[k] = clone(v)
	}
	return out
}

// mergeOrdered keeps base keys in place, merges shared keys and appends
// keys only present in overlay in overlay order.
func mergeOrdered[V any](base, overlay *Ordered[V], merge func(a, b V) V, clone func(V) V) *Ordered[V] {
	if base.Len() == 0 && overlay.Len() == 0 {
		if base == nil && overlay == nil {
			return nil
		}
		return NewOrdered[V]()
	}
	out := cloneOrdered(base, clone)
	if out == nil {
		out = NewOrdered[V]()
	}
	overlay.Each(func(k string, v V) {
		if existing, ok := out.Get(k); ok {
			out.Set(k, merge(existing, v))
			return
		}
		out.Set(k, clone(v))
	})
	return out
}

// MarshalJSON encodes the map as a JSON object in insertion order
func (o *Ordered[V]) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the map as a YAML mapping in insertion order
func (o *Ordered[V]) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if o == nil {
		return node, nil
	}
	for _, k := range o.keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valNode := &yaml.Node{}
		if err := valNode.Encode(o.vals[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}
