// Package fields holds the per field type post-processors that expand a
// compiled field into the extra fields and attributes its type needs.
package fields

import (
	"context"
	"sort"
	"sync"

	"github.com/conduit-lang/ormschema/internal/orm/schema"
)

// Result is what a processor contributes: paths to remove first, then a
// fragment merged over the running schema.
type Result struct {
	Fragment *schema.Schema
	Unset    []schema.Path
}

// Processor expands one compiled field of a given type
type Processor interface {
	Process(ctx context.Context, field, entity string, current *schema.Schema) (Result, error)
}

// ProcessorFunc adapts a function to Processor
type ProcessorFunc func(ctx context.Context, field, entity string, current *schema.Schema) (Result, error)

// Process implements Processor
func (f ProcessorFunc) Process(ctx context.Context, field, entity string, current *schema.Schema) (Result, error) {
	return f(ctx, field, entity, current)
}

// Registry maps field type tags to processors. Custom processors shadow
// built-in ones registered under the same tag.
type Registry struct {
	mu      sync.RWMutex
	builtin map[string]Processor
	custom  map[string]Processor
}

// NewRegistry creates a registry holding the built-in processors
func NewRegistry() *Registry {
	r := &Registry{
		builtin: make(map[string]Processor),
		custom:  make(map[string]Processor),
	}
	r.builtin[TypePersonName] = PersonName{}
	r.builtin[TypeCurrency] = Currency{}
	return r
}

// Register adds a custom processor for a field type
func (r *Registry) Register(fieldType string, p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[fieldType] = p
}

// Lookup returns the processor for a field type
func (r *Registry) Lookup(fieldType string) (Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.custom[fieldType]; ok {
		return p, true
	}
	p, ok := r.builtin[fieldType]
	return p, ok
}

// Types lists every field type with a processor, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool, len(r.builtin)+len(r.custom))
	for t := range r.builtin {
		seen[t] = true
	}
	for t := range r.custom {
		seen[t] = true
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
