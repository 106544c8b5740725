// Package capability answers storage backend questions the converter asks
// while compiling, such as whether a table can carry a full-text index.
package capability

import (
	"context"
	"sync"
)

// Probe reports storage backend capabilities
type Probe interface {
	SupportsFullText(ctx context.Context, table string) (bool, error)
}

// Static answers from fixed configuration
type Static struct {
	Default bool
	Tables  map[string]bool
}

// Always reports full-text support for every table
func Always() Static {
	return Static{Default: true}
}

// Never reports no full-text support
func Never() Static {
	return Static{}
}

// SupportsFullText implements Probe
func (s Static) SupportsFullText(_ context.Context, table string) (bool, error) {
	if v, ok := s.Tables[table]; ok {
		return v, nil
	}
	return s.Default, nil
}

// Cached memoizes another probe per table. Errors are not cached.
type Cached struct {
	next    Probe
	mu      sync.Mutex
	results map[string]bool
}

// NewCached wraps next
func NewCached(next Probe) *Cached {
	return &Cached{next: next, results: make(map[string]bool)}
}

// SupportsFullText implements Probe
func (c *Cached) SupportsFullText(ctx context.Context, table string) (bool, error) {
	c.mu.Lock()
	v, ok := c.results[table]
	c.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := c.next.SupportsFullText(ctx, table)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.results[table] = v
	c.mu.Unlock()
	return v, nil
}

// Reset drops memoized answers
func (c *Cached) Reset() {
	c.mu.Lock()
	c.results = make(map[string]bool)
	c.mu.Unlock()
}
