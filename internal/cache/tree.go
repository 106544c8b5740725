package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// TreeStore keeps msgpack encoded definition trees keyed by the
// fingerprint of their sources
type TreeStore struct {
	cache Cache
	ttl   time.Duration
}

// NewTreeStore creates a store over c
func NewTreeStore(c Cache, ttl time.Duration) *TreeStore {
	return &TreeStore{cache: c, ttl: ttl}
}

// TreeKey returns the cache key of a fingerprint
func TreeKey(fingerprint string) string {
	return "defs:" + fingerprint
}

// Load returns the tree stored for fingerprint. ok is false on a miss.
func (s *TreeStore) Load(ctx context.Context, fingerprint string) (tree map[string]any, ok bool, err error) {
	data, err := s.cache.Get(ctx, TreeKey(fingerprint))
	if IsMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := msgpack.Unmarshal(data, &tree); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached definitions: %w", err)
	}
	return tree, true, nil
}

// Save stores tree under fingerprint
func (s *TreeStore) Save(ctx context.Context, fingerprint string, tree map[string]any) error {
	data, err := msgpack.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode definitions: %w", err)
	}
	return s.cache.Set(ctx, TreeKey(fingerprint), data, s.ttl)
}
