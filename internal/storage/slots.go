// Package storage holds the named key-value slots every collection store persists into.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Slots is the key-value port behind every store. One key holds one JSON document.
type Slots interface {
	// Get returns the stored bytes and true, or (nil, false, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Ensure the backends implement Slots at compile time.
var (
	_ Slots = (*MemoryStore)(nil)
	_ Slots = (*RedisStore)(nil)
	_ Slots = (*PostgresStore)(nil)
)

// SaveJSON serializes v and writes it under key.
func SaveJSON(ctx context.Context, s Slots, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal slot %q: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

// Load reads key and decodes it as an untyped JSON value. An absent or empty
// slot yields (nil, false, nil); bytes that are not JSON yield an error.
func Load(ctx context.Context, s Slots, key string) (interface{}, bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil, false, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, fmt.Errorf("malformed slot %q: %w", key, err)
	}
	return v, true, nil
}
