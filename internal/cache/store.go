// Package cache provides the TTL key-value store used for cross-turn
// scheduling context. Three backends satisfy the same contract: an
// in-process map with timer eviction, SQLite, and Postgres. Business logic
// always receives the Store interface, never a concrete backend.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is the TTL key-value contract. Get returns ok=false for a missing
// or expired key; Keys returns the live keys matching a glob pattern.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	Close() error
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return s.Set(ctx, key, data, ttl)
}

// GetJSON loads key and unmarshals it into out. Returns ok=false when the
// key is missing or expired.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("unmarshal cache value: %w", err)
	}
	return true, nil
}
