package memory

import (
	"context"
	"sync"
	"unicode/utf16"

	"github.com/yndnr/webstash-go/pkg/entry"
)

// Store is an insertion-ordered string map.
type Store struct {
	mu     sync.RWMutex
	keys   []string
	values map[string]string

	// used is the accounted footprint of all keys and values in bytes.
	used  int64
	quota int64

	writeErr error
}

// Option configures the Store.
type Option func(*Store)

// WithQuota sets a hard limit on the footprint of keys plus values,
// counted as 2 bytes per UTF-16 code unit. Writes that would cross it
// fail with entry.ErrQuotaExceeded. Zero means unlimited.
func WithQuota(bytes int64) Option {
	return func(s *Store) {
		s.quota = bytes
	}
}

// WithFailingWrites makes every SetItem return err.
func WithFailingWrites(err error) Option {
	return func(s *Store) {
		s.writeErr = err
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		values: make(map[string]string),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetItem returns the value stored under key.
func (s *Store) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

// SetItem creates or overwrites key.
func (s *Store) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}

	old, exists := s.values[key]
	delta := footprint(value)
	if exists {
		delta -= footprint(old)
	} else {
		delta += footprint(key)
	}

	if s.quota > 0 && s.used+delta > s.quota {
		return entry.ErrQuotaExceeded
	}

	if !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	s.used += delta
	return nil
}

// RemoveItem deletes key. Removing an absent key is a no-op.
func (s *Store) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.values[key]
	if !ok {
		return nil
	}

	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	s.used -= footprint(key) + footprint(old)
	return nil
}

// Len returns the number of entries.
func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.keys), nil
}

// Key returns the name of the index-th entry in insertion order.
func (s *Store) Key(_ context.Context, index int) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.keys) {
		return "", false, nil
	}
	return s.keys[index], true, nil
}

// Range calls fn for each entry in insertion order until fn returns false.
// fn must not call back into the store.
func (s *Store) Range(ctx context.Context, fn func(key, value string) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, k := range s.keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(k, s.values[k]) {
			break
		}
	}
	return nil
}

// Used returns the footprint counted against the quota.
func (s *Store) Used() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.used
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = nil
	s.values = make(map[string]string)
	s.used = 0
}

// Close is a no-op so the store can stand in for persistent engines.
func (s *Store) Close() error {
	return nil
}

func footprint(v string) int64 {
	var units int64
	for _, r := range v {
		if n := utf16.RuneLen(r); n > 0 {
			units += int64(n)
		} else {
			units++
		}
	}
	return units * 2
}

var (
	_ entry.Store  = (*Store)(nil)
	_ entry.Ranger = (*Store)(nil)
)
