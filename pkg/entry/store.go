package entry

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by a Store when the host refuses a write
// because the scope is full.
var ErrQuotaExceeded = errors.New("entry: storage quota exceeded")

// Store is the host key/value capability a Manager writes through.
//
// Implementations must treat removal of an absent key as success and
// report out-of-range indexes from Key with ok=false.
type Store interface {
	// GetItem returns the stored text for key. ok is false if absent.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	// Returns ErrQuotaExceeded (possibly wrapped) when the host is full.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key.
	RemoveItem(ctx context.Context, key string) error

	// Len returns the number of stored entries.
	Len(ctx context.Context) (int, error)

	// Key returns the name of the entry at index.
	Key(ctx context.Context, index int) (key string, ok bool, err error)
}

// Ranger is implemented by stores that can enumerate all entries in a
// single pass. The capacity guard prefers it over Len/Key/GetItem.
type Ranger interface {
	// Range calls fn for each entry until fn returns false.
	Range(ctx context.Context, fn func(key, value string) bool) error
}

// Host holds the two stores a host environment exposes.
type Host struct {
	Session    Store
	Persistent Store
}

func (h Host) store(scope Scope) Store {
	if scope == ScopeSession {
		return h.Session
	}
	return h.Persistent
}
