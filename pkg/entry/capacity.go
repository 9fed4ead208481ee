package entry

import (
	"context"
	"fmt"
	"unicode/utf16"
)

// storedBytes estimates the host footprint of a stored value: 2 bytes per
// UTF-16 code unit.
func storedBytes(s string) int64 {
	var units int64
	for _, r := range s {
		if n := utf16.RuneLen(r); n > 0 {
			units += int64(n)
		} else {
			units++
		}
	}
	return units * 2
}

// usedBytes walks every entry of the bound store and sums storedBytes of
// the values. It runs on every Set so the estimate reflects writes made
// behind the Manager's back.
func (m *Manager) usedBytes(ctx context.Context) (int64, error) {
	var used int64

	if r, ok := m.store.(Ranger); ok {
		err := r.Range(ctx, func(_, value string) bool {
			used += storedBytes(value)
			return true
		})
		if err != nil {
			return 0, fmt.Errorf("entry: range store: %w", err)
		}
		return used, nil
	}

	n, err := m.store.Len(ctx)
	if err != nil {
		return 0, fmt.Errorf("entry: store length: %w", err)
	}
	for i := 0; i < n; i++ {
		key, ok, err := m.store.Key(ctx, i)
		if err != nil {
			return 0, fmt.Errorf("entry: store key %d: %w", i, err)
		}
		if !ok {
			continue
		}
		value, ok, err := m.store.GetItem(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("entry: store get %q: %w", key, err)
		}
		if ok {
			used += storedBytes(value)
		}
	}
	return used, nil
}

// Usage returns the current capacity estimate for the bound scope.
// ok is false if the store could not be enumerated.
func (m *Manager) Usage(ctx context.Context) (used, remaining int64, ok bool) {
	used, err := m.usedBytes(ctx)
	if err != nil {
		m.logger.Error(msgStoreError, "op", "usage", "error", err)
		return 0, 0, false
	}
	m.recorder.RecordUsage(m.cfg.Scope, used)
	return used, m.cfg.CapacityBytes - used, true
}
