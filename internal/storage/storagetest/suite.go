// Package storagetest provides a conformance suite for entry.Store
// implementations.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/yndnr/webstash-go/pkg/entry"
)

// Factory returns an empty store. The suite calls it once per subtest.
type Factory func(t *testing.T) entry.Store

// Run exercises the entry.Store contract, and entry.Ranger when the store
// implements it.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.GetItem(ctx, "missing")
		if err != nil {
			t.Fatalf("GetItem() error = %v", err)
		}
		if ok || v != "" {
			t.Errorf("GetItem(missing) = %q, %v", v, ok)
		}
	})

	t.Run("SetGet", func(t *testing.T) {
		s := newStore(t)
		cases := map[string]string{
			"plain":       "value",
			"empty":       "",
			"unicode ✓":   "héllo wörld 日本 😀",
			"json":        `{"value":{"a":[1,2,3]},"expiration":1700000000000}`,
			"with/slash":  "x",
			"with:colon":  "y",
			"__test__":    "test",
			"  spaced  ":  "  ",
		}
		for k, v := range cases {
			if err := s.SetItem(ctx, k, v); err != nil {
				t.Fatalf("SetItem(%q) error = %v", k, err)
			}
		}
		for k, want := range cases {
			got, ok, err := s.GetItem(ctx, k)
			if err != nil {
				t.Fatalf("GetItem(%q) error = %v", k, err)
			}
			if !ok || got != want {
				t.Errorf("GetItem(%q) = %q, %v, want %q", k, got, ok, want)
			}
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := newStore(t)
		mustSet(t, s, "k", "one")
		mustSet(t, s, "k", "two")

		got, _, _ := s.GetItem(ctx, "k")
		if got != "two" {
			t.Errorf("GetItem() = %q, want two", got)
		}
		if n := mustLen(t, s); n != 1 {
			t.Errorf("Len() = %d, want 1", n)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		s := newStore(t)
		mustSet(t, s, "a", "1")
		mustSet(t, s, "b", "2")

		if err := s.RemoveItem(ctx, "a"); err != nil {
			t.Fatalf("RemoveItem() error = %v", err)
		}
		if _, ok, _ := s.GetItem(ctx, "a"); ok {
			t.Error("removed key still present")
		}
		if n := mustLen(t, s); n != 1 {
			t.Errorf("Len() = %d, want 1", n)
		}
		if err := s.RemoveItem(ctx, "never-set"); err != nil {
			t.Errorf("RemoveItem(absent) error = %v", err)
		}
	})

	t.Run("KeyEnumeration", func(t *testing.T) {
		s := newStore(t)
		want := []string{"alpha", "beta", "gamma", "delta"}
		for i, k := range want {
			mustSet(t, s, k, fmt.Sprint(i))
		}

		n := mustLen(t, s)
		if n != len(want) {
			t.Fatalf("Len() = %d, want %d", n, len(want))
		}

		var got []string
		for i := 0; i < n; i++ {
			k, ok, err := s.Key(ctx, i)
			if err != nil {
				t.Fatalf("Key(%d) error = %v", i, err)
			}
			if !ok {
				t.Fatalf("Key(%d) not found", i)
			}
			got = append(got, k)
		}
		if !sameSet(got, want) {
			t.Errorf("keys = %v, want %v", got, want)
		}

		for _, idx := range []int{-1, n, n + 10} {
			if k, ok, err := s.Key(ctx, idx); err != nil || ok {
				t.Errorf("Key(%d) = %q, %v, %v, want out of range", idx, k, ok, err)
			}
		}
	})

	t.Run("Range", func(t *testing.T) {
		s := newStore(t)
		r, ok := s.(entry.Ranger)
		if !ok {
			t.Skip("store does not implement entry.Ranger")
		}

		want := map[string]string{"a": "1", "b": "22", "c": "333"}
		for k, v := range want {
			mustSet(t, s, k, v)
		}

		got := make(map[string]string)
		if err := r.Range(ctx, func(k, v string) bool {
			got[k] = v
			return true
		}); err != nil {
			t.Fatalf("Range() error = %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("Range() visited %d entries, want %d", len(got), len(want))
		}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("Range()[%q] = %q, want %q", k, got[k], v)
			}
		}

		calls := 0
		if err := r.Range(ctx, func(string, string) bool {
			calls++
			return false
		}); err != nil {
			t.Fatalf("Range() error = %v", err)
		}
		if calls != 1 {
			t.Errorf("Range() kept going after false: %d calls", calls)
		}
	})
}

func mustSet(t *testing.T, s entry.Store, key, value string) {
	t.Helper()
	if err := s.SetItem(context.Background(), key, value); err != nil {
		t.Fatalf("SetItem(%q) error = %v", key, err)
	}
}

func mustLen(t *testing.T, s entry.Store) int {
	t.Helper()
	n, err := s.Len(context.Background())
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	return n
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a = append([]string(nil), a...)
	b = append([]string(nil), b...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
