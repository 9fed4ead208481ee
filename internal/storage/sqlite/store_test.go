package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/webstash-go/internal/storage/storagetest"
	"github.com/yndnr/webstash-go/pkg/entry"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Conformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) entry.Store {
		return openTestStore(t, filepath.Join(t.TempDir(), "webstash.db"))
	})
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("Open(blank) should fail")
	}
}

func TestStore_InsertionOrderSurvivesOverwrite(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "order.db"))

	for _, k := range []string{"z", "a", "m"} {
		if err := s.SetItem(ctx, k, "v"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SetItem(ctx, "z", "again"); err != nil {
		t.Fatal(err)
	}

	var got []string
	for i := 0; i < 3; i++ {
		k, ok, err := s.Key(ctx, i)
		if err != nil || !ok {
			t.Fatalf("Key(%d) = %q, %v, %v", i, k, ok, err)
		}
		got = append(got, k)
	}
	if strings.Join(got, ",") != "z,a,m" {
		t.Fatalf("keys = %v, want [z a m]", got)
	}
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetItem(ctx, "k", "survives"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s = openTestStore(t, path)
	got, ok, err := s.GetItem(ctx, "k")
	if err != nil || !ok || got != "survives" {
		t.Fatalf("GetItem after reopen = %q, %v, %v", got, ok, err)
	}
}

func TestStore_FullDatabaseIsQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "full.db"))

	// Pin the pool to one connection so the pragma applies to every write.
	s.sqlDB.SetMaxOpenConns(1)
	if _, err := s.sqlDB.ExecContext(ctx, `PRAGMA max_page_count = 4`); err != nil {
		t.Fatalf("set max_page_count: %v", err)
	}

	err := s.SetItem(ctx, "big", strings.Repeat("x", 256<<10))
	if !errors.Is(err, entry.ErrQuotaExceeded) {
		t.Fatalf("SetItem on full db = %v, want ErrQuotaExceeded", err)
	}
}
