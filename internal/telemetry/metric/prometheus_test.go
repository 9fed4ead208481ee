package metric

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/webstash-go/internal/storage/memory"
	"github.com/yndnr/webstash-go/pkg/entry"
)

type fakeSizer struct{ lsm, vlog int64 }

func (f fakeSizer) Size() (int64, int64) { return f.lsm, f.vlog }

func readMetrics(t *testing.T, r *Registry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webstash.prom")
	if err := r.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.SetTotal == nil || r.GetTotal == nil || r.UsedBytes == nil {
		t.Fatal("entry metrics not initialized")
	}
	if r.Gatherer() == nil {
		t.Fatal("Gatherer() returned nil")
	}
}

func TestRegistry_Recorder(t *testing.T) {
	r := NewRegistry()
	r.RecordSet(entry.SetStored)
	r.RecordSet(entry.SetStored)
	r.RecordSet(entry.SetQuotaExceeded)
	r.RecordGet(entry.GetMiss)
	r.RecordUsage(entry.ScopeSession, 1234)

	out := readMetrics(t, r)
	for _, want := range []string{
		`webstash_entry_set_total{outcome="stored"} 2`,
		`webstash_entry_set_total{outcome="quota_exceeded"} 1`,
		`webstash_entry_get_total{outcome="miss"} 1`,
		`webstash_entry_used_bytes{scope="session"} 1234`,
		`go_goroutines`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistry_WithManager(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	m, err := entry.New(entry.Config{}, entry.Host{Persistent: memory.New()}, entry.WithRecorder(r))
	if err != nil {
		t.Fatal(err)
	}

	m.Set(ctx, "k", "v", 0)
	m.Get(ctx, "k", nil)
	m.Get(ctx, "absent", nil)

	out := readMetrics(t, r)
	for _, want := range []string{
		`webstash_entry_set_total{outcome="stored"} 1`,
		`webstash_entry_get_total{outcome="hit"} 1`,
		`webstash_entry_get_total{outcome="miss"} 1`,
		`webstash_entry_used_bytes{scope="persistent"} 0`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q\n%s", want, out)
		}
	}
}

func TestStoreCollector(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewStoreCollector("badger", fakeSizer{lsm: 100, vlog: 2048})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	out := readMetrics(t, r)
	for _, want := range []string{
		`webstash_store_size_bytes{component="lsm",engine="badger"} 100`,
		`webstash_store_size_bytes{component="vlog",engine="badger"} 2048`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	if err := r.Register(NewStoreCollector("badger", fakeSizer{})); err == nil {
		t.Error("registering a duplicate collector should fail")
	}
}

func TestWriteFile_BadPath(t *testing.T) {
	r := NewRegistry()
	if err := r.WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")); err == nil {
		t.Fatal("WriteFile() into a missing directory should fail")
	}
}
