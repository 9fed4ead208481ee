package benchmark

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/webstash-go/internal/storage"
	"github.com/yndnr/webstash-go/pkg/crypto/adaptive"
	"github.com/yndnr/webstash-go/pkg/entry"
)

// EntryCounts are the store sizes for the capacity scan benchmarks.
var EntryCounts = []int{100, 1000, 5000}

// benchKDF keeps key derivation out of the measurements.
var benchKDF = adaptive.KDFParams{Time: 1, MemoryKiB: 8 * 1024, Threads: 1}

// newKey returns a unique, time-sortable key.
func newKey() string {
	return "k-" + strings.ToLower(ulid.Make().String())
}

// newValue returns a JSON-friendly record of roughly size bytes.
func newValue(size int) map[string]any {
	return map[string]any{
		"theme":   "dark",
		"lang":    "en",
		"payload": strings.Repeat("x", size),
		"count":   42,
	}
}

// openStore opens engine in a temporary directory.
func openStore(b *testing.B, engine string) storage.Store {
	b.Helper()

	cfg := storage.KVConfig{Engine: engine, Namespace: storage.DefaultNamespace}
	dir := b.TempDir()
	switch engine {
	case storage.EngineBadger:
		cfg = storage.DefaultKVConfig(dir)
		cfg.Badger.SyncWrites = false
	case storage.EngineSQLite:
		cfg.Path = filepath.Join(dir, "webstash.db")
	case storage.EngineLevelDB:
		cfg.Path = dir
	case storage.EngineRedis:
		mr := miniredis.NewMiniRedis()
		if err := mr.Start(); err != nil {
			b.Fatalf("start miniredis: %v", err)
		}
		b.Cleanup(mr.Close)
		cfg.Redis.Addr = mr.Addr()
	}

	st, err := storage.Open(context.Background(), cfg, nil)
	if err != nil {
		b.Fatalf("open %s: %v", engine, err)
	}
	b.Cleanup(func() { _ = st.Close() })
	return st
}

// newManager binds a persistent-scope manager to st.
func newManager(b *testing.B, cfg entry.Config, st entry.Store) *entry.Manager {
	b.Helper()

	cfg.Scope = entry.ScopePersistent
	if cfg.CapacityBytes == 0 {
		cfg.CapacityBytes = 1 << 40
	}
	m, err := entry.New(cfg, entry.Host{Persistent: st})
	if err != nil {
		b.Fatalf("entry.New: %v", err)
	}
	return m
}

// prefill stores count records and returns their keys.
func prefill(ctx context.Context, m *entry.Manager, count, size int) []string {
	keys := make([]string, count)
	value := newValue(size)
	for i := range keys {
		keys[i] = fmt.Sprintf("prefill-%06d", i)
		m.Set(ctx, keys[i], value, 0)
	}
	return keys
}
