package command

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/webstash-go/pkg/entry"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestRuntime_LazyConfig(t *testing.T) {
	env := newTestEnv(t)
	rt := NewRuntime("", map[string]any{"data_dir": env.dataDir})
	defer rt.Close()

	if rt.LastSet() != "" || rt.LastGet() != "" {
		t.Error("outcomes should be empty before the config is loaded")
	}
	if rt.ConfigPath() != filepath.Join(env.home, ".webstash", "config.yaml") {
		t.Errorf("ConfigPath() = %q", rt.ConfigPath())
	}

	cfg, err := rt.Config()
	if err != nil {
		t.Fatal(err)
	}
	again, _ := rt.Config()
	if cfg != again {
		t.Error("Config() should load once")
	}
}

func TestRuntime_Outcomes(t *testing.T) {
	env := newTestEnv(t)
	rt := NewRuntime("", map[string]any{"entry.scope": "session", "data_dir": env.dataDir})
	defer rt.Close()

	ctx := context.Background()
	m, err := rt.Manager(ctx)
	if err != nil {
		t.Fatal(err)
	}

	m.Set(ctx, "k", "v", 0)
	if rt.LastSet() != entry.SetStored {
		t.Errorf("LastSet() = %q", rt.LastSet())
	}

	var v string
	m.Get(ctx, "nope", &v)
	if rt.LastGet() != entry.GetMiss {
		t.Errorf("LastGet() = %q", rt.LastGet())
	}
	if !m.Get(ctx, "k", &v) || rt.LastGet() != entry.GetHit {
		t.Errorf("LastGet() = %q", rt.LastGet())
	}

	same, _ := rt.Manager(ctx)
	if same != m {
		t.Error("Manager() should be built once")
	}
}

func TestRuntime_Reload(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "entry:\n  scope: session\n")

	rt := NewRuntime(path, map[string]any{"data_dir": env.dataDir})
	defer rt.Close()

	ctx := context.Background()
	m, err := rt.Manager(ctx)
	if err != nil {
		t.Fatal(err)
	}
	m.Set(ctx, "k", "v", 0)

	writeConfig(t, path, "output: json\nentry:\n  scope: session\n  expire: true\n")
	if err := rt.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	cfg, _ := rt.Config()
	if cfg.Output != "json" || !cfg.Entry.Expire {
		t.Errorf("config not reloaded: %+v", cfg.Entry)
	}

	reloaded, _ := rt.Manager(ctx)
	if reloaded == m {
		t.Error("Reload() should rebuild the manager")
	}
	var v string
	if !reloaded.Get(ctx, "k", &v) || v != "v" {
		t.Error("session entries should survive a reload")
	}
}

func TestRuntime_ReloadInvalidKeepsConfig(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "output: yaml\n")

	rt := NewRuntime(path, map[string]any{"data_dir": env.dataDir})
	defer rt.Close()
	if _, err := rt.Config(); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, path, "output: xml\n")
	if err := rt.Reload(context.Background()); err == nil {
		t.Fatal("Reload() should reject an invalid file")
	}
	cfg, _ := rt.Config()
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, want previous value", cfg.Output)
	}
}

func TestRuntime_ReloadKeepsStorage(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "storage:\n  engine: sqlite\n")

	rt := NewRuntime(path, map[string]any{"data_dir": env.dataDir})
	defer rt.Close()

	ctx := context.Background()
	if _, err := rt.Manager(ctx); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, path, "storage:\n  engine: leveldb\n")
	if err := rt.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	cfg, _ := rt.Config()
	if cfg.Storage.Engine != "sqlite" {
		t.Errorf("Engine = %q, want the open engine kept", cfg.Storage.Engine)
	}
}

func TestRuntime_MetricsFile(t *testing.T) {
	env := newTestEnv(t)
	metrics := filepath.Join(t.TempDir(), "webstash.prom")

	if _, err := env.run(t, "--metrics-file", metrics, "set", "k", "v"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), `webstash_entry_set_total{`) {
		t.Errorf("metrics file =\n%s", data)
	}
}

func TestEngineName(t *testing.T) {
	if engineName("") != "badger" || engineName("redis") != "redis" {
		t.Error("engineName() mismatch")
	}
}
