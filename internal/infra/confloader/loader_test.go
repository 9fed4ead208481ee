package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Entry struct {
		Scope         string `koanf:"scope"`
		EncryptionKey string `koanf:"encryption_key"`
		Expire        bool   `koanf:"expire"`
	} `koanf:"entry"`
	Storage struct {
		Engine     string `koanf:"engine"`
		QuotaBytes int64  `koanf:"quota_bytes"`
		Redis      struct {
			Addr string `koanf:"addr"`
		} `koanf:"redis"`
	} `koanf:"storage"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.FilePath() != "/path/to/config.yaml" {
		t.Errorf("FilePath() = %q, want %q", l.FilePath(), "/path/to/config.yaml")
	}
	if l.fileOptional {
		t.Error("WithConfigFile() should make the file required")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
entry:
  scope: session
  expire: true
storage:
  engine: sqlite
  quota_bytes: 4096
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := l.GetString("entry.scope"); got != "session" {
		t.Errorf("entry.scope = %q, want %q", got, "session")
	}
	if !l.GetBool("entry.expire") {
		t.Error("entry.expire should be true")
	}
	if got := l.GetInt("storage.quota_bytes"); got != 4096 {
		t.Errorf("storage.quota_bytes = %d, want 4096", got)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadFile_Malformed(t *testing.T) {
	path := writeConfig(t, "entry: [unterminated\n")

	l := NewLoader()
	if err := l.LoadFile(path); err == nil {
		t.Error("LoadFile() should fail on malformed YAML")
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	tests := []struct {
		env   string
		value string
		key   string
	}{
		{"WEBSTASH_STORAGE__ENGINE", "leveldb", "storage.engine"},
		{"WEBSTASH_ENTRY__ENCRYPTION_KEY", "hunter2", "entry.encryption_key"},
		{"WEBSTASH_STORAGE__REDIS__ADDR", "10.0.0.1:6379", "storage.redis.addr"},
		{"WEBSTASH_OUTPUT", "json", "output"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			l := NewLoader()
			if err := l.LoadEnv(); err != nil {
				t.Fatalf("LoadEnv() error = %v", err)
			}
			if got := l.GetString(tt.key); got != tt.value {
				t.Errorf("%s = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER__PORT", "9090")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if port := l.GetString("server.port"); port != "9090" {
		t.Errorf("server.port = %q, want %q", port, "9090")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	data := map[string]any{
		"storage.redis.addr": "localhost:6380",
		"debug":              true,
	}

	if err := l.LoadMap(data); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if addr := l.GetString("storage.redis.addr"); addr != "localhost:6380" {
		t.Errorf("storage.redis.addr = %q, want %q", addr, "localhost:6380")
	}
	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
entry:
  scope: session
storage:
  engine: sqlite
  redis:
    addr: "from-file:6379"
`)

	t.Setenv("WEBSTASH_STORAGE__ENGINE", "leveldb")
	t.Setenv("WEBSTASH_STORAGE__REDIS__ADDR", "from-env:6379")

	l := NewLoader(
		WithConfigFile(path),
		WithOverrides(map[string]any{"storage.engine": "memory"}),
	)

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Entry.Scope != "session" {
		t.Errorf("Scope = %q, want %q (file value kept)", cfg.Entry.Scope, "session")
	}
	if cfg.Storage.Redis.Addr != "from-env:6379" {
		t.Errorf("Redis.Addr = %q, want %q (env should override file)", cfg.Storage.Redis.Addr, "from-env:6379")
	}
	if cfg.Storage.Engine != "memory" {
		t.Errorf("Engine = %q, want %q (overrides should win)", cfg.Storage.Engine, "memory")
	}
}

func TestLoader_Load_KeepsDefaults(t *testing.T) {
	path := writeConfig(t, "entry:\n  expire: true\n")

	var cfg testConfig
	cfg.Entry.Scope = "persistent"
	cfg.Storage.Engine = "badger"

	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Entry.Scope != "persistent" || cfg.Storage.Engine != "badger" {
		t.Errorf("defaults overwritten: scope=%q engine=%q", cfg.Entry.Scope, cfg.Storage.Engine)
	}
	if !cfg.Entry.Expire {
		t.Error("Expire should be true from file")
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(missing)).Load(&cfg); err == nil {
		t.Error("Load() should fail when a required file is missing")
	}

	l := NewLoader(WithOptionalConfigFile(missing))
	if err := l.Load(&cfg); err != nil {
		t.Errorf("Load() with optional missing file error = %v", err)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_Load_OptionalFileMalformed(t *testing.T) {
	path := writeConfig(t, "storage: [broken\n")

	var cfg testConfig
	if err := NewLoader(WithOptionalConfigFile(path)).Load(&cfg); err == nil {
		t.Error("Load() should report a malformed optional file")
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()

	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_Keys(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{
		"entry.scope":    "session",
		"storage.engine": "memory",
	}); err != nil {
		t.Fatal(err)
	}

	keys := l.Keys()
	if len(keys) != 2 {
		t.Errorf("Keys() = %v, want 2 keys", keys)
	}
}

func TestLoader_GetInt(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"storage.quota_bytes": 8080}); err != nil {
		t.Fatal(err)
	}

	if got := l.GetInt("storage.quota_bytes"); got != 8080 {
		t.Errorf("GetInt(storage.quota_bytes) = %d, want %d", got, 8080)
	}
}

func TestMapProvider_ReadBytes(t *testing.T) {
	if _, err := mapProvider(nil).ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v, want %v", err, ErrReadBytesNotSupported)
	}
}
