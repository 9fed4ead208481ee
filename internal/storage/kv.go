package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/webstash-go/internal/infra/tlsroots"
	"github.com/yndnr/webstash-go/internal/storage/leveldb"
	"github.com/yndnr/webstash-go/internal/storage/memory"
	redisstore "github.com/yndnr/webstash-go/internal/storage/redis"
	"github.com/yndnr/webstash-go/internal/storage/sqlite"
	"github.com/yndnr/webstash-go/pkg/entry"
)

// Engine names accepted by Open.
const (
	EngineMemory  = "memory"
	EngineBadger  = "badger"
	EngineSQLite  = "sqlite"
	EngineLevelDB = "leveldb"
	EngineRedis   = "redis"
)

// DefaultNamespace separates webstash data from other users of a shared
// backend.
const DefaultNamespace = "default"

// Store is a host store that owns resources.
type Store interface {
	entry.Store
	io.Closer
}

// KVConfig configures the persistent host store.
type KVConfig struct {
	// Engine specifies the engine type ("memory", "badger", "sqlite",
	// "leveldb", "redis").
	// Default: "badger"
	Engine string `koanf:"engine" yaml:"engine" json:"engine"`

	// Path is the data directory (badger, leveldb) or database file (sqlite).
	Path string `koanf:"path" yaml:"path" json:"path"`

	// Namespace scopes keys inside shared backends (badger, leveldb, redis).
	// Default: "default"
	Namespace string `koanf:"namespace" yaml:"namespace" json:"namespace"`

	// QuotaBytes is a hard limit for the memory engine. 0 disables it.
	QuotaBytes int64 `koanf:"quota_bytes" yaml:"quota_bytes" json:"quota_bytes"`

	// Badger-specific configuration
	Badger BadgerConfig `koanf:"badger" yaml:"badger" json:"badger"`

	// Redis-specific configuration
	Redis RedisConfig `koanf:"redis" yaml:"redis" json:"redis"`
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs.
	// Default: 10m
	GCInterval string `koanf:"gc_interval" yaml:"gc_interval" json:"gc_interval"`

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64 `koanf:"gc_threshold" yaml:"gc_threshold" json:"gc_threshold"`

	// CacheSize is the block cache size in bytes.
	// Default: 16MB
	CacheSize int64 `koanf:"cache_size" yaml:"cache_size" json:"cache_size"`

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 64MB
	ValueLogFileSize int64 `koanf:"value_log_file_size" yaml:"value_log_file_size" json:"value_log_file_size"`

	// SyncWrites enables sync writes (fsync after each write).
	// Default: true
	SyncWrites bool `koanf:"sync_writes" yaml:"sync_writes" json:"sync_writes"`
}

// RedisConfig configures the redis engine.
type RedisConfig struct {
	Addr     string `koanf:"addr" yaml:"addr" json:"addr"`
	Password string `koanf:"password" yaml:"password" json:"password"`
	DB       int    `koanf:"db" yaml:"db" json:"db"`

	TLS tlsroots.Config `koanf:"tls" yaml:"tls" json:"tls"`
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(path string) KVConfig {
	return KVConfig{
		Engine:    EngineBadger,
		Path:      path,
		Namespace: DefaultNamespace,
		Badger:    DefaultBadgerConfig(),
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        16 << 20, // 16MB
		ValueLogFileSize: 64 << 20, // 64MB
		SyncWrites:       true,
	}
}

// Engines lists the engine names Open accepts.
func Engines() []string {
	return []string{EngineMemory, EngineBadger, EngineSQLite, EngineLevelDB, EngineRedis}
}

// Open creates the host store selected by cfg.Engine.
func Open(ctx context.Context, cfg KVConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	engine := strings.ToLower(strings.TrimSpace(cfg.Engine))
	if engine == "" {
		engine = EngineBadger
	}

	switch engine {
	case EngineMemory:
		var opts []memory.Option
		if cfg.QuotaBytes > 0 {
			opts = append(opts, memory.WithQuota(cfg.QuotaBytes))
		}
		return memory.New(opts...), nil

	case EngineBadger:
		return NewBadgerStore(cfg, logger)

	case EngineSQLite:
		return sqlite.Open(ctx, cfg.Path)

	case EngineLevelDB:
		return leveldb.Open(cfg.Path, cfg.Namespace)

	case EngineRedis:
		return openRedis(ctx, cfg, logger)

	default:
		return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
}

func openRedis(ctx context.Context, cfg KVConfig, logger *slog.Logger) (Store, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	storeOpts := []redisstore.Option{redisstore.WithOwnedClient()}

	if cfg.Redis.TLS.Enabled {
		tlsCfg, keyPair, err := tlsroots.ClientConfig(cfg.Redis.TLS, logger)
		if err != nil {
			return nil, fmt.Errorf("redis: tls: %w", err)
		}
		opts.TLSConfig = tlsCfg
		if keyPair != nil {
			storeOpts = append(storeOpts, redisstore.WithCloser(keyPair))
		}
	}

	st := redisstore.New(redis.NewClient(opts), cfg.Namespace, storeOpts...)
	if err := st.Ping(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Redis.Addr, err)
	}
	return st, nil
}
