package config

import (
	"github.com/yndnr/webstash-go/internal/storage"
	"github.com/yndnr/webstash-go/internal/telemetry/logger"
	"github.com/yndnr/webstash-go/pkg/codec"
	"github.com/yndnr/webstash-go/pkg/crypto/adaptive"
	"github.com/yndnr/webstash-go/pkg/entry"
)

// Config is the configuration of the webstash CLI.
type Config struct {
	// DataDir holds the files of the file-backed engines when
	// storage.path is not set.
	DataDir string `koanf:"data_dir" yaml:"data_dir" json:"data_dir"`

	Entry   EntrySection     `koanf:"entry" yaml:"entry" json:"entry"`
	Storage storage.KVConfig `koanf:"storage" yaml:"storage" json:"storage"`

	// Output is the result format: table, json or yaml.
	Output string `koanf:"output" yaml:"output" json:"output"`

	Log     logger.Config  `koanf:"log" yaml:"log" json:"log"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics" json:"metrics"`
}

// EntrySection configures the entry manager.
type EntrySection struct {
	// Scope is "session" (in-process) or "persistent" (storage engine).
	Scope string `koanf:"scope" yaml:"scope" json:"scope"`

	Encrypt       bool   `koanf:"encrypt" yaml:"encrypt" json:"encrypt"`
	EncryptionKey string `koanf:"encryption_key" yaml:"encryption_key" json:"encryption_key"`
	// Cipher is aes-gcm, chacha20-poly1305 or cryptojs. Empty picks the
	// fastest AEAD for this machine.
	Cipher string             `koanf:"cipher" yaml:"cipher" json:"cipher"`
	KDF    adaptive.KDFParams `koanf:"kdf" yaml:"kdf" json:"kdf"`

	Expire bool `koanf:"expire" yaml:"expire" json:"expire"`

	Compress    bool   `koanf:"compress" yaml:"compress" json:"compress"`
	Compression string `koanf:"compression" yaml:"compression" json:"compression"`

	CapacityBytes int64 `koanf:"capacity_bytes" yaml:"capacity_bytes" json:"capacity_bytes"`
}

// MetricsSection configures the Prometheus textfile output.
type MetricsSection struct {
	// File receives the metrics after each command. Empty disables it.
	File string `koanf:"file" yaml:"file" json:"file"`
}

// EntryConfig converts the entry section into a manager configuration.
func (c *Config) EntryConfig() (entry.Config, error) {
	scope, err := entry.ParseScope(c.Entry.Scope)
	if err != nil {
		return entry.Config{}, err
	}
	return entry.Config{
		Scope:              scope,
		EncryptionKey:      c.Entry.EncryptionKey,
		EncryptionEnabled:  c.Entry.Encrypt,
		ExpirationEnabled:  c.Entry.Expire,
		CompressionEnabled: c.Entry.Compress,
		Compression:        codec.Algorithm(c.Entry.Compression),
		Cipher:             adaptive.CipherType(c.Entry.Cipher),
		KDF:                c.Entry.KDF,
		CapacityBytes:      c.Entry.CapacityBytes,
	}, nil
}

// StorageConfig returns the storage configuration with the engine path
// resolved against DataDir.
func (c *Config) StorageConfig() storage.KVConfig {
	kv := c.Storage
	if kv.Path != "" {
		return kv
	}
	switch kv.Engine {
	case storage.EngineSQLite:
		kv.Path = joinDataDir(c.DataDir, "webstash.db")
	case storage.EngineLevelDB:
		kv.Path = joinDataDir(c.DataDir, "leveldb")
	case storage.EngineBadger, "":
		kv.Path = joinDataDir(c.DataDir, "badger")
	}
	return kv
}

// fileBacked reports whether the engine keeps its data under DataDir.
func fileBacked(engine string) bool {
	switch engine {
	case storage.EngineBadger, storage.EngineSQLite, storage.EngineLevelDB, "":
		return true
	default:
		return false
	}
}
