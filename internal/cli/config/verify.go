package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/yndnr/webstash-go/internal/storage"
	"github.com/yndnr/webstash-go/internal/telemetry/logger"
	"github.com/yndnr/webstash-go/pkg/codec"
	"github.com/yndnr/webstash-go/pkg/crypto/adaptive"
	"github.com/yndnr/webstash-go/pkg/entry"
)

// Outputs lists the accepted output formats.
var Outputs = []string{"table", "json", "yaml"}

// Ciphers lists the accepted entry.cipher values.
var Ciphers = []string{string(adaptive.CipherAESGCM), string(adaptive.CipherChaCha20), string(adaptive.CipherCryptoJS)}

// Verify validates the configuration. For file-backed engines it also
// creates the data directory.
func Verify(cfg *Config) error {
	if err := verifyEntry(&cfg.Entry); err != nil {
		return err
	}
	if err := verifyStorage(cfg); err != nil {
		return err
	}
	if !slices.Contains(Outputs, strings.ToLower(cfg.Output)) {
		return fmt.Errorf("output must be one of %s, got %q", strings.Join(Outputs, ", "), cfg.Output)
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "console", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	return nil
}

func verifyEntry(cfg *EntrySection) error {
	if _, err := entry.ParseScope(cfg.Scope); err != nil {
		return fmt.Errorf("entry.scope: %w", err)
	}
	if cfg.Compression != "" {
		if _, err := codec.New(codec.Algorithm(cfg.Compression)); err != nil {
			return fmt.Errorf("entry.compression: %w", err)
		}
	}
	if cfg.Cipher != "" && !slices.Contains(Ciphers, cfg.Cipher) {
		return fmt.Errorf("entry.cipher must be one of %s, got %q", strings.Join(Ciphers, ", "), cfg.Cipher)
	}
	if cfg.CapacityBytes < 0 {
		return errors.New("entry.capacity_bytes must not be negative")
	}
	return nil
}

func verifyStorage(cfg *Config) error {
	s := &cfg.Storage
	if s.Engine != "" && !slices.Contains(storage.Engines(), strings.ToLower(s.Engine)) {
		return fmt.Errorf("storage.engine must be one of %s, got %q", strings.Join(storage.Engines(), ", "), s.Engine)
	}
	if s.QuotaBytes < 0 {
		return errors.New("storage.quota_bytes must not be negative")
	}
	if s.Badger.GCInterval != "" {
		if _, err := time.ParseDuration(s.Badger.GCInterval); err != nil {
			return fmt.Errorf("storage.badger.gc_interval: %w", err)
		}
	}
	if s.Badger.GCThreshold < 0 || s.Badger.GCThreshold >= 1 {
		return errors.New("storage.badger.gc_threshold must be in [0, 1)")
	}
	if s.Redis.TLS.Enabled {
		if err := s.Redis.TLS.Validate(); err != nil {
			return fmt.Errorf("storage.redis.tls: %w", err)
		}
	}

	if !fileBacked(strings.ToLower(s.Engine)) || s.Path != "" {
		return nil
	}
	if cfg.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return errors.New("cannot create data directory: " + err.Error())
	}
	return nil
}
