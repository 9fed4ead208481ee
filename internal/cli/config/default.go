package config

import (
	"os"
	"path/filepath"

	"github.com/yndnr/webstash-go/internal/storage"
	"github.com/yndnr/webstash-go/internal/telemetry/logger"
	"github.com/yndnr/webstash-go/pkg/entry"
)

// Default configuration values.
const (
	DefaultScope  = string(entry.ScopePersistent)
	DefaultOutput = "table"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// DefaultHome returns ~/.webstash, or .webstash when the home directory
// cannot be determined.
func DefaultHome() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".webstash"
	}
	return filepath.Join(homeDir, ".webstash")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultHome(), "config.yaml")
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	return filepath.Join(DefaultHome(), "data")
}

// DefaultHistoryPath returns the default REPL history file.
func DefaultHistoryPath() string {
	return filepath.Join(DefaultHome(), "history")
}

// Default returns the default configuration.
func Default() *Config {
	log := logger.DefaultConfig()
	log.Level = DefaultLogLevel
	log.Format = DefaultLogFormat

	return &Config{
		DataDir: DefaultDataDir(),
		Entry: EntrySection{
			Scope:         DefaultScope,
			CapacityBytes: entry.DefaultCapacityBytes,
		},
		Storage: storage.DefaultKVConfig(""),
		Output:  DefaultOutput,
		Log:     log,
	}
}
