package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/webstash-go/internal/infra/confloader"
)

// Load builds the configuration from defaults, the YAML file at path,
// WEBSTASH_* environment variables and overrides, in increasing priority.
// An empty path selects DefaultConfigPath. Only an explicitly named file
// must exist.
func Load(path string, overrides map[string]any) (*Config, error) {
	fileOpt := confloader.WithConfigFile(path)
	if path == "" {
		fileOpt = confloader.WithOptionalConfigFile(DefaultConfigPath())
	}

	cfg := Default()
	loader := confloader.NewLoader(fileOpt, confloader.WithOverrides(overrides))
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if cfg.DataDir != "" {
		cfg.DataDir = expandHome(cfg.DataDir)
	}
	if cfg.Storage.Path != "" {
		cfg.Storage.Path = expandHome(cfg.Storage.Path)
	}
	return cfg, nil
}

// LoadVerified loads and verifies the configuration.
func LoadVerified(path string, overrides map[string]any) (*Config, error) {
	cfg, err := Load(path, overrides)
	if err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func joinDataDir(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
