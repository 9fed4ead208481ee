package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for config show and logging without exposing secrets.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg

	if sanitized.Entry.EncryptionKey != "" {
		sanitized.Entry.EncryptionKey = maskSecret(sanitized.Entry.EncryptionKey)
	}
	if sanitized.Storage.Redis.Password != "" {
		sanitized.Storage.Redis.Password = maskSecret(sanitized.Storage.Redis.Password)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe display.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
