// Package logger provides structured logging for webstash.
//
// It wraps log/slog:
//
//   - logger.go: handler construction, dynamic level, default logger
//   - context.go: per-invocation request ids (ULID) carried in a context
//   - redact.go: masking of secrets and encrypted payloads
//
// The Logger interface satisfies entry.Logger, so the same logger is
// injected into the entry Manager and used by the CLI.
package logger
