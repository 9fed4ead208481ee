package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
)

func newJSONLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", buf.String(), err)
	}
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"json", Config{Level: "debug", Format: "json"}, false},
		{"console alias", Config{Level: "info", Format: "console"}, false},
		{"empty", Config{}, false},
		{"bad format", Config{Format: "xml"}, true},
		{"bad level", Config{Level: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newJSONLogger(t, "debug")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("test message", "component", "test-value")

			entry := decodeLine(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["msg"] != "test message" {
				t.Errorf("msg = %v", entry["msg"])
			}
			if entry["component"] != "test-value" {
				t.Errorf("component = %v", entry["component"])
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newJSONLogger(t, "warn")

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %s", buf.String())
	}

	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn not logged: %s", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newJSONLogger(t, "error")
	defer SetLevel("warn")

	l.Warn("before")
	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Fatalf("GetLevel() = %s, want debug", GetLevel())
	}
	l.Debug("after")

	if strings.Contains(buf.String(), "before") || !strings.Contains(buf.String(), "after") {
		t.Fatalf("output = %s", buf.String())
	}

	SetLevel("nonsense")
	if GetLevel() != "debug" {
		t.Errorf("unknown level changed the level to %s", GetLevel())
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.With("scope", "session").Info("hello")
	if entry := decodeLine(t, buf); entry["scope"] != "session" {
		t.Errorf("scope = %v", entry["scope"])
	}
}

func TestLogger_Slog(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.Slog().Info("from slog", "password", "hunter2")
	entry := decodeLine(t, buf)
	if entry["password"] != redactedValue {
		t.Errorf("password = %v, want redacted", entry["password"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("ParseLevel(trace) should fail")
	}
}

func TestContext_RequestID(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	id := NewRequestID()
	if _, err := ulid.ParseStrict(id); err != nil {
		t.Fatalf("NewRequestID() = %q, not a ULID: %v", id, err)
	}

	ctx := WithLogger(context.Background(), l)
	ctx = WithRequestID(ctx, id)
	if RequestIDFromContext(ctx) != id {
		t.Fatalf("RequestIDFromContext() = %q", RequestIDFromContext(ctx))
	}

	L(ctx).Warn("tagged")
	if entry := decodeLine(t, buf); entry["request_id"] != id {
		t.Errorf("request_id = %v, want %s", entry["request_id"], id)
	}
}

func TestContext_Defaults(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Default() {
		t.Error("FromContext(empty) should return the default logger")
	}
	if RequestIDFromContext(ctx) != "" {
		t.Error("RequestIDFromContext(empty) should be empty")
	}
	if NewRequestID() == NewRequestID() {
		t.Error("NewRequestID() repeated")
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	l, buf := newJSONLogger(t, "warn")
	SetDefault(l)

	Warn("via package")
	slog.Warn("via slog")

	out := buf.String()
	if !strings.Contains(out, "via package") || !strings.Contains(out, "via slog") {
		t.Fatalf("output = %s", out)
	}
}
