package entry

import (
	"log/slog"
	"time"
)

// Logger is the diagnostic channel a Manager reports failures on.
// *slog.Logger and the webstash telemetry logger both satisfy it.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Cipher seals and opens the stored text.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostic logger. Default: slog.Default().
func WithLogger(l Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source used for expiration.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRecorder sets the outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithCipher replaces the cipher built from Config. It only takes effect
// when encryption is enabled and a key is configured.
func WithCipher(c Cipher) Option {
	return func(m *Manager) {
		m.cipher = c
	}
}

func defaultLogger() Logger {
	return slog.Default()
}
