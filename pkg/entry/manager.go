package entry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/yndnr/webstash-go/pkg/codec"
	"github.com/yndnr/webstash-go/pkg/crypto/adaptive"
)

// Probe entry written and removed by IsSupported.
const (
	probeKey   = "__test__"
	probeValue = "test"
)

// Diagnostic messages.
const (
	msgUnsupported      = "storage is not supported"
	msgSerializeFailed  = "failed to serialize data"
	msgEncodeFailed     = "failed to compress data"
	msgEncryptFailed    = "failed to encrypt data"
	msgCapacityExceeded = "insufficient storage capacity"
	msgQuotaExceeded    = "Storage limit exceeded."
	msgStoreError       = "unexpected storage error"
	msgDecryptFailed    = "failed to decrypt data"
	msgDecodeFailed     = "failed to decompress data"
	msgParseFailed      = "failed to parse data"
)

// Manager stores one record per key in a single host store.
//
// A Manager holds no locks. Concurrent Sets of the same key are
// last-write-wins.
type Manager struct {
	cfg      Config
	store    Store
	codec    codec.Codec
	cipher   Cipher
	logger   Logger
	recorder Recorder
	now      func() time.Time
}

// New creates a Manager bound to the store selected by cfg.Scope.
func New(cfg Config, host Host, opts ...Option) (*Manager, error) {
	cfg = cfg.withDefaults()

	if cfg.Scope != ScopeSession && cfg.Scope != ScopePersistent {
		return nil, fmt.Errorf("entry: unknown scope %q", cfg.Scope)
	}
	store := host.store(cfg.Scope)
	if store == nil {
		return nil, fmt.Errorf("entry: no %s store provided", cfg.Scope)
	}

	m := &Manager{
		cfg:      cfg,
		store:    store,
		logger:   defaultLogger(),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if cfg.CompressionEnabled {
		c, err := codec.New(cfg.Compression)
		if err != nil {
			return nil, fmt.Errorf("entry: %w", err)
		}
		m.codec = c
	}

	switch {
	case !cfg.encrypting():
		m.cipher = nil
	case m.cipher == nil:
		c, err := adaptive.NewTextCipher(cfg.Cipher, cfg.EncryptionKey, cfg.KDF)
		if err != nil {
			return nil, fmt.Errorf("entry: %w", err)
		}
		m.cipher = c
	}

	return m, nil
}

// Scope returns the scope the Manager is bound to.
func (m *Manager) Scope() Scope {
	return m.cfg.Scope
}

// IsSupported writes and removes a probe entry and reports whether the
// store accepted both.
func (m *Manager) IsSupported(ctx context.Context) bool {
	if err := m.probe(ctx); err != nil {
		m.logger.Warn(msgUnsupported, "scope", string(m.cfg.Scope), "error", err)
		return false
	}
	return true
}

func (m *Manager) probe(ctx context.Context) error {
	if err := m.store.SetItem(ctx, probeKey, probeValue); err != nil {
		return err
	}
	return m.store.RemoveItem(ctx, probeKey)
}

// Set stores value under key. With expiration enabled, a non-zero ttl
// makes the record expire ttl from now. Set never fails loudly: every
// error is logged and the write is skipped.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	m.recorder.RecordSet(m.set(ctx, key, value, ttl))
}

func (m *Manager) set(ctx context.Context, key string, value any, ttl time.Duration) Outcome {
	if !m.IsSupported(ctx) {
		return SetUnsupported
	}

	var expiresAt int64
	if m.cfg.ExpirationEnabled && ttl != 0 {
		expiresAt = m.now().Add(ttl).UnixMilli()
	}

	text, err := marshalRecord(value, expiresAt)
	if err != nil {
		m.logger.Warn(msgSerializeFailed, "entry", key, "error", err)
		return SetSerializeFailed
	}

	if m.codec != nil {
		if text, err = m.codec.Encode(text); err != nil {
			m.logger.Warn(msgEncodeFailed, "entry", key, "codec", m.codec.Name(), "error", err)
			return SetEncodeFailed
		}
	}

	if m.cipher != nil {
		if text, err = m.cipher.Encrypt(text); err != nil {
			m.logger.Warn(msgEncryptFailed, "entry", key, "error", err)
			return SetEncryptFailed
		}
	}

	used, err := m.usedBytes(ctx)
	if err != nil {
		m.logger.Error(msgStoreError, "entry", key, "op", "estimate", "error", err)
		return SetStoreError
	}
	m.recorder.RecordUsage(m.cfg.Scope, used)

	remaining := m.cfg.CapacityBytes - used
	size := int64(len(text))
	if remaining < size {
		m.logger.Warn(msgCapacityExceeded,
			"entry", key,
			"required_bytes", size,
			"available_bytes", remaining)
		return SetCapacityExceeded
	}

	if err := m.store.SetItem(ctx, key, text); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			m.logger.Warn(msgQuotaExceeded, "entry", key)
			return SetQuotaExceeded
		}
		m.logger.Error(msgStoreError, "entry", key, "op", "set", "error", err)
		return SetStoreError
	}

	return SetStored
}

// Get loads the record for key and decodes its value into dst, which must
// be a pointer (or nil to only test presence). It returns false when the
// record is absent, expired or unreadable.
func (m *Manager) Get(ctx context.Context, key string, dst any) bool {
	outcome := m.get(ctx, key, dst)
	m.recorder.RecordGet(outcome)
	return outcome == GetHit
}

func (m *Manager) get(ctx context.Context, key string, dst any) Outcome {
	text, ok, err := m.store.GetItem(ctx, key)
	if err != nil {
		m.logger.Error(msgStoreError, "entry", key, "op", "get", "error", err)
		return GetStoreError
	}
	if !ok || text == "" {
		return GetMiss
	}

	if m.cipher != nil {
		plain, err := m.cipher.Decrypt(text)
		if err != nil {
			m.logger.Warn(msgDecryptFailed, "entry", key, "error", err)
			return GetDecryptFailed
		}
		if plain == "" || !utf8.ValidString(plain) {
			m.logger.Warn(msgDecryptFailed, "entry", key,
				"reason", "empty or malformed plaintext, possibly a wrong encryption key")
			return GetDecryptFailed
		}
		text = plain
	}

	if m.codec != nil {
		if text, err = m.codec.Decode(text); err != nil {
			m.logger.Warn(msgDecodeFailed, "entry", key, "codec", m.codec.Name(), "error", err)
			return GetDecodeFailed
		}
	}

	rec, err := unmarshalRecord(text)
	if err != nil {
		m.logger.Warn(msgParseFailed, "entry", key, "error", err)
		return GetParseFailed
	}

	if m.cfg.ExpirationEnabled && rec.expired(m.now().UnixMilli()) {
		if err := m.store.RemoveItem(ctx, key); err != nil {
			m.logger.Error(msgStoreError, "entry", key, "op", "remove", "error", err)
		}
		return GetExpired
	}

	if dst != nil {
		if err := json.Unmarshal(rec.Value, dst); err != nil {
			m.logger.Warn(msgParseFailed, "entry", key, "error", err)
			return GetParseFailed
		}
	}

	return GetHit
}

// GetAs is the typed form of Manager.Get.
func GetAs[T any](ctx context.Context, m *Manager, key string) (T, bool) {
	var v T
	if !m.Get(ctx, key, &v) {
		var zero T
		return zero, false
	}
	return v, true
}

// Remove deletes key. Removing an absent key is a no-op.
func (m *Manager) Remove(ctx context.Context, key string) {
	if err := m.store.RemoveItem(ctx, key); err != nil {
		m.logger.Error(msgStoreError, "entry", key, "op", "remove", "error", err)
	}
}

// Keys returns the key names currently stored in the bound scope, in the
// order the store enumerates them. Stores that implement Ranger are walked
// once; others are read index by index. It returns nil if the store
// cannot be enumerated.
func (m *Manager) Keys(ctx context.Context) []string {
	if r, ok := m.store.(Ranger); ok {
		keys := []string{}
		seen := make(map[string]struct{})
		err := r.Range(ctx, func(key, _ string) bool {
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				keys = append(keys, key)
			}
			return true
		})
		if err != nil {
			m.logger.Error(msgStoreError, "op", "keys", "error", err)
			return nil
		}
		return keys
	}

	n, err := m.store.Len(ctx)
	if err != nil {
		m.logger.Error(msgStoreError, "op", "keys", "error", err)
		return nil
	}

	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		key, ok, err := m.store.Key(ctx, i)
		if err != nil {
			m.logger.Error(msgStoreError, "op", "keys", "index", i, "error", err)
			return nil
		}
		if ok {
			keys = append(keys, key)
		}
	}
	return keys
}
