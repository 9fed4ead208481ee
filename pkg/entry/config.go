package entry

import (
	"fmt"
	"strings"

	"github.com/yndnr/webstash-go/pkg/codec"
	"github.com/yndnr/webstash-go/pkg/crypto/adaptive"
)

// DefaultCapacityBytes is the scope budget used by the capacity guard:
// 5 MiB, counted as 2 bytes per stored UTF-16 code unit.
const DefaultCapacityBytes int64 = 5 * 1024 * 1024

// Scope selects which host store a Manager is bound to.
type Scope string

const (
	// ScopeSession records are dropped when the host session ends.
	ScopeSession Scope = "session"
	// ScopePersistent records outlive the session.
	ScopePersistent Scope = "persistent"
)

// ParseScope converts a configuration string to a Scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "persistent", "local":
		return ScopePersistent, nil
	case "session":
		return ScopeSession, nil
	default:
		return "", fmt.Errorf("entry: unknown scope %q", s)
	}
}

// Config configures a Manager. It is read once by New.
type Config struct {
	// Scope selects the backing store. Default: persistent.
	Scope Scope

	// EncryptionKey is the passphrase used when EncryptionEnabled is set.
	// An empty key with encryption enabled stores plain text.
	EncryptionKey string

	EncryptionEnabled  bool
	ExpirationEnabled  bool
	CompressionEnabled bool

	// Compression selects the codec. Default: base64.
	Compression codec.Algorithm

	// Cipher selects the text cipher. Default: the preferred AEAD for the
	// running hardware.
	Cipher adaptive.CipherType

	// KDF tunes passphrase key derivation for the AEAD ciphers.
	KDF adaptive.KDFParams

	// CapacityBytes is the scope budget. Default: DefaultCapacityBytes.
	CapacityBytes int64
}

func (c Config) withDefaults() Config {
	if c.Scope == "" {
		c.Scope = ScopePersistent
	}
	if c.Compression == "" {
		c.Compression = codec.Base64
	}
	if c.CapacityBytes <= 0 {
		c.CapacityBytes = DefaultCapacityBytes
	}
	return c
}

// encrypting reports whether the encrypt/decrypt steps run.
func (c Config) encrypting() bool {
	return c.EncryptionEnabled && c.EncryptionKey != ""
}
