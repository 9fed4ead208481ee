package adaptive

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/argon2"
)

// ErrEmptyPassphrase is returned when a text cipher is built without a secret.
var ErrEmptyPassphrase = errors.New("adaptive: passphrase is empty")

const (
	// SaltLength is the Argon2id salt length.
	SaltLength = 16

	// derivedKeyLen selects AES-256 / ChaCha20 keys.
	derivedKeyLen = 32

	// keyCacheSize bounds the number of foreign-salt keys kept in memory.
	keyCacheSize = 64

	blobVersion = 1

	// version(1) | algorithm(1) | time(4) | memory(4) | threads(1) | salt
	headerLen = 1 + 1 + 4 + 4 + 1 + SaltLength

	// Upper bounds accepted from a stored header.
	maxKDFTime      = 16
	maxKDFMemoryKiB = 1 << 20
)

// KDFParams are the Argon2id cost parameters.
type KDFParams struct {
	// Time is the number of passes.
	Time uint32 `koanf:"time" yaml:"time" json:"time"`
	// MemoryKiB is the memory cost in KiB.
	MemoryKiB uint32 `koanf:"memory_kib" yaml:"memory_kib" json:"memory_kib"`
	// Threads is the parallelism degree.
	Threads uint8 `koanf:"threads" yaml:"threads" json:"threads"`
}

// DefaultKDFParams returns the default Argon2id parameters
// (3 passes, 64 MiB, 4 lanes).
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}
}

func (p KDFParams) withDefaults() KDFParams {
	d := DefaultKDFParams()
	if p.Time == 0 {
		p.Time = d.Time
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = d.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = d.Threads
	}
	return p
}

// within reports whether every cost in p is at most the one in limit.
func (p KDFParams) within(limit KDFParams) bool {
	return p.Time <= limit.Time && p.MemoryKiB <= limit.MemoryKiB && p.Threads <= limit.Threads
}

func (p KDFParams) validate() error {
	if p.Time == 0 || p.Time > maxKDFTime {
		return fmt.Errorf("adaptive: kdf time %d out of range", p.Time)
	}
	if p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB > maxKDFMemoryKiB {
		return fmt.Errorf("adaptive: kdf memory %d KiB out of range", p.MemoryKiB)
	}
	if p.Threads == 0 {
		return errors.New("adaptive: kdf threads must be positive")
	}
	return nil
}

var algorithmIDs = map[CipherType]byte{
	CipherAESGCM:   1,
	CipherChaCha20: 2,
}

func algorithmByID(id byte) (CipherType, bool) {
	for typ, v := range algorithmIDs {
		if v == id {
			return typ, true
		}
	}
	return "", false
}

// Passphrase encrypts text with an AEAD key derived from a passphrase.
//
// Each instance draws one random salt and derives its sealing key once.
// Blobs carry algorithm, KDF parameters and salt in a header that is also
// authenticated as additional data, so any instance holding the same
// passphrase can open them as long as the blob's KDF cost does not exceed
// the instance's own. Keys derived for foreign salts are cached.
//
// Passphrase is safe for concurrent use.
type Passphrase struct {
	secret []byte
	alg    CipherType
	params KDFParams
	header []byte
	seal   Cipher
	keys   *lru.ARCCache
}

// NewPassphrase creates a passphrase text cipher. An empty alg selects
// Preferred(); zero KDF fields take DefaultKDFParams values.
func NewPassphrase(secret string, alg CipherType, params KDFParams) (*Passphrase, error) {
	if secret == "" {
		return nil, ErrEmptyPassphrase
	}
	if alg == "" {
		alg = Preferred()
	}
	if _, ok := algorithmIDs[alg]; !ok {
		return nil, fmt.Errorf("adaptive: %q is not a passphrase AEAD", alg)
	}
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}

	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("adaptive: read salt: %w", err)
	}

	keys, err := lru.NewARC(keyCacheSize)
	if err != nil {
		return nil, fmt.Errorf("adaptive: key cache: %w", err)
	}

	p := &Passphrase{
		secret: []byte(secret),
		alg:    alg,
		params: params,
		keys:   keys,
	}
	p.header = encodeHeader(alg, params, salt)

	seal, err := p.cipherFor(p.header)
	if err != nil {
		return nil, err
	}
	p.seal = seal
	return p, nil
}

// Type returns the AEAD algorithm new blobs are sealed with.
func (p *Passphrase) Type() CipherType {
	return p.alg
}

// Encrypt seals plaintext and returns base64 text.
func (p *Passphrase) Encrypt(plaintext string) (string, error) {
	sealed, err := p.seal.Encrypt([]byte(plaintext), p.header)
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, len(p.header)+len(sealed))
	out = append(out, p.header...)
	out = append(out, sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a blob produced by any Passphrase holding the same secret.
func (p *Passphrase) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(raw) < headerLen {
		return "", fmt.Errorf("%w: blob too short", ErrDecryptionFailed)
	}

	header := raw[:headerLen]
	c, err := p.cipherFor(header)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	plaintext, err := c.Decrypt(raw[headerLen:], header)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// cipherFor returns the AEAD for a header, deriving and caching its key on
// first use.
func (p *Passphrase) cipherFor(header []byte) (Cipher, error) {
	if c, ok := p.keys.Get(string(header)); ok {
		return c.(Cipher), nil
	}

	alg, params, salt, err := decodeHeader(header)
	if err != nil {
		return nil, err
	}
	// Headers come from the host store; never derive at a higher cost
	// than this instance is configured for.
	if !params.within(p.params) {
		return nil, fmt.Errorf("adaptive: kdf cost %+v exceeds configured %+v", params, p.params)
	}

	key := argon2.IDKey(p.secret, salt, params.Time, params.MemoryKiB, params.Threads, derivedKeyLen)
	c, err := NewWithType(key, alg)
	zeroKey(key)
	if err != nil {
		return nil, err
	}

	p.keys.Add(string(header), c)
	return c, nil
}

func encodeHeader(alg CipherType, params KDFParams, salt []byte) []byte {
	h := make([]byte, headerLen)
	h[0] = blobVersion
	h[1] = algorithmIDs[alg]
	binary.BigEndian.PutUint32(h[2:6], params.Time)
	binary.BigEndian.PutUint32(h[6:10], params.MemoryKiB)
	h[10] = params.Threads
	copy(h[11:], salt)
	return h
}

func decodeHeader(h []byte) (CipherType, KDFParams, []byte, error) {
	if len(h) != headerLen {
		return "", KDFParams{}, nil, errors.New("adaptive: bad header length")
	}
	if h[0] != blobVersion {
		return "", KDFParams{}, nil, fmt.Errorf("adaptive: unsupported blob version %d", h[0])
	}
	alg, ok := algorithmByID(h[1])
	if !ok {
		return "", KDFParams{}, nil, fmt.Errorf("adaptive: unknown algorithm id %d", h[1])
	}
	params := KDFParams{
		Time:      binary.BigEndian.Uint32(h[2:6]),
		MemoryKiB: binary.BigEndian.Uint32(h[6:10]),
		Threads:   h[10],
	}
	if err := params.validate(); err != nil {
		return "", KDFParams{}, nil, err
	}
	return alg, params, h[11:], nil
}

// zeroKey wipes key material once the cipher has been built from it.
func zeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}
