package adaptive

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// OpenSSL salted format: "Salted__" | 8-byte salt | AES-CBC ciphertext.
var saltedMagic = []byte("Salted__")

const (
	cryptoJSSaltLen = 8
	cryptoJSKeyLen  = 32
)

// CryptoJS encrypts text the way CryptoJS.AES.encrypt(text, passphrase)
// does: EVP_BytesToKey(MD5) key/IV derivation, AES-256-CBC, PKCS#7
// padding, base64 of the OpenSSL salted format.
//
// The scheme is not authenticated. A wrong passphrase usually fails the
// padding check but can also yield garbage plaintext, which callers must
// reject themselves.
type CryptoJS struct {
	secret []byte
}

// NewCryptoJS creates a CryptoJS-compatible text cipher.
func NewCryptoJS(secret string) (*CryptoJS, error) {
	if secret == "" {
		return nil, ErrEmptyPassphrase
	}
	return &CryptoJS{secret: []byte(secret)}, nil
}

// Type returns CipherCryptoJS.
func (c *CryptoJS) Type() CipherType {
	return CipherCryptoJS
}

// Encrypt returns the base64 OpenSSL salted ciphertext of plaintext.
func (c *CryptoJS) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, cryptoJSSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("adaptive: read salt: %w", err)
	}

	key, iv := evpBytesToKey(c.secret, salt, cryptoJSKeyLen, aes.BlockSize)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(saltedMagic)+cryptoJSSaltLen+len(padded))
	copy(out, saltedMagic)
	copy(out[len(saltedMagic):], salt)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[len(saltedMagic)+cryptoJSSaltLen:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a base64 OpenSSL salted ciphertext.
func (c *CryptoJS) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	prefix := len(saltedMagic) + cryptoJSSaltLen
	if len(raw) < prefix+aes.BlockSize || !bytes.HasPrefix(raw, saltedMagic) {
		return "", fmt.Errorf("%w: not an OpenSSL salted blob", ErrDecryptionFailed)
	}
	body := raw[prefix:]
	if len(body)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not a whole number of blocks", ErrDecryptionFailed)
	}

	key, iv := evpBytesToKey(c.secret, raw[len(saltedMagic):prefix], cryptoJSKeyLen, aes.BlockSize)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	plain, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok {
		return "", fmt.Errorf("%w: bad padding", ErrDecryptionFailed)
	}
	return string(plain), nil
}

// evpBytesToKey is OpenSSL's EVP_BytesToKey with MD5 and one iteration.
func evpBytesToKey(secret, salt []byte, keyLen, ivLen int) (key, iv []byte) {
	var (
		derived []byte
		prev    []byte
	)
	for len(derived) < keyLen+ivLen {
		h := md5.New()
		h.Write(prev)
		h.Write(secret)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keyLen], derived[keyLen : keyLen+ivLen]
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append(make([]byte, 0, len(data)+n), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
