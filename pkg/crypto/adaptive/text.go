package adaptive

import "fmt"

// TextCipher encrypts text into text.
type TextCipher interface {
	Type() CipherType
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// NewTextCipher builds the text cipher for typ keyed by secret. An empty
// typ selects the Passphrase cipher with the preferred AEAD.
func NewTextCipher(typ CipherType, secret string, params KDFParams) (TextCipher, error) {
	switch typ {
	case "", CipherAESGCM, CipherChaCha20:
		return NewPassphrase(secret, typ, params)
	case CipherCryptoJS:
		return NewCryptoJS(secret)
	default:
		return nil, fmt.Errorf("adaptive: unknown cipher %q", typ)
	}
}
