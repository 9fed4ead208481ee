// Package adaptive provides the symmetric ciphers webstash seals records
// with.
//
// Two layers are exposed:
//
//   - Cipher: raw AEAD (AES-GCM or ChaCha20-Poly1305) over byte slices,
//     with the nonce prepended to the ciphertext
//   - TextCipher: passphrase-keyed encryption from text to base64 text,
//     suitable for string-only host stores
//
// TextCipher implementations:
//
//   - Passphrase: Argon2id-derived key, AEAD sealed, self-describing header
//   - CryptoJS: OpenSSL "Salted__" AES-256-CBC, compatible with
//     CryptoJS.AES.encrypt(text, passphrase)
//
// The AEAD algorithm is picked from hardware capabilities when the caller
// does not choose one: AES-GCM on amd64/arm64, ChaCha20-Poly1305 elsewhere.
package adaptive
