package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// Security properties:
//   - 256-bit key
//   - 12-byte nonce, randomly generated per encryption
//   - 16-byte authentication tag appended to the ciphertext
//
// The cipher is stateless after construction and safe for concurrent use. With random
// 96-bit nonces a single key should not seal more than 2^32 values; the identifiers
// protected here stay far below that.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce. The returned ciphertext carries
// the authentication tag at its end.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt verifies the authentication tag and returns the plaintext. No plaintext is
// returned when verification fails.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, fmt.Errorf("invalid nonce size %d", len(nonce))
	}
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// NonceSize returns the GCM nonce size (12 bytes).
func (a *AESGCMCipher) NonceSize() int {
	return a.aead.NonceSize()
}

// Overhead returns the GCM tag size (16 bytes).
func (a *AESGCMCipher) Overhead() int {
	return a.aead.Overhead()
}
