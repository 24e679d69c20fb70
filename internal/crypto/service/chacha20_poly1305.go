package service

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
)

// ChaCha20Poly1305Cipher implements the AEAD interface using ChaCha20-Poly1305.
// Tokens have the same layout as AES-GCM tokens: 12-byte nonce, 16-byte tag.
type ChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 creates a new ChaCha20-Poly1305 cipher instance.
// The key must be exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *ChaCha20Poly1305Cipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = c.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt verifies the Poly1305 tag and returns the plaintext.
func (c *ChaCha20Poly1305Cipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, fmt.Errorf("invalid nonce size %d", len(nonce))
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// NonceSize returns the ChaCha20-Poly1305 nonce size (12 bytes).
func (c *ChaCha20Poly1305Cipher) NonceSize() int {
	return c.aead.NonceSize()
}

// Overhead returns the Poly1305 tag size (16 bytes).
func (c *ChaCha20Poly1305Cipher) Overhead() int {
	return c.aead.Overhead()
}
