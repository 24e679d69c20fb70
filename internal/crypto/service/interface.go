// Package service provides the cryptographic services behind sensitive attribute
// protection: AEAD ciphers, the process key provider, the token codec and the hash
// index generator.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length expected by Decrypt.
	NonceSize() int

	// Overhead returns the length of the authentication tag appended to ciphertext.
	Overhead() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KMSKeeper is the subset of *secrets.Keeper used to wrap and unwrap the process key.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens KMS keepers from a provider URI.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}

// Codec turns plaintext strings into self-contained ciphertext tokens and back.
type Codec interface {
	// Encrypt returns a fresh token for plaintext. Empty input returns "" untouched.
	Encrypt(ctx context.Context, plaintext string) (string, error)

	// Decrypt returns the plaintext for token, or an error wrapping
	// cryptoDomain.ErrInvalidToken when token was not produced under the current key.
	Decrypt(ctx context.Context, token string) (string, error)
}

// HashIndex computes deterministic digests used as lookup and uniqueness keys.
type HashIndex interface {
	// Digest returns the hex digest of plaintext, or "" when plaintext is empty.
	Digest(plaintext string) (string, error)
}
