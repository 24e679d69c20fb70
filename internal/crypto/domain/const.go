// Package domain defines the key, algorithm and error types shared by the
// sensitive attribute cipher.
package domain

import "fmt"

// KeySize is the size in bytes of the process-wide symmetric key.
const KeySize = 32

// Algorithm represents the AEAD construction used to produce ciphertext tokens.
//
// Both algorithms take a 256-bit key, a 12-byte nonce and append a 16-byte
// authentication tag, so tokens produced by either have the same shape. A token is
// only readable by the algorithm that produced it; switching algorithms on a
// populated database makes existing tokens look like legacy plaintext.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. Preferred on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305. Preferred without AES hardware support.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm converts a configuration value into an Algorithm.
// An empty value selects AESGCM.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "", AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}
