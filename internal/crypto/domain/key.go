package domain

import (
	"fmt"

	"github.com/awnumar/memguard"
)

// SymmetricKey holds the process-wide key inside a memguard enclave so the raw
// bytes only exist in locked memory while a cipher is being constructed.
type SymmetricKey struct {
	enclave *memguard.Enclave
	// Ephemeral is true when the key was generated at startup because none was
	// configured. Data sealed with an ephemeral key is unreadable after a restart.
	Ephemeral bool
}

// NewSymmetricKey seals the given bytes into a new key. The source slice is wiped.
func NewSymmetricKey(b []byte) (*SymmetricKey, error) {
	if len(b) != KeySize {
		memguard.WipeBytes(b)
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, KeySize, len(b))
	}
	return &SymmetricKey{enclave: memguard.NewEnclave(b)}, nil
}

// NewRandomSymmetricKey generates a fresh ephemeral key from crypto/rand.
func NewRandomSymmetricKey() *SymmetricKey {
	return &SymmetricKey{enclave: memguard.NewEnclaveRandom(KeySize), Ephemeral: true}
}

// Use opens the enclave, hands the raw key to fn and destroys the plaintext buffer
// afterwards. fn must not retain the slice.
func (k *SymmetricKey) Use(fn func(raw []byte) error) error {
	buf, err := k.enclave.Open()
	if err != nil {
		return fmt.Errorf("%w: failed to open key enclave: %v", ErrKeyConfiguration, err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}
