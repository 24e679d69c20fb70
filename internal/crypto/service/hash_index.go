package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// sha256HashIndex implements HashIndex with unkeyed SHA-256.
//
// The digest is a lookup and uniqueness key, not a secrecy mechanism. Identifiers
// such as passport or phone numbers have little entropy, so anyone holding the hash
// column can recover them by enumeration. Confidentiality is provided by the codec;
// hash columns must be protected like the rest of the database.
type sha256HashIndex struct{}

// NewSHA256HashIndex creates a hash index producing 64 lowercase hex characters.
func NewSHA256HashIndex() HashIndex {
	return &sha256HashIndex{}
}

// Digest returns the SHA-256 hex digest of the UTF-8 bytes of plaintext.
func (s *sha256HashIndex) Digest(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:]), nil
}
