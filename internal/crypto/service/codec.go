package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"unicode/utf8"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
)

// KeySource supplies the symmetric key. *KeyProvider satisfies it.
type KeySource interface {
	Key(ctx context.Context) (*cryptoDomain.SymmetricKey, error)
}

// TokenCodec implements Codec on top of an AEAD cipher.
//
// Token layout, base64url without padding:
//
//	nonce (12 bytes) || ciphertext || tag (16 bytes)
//
// Tokens carry no version or key identifier. A value that fails to decode or
// authenticate is reported as ErrInvalidToken and is indistinguishable from data
// written under another key.
type TokenCodec struct {
	keys    KeySource
	manager AEADManager
	alg     cryptoDomain.Algorithm

	once sync.Once
	aead AEAD
	err  error
}

// NewTokenCodec creates a TokenCodec. The AEAD is built on first use.
func NewTokenCodec(keys KeySource, manager AEADManager, alg cryptoDomain.Algorithm) *TokenCodec {
	return &TokenCodec{
		keys:    keys,
		manager: manager,
		alg:     alg,
	}
}

// cipher builds the AEAD once. Building is pure: two builds for the same key are
// interchangeable.
func (c *TokenCodec) cipher(ctx context.Context) (AEAD, error) {
	c.once.Do(func() {
		key, err := c.keys.Key(ctx)
		if err != nil {
			c.err = err
			return
		}
		c.err = key.Use(func(raw []byte) error {
			aead, err := c.manager.CreateCipher(raw, c.alg)
			if err != nil {
				return fmt.Errorf("%w: %v", cryptoDomain.ErrKeyConfiguration, err)
			}
			c.aead = aead
			return nil
		})
	})
	return c.aead, c.err
}

// Encrypt returns a fresh token for plaintext. Empty plaintext is returned as is.
func (c *TokenCodec) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	aead, err := c.cipher(ctx)
	if err != nil {
		return "", err
	}

	ciphertext, nonce, err := aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailure, err)
	}

	token := make([]byte, 0, len(nonce)+len(ciphertext))
	token = append(token, nonce...)
	token = append(token, ciphertext...)
	return base64.RawURLEncoding.EncodeToString(token), nil
}

// Decrypt authenticates token and returns its plaintext.
func (c *TokenCodec) Decrypt(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}

	aead, err := c.cipher(ctx)
	if err != nil {
		return "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: malformed encoding", cryptoDomain.ErrInvalidToken)
	}

	nonceSize := aead.NonceSize()
	if len(data) <= nonceSize+aead.Overhead() {
		return "", fmt.Errorf("%w: too short", cryptoDomain.ErrInvalidToken)
	}

	plaintext, err := aead.Decrypt(data[nonceSize:], data[:nonceSize], nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", cryptoDomain.ErrInvalidToken)
	}
	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", cryptoDomain.ErrInvalidToken)
	}

	return string(plaintext), nil
}
