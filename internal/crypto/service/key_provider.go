package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
)

// KeyProviderConfig describes where the process key comes from.
type KeyProviderConfig struct {
	// EncryptionKey is the configured secret: base64 of 32 raw bytes, a passphrase,
	// or (when KMSKeyURI is set) the base64 KMS ciphertext of 32 raw bytes.
	EncryptionKey string
	// KMSKeyURI optionally names the KMS key that wraps EncryptionKey.
	KMSKeyURI string
	// Production disables the ephemeral development key.
	Production bool
}

// KeyProvider resolves the process-wide symmetric key exactly once and caches it.
//
// Resolution rules:
//   - no key configured, development: random ephemeral key, logged at WARN
//   - no key configured, production: ErrKeyConfiguration
//   - KMSKeyURI set: EncryptionKey is unwrapped through the KMS keeper
//   - EncryptionKey decodes from base64 to exactly 32 bytes: used verbatim
//   - anything else: treated as a passphrase, key = SHA-256(passphrase)
//
// The outcome of the first call, key or error, is what every later call sees.
type KeyProvider struct {
	cfg        KeyProviderConfig
	kmsService KMSService
	logger     *slog.Logger

	once sync.Once
	key  *cryptoDomain.SymmetricKey
	err  error
}

// NewKeyProvider creates a KeyProvider. kmsService may be nil when KMSKeyURI is empty.
func NewKeyProvider(cfg KeyProviderConfig, kmsService KMSService, logger *slog.Logger) *KeyProvider {
	return &KeyProvider{
		cfg:        cfg,
		kmsService: kmsService,
		logger:     logger,
	}
}

// Key returns the cached symmetric key, resolving it on first use.
func (p *KeyProvider) Key(ctx context.Context) (*cryptoDomain.SymmetricKey, error) {
	p.once.Do(func() {
		p.key, p.err = p.resolve(ctx)
	})
	return p.key, p.err
}

func (p *KeyProvider) resolve(ctx context.Context) (*cryptoDomain.SymmetricKey, error) {
	raw := strings.TrimSpace(p.cfg.EncryptionKey)

	if raw == "" {
		if p.cfg.Production {
			return nil, fmt.Errorf("%w: ENCRYPTION_KEY must be set in production", cryptoDomain.ErrKeyConfiguration)
		}
		p.logger.Warn(
			"ENCRYPTION_KEY is not set, using an ephemeral key: " +
				"sensitive data written now will be unreadable after a restart",
		)
		return cryptoDomain.NewRandomSymmetricKey(), nil
	}

	if p.cfg.KMSKeyURI != "" {
		return p.unwrapWithKMS(ctx, raw)
	}

	if decoded, ok := decodeRawKey(raw); ok {
		return cryptoDomain.NewSymmetricKey(decoded)
	}

	p.logger.Info("ENCRYPTION_KEY is not a base64 encoded 32 byte key, deriving key from passphrase")
	return cryptoDomain.NewSymmetricKey(DeriveKeyFromPassphrase(raw))
}

// unwrapWithKMS decrypts the configured KMS ciphertext into the process key.
func (p *KeyProvider) unwrapWithKMS(ctx context.Context, raw string) (*cryptoDomain.SymmetricKey, error) {
	if p.kmsService == nil {
		return nil, fmt.Errorf("%w: KMS key URI configured without a KMS service", cryptoDomain.ErrKeyConfiguration)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: ENCRYPTION_KEY is not valid base64: %v", cryptoDomain.ErrKeyConfiguration, err)
	}

	keeper, err := p.kmsService.OpenKeeper(ctx, p.cfg.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyConfiguration, err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			p.logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unwrap key with KMS: %v", cryptoDomain.ErrKeyConfiguration, err)
	}

	key, err := cryptoDomain.NewSymmetricKey(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyConfiguration, err)
	}

	p.logger.Info("encryption key unwrapped with KMS")
	return key, nil
}

// DeriveKeyFromPassphrase derives a 32-byte key as SHA-256 of the passphrase.
func DeriveKeyFromPassphrase(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

// decodeRawKey accepts padded or unpadded, standard or URL-safe base64 and reports
// whether the value decodes to exactly KeySize bytes.
func decodeRawKey(raw string) ([]byte, bool) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		decoded, err := enc.DecodeString(raw)
		if err == nil && len(decoded) == cryptoDomain.KeySize {
			return decoded, true
		}
	}
	return nil, false
}
