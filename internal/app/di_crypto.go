package app

import (
	"fmt"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
	cryptoService "github.com/allisson/piiguard/internal/crypto/service"
	"github.com/allisson/piiguard/internal/pii"
)

// KMSService returns the gocloud.dev secrets client used to unwrap ENCRYPTION_KEY.
func (c *Container) KMSService() cryptoService.KMSService {
	return c.kmsService.must(cryptoService.NewKMSService)
}

// AEADManager returns the cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	return c.aeadManager.must(func() cryptoService.AEADManager {
		return cryptoService.NewAEADManager()
	})
}

// KeyProvider returns the process key provider. The key itself is resolved on the
// first Key call, not here.
func (c *Container) KeyProvider() *cryptoService.KeyProvider {
	return c.keyProvider.must(func() *cryptoService.KeyProvider {
		return cryptoService.NewKeyProvider(
			cryptoService.KeyProviderConfig{
				EncryptionKey: c.config.EncryptionKey,
				KMSKeyURI:     c.config.EncryptionKeyKMSURI,
				Production:    c.config.IsProduction(),
			},
			c.KMSService(),
			c.Logger(),
		)
	})
}

// HashIndex returns the deterministic lookup digest service.
func (c *Container) HashIndex() cryptoService.HashIndex {
	return c.hashIndex.must(cryptoService.NewSHA256HashIndex)
}

// Codec returns the ciphertext token codec for ENCRYPTION_ALGORITHM.
func (c *Container) Codec() (cryptoService.Codec, error) {
	return c.codec.get(func() (cryptoService.Codec, error) {
		alg, err := cryptoDomain.ParseAlgorithm(c.config.EncryptionAlgorithm)
		if err != nil {
			return nil, fmt.Errorf("failed to parse encryption algorithm: %w", err)
		}
		return cryptoService.NewTokenCodec(c.KeyProvider(), c.AEADManager(), alg), nil
	})
}

// Protector returns the sensitive attribute protector shared by every repository.
func (c *Container) Protector() (*pii.Protector, error) {
	return c.protector.get(func() (*pii.Protector, error) {
		codec, err := c.Codec()
		if err != nil {
			return nil, fmt.Errorf("failed to get codec for protector: %w", err)
		}

		var opts []pii.Option
		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return nil, fmt.Errorf("failed to get business metrics for protector: %w", err)
			}
			opts = append(opts, pii.WithMetrics(businessMetrics))
		}

		return pii.NewProtector(codec, c.HashIndex(), c.Logger(), opts...), nil
	})
}
