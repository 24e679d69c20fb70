package pii

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
	cryptoService "github.com/allisson/piiguard/internal/crypto/service"
	"github.com/allisson/piiguard/internal/metrics"
)

const metricsDomain = "pii"

// Sealed is the storage form of one attribute. Both columns are NULL when the value
// is absent, both are set otherwise.
type Sealed struct {
	Ciphertext sql.NullString
	Hash       sql.NullString
}

// Opened is the domain form of one stored attribute.
type Opened struct {
	Value string
	// Legacy is true when the stored value was not a token and was returned as is.
	Legacy bool
}

// Protector converts sensitive attributes between their domain and storage forms.
// It holds no per-record state and is safe for concurrent use.
type Protector struct {
	codec   cryptoService.Codec
	index   cryptoService.HashIndex
	logger  *slog.Logger
	metrics metrics.BusinessMetrics
}

// Option configures a Protector.
type Option func(*Protector)

// WithMetrics records one operation per Seal and Open, labelled with the attribute
// name. Open reports status "legacy" when the fallback engaged.
func WithMetrics(m metrics.BusinessMetrics) Option {
	return func(p *Protector) {
		p.metrics = m
	}
}

// NewProtector creates a Protector.
func NewProtector(
	codec cryptoService.Codec,
	index cryptoService.HashIndex,
	logger *slog.Logger,
	opts ...Option,
) *Protector {
	p := &Protector{
		codec:   codec,
		index:   index,
		logger:  logger,
		metrics: metrics.NewNoOpBusinessMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Seal normalizes value and returns its token and digest. On error no Sealed value is
// returned and the caller must abort the write.
func (p *Protector) Seal(ctx context.Context, kind Kind, value string) (Sealed, error) {
	sealed, err := p.seal(ctx, kind, value)
	p.metrics.RecordOperation(ctx, metricsDomain, kind.Name+"_seal", status(err, false))
	return sealed, err
}

func (p *Protector) seal(ctx context.Context, kind Kind, value string) (Sealed, error) {
	normalized := kind.Normalize(value)
	if normalized == "" {
		return Sealed{}, nil
	}

	token, err := p.codec.Encrypt(ctx, normalized)
	if err != nil {
		return Sealed{}, fmt.Errorf("failed to encrypt %s: %w", kind.Name, err)
	}

	digest, err := p.digest(kind, normalized)
	if err != nil {
		return Sealed{}, err
	}

	return Sealed{
		Ciphertext: sql.NullString{String: token, Valid: true},
		Hash:       sql.NullString{String: digest, Valid: true},
	}, nil
}

// Open returns the domain value of a stored attribute. Stored values that are not
// tokens under the current key are returned unchanged with Legacy set.
func (p *Protector) Open(ctx context.Context, kind Kind, stored sql.NullString) (Opened, error) {
	if !stored.Valid || stored.String == "" {
		return Opened{}, nil
	}

	opened, err := p.open(ctx, kind, stored.String)
	p.metrics.RecordOperation(ctx, metricsDomain, kind.Name+"_open", status(err, opened.Legacy))
	return opened, err
}

func (p *Protector) open(ctx context.Context, kind Kind, stored string) (Opened, error) {
	plaintext, err := p.codec.Decrypt(ctx, stored)
	if err != nil {
		return p.fallback(ctx, kind, stored, err)
	}
	return Opened{Value: plaintext}, nil
}

// Lookup returns the digest used to query kind's hash column for value, or "" when
// the normalized value is empty.
func (p *Protector) Lookup(kind Kind, value string) (string, error) {
	return p.digest(kind, kind.Normalize(value))
}

func (p *Protector) digest(kind Kind, normalized string) (string, error) {
	digest, err := p.index.Digest(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", cryptoDomain.ErrDigestComputation, kind.Name, err)
	}
	return digest, nil
}

func status(err error, legacy bool) string {
	if err == nil && legacy {
		return metrics.StatusLegacy
	}
	return metrics.StatusOf(err)
}
