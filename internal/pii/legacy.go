package pii

import (
	"context"
	"database/sql"
	"log/slog"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
	"github.com/allisson/piiguard/internal/errors"
)

// Stored values carry no version tag. A value is classified as a token when it
// decrypts and as legacy plaintext when decryption reports ErrInvalidToken. A value
// written under a different key is therefore indistinguishable from plaintext.

// fallback applies the legacy policy to a failed decryption.
func (p *Protector) fallback(ctx context.Context, kind Kind, stored string, err error) (Opened, error) {
	if !IsLegacy(err) {
		return Opened{}, err
	}

	p.logger.DebugContext(ctx, "sensitive attribute is not a token, treating as legacy plaintext",
		slog.String("attribute", kind.Name),
		slog.Int("length", len(stored)),
	)
	return Opened{Value: stored, Legacy: true}, nil
}

// IsLegacy reports whether a decryption error means "not a token under the current
// key" rather than a configuration failure.
func IsLegacy(err error) bool {
	return errors.Is(err, cryptoDomain.ErrInvalidToken)
}

// NeedsReseal reports whether a stored attribute must be rewritten: it has a value
// but no digest. This covers legacy plaintext and tokens written before hash columns
// existed.
func NeedsReseal(stored, hash sql.NullString) bool {
	return stored.Valid && stored.String != "" && (!hash.Valid || hash.String == "")
}
