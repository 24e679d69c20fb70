package domain

import (
	"github.com/allisson/piiguard/internal/errors"
)

// Sensitive attribute error taxonomy.
//
// Failures that compromise confidentiality (ErrKeyConfiguration, ErrEncryptionFailure,
// ErrDigestComputation) wrap errors.ErrInternal and must abort the enclosing write.
// ErrInvalidToken is expected for legacy rows and is recovered by the attribute
// protector. When it escapes it renders as an internal error: stored data is not
// client input, and token details must not reach a response.
var (
	// ErrKeyConfiguration indicates the symmetric key could not be resolved: missing in
	// production, undecodable, or the KMS refused to unwrap it. Fatal at startup.
	ErrKeyConfiguration = errors.Wrap(errors.ErrInternal, "key configuration error")

	// ErrEncryptionFailure indicates the codec could not produce a token for a
	// non-empty value. The value must never be persisted in plaintext instead.
	ErrEncryptionFailure = errors.Wrap(errors.ErrInternal, "encryption failure")

	// ErrInvalidToken indicates the input is not a token produced under the current
	// key: bad encoding, truncated, or rejected by the authentication tag.
	ErrInvalidToken = errors.Wrap(errors.ErrInternal, "invalid token")

	// ErrDigestComputation indicates the hash index could not be computed.
	ErrDigestComputation = errors.Wrap(errors.ErrInternal, "digest computation error")

	// ErrUnsupportedAlgorithm indicates the configured AEAD algorithm is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates key material is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")
)
