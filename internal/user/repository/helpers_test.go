package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"database/sql/driver"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
	cryptoService "github.com/allisson/piiguard/internal/crypto/service"
	"github.com/allisson/piiguard/internal/pii"
)

func newTestProtector(t *testing.T) *pii.Protector {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := cryptoService.NewKeyProvider(
		cryptoService.KeyProviderConfig{EncryptionKey: base64.StdEncoding.EncodeToString(key), Production: true},
		nil,
		logger,
	)
	codec := cryptoService.NewTokenCodec(provider, cryptoService.NewAEADManager(), cryptoDomain.AESGCM)
	return pii.NewProtector(codec, cryptoService.NewSHA256HashIndex(), logger)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

// sealedArg matches a ciphertext token that is not the plaintext itself.
type sealedArg struct {
	plaintext string
}

func (a sealedArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s != "" && s != a.plaintext
}

// digestArg matches the digest of the normalized plaintext.
type digestArg struct {
	digest string
}

func (a digestArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s == a.digest
}

// nullArg matches SQL NULL.
type nullArg struct{}

func (nullArg) Match(v driver.Value) bool {
	return v == nil
}

func mustSeal(t *testing.T, p *pii.Protector, kind pii.Kind, value string) pii.Sealed {
	t.Helper()
	sealed, err := p.Seal(context.Background(), kind, value)
	require.NoError(t, err)
	return sealed
}

func mustDigest(t *testing.T, p *pii.Protector, kind pii.Kind, value string) string {
	t.Helper()
	digest, err := p.Lookup(kind, value)
	require.NoError(t, err)
	return digest
}
