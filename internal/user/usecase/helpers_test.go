package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
	cryptoService "github.com/allisson/piiguard/internal/crypto/service"
	outboxDomain "github.com/allisson/piiguard/internal/outbox/domain"
	"github.com/allisson/piiguard/internal/pii"
	"github.com/allisson/piiguard/internal/user/domain"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByConsularCardNumberHash(ctx context.Context, digest string) (*domain.User, error) {
	args := m.Called(ctx, digest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByHash(ctx context.Context, kind pii.Kind, digest string) (bool, error) {
	args := m.Called(ctx, kind, digest)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockUserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// MockLegacyRepository is a mock implementation of LegacyRepository
type MockLegacyRepository struct {
	mock.Mock
}

func (m *MockLegacyRepository) ListUsersMissingHashes(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*domain.LegacyRecord, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LegacyRecord), args.Error(1)
}

func (m *MockLegacyRepository) ListProfilesMissingHashes(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*domain.LegacyRecord, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LegacyRecord), args.Error(1)
}

func (m *MockLegacyRepository) Reseal(
	ctx context.Context,
	table string,
	recordID uuid.UUID,
	attrs []domain.ResealedAttribute,
) error {
	return m.Called(ctx, table, recordID, attrs).Error(0)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository
type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProtector(t *testing.T) *pii.Protector {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	provider := cryptoService.NewKeyProvider(
		cryptoService.KeyProviderConfig{EncryptionKey: base64.StdEncoding.EncodeToString(key), Production: true},
		nil,
		discardLogger(),
	)
	codec := cryptoService.NewTokenCodec(provider, cryptoService.NewAEADManager(), cryptoDomain.AESGCM)
	return pii.NewProtector(codec, cryptoService.NewSHA256HashIndex(), discardLogger())
}

// kindNamed matches a pii.Kind argument by name. Kinds hold a normalizer func and
// cannot be compared with ObjectsAreEqual.
func kindNamed(kind pii.Kind) interface{} {
	return mock.MatchedBy(func(k pii.Kind) bool { return k.Name == kind.Name })
}

func mustDigest(t *testing.T, p *pii.Protector, kind pii.Kind, value string) string {
	t.Helper()
	digest, err := p.Lookup(kind, value)
	require.NoError(t, err)
	return digest
}

func ptr(s string) *string {
	return &s
}
