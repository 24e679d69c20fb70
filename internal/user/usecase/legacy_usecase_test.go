package usecase

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/piiguard/internal/pii"
	"github.com/allisson/piiguard/internal/user/domain"
)

func legacyUserRecord(attrs ...domain.StoredAttribute) *domain.LegacyRecord {
	return &domain.LegacyRecord{
		Table:      pii.TableUsers,
		ID:         uuid.Must(uuid.NewV7()),
		Attributes: attrs,
	}
}

func stored(kind pii.Kind, value string) domain.StoredAttribute {
	return domain.StoredAttribute{Kind: kind, Value: sql.NullString{String: value, Valid: true}}
}

func mustSealToken(t *testing.T, p *pii.Protector, kind pii.Kind, value string) string {
	t.Helper()
	sealed, err := p.Seal(context.Background(), kind, value)
	require.NoError(t, err)
	return sealed.Ciphertext.String
}

func TestLegacyEncryptionUseCase_EncryptLegacyData(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ResealsPlaintextAndTokens", func(t *testing.T) {
		repo := &MockLegacyRepository{}
		protector := newTestProtector(t)
		uc := NewLegacyEncryptionUseCase(repo, protector, discardLogger())

		token := mustSealToken(t, protector, pii.PhoneNumber, "+221771234567")
		record := legacyUserRecord(
			stored(pii.PhoneNumber, token),
			stored(pii.ConsularCardNumber, "SN1234567"),
		)
		cardDigest := mustDigest(t, protector, pii.ConsularCardNumber, "SN1234567")
		phoneDigest := mustDigest(t, protector, pii.PhoneNumber, "+221771234567")

		var written []domain.ResealedAttribute
		repo.On("ListUsersMissingHashes", ctx, uuid.Nil, 10).Return([]*domain.LegacyRecord{record}, nil).Once()
		repo.On("Reseal", ctx, pii.TableUsers, record.ID, mock.Anything).
			Run(func(args mock.Arguments) { written = args.Get(3).([]domain.ResealedAttribute) }).
			Return(nil).Once()
		repo.On("ListProfilesMissingHashes", ctx, uuid.Nil, 10).Return([]*domain.LegacyRecord{}, nil).Once()

		report, err := uc.EncryptLegacyData(ctx, LegacyOptions{BatchSize: 10})
		require.NoError(t, err)

		assert.Equal(t, 1, report.UsersScanned)
		assert.Equal(t, 1, report.UsersResealed)
		assert.Equal(t, 0, report.ProfilesScanned)
		assert.Equal(t, 2, report.FieldsResealed)
		assert.Equal(t, 1, report.PlaintextFields)
		assert.False(t, report.DryRun)

		require.Len(t, written, 2)
		assert.Equal(t, phoneDigest, written[0].Sealed.Hash.String)
		assert.Equal(t, cardDigest, written[1].Sealed.Hash.String)
		assert.NotEqual(t, "SN1234567", written[1].Sealed.Ciphertext.String)

		opened, err := protector.Open(ctx, pii.ConsularCardNumber, written[1].Sealed.Ciphertext)
		require.NoError(t, err)
		assert.False(t, opened.Legacy)
		assert.Equal(t, "SN1234567", opened.Value)

		repo.AssertExpectations(t)
	})

	t.Run("Success_DryRunDoesNotWrite", func(t *testing.T) {
		repo := &MockLegacyRepository{}
		protector := newTestProtector(t)
		uc := NewLegacyEncryptionUseCase(repo, protector, discardLogger())

		profile := &domain.LegacyRecord{
			Table:      pii.TableProfiles,
			ID:         uuid.Must(uuid.NewV7()),
			Attributes: []domain.StoredAttribute{stored(pii.PassportNumber, "A1234567")},
		}

		repo.On("ListUsersMissingHashes", ctx, uuid.Nil, DefaultLegacyBatchSize).Return([]*domain.LegacyRecord{}, nil).Once()
		repo.On("ListProfilesMissingHashes", ctx, uuid.Nil, DefaultLegacyBatchSize).
			Return([]*domain.LegacyRecord{profile}, nil).Once()

		report, err := uc.EncryptLegacyData(ctx, LegacyOptions{DryRun: true})
		require.NoError(t, err)

		assert.True(t, report.DryRun)
		assert.Equal(t, 1, report.ProfilesScanned)
		assert.Equal(t, 1, report.ProfilesResealed)
		assert.Equal(t, 1, report.PlaintextFields)
		repo.AssertNotCalled(t, "Reseal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("Success_ConflictIsReportedAndSkipped", func(t *testing.T) {
		repo := &MockLegacyRepository{}
		protector := newTestProtector(t)
		uc := NewLegacyEncryptionUseCase(repo, protector, discardLogger())

		first := legacyUserRecord(stored(pii.ConsularCardNumber, "SN1234567"))
		second := legacyUserRecord(stored(pii.ConsularCardNumber, "sn1234567"))

		repo.On("ListUsersMissingHashes", ctx, uuid.Nil, 5).Return([]*domain.LegacyRecord{first, second}, nil).Once()
		repo.On("Reseal", ctx, pii.TableUsers, first.ID, mock.Anything).Return(nil).Once()
		repo.On("Reseal", ctx, pii.TableUsers, second.ID, mock.Anything).
			Return(domain.ErrConsularCardNumberTaken).Once()
		repo.On("ListProfilesMissingHashes", ctx, uuid.Nil, 5).Return([]*domain.LegacyRecord{}, nil).Once()

		report, err := uc.EncryptLegacyData(ctx, LegacyOptions{BatchSize: 5})
		require.NoError(t, err)

		assert.Equal(t, 2, report.UsersScanned)
		assert.Equal(t, 1, report.UsersResealed)
		assert.Equal(t, 1, report.Conflicts)
		assert.Equal(t, []string{"users:" + second.ID.String()}, report.ConflictingRecords)
		assert.Equal(t, 1, report.FieldsResealed)
		repo.AssertExpectations(t)
	})

	t.Run("Success_PaginatesByLastID", func(t *testing.T) {
		repo := &MockLegacyRepository{}
		protector := newTestProtector(t)
		uc := NewLegacyEncryptionUseCase(repo, protector, discardLogger())

		a := legacyUserRecord(stored(pii.PhoneNumber, "+221770000001"))
		b := legacyUserRecord(stored(pii.PhoneNumber, "+221770000002"))
		c := legacyUserRecord(stored(pii.PhoneNumber, "+221770000003"))

		repo.On("ListUsersMissingHashes", ctx, uuid.Nil, 2).Return([]*domain.LegacyRecord{a, b}, nil).Once()
		repo.On("ListUsersMissingHashes", ctx, b.ID, 2).Return([]*domain.LegacyRecord{c}, nil).Once()
		repo.On("Reseal", ctx, pii.TableUsers, mock.Anything, mock.Anything).Return(nil).Times(3)
		repo.On("ListProfilesMissingHashes", ctx, uuid.Nil, 2).Return([]*domain.LegacyRecord{}, nil).Once()

		report, err := uc.EncryptLegacyData(ctx, LegacyOptions{BatchSize: 2})
		require.NoError(t, err)

		assert.Equal(t, 3, report.UsersScanned)
		assert.Equal(t, 3, report.UsersResealed)
		assert.Equal(t, 3, report.PlaintextFields)
		repo.AssertExpectations(t)
	})

	t.Run("Error_ListFails", func(t *testing.T) {
		repo := &MockLegacyRepository{}
		uc := NewLegacyEncryptionUseCase(repo, newTestProtector(t), discardLogger())
		dbErr := errors.New("connection reset")

		repo.On("ListUsersMissingHashes", ctx, uuid.Nil, 10).Return(nil, dbErr).Once()

		report, err := uc.EncryptLegacyData(ctx, LegacyOptions{BatchSize: 10})
		assert.Nil(t, report)
		assert.ErrorIs(t, err, dbErr)
		repo.AssertExpectations(t)
	})

	t.Run("Error_ResealFailureAborts", func(t *testing.T) {
		repo := &MockLegacyRepository{}
		uc := NewLegacyEncryptionUseCase(repo, newTestProtector(t), discardLogger())
		record := legacyUserRecord(stored(pii.PhoneNumber, "+221770000001"))
		dbErr := errors.New("deadlock detected")

		repo.On("ListUsersMissingHashes", ctx, uuid.Nil, 10).Return([]*domain.LegacyRecord{record}, nil).Once()
		repo.On("Reseal", ctx, pii.TableUsers, record.ID, mock.Anything).Return(dbErr).Once()

		_, err := uc.EncryptLegacyData(ctx, LegacyOptions{BatchSize: 10})
		assert.ErrorIs(t, err, dbErr)
		repo.AssertNotCalled(t, "ListProfilesMissingHashes", mock.Anything, mock.Anything, mock.Anything)
	})
}
