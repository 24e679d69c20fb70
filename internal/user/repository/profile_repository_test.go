package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/piiguard/internal/pii"
	"github.com/allisson/piiguard/internal/user/domain"
)

func profileRowColumns() []string {
	cols := []string{"user_id"}
	cols = append(cols, splitColumns(profileColumns)...)
	cols = append(cols, splitColumns(storedColumns(pii.ProfileKinds()))...)
	return append(cols, "created_at", "updated_at")
}

// profileRow builds a row with every optional column empty and the given stored
// sensitive values, in pii.ProfileKinds order.
func profileRow(userID driver.Value, stored ...driver.Value) []driver.Value {
	now := time.Now().UTC()
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	row := []driver.Value{
		userID,
		dob, "Dakar", "F", "SN", "Diop", "Diop",
		nil, nil, nil, "Engineer", "", "single",
		"", int64(0), "12 rue Carnot", "", "Dakar", "10000", "SN",
		"", false,
	}
	for i := range pii.ProfileKinds() {
		if i < len(stored) {
			row = append(row, stored[i])
		} else {
			row = append(row, nil)
		}
	}
	return append(row, now, now)
}

func TestUserRepository_CreateProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLUserRepository(db, newTestProtector(t))
	profile := &domain.Profile{UserID: uuid.Must(uuid.NewV7())}

	args := []driver.Value{profile.UserID.String()}
	for range splitColumns(profileColumns) {
		args = append(args, sqlmock.AnyArg())
	}
	for range pii.ProfileKinds() {
		args = append(args, nullArg{}, nullArg{})
	}
	args = append(args, sqlmock.AnyArg(), sqlmock.AnyArg())

	mock.ExpectExec("INSERT INTO profiles \\(user_id, date_of_birth").
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateProfile(context.Background(), profile))
	assert.False(t, profile.CreatedAt.IsZero())
}

func TestUserRepository_GetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_MixedTokensAndLegacy", func(t *testing.T) {
		db, mock := newMockDB(t)
		protector := newTestProtector(t)
		repo := NewPostgreSQLUserRepository(db, protector)
		userID := uuid.Must(uuid.NewV7())

		consular := mustSeal(t, protector, pii.ConsularNumber, "cn-0001")
		passport := mustSeal(t, protector, pii.PassportNumber, "a 1234 567")

		mock.ExpectQuery("SELECT user_id, .+ FROM profiles WHERE user_id = \\$1").
			WithArgs(userID.String()).
			WillReturnRows(sqlmock.NewRows(profileRowColumns()).AddRow(
				profileRow(userID.String(), consular.Ciphertext.String, passport.Ciphertext.String, "ID-LEGACY-9")...,
			))

		profile, err := repo.GetProfile(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, profile.UserID)
		assert.Equal(t, "CN-0001", profile.ConsularNumber)
		assert.Equal(t, "A1234567", profile.PassportNumber)
		assert.Equal(t, "ID-LEGACY-9", profile.IDCardNumber)
		assert.Empty(t, profile.WorkPhone)
		assert.Equal(t, "Dakar", profile.PlaceOfBirth)
		require.NotNil(t, profile.DateOfBirth)
		assert.Nil(t, profile.PassportExpiry)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db, newTestProtector(t))

		mock.ExpectQuery("SELECT user_id, .+ FROM profiles").WillReturnRows(sqlmock.NewRows(profileRowColumns()))

		_, err := repo.GetProfile(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		protector := newTestProtector(t)
		repo := NewPostgreSQLUserRepository(db, protector)
		profile := &domain.Profile{UserID: uuid.Must(uuid.NewV7()), PassportNumber: "a1234567"}

		mock.ExpectExec("UPDATE profiles SET date_of_birth = \\$1, .* WHERE user_id = \\$37").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateProfile(ctx, profile))
		assert.Equal(t, "a1234567", profile.PassportNumber)
	})

	t.Run("Error_DuplicatePassportMySQL", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLUserRepository(db, newTestProtector(t))
		profile := &domain.Profile{UserID: uuid.Must(uuid.NewV7()), PassportNumber: "A1234567"}

		mock.ExpectExec("UPDATE profiles SET .* WHERE user_id = \\?").
			WillReturnError(&mysql.MySQLError{
				Number:  1062,
				Message: "Duplicate entry 'abc' for key 'profiles.profiles_passport_number_hash_key'",
			})

		assert.ErrorIs(t, repo.UpdateProfile(ctx, profile), domain.ErrPassportNumberTaken)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db, newTestProtector(t))

		mock.ExpectExec("UPDATE profiles SET").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateProfile(ctx, &domain.Profile{UserID: uuid.Must(uuid.NewV7())})
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})
}

func TestUserRepository_ListUsersMissingHashes(t *testing.T) {
	db, mock := newMockDB(t)
	protector := newTestProtector(t)
	repo := NewPostgreSQLUserRepository(db, protector)

	first := uuid.Must(uuid.NewV7())
	second := uuid.Must(uuid.NewV7())
	card := mustSeal(t, protector, pii.ConsularCardNumber, "SN7654321")

	cols := []string{"id", "phone_number", "phone_number_hash", "consular_card_number", "consular_card_number_hash"}
	mock.ExpectQuery("SELECT id, phone_number, phone_number_hash, .+ FROM users WHERE id > \\$1 AND .+ ORDER BY id LIMIT \\$2").
		WithArgs(uuid.Nil.String(), 50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(first.String(), "+221770000000", nil, card.Ciphertext.String, card.Hash.String).
			AddRow(second.String(), "+221770000001", nil, card.Ciphertext.String, nil))

	records, err := repo.ListUsersMissingHashes(context.Background(), uuid.Nil, 50)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, first, records[0].ID)
	assert.Equal(t, pii.TableUsers, records[0].Table)
	require.Len(t, records[0].Attributes, 1)
	assert.Equal(t, pii.PhoneNumber.Name, records[0].Attributes[0].Kind.Name)
	assert.Equal(t, "+221770000000", records[0].Attributes[0].Value.String)

	require.Len(t, records[1].Attributes, 2)
	assert.Equal(t, pii.ConsularCardNumber.Name, records[1].Attributes[1].Kind.Name)
}

func TestUserRepository_ListProfilesMissingHashes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLUserRepository(db, newTestProtector(t))

	mock.ExpectQuery("SELECT user_id, consular_number, .+ FROM profiles WHERE user_id > \\$1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	records, err := repo.ListProfilesMissingHashes(context.Background(), uuid.Nil, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUserRepository_Reseal(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		protector := newTestProtector(t)
		repo := NewPostgreSQLUserRepository(db, protector)
		id := uuid.Must(uuid.NewV7())
		sealed := mustSeal(t, protector, pii.WorkPhone, "+221330000000")

		mock.ExpectExec("UPDATE profiles SET work_phone = \\$1, work_phone_hash = \\$2, updated_at = \\$3 WHERE user_id = \\$4").
			WithArgs(sealed.Ciphertext.String, sealed.Hash.String, sqlmock.AnyArg(), id.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Reseal(ctx, pii.TableProfiles, id, []domain.ResealedAttribute{
			{Kind: pii.WorkPhone, Sealed: sealed},
		})
		require.NoError(t, err)
	})

	t.Run("Success_NothingToWrite", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db, newTestProtector(t))

		assert.NoError(t, repo.Reseal(ctx, pii.TableUsers, uuid.Must(uuid.NewV7()), nil))
	})

	t.Run("Error_KindFromOtherTable", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db, newTestProtector(t))

		err := repo.Reseal(ctx, pii.TableUsers, uuid.Must(uuid.NewV7()), []domain.ResealedAttribute{
			{Kind: pii.PassportNumber, Sealed: pii.Sealed{Ciphertext: sql.NullString{String: "x", Valid: true}}},
		})
		assert.ErrorIs(t, err, pii.ErrUnknownKind)
	})

	t.Run("Error_Conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		protector := newTestProtector(t)
		repo := NewMySQLUserRepository(db, protector)
		sealed := mustSeal(t, protector, pii.ConsularCardNumber, "SN1234567")

		mock.ExpectExec("UPDATE users SET consular_card_number = \\?").
			WillReturnError(&mysql.MySQLError{
				Number:  1062,
				Message: "Duplicate entry 'x' for key 'users_consular_card_number_hash_key'",
			})

		err := repo.Reseal(ctx, pii.TableUsers, uuid.Must(uuid.NewV7()), []domain.ResealedAttribute{
			{Kind: pii.ConsularCardNumber, Sealed: sealed},
		})
		assert.ErrorIs(t, err, domain.ErrConsularCardNumberTaken)
	})
}
