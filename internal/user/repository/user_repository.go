package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/piiguard/internal/database"
	apperrors "github.com/allisson/piiguard/internal/errors"
	"github.com/allisson/piiguard/internal/pii"
	"github.com/allisson/piiguard/internal/user/domain"
)

// dialect captures the differences between the supported SQL databases.
type dialect struct {
	placeholder func(int) string
	// id converts a UUID to the driver value stored in id columns.
	id func(uuid.UUID) (any, error)
}

// UserRepository persists users and profiles. Use NewPostgreSQLUserRepository or
// NewMySQLUserRepository.
type UserRepository struct {
	db        *sql.DB
	protector *pii.Protector
	dialect   dialect
	now       func() time.Time
}

const userSelectColumns = `id, email, password, first_name, last_name, role, is_active, is_verified,
	phone_number, consular_card_number, created_at, updated_at`

// Create inserts a new user. Sensitive attributes are sealed before the insert.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	sealed, err := sealAttributes(ctx, r.protector, userAttributes(user))
	if err != nil {
		return err
	}

	id, err := r.dialect.id(user.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	args := []any{id, user.Email, user.Password, user.FirstName, user.LastName, string(user.Role), user.IsActive, user.IsVerified}
	args = append(args, sealed...)
	args = append(args, user.CreatedAt, user.UpdatedAt)

	query := fmt.Sprintf(`INSERT INTO users (id, email, password, first_name, last_name, role, is_active, is_verified,
			  %s, created_at, updated_at)
			  VALUES (%s)`,
		sensitiveColumns(pii.UserKinds()),
		placeholders(1, len(args), r.dialect.placeholder),
	)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err, "failed to create user")
	}
	return nil
}

// Update rewrites every column of an existing user, resealing sensitive attributes.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	sealed, err := sealAttributes(ctx, r.protector, userAttributes(user))
	if err != nil {
		return err
	}

	id, err := r.dialect.id(user.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	user.UpdatedAt = r.now()

	columns := append(
		[]string{"email", "password", "first_name", "last_name", "role", "is_active", "is_verified"},
		splitColumns(sensitiveColumns(pii.UserKinds()))...,
	)
	columns = append(columns, "updated_at")
	set, next := setClause(columns, 1, r.dialect.placeholder)

	args := []any{user.Email, user.Password, user.FirstName, user.LastName, string(user.Role), user.IsActive, user.IsVerified}
	args = append(args, sealed...)
	args = append(args, user.UpdatedAt, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = %s`, set, r.dialect.placeholder(next))

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, "failed to update user")
	}
	return requireAffected(result, domain.ErrUserNotFound)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	id, err := r.dialect.id(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = %s`, userSelectColumns, r.dialect.placeholder(1))
	return r.getUser(ctx, query, "failed to get user by id", id)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = %s`, userSelectColumns, r.dialect.placeholder(1))
	return r.getUser(ctx, query, "failed to get user by email", email)
}

// GetByConsularCardNumberHash retrieves the user whose consular card number has the
// given digest.
func (r *UserRepository) GetByConsularCardNumberHash(ctx context.Context, digest string) (*domain.User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE %s = %s`,
		userSelectColumns,
		pii.ConsularCardNumber.HashColumn,
		r.dialect.placeholder(1),
	)
	return r.getUser(ctx, query, "failed to get user by consular card number", digest)
}

// ExistsByHash reports whether any row holds digest in kind's hash column.
func (r *UserRepository) ExistsByHash(ctx context.Context, kind pii.Kind, digest string) (bool, error) {
	kind, err := canonicalKind(kind)
	if err != nil {
		return false, err
	}
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = %s)`,
		kind.Table,
		kind.HashColumn,
		r.dialect.placeholder(1),
	)

	var exists bool
	if err := querier.QueryRowContext(ctx, query, digest).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check "+kind.Name)
	}
	return exists, nil
}

func (r *UserRepository) getUser(ctx context.Context, query, message string, args ...any) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	var user domain.User
	var role string
	stored, storedDests := nullStringDests(len(pii.UserKinds()))

	dests := []any{
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName, &role,
		&user.IsActive, &user.IsVerified,
	}
	dests = append(dests, storedDests...)
	dests = append(dests, &user.CreatedAt, &user.UpdatedAt)

	if err := querier.QueryRowContext(ctx, query, args...).Scan(dests...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, message)
	}
	user.Role = domain.Role(role)

	if err := openAttributes(ctx, r.protector, userAttributes(&user), stored); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateProfile inserts the profile of a user.
func (r *UserRepository) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	sealed, err := sealAttributes(ctx, r.protector, profileAttributes(profile))
	if err != nil {
		return err
	}

	id, err := r.dialect.id(profile.UserID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	now := r.now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	args := []any{id}
	args = append(args, profileArgs(profile)...)
	args = append(args, sealed...)
	args = append(args, profile.CreatedAt, profile.UpdatedAt)

	query := fmt.Sprintf(`INSERT INTO profiles (user_id, %s, %s, created_at, updated_at) VALUES (%s)`,
		profileColumns,
		sensitiveColumns(pii.ProfileKinds()),
		placeholders(1, len(args), r.dialect.placeholder),
	)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err, "failed to create profile")
	}
	return nil
}

// UpdateProfile rewrites every column of a profile, resealing sensitive attributes.
func (r *UserRepository) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	sealed, err := sealAttributes(ctx, r.protector, profileAttributes(profile))
	if err != nil {
		return err
	}

	id, err := r.dialect.id(profile.UserID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	profile.UpdatedAt = r.now()

	columns := append(splitColumns(profileColumns), splitColumns(sensitiveColumns(pii.ProfileKinds()))...)
	columns = append(columns, "updated_at")
	set, next := setClause(columns, 1, r.dialect.placeholder)

	args := profileArgs(profile)
	args = append(args, sealed...)
	args = append(args, profile.UpdatedAt, id)

	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE user_id = %s`, set, r.dialect.placeholder(next))

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, "failed to update profile")
	}
	return requireAffected(result, domain.ErrProfileNotFound)
}

// GetProfile retrieves the profile of a user.
func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	querier := database.GetTx(ctx, r.db)

	id, err := r.dialect.id(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := fmt.Sprintf(`SELECT user_id, %s, %s, created_at, updated_at FROM profiles WHERE user_id = %s`,
		profileColumns,
		storedColumns(pii.ProfileKinds()),
		r.dialect.placeholder(1),
	)

	var profile domain.Profile
	stored, storedDests := nullStringDests(len(pii.ProfileKinds()))

	dests := []any{&profile.UserID}
	dests = append(dests, profileDests(&profile)...)
	dests = append(dests, storedDests...)
	dests = append(dests, &profile.CreatedAt, &profile.UpdatedAt)

	if err := querier.QueryRowContext(ctx, query, id).Scan(dests...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get profile")
	}

	if err := openAttributes(ctx, r.protector, profileAttributes(&profile), stored); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListUsersMissingHashes returns up to limit users, ordered by id and strictly after
// afterID, that hold a sensitive value without a digest.
func (r *UserRepository) ListUsersMissingHashes(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*domain.LegacyRecord, error) {
	return r.listMissingHashes(ctx, pii.TableUsers, "id", afterID, limit)
}

// ListProfilesMissingHashes is ListUsersMissingHashes for profiles, keyed by user id.
func (r *UserRepository) ListProfilesMissingHashes(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*domain.LegacyRecord, error) {
	return r.listMissingHashes(ctx, pii.TableProfiles, "user_id", afterID, limit)
}

func (r *UserRepository) listMissingHashes(
	ctx context.Context,
	table, idColumn string,
	afterID uuid.UUID,
	limit int,
) ([]*domain.LegacyRecord, error) {
	querier := database.GetTx(ctx, r.db)
	kinds := kindsForTable(table)

	after, err := r.dialect.id(afterID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cursor id")
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s > %s AND %s ORDER BY %s LIMIT %s`,
		idColumn,
		sensitiveColumns(kinds),
		table,
		idColumn,
		r.dialect.placeholder(1),
		missingHashCondition(kinds),
		idColumn,
		r.dialect.placeholder(2),
	)

	rows, err := querier.QueryContext(ctx, query, after, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list "+table+" missing hashes")
	}
	defer rows.Close() //nolint:errcheck

	var records []*domain.LegacyRecord
	for rows.Next() {
		record := &domain.LegacyRecord{Table: table}
		pairs, pairDests := nullStringDests(len(kinds) * 2)

		if err := rows.Scan(append([]any{&record.ID}, pairDests...)...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan "+table+" row")
		}

		values := make([]sql.NullString, len(kinds))
		hashes := make([]sql.NullString, len(kinds))
		for i := range kinds {
			values[i] = pairs[2*i]
			hashes[i] = pairs[2*i+1]
		}
		record.Attributes = legacyAttributes(kinds, values, hashes)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate "+table+" rows")
	}
	return records, nil
}

// Reseal writes new storage forms for some attributes of one row.
func (r *UserRepository) Reseal(
	ctx context.Context,
	table string,
	recordID uuid.UUID,
	attrs []domain.ResealedAttribute,
) error {
	if len(attrs) == 0 {
		return nil
	}
	querier := database.GetTx(ctx, r.db)

	idColumn := "id"
	if table == pii.TableProfiles {
		idColumn = "user_id"
	}

	columns := make([]string, 0, len(attrs)*2+1)
	args := make([]any, 0, len(attrs)*2+2)
	for _, a := range attrs {
		kind, err := canonicalKind(a.Kind)
		if err != nil {
			return err
		}
		if kind.Table != table {
			return fmt.Errorf("%w: %s is not stored on %s", pii.ErrUnknownKind, kind.Name, table)
		}
		columns = append(columns, kind.Column, kind.HashColumn)
		args = append(args, a.Sealed.Ciphertext, a.Sealed.Hash)
	}
	columns = append(columns, "updated_at")
	args = append(args, r.now())

	id, err := r.dialect.id(recordID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	args = append(args, id)

	set, next := setClause(columns, 1, r.dialect.placeholder)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = %s`, table, set, idColumn, r.dialect.placeholder(next))

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err, "failed to reseal "+table+" row")
	}
	return nil
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
