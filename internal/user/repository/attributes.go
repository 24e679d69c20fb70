// Package repository persists users and profiles for PostgreSQL and MySQL.
//
// Sensitive columns never leave this package in storage form: every write goes
// through pii.Protector.Seal and every read through pii.Protector.Open. Unique
// violations on hash columns are mapped to domain errors by constraint name.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/allisson/piiguard/internal/database"
	apperrors "github.com/allisson/piiguard/internal/errors"
	"github.com/allisson/piiguard/internal/pii"
	"github.com/allisson/piiguard/internal/user/domain"
)

// attribute binds a sensitive Kind to the domain field holding its plaintext.
type attribute struct {
	kind  pii.Kind
	value *string
}

// userAttributes follows the column order of pii.UserKinds.
func userAttributes(u *domain.User) []attribute {
	return []attribute{
		{pii.PhoneNumber, &u.PhoneNumber},
		{pii.ConsularCardNumber, &u.ConsularCardNumber},
	}
}

// profileAttributes follows the column order of pii.ProfileKinds.
func profileAttributes(p *domain.Profile) []attribute {
	return []attribute{
		{pii.ConsularNumber, &p.ConsularNumber},
		{pii.PassportNumber, &p.PassportNumber},
		{pii.IDCardNumber, &p.IDCardNumber},
		{pii.BirthCertificateNumber, &p.BirthCertificateNumber},
		{pii.DrivingLicenseNumber, &p.DrivingLicenseNumber},
		{pii.WorkPhone, &p.WorkPhone},
		{pii.EmergencyContactPhone, &p.EmergencyContactPhone},
	}
}

// sealAttributes seals every attribute and returns the column values in order:
// value, hash, value, hash, ...
func sealAttributes(ctx context.Context, protector *pii.Protector, attrs []attribute) ([]any, error) {
	args := make([]any, 0, len(attrs)*2)
	for _, a := range attrs {
		sealed, err := protector.Seal(ctx, a.kind, *a.value)
		if err != nil {
			return nil, err
		}
		args = append(args, sealed.Ciphertext, sealed.Hash)
	}
	return args, nil
}

// openAttributes decrypts stored values into the bound domain fields.
func openAttributes(
	ctx context.Context,
	protector *pii.Protector,
	attrs []attribute,
	stored []sql.NullString,
) error {
	for i, a := range attrs {
		opened, err := protector.Open(ctx, a.kind, stored[i])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", a.kind.Name, err)
		}
		*a.value = opened.Value
	}
	return nil
}

// sensitiveColumns returns "c1, c1_hash, c2, c2_hash, ..." for kinds.
func sensitiveColumns(kinds []pii.Kind) string {
	cols := make([]string, 0, len(kinds)*2)
	for _, k := range kinds {
		cols = append(cols, k.Column, k.HashColumn)
	}
	return strings.Join(cols, ", ")
}

// storedColumns returns only the value columns, "c1, c2, ...", for kinds.
func storedColumns(kinds []pii.Kind) string {
	cols := make([]string, 0, len(kinds))
	for _, k := range kinds {
		cols = append(cols, k.Column)
	}
	return strings.Join(cols, ", ")
}

// missingHashCondition matches rows where at least one attribute has a value but no digest.
func missingHashCondition(kinds []pii.Kind) string {
	conds := make([]string, 0, len(kinds))
	for _, k := range kinds {
		conds = append(conds, fmt.Sprintf("(%s IS NOT NULL AND %s <> '' AND %s IS NULL)", k.Column, k.Column, k.HashColumn))
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}

// legacyAttributes keeps the attributes of a scanned row that need resealing.
func legacyAttributes(kinds []pii.Kind, values, hashes []sql.NullString) []domain.StoredAttribute {
	var attrs []domain.StoredAttribute
	for i, k := range kinds {
		if pii.NeedsReseal(values[i], hashes[i]) {
			attrs = append(attrs, domain.StoredAttribute{Kind: k, Value: values[i], Hash: hashes[i]})
		}
	}
	return attrs
}

// nullStringDests returns n scan destinations.
func nullStringDests(n int) ([]sql.NullString, []any) {
	values := make([]sql.NullString, n)
	dests := make([]any, n)
	for i := range values {
		dests[i] = &values[i]
	}
	return values, dests
}

// mapWriteError translates unique violations on known constraints into domain errors.
func mapWriteError(err error, message string) error {
	violation, ok := database.AsUniqueViolation(err)
	if !ok {
		return apperrors.Wrap(err, message)
	}

	switch violation.Constraint {
	case "users_email_key":
		return domain.ErrUserAlreadyExists
	case "users_consular_card_number_hash_key":
		return domain.ErrConsularCardNumberTaken
	case "profiles_consular_number_hash_key":
		return domain.ErrConsularNumberTaken
	case "profiles_passport_number_hash_key":
		return domain.ErrPassportNumberTaken
	default:
		return apperrors.Wrap(apperrors.ErrConflict, message+": "+violation.Constraint)
	}
}

// canonicalKind returns the registered Kind with kind's name, so that only known
// table and column names are ever interpolated into SQL.
func canonicalKind(kind pii.Kind) (pii.Kind, error) {
	return pii.ParseKind(kind.Name)
}

// kindsForTable returns the sensitive kinds stored on table.
func kindsForTable(table string) []pii.Kind {
	if table == pii.TableUsers {
		return pii.UserKinds()
	}
	return pii.ProfileKinds()
}
