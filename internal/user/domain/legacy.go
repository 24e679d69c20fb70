package domain

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/piiguard/internal/pii"
)

// StoredAttribute is the raw storage form of one sensitive attribute.
type StoredAttribute struct {
	Kind  pii.Kind
	Value sql.NullString
	Hash  sql.NullString
}

// LegacyRecord is a row holding at least one sensitive value without a digest.
// Attributes lists only the attributes that need resealing.
type LegacyRecord struct {
	Table      string
	ID         uuid.UUID
	Attributes []StoredAttribute
}

// ResealedAttribute is the new storage form for one attribute of a LegacyRecord.
type ResealedAttribute struct {
	Kind   pii.Kind
	Sealed pii.Sealed
}

// LegacyReport summarizes a legacy encryption run.
type LegacyReport struct {
	DryRun             bool     `json:"dry_run"`
	UsersScanned       int      `json:"users_scanned"`
	ProfilesScanned    int      `json:"profiles_scanned"`
	UsersResealed      int      `json:"users_resealed"`
	ProfilesResealed   int      `json:"profiles_resealed"`
	FieldsResealed     int      `json:"fields_resealed"`
	PlaintextFields    int      `json:"plaintext_fields"`
	Conflicts          int      `json:"conflicts"`
	ConflictingRecords []string `json:"conflicting_records,omitempty"`
}
