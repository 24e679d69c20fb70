package pii

import (
	"fmt"

	"github.com/allisson/piiguard/internal/errors"
)

// ErrUnknownKind is returned by ParseKind for names that do not match a Kind.
var ErrUnknownKind = errors.Wrap(errors.ErrInvalidInput, "unknown sensitive attribute")

// Table names owning sensitive attributes.
const (
	TableUsers    = "users"
	TableProfiles = "profiles"
)

// Kind describes one sensitive attribute: where it lives and how it is normalized.
// The encrypt, digest and legacy logic is shared by every Kind.
type Kind struct {
	// Name is the public identifier used in APIs and logs.
	Name string
	// Table owning the attribute.
	Table string
	// Column holding the token (or legacy plaintext).
	Column string
	// HashColumn holding the hex digest, NULL when the value is absent.
	HashColumn string
	// Unique is true when the hash column carries a UNIQUE constraint.
	Unique bool

	normalize Normalizer
}

// Normalize returns the canonical form of v for this attribute.
func (k Kind) Normalize(v string) string {
	if k.normalize == nil {
		return TrimSpace(v)
	}
	return k.normalize(v)
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return k.Name
}

func newKind(name, table string, unique bool, normalize Normalizer) Kind {
	return Kind{
		Name:       name,
		Table:      table,
		Column:     name,
		HashColumn: name + "_hash",
		Unique:     unique,
		normalize:  normalize,
	}
}

var (
	PhoneNumber            = newKind("phone_number", TableUsers, false, Phone)
	ConsularCardNumber     = newKind("consular_card_number", TableUsers, true, UpperTrim)
	ConsularNumber         = newKind("consular_number", TableProfiles, true, UpperTrim)
	PassportNumber         = newKind("passport_number", TableProfiles, true, UpperCompact)
	IDCardNumber           = newKind("id_card_number", TableProfiles, false, UpperTrim)
	BirthCertificateNumber = newKind("birth_certificate_number", TableProfiles, false, TrimSpace)
	DrivingLicenseNumber   = newKind("driving_license_number", TableProfiles, false, UpperTrim)
	WorkPhone              = newKind("work_phone", TableProfiles, false, Phone)
	EmergencyContactPhone  = newKind("emergency_contact_phone", TableProfiles, false, Phone)
)

// UserKinds lists the sensitive attributes stored on the users table, in column order.
func UserKinds() []Kind {
	return []Kind{PhoneNumber, ConsularCardNumber}
}

// ProfileKinds lists the sensitive attributes stored on the profiles table, in column order.
func ProfileKinds() []Kind {
	return []Kind{
		ConsularNumber,
		PassportNumber,
		IDCardNumber,
		BirthCertificateNumber,
		DrivingLicenseNumber,
		WorkPhone,
		EmergencyContactPhone,
	}
}

// Kinds lists every sensitive attribute.
func Kinds() []Kind {
	return append(UserKinds(), ProfileKinds()...)
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if k.Name == name {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
