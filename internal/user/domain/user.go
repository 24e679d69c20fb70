// Package domain defines the user and profile entities whose identifiers are stored
// encrypted.
//
// Sensitive fields on these structs always hold the decrypted domain value. An empty
// string means the attribute is absent.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account of the consular service.
type User struct {
	ID         uuid.UUID
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Role       Role
	IsActive   bool
	IsVerified bool

	// Sensitive attributes.
	PhoneNumber        string
	ConsularCardNumber string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyActivationRule deactivates non-staff accounts that have no consular card
// number. It must run on the decrypted value, after every change to the user.
func (u *User) ApplyActivationRule() {
	if u.Role.IsStaff() {
		return
	}
	if u.ConsularCardNumber == "" {
		u.IsActive = false
		u.IsVerified = false
	}
}

// FullName returns "first last" without surrounding spaces.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// RegisterUserInput contains the data needed to create an account.
type RegisterUserInput struct {
	Email              string
	Password           string
	FirstName          string
	LastName           string
	Role               Role
	PhoneNumber        string
	ConsularCardNumber string
}

// UpdateContactInput replaces the sensitive contact attributes of a user. A nil field
// is left unchanged, an empty one clears the attribute.
type UpdateContactInput struct {
	PhoneNumber        *string
	ConsularCardNumber *string
}
