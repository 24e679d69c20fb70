// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"errors"

	validation "github.com/jellydator/validation"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// RegisterUserRequest contains the parameters for creating an account.
type RegisterUserRequest struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Role               string `json:"role"`
	PhoneNumber        string `json:"phone_number"`
	ConsularCardNumber string `json:"consular_card_number"`
}

// Validate checks the request shape. Format rules for each attribute are enforced by
// the use case after normalization.
func (r *RegisterUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateContactRequest replaces the contact attributes of a user. Omitted fields are
// left unchanged, an empty string clears the attribute.
type UpdateContactRequest struct {
	PhoneNumber        *string `json:"phone_number"`
	ConsularCardNumber *string `json:"consular_card_number"`
}

// Validate checks that at least one attribute is present.
func (r *UpdateContactRequest) Validate() error {
	if r.PhoneNumber == nil && r.ConsularCardNumber == nil {
		return errors.New("at least one of phone_number or consular_card_number is required")
	}
	return nil
}

// UpdateProfileRequest replaces the profile of a user. Dates use DateLayout.
type UpdateProfileRequest struct {
	DateOfBirth   string `json:"date_of_birth"`
	PlaceOfBirth  string `json:"place_of_birth"`
	Gender        string `json:"gender"`
	Nationality   string `json:"nationality"`
	BirthLastName string `json:"birth_last_name"`
	UsedLastName  string `json:"used_last_name"`

	ConsularNumber         string `json:"consular_number"`
	PassportNumber         string `json:"passport_number"`
	PassportExpiry         string `json:"passport_expiry"`
	IDCardNumber           string `json:"id_card_number"`
	IDCardExpiry           string `json:"id_card_expiry"`
	BirthCertificateNumber string `json:"birth_certificate_number"`
	DrivingLicenseNumber   string `json:"driving_license_number"`
	DrivingLicenseExpiry   string `json:"driving_license_expiry"`

	Profession string `json:"profession"`
	Employer   string `json:"employer"`
	WorkPhone  string `json:"work_phone"`

	MaritalStatus string `json:"marital_status"`
	SpouseName    string `json:"spouse_name"`
	ChildrenCount int    `json:"children_count"`

	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`

	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
}

// Validate checks date formats and free-text lengths.
func (r *UpdateProfileRequest) Validate() error {
	date := validation.Date(DateLayout).Error("must be a date in YYYY-MM-DD format")
	return validation.ValidateStruct(r,
		validation.Field(&r.DateOfBirth, date),
		validation.Field(&r.PassportExpiry, date),
		validation.Field(&r.IDCardExpiry, date),
		validation.Field(&r.DrivingLicenseExpiry, date),
		validation.Field(&r.PlaceOfBirth, validation.Length(0, 100)),
		validation.Field(&r.Nationality, validation.Length(0, 50)),
		validation.Field(&r.City, validation.Length(0, 100)),
		validation.Field(&r.Country, validation.Length(0, 100)),
		validation.Field(&r.PostalCode, validation.Length(0, 20)),
	)
}

// LookupRequest finds a user by consular card number. The number travels in the body
// so it never appears in URLs or access logs.
type LookupRequest struct {
	ConsularCardNumber string `json:"consular_card_number"`
}

// Validate checks if the lookup request is valid.
func (r *LookupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ConsularCardNumber, validation.Required),
	)
}

// AvailabilityRequest checks whether a unique attribute value is free.
type AvailabilityRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Validate checks if the availability request is valid.
func (r *AvailabilityRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Kind, validation.Required),
		validation.Field(&r.Value, validation.Required),
	)
}
