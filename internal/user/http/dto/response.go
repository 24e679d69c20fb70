package dto

import (
	"time"
)

// UserResponse represents a user in API responses. Sensitive attributes are returned
// decrypted; the password hash is never exposed.
type UserResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Role               string    `json:"role"`
	IsActive           bool      `json:"is_active"`
	IsVerified         bool      `json:"is_verified"`
	PhoneNumber        string    `json:"phone_number"`
	ConsularCardNumber string    `json:"consular_card_number"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProfileResponse represents a profile in API responses. Dates use DateLayout and
// are empty when unset.
type ProfileResponse struct {
	UserID string `json:"user_id"`

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

	Completeness      float64   `json:"completeness"`
	IsProfileComplete bool      `json:"is_profile_complete"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AvailabilityResponse reports whether a unique attribute value is free.
type AvailabilityResponse struct {
	Kind      string `json:"kind"`
	Available bool   `json:"available"`
}
