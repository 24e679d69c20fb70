package domain

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted on a profile.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// Marital status values accepted on a profile.
const (
	MaritalSingle   = "single"
	MaritalMarried  = "married"
	MaritalDivorced = "divorced"
	MaritalWidowed  = "widowed"
)

// ProfileCompleteThreshold is the completeness percentage at which a profile is
// flagged complete.
const ProfileCompleteThreshold = 80.0

// Profile holds the identity card data of a user. It is created empty together with
// the user.
type Profile struct {
	UserID uuid.UUID

	DateOfBirth   *time.Time
	PlaceOfBirth  string
	Gender        string
	Nationality   string
	BirthLastName string
	UsedLastName  string

	// Sensitive identity documents.
	ConsularNumber         string
	PassportNumber         string
	PassportExpiry         *time.Time
	IDCardNumber           string
	IDCardExpiry           *time.Time
	BirthCertificateNumber string
	DrivingLicenseNumber   string
	DrivingLicenseExpiry   *time.Time

	Profession string
	Employer   string
	WorkPhone  string

	MaritalStatus string
	SpouseName    string
	ChildrenCount int

	AddressLine1 string
	AddressLine2 string
	City         string
	PostalCode   string
	Country      string

	EmergencyContactName  string
	EmergencyContactPhone string

	IsProfileComplete bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Completeness returns the percentage of required profile fields that are filled.
func (p *Profile) Completeness() float64 {
	required := []bool{
		p.DateOfBirth != nil,
		p.PlaceOfBirth != "",
		p.Gender != "",
		p.Nationality != "",
		p.AddressLine1 != "",
		p.City != "",
		p.Country != "",
		p.EmergencyContactName != "",
		p.EmergencyContactPhone != "",
	}

	filled := 0
	for _, ok := range required {
		if ok {
			filled++
		}
	}
	return float64(filled) / float64(len(required)) * 100
}

// RefreshCompleteness recomputes IsProfileComplete.
func (p *Profile) RefreshCompleteness() {
	p.IsProfileComplete = p.Completeness() >= ProfileCompleteThreshold
}
