package dto

import (
	"time"

	"github.com/allisson/piiguard/internal/user/domain"
)

// ToRegisterUserInput converts a RegisterUserRequest to the use case input.
func ToRegisterUserInput(req RegisterUserRequest) *domain.RegisterUserInput {
	return &domain.RegisterUserInput{
		Email:              req.Email,
		Password:           req.Password,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Role:               domain.Role(req.Role),
		PhoneNumber:        req.PhoneNumber,
		ConsularCardNumber: req.ConsularCardNumber,
	}
}

// ToUpdateContactInput converts an UpdateContactRequest to the use case input.
func ToUpdateContactInput(req UpdateContactRequest) *domain.UpdateContactInput {
	return &domain.UpdateContactInput{
		PhoneNumber:        req.PhoneNumber,
		ConsularCardNumber: req.ConsularCardNumber,
	}
}

// ToProfile converts a validated UpdateProfileRequest to a domain profile.
func ToProfile(req UpdateProfileRequest) *domain.Profile {
	return &domain.Profile{
		DateOfBirth:            parseDate(req.DateOfBirth),
		PlaceOfBirth:           req.PlaceOfBirth,
		Gender:                 req.Gender,
		Nationality:            req.Nationality,
		BirthLastName:          req.BirthLastName,
		UsedLastName:           req.UsedLastName,
		ConsularNumber:         req.ConsularNumber,
		PassportNumber:         req.PassportNumber,
		PassportExpiry:         parseDate(req.PassportExpiry),
		IDCardNumber:           req.IDCardNumber,
		IDCardExpiry:           parseDate(req.IDCardExpiry),
		BirthCertificateNumber: req.BirthCertificateNumber,
		DrivingLicenseNumber:   req.DrivingLicenseNumber,
		DrivingLicenseExpiry:   parseDate(req.DrivingLicenseExpiry),
		Profession:             req.Profession,
		Employer:               req.Employer,
		WorkPhone:              req.WorkPhone,
		MaritalStatus:          req.MaritalStatus,
		SpouseName:             req.SpouseName,
		ChildrenCount:          req.ChildrenCount,
		AddressLine1:           req.AddressLine1,
		AddressLine2:           req.AddressLine2,
		City:                   req.City,
		PostalCode:             req.PostalCode,
		Country:                req.Country,
		EmergencyContactName:   req.EmergencyContactName,
		EmergencyContactPhone:  req.EmergencyContactPhone,
	}
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                 user.ID.String(),
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Role:               string(user.Role),
		IsActive:           user.IsActive,
		IsVerified:         user.IsVerified,
		PhoneNumber:        user.PhoneNumber,
		ConsularCardNumber: user.ConsularCardNumber,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}

// MapProfileToResponse converts a domain profile to an API response.
func MapProfileToResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:                 p.UserID.String(),
		DateOfBirth:            formatDate(p.DateOfBirth),
		PlaceOfBirth:           p.PlaceOfBirth,
		Gender:                 p.Gender,
		Nationality:            p.Nationality,
		BirthLastName:          p.BirthLastName,
		UsedLastName:           p.UsedLastName,
		ConsularNumber:         p.ConsularNumber,
		PassportNumber:         p.PassportNumber,
		PassportExpiry:         formatDate(p.PassportExpiry),
		IDCardNumber:           p.IDCardNumber,
		IDCardExpiry:           formatDate(p.IDCardExpiry),
		BirthCertificateNumber: p.BirthCertificateNumber,
		DrivingLicenseNumber:   p.DrivingLicenseNumber,
		DrivingLicenseExpiry:   formatDate(p.DrivingLicenseExpiry),
		Profession:             p.Profession,
		Employer:               p.Employer,
		WorkPhone:              p.WorkPhone,
		MaritalStatus:          p.MaritalStatus,
		SpouseName:             p.SpouseName,
		ChildrenCount:          p.ChildrenCount,
		AddressLine1:           p.AddressLine1,
		AddressLine2:           p.AddressLine2,
		City:                   p.City,
		PostalCode:             p.PostalCode,
		Country:                p.Country,
		EmergencyContactName:   p.EmergencyContactName,
		EmergencyContactPhone:  p.EmergencyContactPhone,
		Completeness:           p.Completeness(),
		IsProfileComplete:      p.IsProfileComplete,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
