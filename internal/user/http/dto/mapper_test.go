package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/piiguard/internal/user/domain"
)

func TestToProfile(t *testing.T) {
	req := UpdateProfileRequest{
		DateOfBirth:    "1990-05-17",
		PassportNumber: "a 1234 567",
		PassportExpiry: "",
		ChildrenCount:  2,
		City:           "Dakar",
	}

	profile := ToProfile(req)

	require.NotNil(t, profile.DateOfBirth)
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), *profile.DateOfBirth)
	assert.Nil(t, profile.PassportExpiry)
	assert.Equal(t, "a 1234 567", profile.PassportNumber)
	assert.Equal(t, 2, profile.ChildrenCount)
	assert.Equal(t, "Dakar", profile.City)
}

func TestMapUserToResponse(t *testing.T) {
	user := &domain.User{
		ID:                 uuid.Must(uuid.NewV7()),
		Email:              "awa@example.com",
		Password:           "$argon2id$hash",
		Role:               domain.RoleCitizen,
		IsActive:           true,
		PhoneNumber:        "+221771234567",
		ConsularCardNumber: "SN1234567",
	}

	resp := MapUserToResponse(user)

	assert.Equal(t, user.ID.String(), resp.ID)
	assert.Equal(t, "CITIZEN", resp.Role)
	assert.Equal(t, "SN1234567", resp.ConsularCardNumber)
	assert.Equal(t, "+221771234567", resp.PhoneNumber)
	assert.True(t, resp.IsActive)
}

func TestMapProfileToResponse(t *testing.T) {
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	profile := &domain.Profile{
		UserID:         uuid.Must(uuid.NewV7()),
		DateOfBirth:    &dob,
		PassportNumber: "A1234567",
		City:           "Dakar",
	}

	resp := MapProfileToResponse(profile)

	assert.Equal(t, "1990-05-17", resp.DateOfBirth)
	assert.Empty(t, resp.PassportExpiry)
	assert.Equal(t, "A1234567", resp.PassportNumber)
	assert.InDelta(t, profile.Completeness(), resp.Completeness, 0.001)
	assert.False(t, resp.IsProfileComplete)
}
