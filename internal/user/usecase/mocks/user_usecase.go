// Package mocks provides mock implementations of the user use case for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/piiguard/internal/user/domain"
)

// MockUseCase is a mock implementation of the user UseCase.
type MockUseCase struct {
	mock.Mock
}

// RegisterUser mocks the RegisterUser method of UseCase.
func (m *MockUseCase) RegisterUser(ctx context.Context, input *domain.RegisterUserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// GetUser mocks the GetUser method of UseCase.
func (m *MockUseCase) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// UpdateContact mocks the UpdateContact method of UseCase.
func (m *MockUseCase) UpdateContact(
	ctx context.Context,
	userID uuid.UUID,
	input *domain.UpdateContactInput,
) (*domain.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// GetProfile mocks the GetProfile method of UseCase.
func (m *MockUseCase) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// UpdateProfile mocks the UpdateProfile method of UseCase.
func (m *MockUseCase) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	input *domain.Profile,
) (*domain.Profile, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// FindByConsularCardNumber mocks the FindByConsularCardNumber method of UseCase.
func (m *MockUseCase) FindByConsularCardNumber(ctx context.Context, number string) (*domain.User, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// CheckAvailability mocks the CheckAvailability method of UseCase.
func (m *MockUseCase) CheckAvailability(ctx context.Context, kindName, value string) (bool, error) {
	args := m.Called(ctx, kindName, value)
	return args.Bool(0), args.Error(1)
}
