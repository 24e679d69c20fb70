package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/piiguard/internal/metrics"
	"github.com/allisson/piiguard/internal/user/domain"
)

const metricsDomain = "users"

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	u.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	u.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// RegisterUser records metrics for user registration.
func (u *userUseCaseWithMetrics) RegisterUser(
	ctx context.Context,
	input *domain.RegisterUserInput,
) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.RegisterUser(ctx, input)
	u.record(ctx, "user_register", start, err)
	return user, err
}

// GetUser records metrics for user retrieval.
func (u *userUseCaseWithMetrics) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.GetUser(ctx, userID)
	u.record(ctx, "user_get", start, err)
	return user, err
}

// UpdateContact records metrics for contact updates.
func (u *userUseCaseWithMetrics) UpdateContact(
	ctx context.Context,
	userID uuid.UUID,
	input *domain.UpdateContactInput,
) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.UpdateContact(ctx, userID, input)
	u.record(ctx, "contact_update", start, err)
	return user, err
}

// GetProfile records metrics for profile retrieval.
func (u *userUseCaseWithMetrics) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	start := time.Now()
	profile, err := u.next.GetProfile(ctx, userID)
	u.record(ctx, "profile_get", start, err)
	return profile, err
}

// UpdateProfile records metrics for profile updates.
func (u *userUseCaseWithMetrics) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	input *domain.Profile,
) (*domain.Profile, error) {
	start := time.Now()
	profile, err := u.next.UpdateProfile(ctx, userID, input)
	u.record(ctx, "profile_update", start, err)
	return profile, err
}

// FindByConsularCardNumber records metrics for hash lookups.
func (u *userUseCaseWithMetrics) FindByConsularCardNumber(
	ctx context.Context,
	number string,
) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.FindByConsularCardNumber(ctx, number)
	u.record(ctx, "user_lookup", start, err)
	return user, err
}

// CheckAvailability records metrics for availability checks.
func (u *userUseCaseWithMetrics) CheckAvailability(ctx context.Context, kindName, value string) (bool, error) {
	start := time.Now()
	available, err := u.next.CheckAvailability(ctx, kindName, value)
	u.record(ctx, "availability_check", start, err)
	return available, err
}
