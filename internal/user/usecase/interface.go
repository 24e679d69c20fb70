// Package usecase implements account and profile operations on top of the sealed
// user repository.
package usecase

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	outboxDomain "github.com/allisson/piiguard/internal/outbox/domain"
	"github.com/allisson/piiguard/internal/pii"
	"github.com/allisson/piiguard/internal/user/domain"
)

// UserRepository defines persistence operations for users and profiles. Sensitive
// attributes cross this boundary in their domain form; the repository seals them.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByConsularCardNumberHash finds a user through the hash column only.
	GetByConsularCardNumberHash(ctx context.Context, digest string) (*domain.User, error)

	// ExistsByHash reports whether any row holds digest in kind's hash column.
	ExistsByHash(ctx context.Context, kind pii.Kind, digest string) (bool, error)

	CreateProfile(ctx context.Context, profile *domain.Profile) error
	UpdateProfile(ctx context.Context, profile *domain.Profile) error

	// GetProfile returns ErrProfileNotFound if the user has no profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

// LegacyRepository exposes the raw storage form of rows that still hold sensitive
// values without a digest.
type LegacyRepository interface {
	ListUsersMissingHashes(ctx context.Context, afterID uuid.UUID, limit int) ([]*domain.LegacyRecord, error)
	ListProfilesMissingHashes(ctx context.Context, afterID uuid.UUID, limit int) ([]*domain.LegacyRecord, error)
	Reseal(ctx context.Context, table string, recordID uuid.UUID, attrs []domain.ResealedAttribute) error
}

// OutboxEventRepository stores account events in the caller's transaction.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// Protector converts sensitive attributes between domain and storage forms.
// *pii.Protector implements it.
type Protector interface {
	Seal(ctx context.Context, kind pii.Kind, value string) (pii.Sealed, error)
	Open(ctx context.Context, kind pii.Kind, stored sql.NullString) (pii.Opened, error)
	Lookup(kind pii.Kind, value string) (string, error)
}

// UseCase defines the account and profile operations.
type UseCase interface {
	// RegisterUser validates the input, rejects identifiers already registered, and
	// creates the user with an empty profile. Non-staff users without a consular card
	// number are created inactive and unverified.
	RegisterUser(ctx context.Context, input *domain.RegisterUserInput) (*domain.User, error)

	// GetUser returns the user with decrypted attributes.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateContact replaces the phone number and consular card number and reapplies
	// the activation rule.
	UpdateContact(ctx context.Context, userID uuid.UUID, input *domain.UpdateContactInput) (*domain.User, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)

	// UpdateProfile replaces every editable profile field and recomputes completeness.
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *domain.Profile) (*domain.Profile, error)

	// FindByConsularCardNumber finds a user by exact consular card number using the
	// digest column. Stored values are never scanned or decrypted for the search.
	FindByConsularCardNumber(ctx context.Context, number string) (*domain.User, error)

	// CheckAvailability reports whether value is free for the unique attribute named
	// kindName. Non-unique attributes return ErrLookupNotSupported.
	CheckAvailability(ctx context.Context, kindName, value string) (bool, error)
}

// LegacyUseCase rewrites rows that predate encryption or the hash columns.
type LegacyUseCase interface {
	EncryptLegacyData(ctx context.Context, opts LegacyOptions) (*domain.LegacyReport, error)
}
