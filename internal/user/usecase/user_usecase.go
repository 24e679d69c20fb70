package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/piiguard/internal/database"
	apperrors "github.com/allisson/piiguard/internal/errors"
	outboxDomain "github.com/allisson/piiguard/internal/outbox/domain"
	"github.com/allisson/piiguard/internal/pii"
	"github.com/allisson/piiguard/internal/user/domain"
	appValidation "github.com/allisson/piiguard/internal/validation"
)

// UserUseCase implements UseCase.
type UserUseCase struct {
	txManager      database.TxManager
	userRepo       UserRepository
	outboxRepo     OutboxEventRepository
	protector      Protector
	passwordHasher *pwdhash.PasswordHasher
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	outboxRepo OutboxEventRepository,
	protector Protector,
) (*UserUseCase, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &UserUseCase{
		txManager:      txManager,
		userRepo:       userRepo,
		outboxRepo:     outboxRepo,
		protector:      protector,
		passwordHasher: hasher,
	}, nil
}

func validateRegisterUserInput(input *domain.RegisterUserInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 254).Error("email must be between 5 and 254 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
			appValidation.NoWhitespace,
		),
		validation.Field(&input.FirstName, validation.Length(0, 150)),
		validation.Field(&input.LastName, validation.Length(0, 150)),
		validation.Field(&input.PhoneNumber, appValidation.PhoneNumber),
		validation.Field(&input.ConsularCardNumber, appValidation.ConsularCardNumber),
	)
	return appValidation.WrapValidationError(err)
}

func validateContact(phone, card *string) error {
	err := validation.Errors{
		"phone_number":         validation.Validate(phone, appValidation.PhoneNumber),
		"consular_card_number": validation.Validate(card, appValidation.ConsularCardNumber),
	}.Filter()
	return appValidation.WrapValidationError(err)
}

func validateProfile(p *domain.Profile) error {
	err := validation.ValidateStruct(p,
		validation.Field(&p.DateOfBirth, validation.Max(time.Now()).Error("must be in the past")),
		validation.Field(&p.Gender,
			validation.In(domain.GenderMale, domain.GenderFemale, domain.GenderOther).Error("must be M, F or O"),
		),
		validation.Field(&p.MaritalStatus,
			validation.In(domain.MaritalSingle, domain.MaritalMarried, domain.MaritalDivorced, domain.MaritalWidowed),
		),
		validation.Field(&p.ChildrenCount, validation.Min(0)),
		validation.Field(&p.WorkPhone, appValidation.PhoneNumber),
		validation.Field(&p.EmergencyContactPhone, appValidation.PhoneNumber),
		validation.Field(&p.PassportNumber, validation.Length(0, 20)),
	)
	return appValidation.WrapValidationError(err)
}

// normalizeProfile puts every sensitive field in the canonical form it is sealed in.
func normalizeProfile(p *domain.Profile) {
	p.ConsularNumber = pii.ConsularNumber.Normalize(p.ConsularNumber)
	p.PassportNumber = pii.PassportNumber.Normalize(p.PassportNumber)
	p.IDCardNumber = pii.IDCardNumber.Normalize(p.IDCardNumber)
	p.BirthCertificateNumber = pii.BirthCertificateNumber.Normalize(p.BirthCertificateNumber)
	p.DrivingLicenseNumber = pii.DrivingLicenseNumber.Normalize(p.DrivingLicenseNumber)
	p.WorkPhone = pii.WorkPhone.Normalize(p.WorkPhone)
	p.EmergencyContactPhone = pii.EmergencyContactPhone.Normalize(p.EmergencyContactPhone)
}

// RegisterUser creates a user, its empty profile and a user.registered event in one
// transaction.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input *domain.RegisterUserInput) (*domain.User, error) {
	role, err := domain.ParseRole(string(input.Role))
	if err != nil {
		return nil, err
	}

	normalized := *input
	normalized.Email = strings.ToLower(strings.TrimSpace(input.Email))
	normalized.FirstName = strings.TrimSpace(input.FirstName)
	normalized.LastName = strings.TrimSpace(input.LastName)
	normalized.PhoneNumber = pii.PhoneNumber.Normalize(input.PhoneNumber)
	normalized.ConsularCardNumber = pii.ConsularCardNumber.Normalize(input.ConsularCardNumber)

	if err := validateRegisterUserInput(&normalized); err != nil {
		return nil, err
	}

	if err := uc.ensureAvailable(ctx, pii.ConsularCardNumber, normalized.ConsularCardNumber); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := &domain.User{
		ID:                 uuid.Must(uuid.NewV7()),
		Email:              normalized.Email,
		Password:           hashedPassword,
		FirstName:          normalized.FirstName,
		LastName:           normalized.LastName,
		Role:               role,
		IsActive:           true,
		PhoneNumber:        normalized.PhoneNumber,
		ConsularCardNumber: normalized.ConsularCardNumber,
	}
	user.ApplyActivationRule()

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return err
		}
		if err := uc.userRepo.CreateProfile(ctx, &domain.Profile{UserID: user.ID}); err != nil {
			return err
		}
		return uc.emit(ctx, outboxDomain.EventTypeUserRegistered, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (uc *UserUseCase) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// UpdateContact applies the non-nil fields of input. Clearing the consular card
// number of a citizen deactivates the account and emits user.deactivated.
func (uc *UserUseCase) UpdateContact(
	ctx context.Context,
	userID uuid.UUID,
	input *domain.UpdateContactInput,
) (*domain.User, error) {
	var phone, card *string
	if input.PhoneNumber != nil {
		v := pii.PhoneNumber.Normalize(*input.PhoneNumber)
		phone = &v
	}
	if input.ConsularCardNumber != nil {
		v := pii.ConsularCardNumber.Normalize(*input.ConsularCardNumber)
		card = &v
	}

	if err := validateContact(phone, card); err != nil {
		return nil, err
	}

	var user *domain.User
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := uc.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if card != nil && *card != current.ConsularCardNumber {
			if err := uc.ensureAvailable(ctx, pii.ConsularCardNumber, *card); err != nil {
				return err
			}
			current.ConsularCardNumber = *card
		}
		if phone != nil {
			current.PhoneNumber = *phone
		}

		wasActive := current.IsActive
		current.ApplyActivationRule()

		if err := uc.userRepo.Update(ctx, current); err != nil {
			return err
		}
		if wasActive && !current.IsActive {
			if err := uc.emit(ctx, outboxDomain.EventTypeUserDeactivated, current); err != nil {
				return err
			}
		}

		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetProfile retrieves the profile of a user.
func (uc *UserUseCase) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return uc.userRepo.GetProfile(ctx, userID)
}

// UpdateProfile replaces the profile of a user with input.
func (uc *UserUseCase) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	input *domain.Profile,
) (*domain.Profile, error) {
	profile := *input
	normalizeProfile(&profile)

	if err := validateProfile(&profile); err != nil {
		return nil, err
	}

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := uc.userRepo.GetProfile(ctx, userID)
		if err != nil {
			return err
		}

		if profile.ConsularNumber != current.ConsularNumber {
			if err := uc.ensureAvailable(ctx, pii.ConsularNumber, profile.ConsularNumber); err != nil {
				return err
			}
		}
		if profile.PassportNumber != current.PassportNumber {
			if err := uc.ensureAvailable(ctx, pii.PassportNumber, profile.PassportNumber); err != nil {
				return err
			}
		}

		profile.UserID = userID
		profile.CreatedAt = current.CreatedAt
		profile.RefreshCompleteness()

		return uc.userRepo.UpdateProfile(ctx, &profile)
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// FindByConsularCardNumber looks the user up by the digest of number.
func (uc *UserUseCase) FindByConsularCardNumber(ctx context.Context, number string) (*domain.User, error) {
	digest, err := uc.protector.Lookup(pii.ConsularCardNumber, number)
	if err != nil {
		return nil, err
	}
	if digest == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "consular_card_number: cannot be blank")
	}
	return uc.userRepo.GetByConsularCardNumberHash(ctx, digest)
}

// CheckAvailability reports whether no row holds value for the unique attribute kindName.
func (uc *UserUseCase) CheckAvailability(ctx context.Context, kindName, value string) (bool, error) {
	kind, err := pii.ParseKind(kindName)
	if err != nil {
		return false, err
	}
	if !kind.Unique {
		return false, domain.ErrLookupNotSupported
	}

	digest, err := uc.protector.Lookup(kind, value)
	if err != nil {
		return false, err
	}
	if digest == "" {
		return false, apperrors.Wrap(apperrors.ErrInvalidInput, "value: cannot be blank")
	}

	exists, err := uc.userRepo.ExistsByHash(ctx, kind, digest)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// ensureAvailable fails with the kind's conflict error when value is already
// registered. Empty values are always available.
func (uc *UserUseCase) ensureAvailable(ctx context.Context, kind pii.Kind, value string) error {
	digest, err := uc.protector.Lookup(kind, value)
	if err != nil {
		return err
	}
	if digest == "" {
		return nil
	}

	exists, err := uc.userRepo.ExistsByHash(ctx, kind, digest)
	if err != nil {
		return err
	}
	if exists {
		return takenError(kind)
	}
	return nil
}

func takenError(kind pii.Kind) error {
	switch kind.Name {
	case pii.ConsularCardNumber.Name:
		return domain.ErrConsularCardNumberTaken
	case pii.ConsularNumber.Name:
		return domain.ErrConsularNumberTaken
	case pii.PassportNumber.Name:
		return domain.ErrPassportNumberTaken
	default:
		return apperrors.Wrap(apperrors.ErrConflict, kind.Name+" already registered")
	}
}

func (uc *UserUseCase) emit(ctx context.Context, eventType string, user *domain.User) error {
	event, err := outboxDomain.NewAccountEvent(eventType, outboxDomain.AccountPayload{
		UserID:   user.ID,
		Role:     string(user.Role),
		IsActive: user.IsActive,
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event payload")
	}
	if err := uc.outboxRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}
