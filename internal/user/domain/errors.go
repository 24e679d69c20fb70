package domain

import (
	"github.com/allisson/piiguard/internal/errors"
)

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrProfileNotFound indicates the user has no profile row.
	ErrProfileNotFound = errors.Wrap(errors.ErrNotFound, "profile not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrConsularCardNumberTaken indicates the consular card number belongs to another user.
	ErrConsularCardNumberTaken = errors.Wrap(errors.ErrConflict, "consular card number already registered")

	// ErrConsularNumberTaken indicates the consular number belongs to another profile.
	ErrConsularNumberTaken = errors.Wrap(errors.ErrConflict, "consular number already registered")

	// ErrPassportNumberTaken indicates the passport number belongs to another profile.
	ErrPassportNumberTaken = errors.Wrap(errors.ErrConflict, "passport number already registered")

	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "invalid role")

	// ErrLookupNotSupported indicates an availability check on a non-unique attribute.
	ErrLookupNotSupported = errors.Wrap(errors.ErrInvalidInput, "attribute does not support availability checks")
)
