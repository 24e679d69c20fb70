// Package validation holds the jellydator rules shared by the account use cases.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/piiguard/internal/errors"
)

// WrapValidationError turns a rule failure into ErrInvalidInput, keeping the
// field-by-field message for the response.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength rejects account passwords shorter than MinLength runes or
// missing one of the required character classes.
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

type charClasses struct {
	upper, lower, number, special bool
}

func classify(s string) charClasses {
	var c charClasses
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			c.upper = true
		case unicode.IsLower(r):
			c.lower = true
		case unicode.IsNumber(r):
			c.number = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			c.special = true
		}
	}
	return c
}

// Validate implements validation.Rule.
func (p PasswordStrength) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if utf8.RuneCountInString(s) < p.MinLength {
		return validation.NewError("validation_password_min_length",
			fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}

	found := classify(s)
	checks := []struct {
		required, present bool
		code, class       string
	}{
		{p.RequireUpper, found.upper, "validation_password_uppercase", "uppercase letter"},
		{p.RequireLower, found.lower, "validation_password_lowercase", "lowercase letter"},
		{p.RequireNumber, found.number, "validation_password_number", "number"},
		{p.RequireSpecial, found.special, "validation_password_special", "special character"},
	}
	for _, check := range checks {
		if check.required && !check.present {
			return validation.NewError(check.code, "password must contain at least one "+check.class)
		}
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email accepts local@domain.tld addresses.
var Email = validation.NewStringRuleWithError(emailPattern.MatchString,
	validation.NewError("validation_email_format", "must be a valid email address"))

// NoWhitespace rejects values with leading or trailing whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool { return s == strings.TrimSpace(s) },
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank rejects values that are empty once trimmed.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool { return strings.TrimSpace(s) != "" },
	validation.NewError("validation_not_blank", "must not be blank"),
)
