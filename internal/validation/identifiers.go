package validation

import (
	"regexp"

	validation "github.com/jellydator/validation"
)

var (
	phoneRegex              = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	consularCardNumberRegex = regexp.MustCompile(`^SN\d{7,9}$`)
)

// PhoneNumber validates an optional phone number in its normalized form: an optional
// leading "+" followed by 9 to 15 digits.
var PhoneNumber = validation.NewStringRuleWithError(
	phoneRegex.MatchString,
	validation.NewError("validation_phone_number", "must be a phone number with 9 to 15 digits"),
)

// ConsularCardNumber validates an optional, upper-cased consular card number such as
// SN1234567.
var ConsularCardNumber = validation.NewStringRuleWithError(
	consularCardNumberRegex.MatchString,
	validation.NewError("validation_consular_card_number", "must be SN followed by 7 to 9 digits"),
)
