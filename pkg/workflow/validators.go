package workflow

import (
	"regexp"

	"github.com/aretw0/recipient/pkg/domain"
)

// Validation messages.
const (
	MsgRequired            = "This field is required."
	MsgAccountNumberDigits = "Account number must contain digits only."
	MsgAccountNumberLength = "Account number must be 10 digits."
)

// AccountNumberLength is the exact number of digits of a valid account number.
const AccountNumberLength = 10

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Validator maps a candidate value to an error message, or "" when the value is valid.
type Validator func(value string) string

// Validators holds the rule of every editable field.
var Validators = map[domain.Field]Validator{
	domain.FieldFirstName:     ValidateRequired,
	domain.FieldMiddleName:    func(string) string { return "" },
	domain.FieldLastName:      ValidateRequired,
	domain.FieldAccountNumber: ValidateAccountNumber,
}

// Validate runs the validator of field against value.
// Fields without a rule are always valid.
func Validate(field domain.Field, value string) string {
	v, ok := Validators[field]
	if !ok {
		return ""
	}
	return v(value)
}

// ValidateRequired rejects the empty string.
func ValidateRequired(value string) string {
	if value == "" {
		return MsgRequired
	}
	return ""
}

// ValidateAccountNumber accepts exactly ten ASCII digits.
// The digit check is reported before the length check.
func ValidateAccountNumber(value string) string {
	if !digitsOnly.MatchString(value) {
		return MsgAccountNumberDigits
	}
	if len(value) != AccountNumberLength {
		return MsgAccountNumberLength
	}
	return ""
}

// IsSubmittable reports whether the state holds no validation error.
// It does not look at the phase.
func IsSubmittable(state *domain.State) bool {
	if state == nil {
		return false
	}
	for _, msg := range state.Errors {
		if msg != "" {
			return false
		}
	}
	return true
}
