package service

import (
	"fmt"
	"strings"
	"unicode"
)

// passwordSpecials are the only non-alphanumeric characters a password may
// contain, and it must contain at least one of them.
const passwordSpecials = "@$!%*?&."

const minPasswordLength = 8

// PasswordAcceptable reports whether pw satisfies the password rule: at
// least eight characters drawn from ASCII letters, digits and
// passwordSpecials, with at least one lower case letter, one upper case
// letter, one digit and one special.
func PasswordAcceptable(pw string) bool {
	if len(pw) < minPasswordLength {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// ValidatePassword is PasswordAcceptable in error form.
func ValidatePassword(pw string) error {
	if !PasswordAcceptable(pw) {
		return fmt.Errorf("%w: password must be at least %d characters with upper and lower case letters, a digit and one of %s",
			ErrInvalidInput, minPasswordLength, passwordSpecials)
	}
	return nil
}
