package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/userbook/internal/common"
)

const minPasswordLength = 8

// phonePattern is the national mobile format: "05" followed by nine digits.
var phonePattern = regexp.MustCompile(`^05[0-9]{9}$`)

// Operator-facing validation reasons.
const (
	ReasonEmptyName       = "name must not be empty"
	ReasonInvalidName     = "name contains invalid characters"
	ReasonInvalidNumber   = "invalid phone number (expected 05xxxxxxxxx)"
	ReasonInvalidPassword = "password must be at least 8 characters and contain upper case, lower case and digit"
)

// ValidatePhoneNumber reports whether s is exactly "05" followed by nine
// ASCII digits. Surrounding whitespace is not tolerated.
func ValidatePhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}

// ValidatePassword reports whether s has at least eight characters and
// contains an ASCII upper case letter, an ASCII lower case letter and a
// digit. Length is counted in characters, not bytes.
func ValidatePassword(s string) bool {
	if utf8.RuneCountInString(s) < minPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// normalizeName trims surrounding whitespace and rejects empty names and
// names that are not valid UTF-8, which storage could not keep unchanged.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("name", ReasonEmptyName)
	}
	if !utf8.ValidString(name) {
		return "", common.NewValidationError("name", ReasonInvalidName)
	}
	return name, nil
}

func checkNumber(number string) error {
	if !ValidatePhoneNumber(number) {
		return common.NewValidationError("number", ReasonInvalidNumber)
	}
	return nil
}

func checkPassword(password string) error {
	if !ValidatePassword(password) {
		return common.NewValidationError("password", ReasonInvalidPassword)
	}
	return nil
}
