// Package validate holds client-side input validation that must run before
// any network call is made.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 10

// passwordSpecials is the set of characters accepted as "special".
const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

var (
	// ErrPasswordTooShort is returned when the password is shorter than
	// MinPasswordLength. Use errors.Is to match; the returned message cites
	// the limit.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)

	// ErrPasswordComposition is returned when one or more required character
	// classes are missing.
	ErrPasswordComposition = errors.New("password must include uppercase, lowercase, numbers, and special characters")
)

// Password checks a plaintext password against the composition rules:
// at least MinPasswordLength characters, with at least one uppercase letter,
// one lowercase letter, one digit and one special character.
func Password(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return ErrPasswordComposition
	}
	return nil
}
