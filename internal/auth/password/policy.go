// Package password holds the client-side password strength policy applied
// before a signup request is sent. Login never checks strength locally; the
// identity service is authoritative there.
package password

import (
	"errors"
	"regexp"
)

// Symbols is the fixed set of special characters the policy accepts.
const Symbols = "@$!%*?&"

// MinLength is the shortest password the policy accepts.
const MinLength = 8

// PolicyMessage is shown to the user when Validate fails.
const PolicyMessage = "Password must be at least 8 characters long, include at least one uppercase letter, one lowercase letter, one number, and one special character."

var ErrWeakPassword = errors.New("password does not meet policy")

var (
	lowerRegex    = regexp.MustCompile(`[a-z]`)
	upperRegex    = regexp.MustCompile(`[A-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
	symbolRegex   = regexp.MustCompile(`[@$!%*?&]`)
	alphabetRegex = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&]+$`)
)

// Validate reports whether pw satisfies the policy: at least MinLength
// characters drawn only from letters, digits and Symbols, with at least one
// of each class.
func Validate(pw string) bool {
	if len(pw) < MinLength {
		return false
	}
	if !alphabetRegex.MatchString(pw) {
		return false
	}

	return lowerRegex.MatchString(pw) &&
		upperRegex.MatchString(pw) &&
		digitRegex.MatchString(pw) &&
		symbolRegex.MatchString(pw)
}

// Check is Validate in error form.
func Check(pw string) error {
	if !Validate(pw) {
		return ErrWeakPassword
	}
	return nil
}
