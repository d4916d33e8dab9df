package account

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Local part: [0-9a-zA-Z+_-] runs joined by single dots.
// Domain: alphanumeric labels joined by dots, last label lowercase letters only.
var (
	emailRe    = regexp.MustCompile(`^([0-9a-zA-Z+_-]+(\.[0-9a-zA-Z+_-]+)*)@([0-9a-zA-Z]+(\.[0-9a-zA-Z]+)*(\.[a-z]+))$`)
	passwordRe = regexp.MustCompile(`^[A-Za-z0-9]{6,}$`)
)

var (
	emailRules    = []validation.Rule{validation.Required, validation.Match(emailRe)}
	passwordRules = []validation.Rule{validation.Required, validation.Match(passwordRe)}
)

// IsEmailValid reports whether s is an acceptable account email. The whole string must match.
func IsEmailValid(s string) bool {
	return validation.Validate(s, emailRules...) == nil
}

// IsPasswordValid reports whether s has 6 or more characters, all ASCII letters or digits.
func IsPasswordValid(s string) bool {
	return validation.Validate(s, passwordRules...) == nil
}
