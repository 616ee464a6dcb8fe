package credentials

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationResult reports the outcome of credential validation. Errors holds
// one human-readable message per failed rule.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

// Validator checks login credentials before any network call is made.
// Implementations must be pure and side-effect free.
type Validator interface {
	Validate(creds Credentials) ValidationResult
}

// BasicValidator enforces only the rules required for a login request to be
// well-formed: a non-empty identity that looks like an email address and a
// non-empty secret.
type BasicValidator struct{}

// NewBasicValidator creates a BasicValidator.
func NewBasicValidator() *BasicValidator {
	return &BasicValidator{}
}

// Validate implements Validator.
func (v *BasicValidator) Validate(creds Credentials) ValidationResult {
	var errs []string
	if creds.Identity == "" {
		errs = append(errs, "identity is required")
	} else if !strings.Contains(creds.Identity, "@") || !strings.Contains(creds.Identity, ".") {
		errs = append(errs, "identity must be a valid email address")
	}
	if creds.Secret == "" {
		errs = append(errs, "secret is required")
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// StrictValidator layers password-strength rules on top of the basic
// well-formedness checks. Selected via configuration, never by subclassing.
type StrictValidator struct {
	MinSecretLength int
}

// NewStrictValidator creates a StrictValidator with the default minimum
// secret length of 8.
func NewStrictValidator() *StrictValidator {
	return &StrictValidator{MinSecretLength: 8}
}

// Validate implements Validator.
func (v *StrictValidator) Validate(creds Credentials) ValidationResult {
	result := NewBasicValidator().Validate(creds)
	errs := result.Errors

	minLen := v.MinSecretLength
	if minLen <= 0 {
		minLen = 8
	}

	if creds.Secret != "" {
		if len(creds.Secret) < minLen {
			errs = append(errs, fmt.Sprintf("secret must be at least %d characters", minLen))
		}
		var hasUpper, hasLower, hasDigit bool
		for _, r := range creds.Secret {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		if !hasUpper || !hasLower || !hasDigit {
			errs = append(errs, "secret must contain upper case, lower case and digit characters")
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
