package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/inference-auth/internal/common/constants"
)

var emailValidator = validator.New()

// NormalizeEmail trims and lower-cases an address. Uniqueness and lookups
// apply to the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrValidation.WithCause(errors.New("email is required"))
	}
	if len(email) > constants.EmailMaxLength {
		return ErrValidation.WithCause(fmt.Errorf("email must be at most %d characters", constants.EmailMaxLength))
	}
	if err := emailValidator.Var(email, "email"); err != nil {
		return ErrValidation.WithCause(errors.New("email is not a valid address"))
	}
	return nil
}

// validateSecret applies the password policy. Length is counted in
// characters for the minimum and in bytes for the bcrypt maximum.
func validateSecret(secret string) error {
	if utf8.RuneCountInString(secret) < constants.PasswordMinLength {
		return ErrWeakSecret
	}
	if len(secret) > constants.PasswordMaxLength {
		return ErrSecretTooLong
	}
	return nil
}

func normalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > constants.DisplayNameMaxLength {
		return "", ErrValidation.WithCause(fmt.Errorf("name must be at most %d characters", constants.DisplayNameMaxLength))
	}
	return name, nil
}
