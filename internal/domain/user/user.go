// Package user provides domain logic for the User entity: anonymous-user
// creation, registered-user identity, and the preconditions Identity Merge
// checks before re-attributing history. This package contains pure business
// logic with no database dependencies, making it testable in isolation.
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/sxroads/hypertrophy/internal/validation"
)

// Gender is an optional, self-reported attribute collected at registration.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Validation errors.
var (
	ErrUserIDRequired = errors.New("user_id is required")
	ErrInvalidGender  = errors.New("gender must be 'male' or 'female'")
)

// Merge precondition errors (surfaced by Identity Merge as MergeInvalid).
var (
	ErrSourceNotAnonymous = errors.New("source user is not anonymous")
	ErrTargetIsAnonymous  = errors.New("target user is anonymous")
)

// User represents either an anonymous, pre-registration identity or a fully
// registered account.
type User struct {
	UserID       string
	Email        *string
	PasswordHash *string
	IsAnonymous  bool
	Gender       *Gender
	Age          *int
	CreatedAt    time.Time
}

// ValidationResult is an alias for the shared validation.Result type.
type ValidationResult = validation.Result

// NewValidationResult creates a valid result.
func NewValidationResult() *ValidationResult {
	return validation.NewResult()
}

// ValidateGender reports whether g is one of the two known genders.
func ValidateGender(g Gender) error {
	switch g {
	case GenderMale, GenderFemale:
		return nil
	default:
		return ErrInvalidGender
	}
}

// NewAnonymousUser constructs a new anonymous user with a null email and
// password, as CreateAnonymousUser does for first-time, pre-registration app
// usage.
func NewAnonymousUser(userID string) (*User, *ValidationResult) {
	result := NewValidationResult()

	if strings.TrimSpace(userID) == "" {
		result.AddError(ErrUserIDRequired)
		return nil, result
	}

	return &User{
		UserID:      userID,
		IsAnonymous: true,
		CreatedAt:   time.Now(),
	}, result
}

// ValidateMergePreconditions checks the §4.7 Identity Merge preconditions:
// source must be anonymous, target must not be. Both existing is the
// caller's responsibility (a lookup failure is a not-found, not a
// precondition violation).
func ValidateMergePreconditions(source, target *User) error {
	if !source.IsAnonymous {
		return ErrSourceNotAnonymous
	}
	if target.IsAnonymous {
		return ErrTargetIsAnonymous
	}
	return nil
}
