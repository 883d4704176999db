package service

import (
	"errors"
	"fmt"
)

// Validation. Wrap ErrValidationFailed to carry the offending field.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidDayNumber = fmt.Errorf("%w: day_number must be between 1 and 7", ErrValidationFailed)
)

// Authentication.
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrUserNotFound         = errors.New("user not found")
)

// Ownership.
var ErrNotPlanOwner = errors.New("not authorized")

// Not found.
var (
	ErrPlanNotFound            = errors.New("plan not found")
	ErrPlanDayNotFound         = errors.New("plan day not found")
	ErrDayExerciseNotFound     = errors.New("exercise not found")
	ErrLibraryExerciseNotFound = errors.New("library exercise not found")
	ErrUserPlanNotFound        = errors.New("user plan not found")
	// ErrShareInvalid covers unknown, used and expired tokens alike so the
	// response does not reveal which tokens exist.
	ErrShareInvalid = errors.New("share link expired or invalid")
)

// Conflicts and backends.
var (
	ErrPlanActive         = errors.New("plan is the active plan; start another plan before deleting it")
	ErrBackendUnavailable = errors.New("backend not configured")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
