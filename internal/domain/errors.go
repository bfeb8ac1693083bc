package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for absent or foreign resources. "Not entitled right now"
// outcomes (goal incomplete, time exhausted, bypass cap) are typed decline
// results, not errors.
var (
	ErrActivityNotFound  = errors.New("activity not found")
	ErrGoalNotFound      = errors.New("goal not found")
	ErrAllowanceNotFound = errors.New("allowance not found")
	ErrSessionNotFound   = errors.New("usage session not found")
	ErrConfigNotFound    = errors.New("blocked apps configuration not found")

	// ErrNotOwner is returned when a caller references a resource owned by
	// another user.
	ErrNotOwner = errors.New("resource not owned by caller")

	// ErrDuplicateActivity is returned when the external dedup key has
	// already been recorded.
	ErrDuplicateActivity = errors.New("activity already recorded")

	// ErrPendingChangeExists rejects a config mutation while a staged
	// change is waiting to apply.
	ErrPendingChangeExists = errors.New("pending change already staged")

	// ErrNoPendingChange is returned when cancelling with nothing staged.
	ErrNoPendingChange = errors.New("no pending change to cancel")
)

// ValidationError marks physically-impossible activity data. Hard validation
// failures prevent any record from being created; they are distinct from
// trust penalties, which only down-weight plausible data.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid activity: %s", e.Reason)
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a hard validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
