package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	// ErrStaleGoal is matched by *StaleGoalError.
	ErrStaleGoal = errors.New("goal total is stale")
)

// Common validation failures.
var (
	ErrInvalidAmount    error = &ValidationError{Field: "amount", Reason: "must be a positive decimal"}
	ErrInvalidDate      error = &ValidationError{Field: "date", Reason: "cannot be zero"}
	ErrEmptyDescription error = &ValidationError{Field: "description", Reason: "cannot be empty"}
	ErrEmptyName        error = &ValidationError{Field: "name", Reason: "cannot be empty"}
	ErrInvalidThreshold error = &ValidationError{Field: "alert_threshold", Reason: "must be between 1 and 100"}
)

// ValidationError reports input rejected before any store interaction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps a failed or timed out ledger call. The engine never retries it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// StoreFailure wraps err as a StoreError unless it is nil, a validation
// failure or a not-found condition.
func StoreFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) || errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// StaleGoalError is returned when a contribution was recorded but the goal
// total could not be updated afterwards. The contribution is kept.
type StaleGoalError struct {
	GoalID       string
	Contribution Contribution
	Err          error
}

func (e *StaleGoalError) Error() string {
	return fmt.Sprintf("goal %s total is stale after contribution %s: %v", e.GoalID, e.Contribution.ID, e.Err)
}

func (e *StaleGoalError) Unwrap() error {
	return e.Err
}

func (e *StaleGoalError) Is(target error) bool {
	return target == ErrStaleGoal
}
