package entity

import (
	"errors"
	"fmt"
)

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// ValidationError reports a missing or malformed field at intake time.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IncompleteTransitionError blocks a status change whose target state
// preconditions are not met.
type IncompleteTransitionError struct {
	Status  LeadStatus
	Message string
}

func (e *IncompleteTransitionError) Error() string {
	return e.Message
}

type AccessDeniedError struct {
	Action string
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + e.Action
}

// StoreError wraps any failure coming from the Lead or Profile store.
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

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsIncompleteTransition(err error) bool {
	var t *IncompleteTransitionError
	return errors.As(err, &t)
}

func IsAccessDenied(err error) bool {
	var a *AccessDeniedError
	return errors.As(err, &a)
}

func IsStoreError(err error) bool {
	var s *StoreError
	return errors.As(err, &s)
}
