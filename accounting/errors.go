package accounting

import (
	"errors"
	"fmt"
)

// The engine distinguishes three failure kinds. Anything else that
// bubbles up is a storage error from gorm and aborts the transaction
// the same way.

// ValidationError covers malformed input: unbalanced lines, fewer than
// two lines, negative amounts, insufficient drawer cash.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// StateError covers operations that are illegal in the record's current
// lifecycle state (reversing a cancelled entry, moving cash on a closed
// session, double-closing a drawer).
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return "state: " + e.Reason
}

// NotFoundError covers dangling references to accounts, entries or
// sessions.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func stateErrorf(format string, args ...interface{}) error {
	return &StateError{Reason: fmt.Sprintf(format, args...)}
}

func notFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
