package account

import (
	"errors"
	"fmt"
	"strings"
)

// OpError is a typed operation error with a stable Op + Kind contract for callers/tests.
// Msg must not contain secrets.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e OpError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

func (e OpError) Unwrap() error { return e.Kind }

// ConflictError reports a uniqueness or state conflict for a logical field
// ("email", "activated").
type ConflictError struct {
	Op    string
	Field string
}

func (e ConflictError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Op, ErrConflict)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrConflict, e.Field)
}

func (e ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError reports a missing account row.
type NotFoundError struct {
	Op    string
	Email string
}

func (e NotFoundError) Error() string { return fmt.Sprintf("%s: %v", e.Op, ErrNotFound) }

func (e NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError carries every failed registration check, in report order.
type ValidationError struct {
	Labels []string
}

func (e ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Labels, "; ")
}

func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err represents ErrNotFound (including NotFoundError).
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// ValidationLabels returns the labels carried by err, if it is a ValidationError.
func ValidationLabels(err error) ([]string, bool) {
	var ve ValidationError
	if !errors.As(err, &ve) {
		return nil, false
	}
	return ve.Labels, true
}
