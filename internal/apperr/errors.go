// Package apperr holds the error kinds that cross package boundaries and
// reach HTTP handlers: validation, conflict, auth, not-found and upstream.
package apperr

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a unique-constraint collision on Field. Code, when
// set, replaces the generic conflict code.
type ConflictError struct {
	Field   string
	Message string
	Code    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Field, e.Message)
}

// AuthError is returned for credential, verification and session failures.
// Code is machine readable; Forbidden selects 403 over 401.
type AuthError struct {
	Code      string
	Message   string
	Forbidden bool
}

func (e *AuthError) Error() string {
	return e.Message
}

// NotFoundError reports that a record does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// UpstreamError wraps a failure of an external collaborator. Status is the
// upstream HTTP status when there was one.
type UpstreamError struct {
	Service string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Validation builds a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Conflict builds a ConflictError.
func Conflict(field, message string) error {
	return &ConflictError{Field: field, Message: message}
}

// Upstream wraps err as a failure of service.
func Upstream(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err carries a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// FirstInvalid converts the field map produced by ozzo-validation's
// ValidateStruct into a ValidationError for the first field of order that
// failed. Any other error is returned unchanged.
func FirstInvalid(err error, order ...string) error {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, field := range order {
		if fe, ok := fieldErrs[field]; ok && fe != nil {
			return Validation(field, fe.Error())
		}
	}
	for field, fe := range fieldErrs {
		if fe != nil {
			return Validation(field, fe.Error())
		}
	}
	return nil
}
