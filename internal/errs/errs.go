// Package errs defines the error kinds the services report. Handlers
// translate each kind to a transport status: Validation is 400, NotFound
// 404, Forbidden 403, and Server 500. The internal message of a Server
// error is logged but never sent to the client.
package errs

import (
	"errors"
	"fmt"
)

// Validation indicates bad input or an illegal state transition.
type Validation struct {
	Message string
	// FieldErrors maps input field names to per-field messages.
	// Nil for state-transition failures.
	FieldErrors map[string]string
}

func (e *Validation) Error() string { return e.Message }

// NewValidation creates a state or cross-field validation error.
func NewValidation(format string, args ...any) *Validation {
	return &Validation{Message: fmt.Sprintf(format, args...)}
}

// NewFieldValidation creates a validation error carrying per-field messages.
func NewFieldValidation(fields map[string]string) *Validation {
	return &Validation{Message: "validation failed", FieldErrors: fields}
}

// NotFound indicates the referenced entity is absent or soft-deleted.
type NotFound struct {
	Resource string
	ID       string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFound creates a not-found error for the given resource and id.
func NewNotFound(resource, id string) *NotFound {
	return &NotFound{Resource: resource, ID: id}
}

// Forbidden indicates the caller lacks ownership of the target.
// The message is deliberately uniform ("Access denied") wherever a more
// specific message would let a caller probe for another user's resources.
type Forbidden struct {
	Message string
}

func (e *Forbidden) Error() string { return e.Message }

// AccessDenied is the uniform ownership failure. It is returned both when
// the target account does not exist and when it belongs to someone else,
// so the two cases cannot be told apart.
func AccessDenied() *Forbidden {
	return &Forbidden{Message: "Access denied"}
}

// Server wraps an unexpected infrastructure failure.
type Server struct {
	Err error
}

func (e *Server) Error() string { return e.Err.Error() }

func (e *Server) Unwrap() error { return e.Err }

// NewServer wraps err as an internal failure.
func NewServer(err error) *Server {
	return &Server{Err: err}
}

// IsValidation reports whether err is (or wraps) a Validation error.
func IsValidation(err error) bool {
	var v *Validation
	return errors.As(err, &v)
}

// IsNotFound reports whether err is (or wraps) a NotFound error.
func IsNotFound(err error) bool {
	var nf *NotFound
	return errors.As(err, &nf)
}

// IsForbidden reports whether err is (or wraps) a Forbidden error.
func IsForbidden(err error) bool {
	var f *Forbidden
	return errors.As(err, &f)
}
