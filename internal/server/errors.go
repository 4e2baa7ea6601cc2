package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/pipeline"
	"github.com/jonathan/careerpilot/internal/schemas"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrNotFound indicates an unknown candidate, job or recruiter
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrVerification indicates a missing, expired or wrong signup code
type ErrVerification struct {
	Reason string
}

func (e *ErrVerification) Error() string {
	return "verification failed: " + e.Reason
}

// ErrUpstream indicates a dependency (identity service, mail, storage) failed
type ErrUpstream struct {
	Service string
	Err     error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ErrUpstream) Unwrap() error { return e.Err }

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation, *ErrVerification, *schemas.ValidationError:
		return http.StatusBadRequest
	case *ErrUpstream:
		return http.StatusBadGateway
	}

	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrValidation), errors.Is(err, pipeline.ErrNoRecipient):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
