package services

import (
	"errors"
	"fmt"
)

// Error classes. Handlers map these to HTTP status codes.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrGenerationFailed = errors.New("content generation failed")
)

// Domain errors, each belonging to one class
var (
	ErrInvalidRole        = fmt.Errorf("%w: invalid role", ErrValidationFailed)
	ErrInvalidContentType = fmt.Errorf("%w: invalid content type", ErrValidationFailed)
	ErrProfileExists      = fmt.Errorf("%w: profile already exists", ErrConflict)
	ErrSubjectCodeExists  = fmt.Errorf("%w: subject code already exists", ErrConflict)
	ErrProfileNotFound    = fmt.Errorf("%w: profile", ErrNotFound)
)

// User-facing messages
const (
	MsgUnauthorized        = "Unauthorized"
	MsgProfileRequired     = "Role and full name are required"
	MsgInvalidRole         = "Invalid role"
	MsgProfileExists       = "Profile already exists"
	MsgNoFieldsToUpdate    = "No fields to update"
	MsgProfileNotFound     = "Profile not found"
	MsgTeachersOnly        = "Only teachers can create subjects"
	MsgSubjectRequired     = "Name, code, and grade levels are required"
	MsgSubjectCodeExists   = "Subject code already exists"
	MsgContentRequired     = "Type, subject, grade level, and topic are required"
	MsgInvalidContentType  = "Invalid content type"
	MsgGenerationFailed    = "Failed to generate content. Please try again."
	MsgValidationFailed    = "Validation failed"
	MsgInternalServerError = "Internal server error"
)

// ServiceError carries the message shown to the caller alongside the
// sentinel that classifies it
type ServiceError struct {
	Err     error
	Message string
	Details interface{}
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewServiceError(err error, message string) *ServiceError {
	return &ServiceError{Err: err, Message: message}
}

// NewValidationError wraps field-level failures with their details
func NewValidationError(message string, details interface{}) *ServiceError {
	return &ServiceError{Err: ErrValidationFailed, Message: message, Details: details}
}

// NewGenerationError wraps a provider failure. The cause stays reachable
// through errors.Is/As but never reaches the response body.
func NewGenerationError(cause error) *ServiceError {
	err := ErrGenerationFailed
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrGenerationFailed, cause)
	}
	return &ServiceError{Err: err, Message: MsgGenerationFailed}
}
