package app

import (
	"fmt"
	"net/http"
)

const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeNotFound             = "NOT_FOUND"
	CodeStyleProfileNotReady = "STYLE_PROFILE_NOT_READY"
	CodeEmailInUse           = "EMAIL_IN_USE"
	CodeRateLimited          = "RATE_LIMITED"
	CodeExportUnavailable    = "EXPORT_UNAVAILABLE"
	CodeInternal             = "INTERNAL_ERROR"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
	// Cause is logged, never sent to the client.
	Cause error
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func validationError(message string, details any) *DomainError {
	return domainError(http.StatusBadRequest, CodeValidation, message, details)
}

func unauthorized() *DomainError {
	return domainError(http.StatusUnauthorized, CodeUnauthorized, "Unauthorized", nil)
}

func notFound(what string) *DomainError {
	return domainError(http.StatusNotFound, CodeNotFound, what+" not found", nil)
}

func styleProfileNotReady() *DomainError {
	return domainError(http.StatusConflict, CodeStyleProfileNotReady, "Style profile is not ready", nil)
}

// internalError hides cause from the response body.
func internalError(message string, cause error) *DomainError {
	err := domainError(http.StatusInternalServerError, CodeInternal, message, nil)
	err.Cause = cause
	return err
}
