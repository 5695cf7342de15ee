package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// ExternalService identifies the remote system behind an ExternalServiceError
type ExternalService string

const (
	ExternalServiceCarrier ExternalService = "carrier"
	ExternalServicePayment ExternalService = "payment"
)

// ExternalServiceError represents a failed call to an external collaborator
// (carrier panel, payment processor). Transient errors are network failures
// and 5xx responses and may be retried; permanent errors are 4xx responses or
// business-level rejections and must surface to the caller immediately.
type ExternalServiceError struct {
	Service   ExternalService
	Code      string
	Message   string
	Transient bool
	Err       error
}

// Error implements the error interface
func (e *ExternalServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s - %s", e.Service, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewTransientExternalError creates a retryable external-service error
func NewTransientExternalError(service ExternalService, message string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Message: message, Transient: true, Err: cause}
}

// NewPermanentExternalError creates a non-retryable external-service error
func NewPermanentExternalError(service ExternalService, code, message string) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Code: code, Message: message}
}
