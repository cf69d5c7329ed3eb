package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse is the JSON error body returned by the API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// CustomError carries an error code and HTTP status alongside the message.
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error { return e.Err }

// NewError creates a new CustomError.
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError signals missing or empty required input. Surfaced to the
// caller as a 400 and never retried.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError creates a new validation error.
func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// IsValidationError checks whether err is a validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CompletionError signals that the text-completion collaborator failed or
// timed out. The user's own message is already persisted by that point.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// NewCompletionError wraps a collaborator failure.
func NewCompletionError(err error) error {
	return &CompletionError{Err: err}
}

// IsCompletionError checks whether err is a completion error.
func IsCompletionError(err error) bool {
	var ce *CompletionError
	return errors.As(err, &ce)
}

// IncompleteProposalError signals that a transform proposal lacked required
// recipe fields. RawProposal carries the unusable proposal for diagnostic
// display so the caller can offer a retry affordance.
type IncompleteProposalError struct {
	Reason      string
	RawProposal *TransformProposal
}

func (e *IncompleteProposalError) Error() string {
	return fmt.Sprintf("incomplete proposal: %s", e.Reason)
}

// NewIncompleteProposalError creates an incomplete-proposal error.
func NewIncompleteProposalError(reason string, raw *TransformProposal) error {
	return &IncompleteProposalError{Reason: reason, RawProposal: raw}
}

// IsIncompleteProposalError checks whether err is an incomplete-proposal error.
func IsIncompleteProposalError(err error) (*IncompleteProposalError, bool) {
	var ie *IncompleteProposalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// PersistenceError signals a downstream gateway failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps a gateway failure with the failing operation.
func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistenceError checks whether err is a persistence error.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Predefined error codes.
const (
	// Client errors (4xx).
	ErrCodeInvalidRequest     = "INVALID_REQUEST"     // 400
	ErrCodeUnauthorized       = "UNAUTHORIZED"        // 401
	ErrCodeNotFound           = "NOT_FOUND"           // 404
	ErrCodeRequestTimeout     = "REQUEST_TIMEOUT"     // 408
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"   // 429
	ErrCodeIncompleteProposal = "INCOMPLETE_PROPOSAL" // 422

	// Server errors (5xx).
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeAIService          = "AI_SERVICE_ERROR"    // 503
	ErrCodePersistence        = "PERSISTENCE_ERROR"   // 500
)

// Predefined errors.
var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrUnauthorized    = NewError(ErrCodeUnauthorized, "unauthorized", http.StatusUnauthorized, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "request timeout", http.StatusRequestTimeout, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)

	ErrInternalError      = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "service temporarily unavailable", http.StatusServiceUnavailable, nil)
	ErrAIServiceError     = NewError(ErrCodeAIService, "AI service error", http.StatusServiceUnavailable, nil)

	ErrCacheFull     = NewError("CACHE_FULL", "cache is full", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled = NewError("CACHE_DISABLED", "cache is disabled", http.StatusServiceUnavailable, nil)
	ErrCacheMiss     = NewError("CACHE_MISS", "cache miss", http.StatusNotFound, nil)
)
