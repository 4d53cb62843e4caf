package domain

import (
	"errors"
	"fmt"
	"time"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeTransient        = "TRANSIENT_ERROR"
	ErrCodeCorruptedInput   = "CORRUPTED_INPUT"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyDocument        = NewDomainError(ErrCodeValidation, "document contains no extractable text")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query cannot be empty")
	ErrInvalidSummaryLength = NewDomainError(ErrCodeValidation, "invalid summary length")
	ErrUnsupportedFormat    = NewDomainError(ErrCodeValidation, "unsupported document format")
	ErrInvalidDocumentID    = NewDomainError(ErrCodeValidation, "invalid document id")
)

// Not found errors
var (
	ErrDocumentNotFound     = NewDomainError(ErrCodeNotFound, "document not found")
	ErrJobNotFound          = NewDomainError(ErrCodeNotFound, "batch job not found")
	ErrIndexNotFound        = NewDomainError(ErrCodeNotFound, "vector index not found")
	ErrDocumentTextNotFound = NewDomainError(ErrCodeNotFound, "stored document text not found")
)

// Input errors
var (
	ErrCorruptedInput = NewDomainError(ErrCodeCorruptedInput, "document content is corrupted or unreadable")
)

// Operation errors
var (
	ErrJobNotCancellable = NewDomainError(ErrCodeInvalidOperation, "job is already finished")
)

// RateLimitError indicates the embedding or completion provider rejected a
// request due to rate limiting. RetryAfter is zero when the provider gave no
// hint.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// TransientError indicates a temporary provider or infrastructure failure
// that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// AuthError indicates the provider rejected our credentials. It must never
// be retried.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("provider authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsRateLimit reports whether err is a rate limit error and returns the
// provider's retry-after hint if any.
func IsRateLimit(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

// IsTransient reports whether err is a transient provider failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsAuth reports whether err is a provider authentication failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsRetryable reports whether err may succeed on a later attempt.
// Rate limit and transient failures are retryable; everything else is not.
func IsRetryable(err error) bool {
	if _, ok := IsRateLimit(err); ok {
		return true
	}
	return IsTransient(err)
}
