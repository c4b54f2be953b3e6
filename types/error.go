package types

import "fmt"

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Orchestration error codes
const (
	ErrDebateNotFound     ErrorCode = "DEBATE_NOT_FOUND"
	ErrParticipantMissing ErrorCode = "PARTICIPANT_MISSING"
	ErrInvalidTransition  ErrorCode = "INVALID_TRANSITION"
	ErrAlreadyCompleted   ErrorCode = "ALREADY_COMPLETED"
	ErrInvalidConfig      ErrorCode = "INVALID_CONFIG"
)

// Collaborator error codes
const (
	ErrGenerationFailed   ErrorCode = "GENERATION_FAILED"
	ErrVerificationFailed ErrorCode = "VERIFICATION_FAILED"
	ErrSummaryFailed      ErrorCode = "SUMMARY_FAILED"
	ErrPersistenceFailed  ErrorCode = "PERSISTENCE_FAILED"
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrInternalError      ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
