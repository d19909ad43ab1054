package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Workflow specific errors
	CodeQuestionNotFound     ErrorCode = "QUESTION_NOT_FOUND"
	CodePaperNotFound        ErrorCode = "PAPER_NOT_FOUND"
	CodeAuditFailed          ErrorCode = "AUDIT_FAILED"
	CodeAuditInFlight        ErrorCode = "AUDIT_IN_FLIGHT"
	CodeExtractionFailed     ErrorCode = "EXTRACTION_FAILED"
	CodePersistenceFailed    ErrorCode = "PERSISTENCE_FAILED"
	CodeInvariantViolation   ErrorCode = "INVARIANT_VIOLATION"
	CodeConfirmationRequired ErrorCode = "CONFIRMATION_REQUIRED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithContext attaches key/value context to the error and returns it.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ValidationError describes a single invalid input field.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors aggregates field-level validation failures so a caller
// can report all of them at once instead of failing on the first.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d validation errors (first: %s)", len(e), e[0].Error())
}

// Helper functions for common errors

func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field, detail string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid format: %s", detail)}
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewQuestionNotFoundError(id string) *DomainError {
	return NewError(CodeQuestionNotFound, fmt.Sprintf("Question not found with ID: %s", id), nil)
}

func NewPaperNotFoundError(id string) *DomainError {
	return NewError(CodePaperNotFound, fmt.Sprintf("Paper not found with ID: %s", id), nil)
}

func NewAuditFailedError(cause error) *DomainError {
	return NewError(CodeAuditFailed, "Audit engine failed to process the question", cause)
}

func NewAuditInFlightError(questionID string) *DomainError {
	return NewError(CodeAuditInFlight,
		fmt.Sprintf("An audit is already in flight for question %s", questionID), nil)
}

func NewExtractionError(fileName string, cause error) *DomainError {
	return NewError(CodeExtractionFailed,
		fmt.Sprintf("Failed to extract text from %s", fileName), cause)
}

func NewPersistenceError(message string, cause error) *DomainError {
	return NewError(CodePersistenceFailed, message, cause)
}

// NewInvariantViolation marks a programming-contract violation. These are
// not user-facing errors: reaching one means a caller skipped a precondition
// check, so the message is intentionally loud.
func NewInvariantViolation(message string) *DomainError {
	return NewError(CodeInvariantViolation, "invariant violation: "+message, nil)
}

func NewConfirmationRequiredError(message string) *DomainError {
	return NewError(CodeConfirmationRequired, message, nil)
}
