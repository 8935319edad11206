package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Curriculum specific errors
	CodeTemplateNotImplemented ErrorCode = "TEMPLATE_NOT_IMPLEMENTED"
	CodeTemplateCycle          ErrorCode = "TEMPLATE_CYCLE"
	CodeInvalidTemplate        ErrorCode = "INVALID_TEMPLATE"
	CodeProgressionOrder       ErrorCode = "PROGRESSION_ORDER"
	CodeBuildNotFound          ErrorCode = "BUILD_NOT_FOUND"
)

var (
	// ErrTemplateNotImplemented is wrapped by every unsupported-discipline error.
	ErrTemplateNotImplemented = errors.New("template not implemented")
	// ErrCategoryCycle is wrapped when category prerequisites form a cycle.
	ErrCategoryCycle = errors.New("category prerequisites contain a cycle")
	// ErrBuildNotFound is returned when no build has been stored for a discipline.
	ErrBuildNotFound = errors.New("curriculum build not found")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

// Error omits the cause when Message already carries its text, so a
// sentinel cause such as ErrTemplateNotImplemented is not repeated.
func (e *DomainError) Error() string {
	if e.Err != nil && !strings.Contains(e.Message, e.Err.Error()) {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a detail entry that is surfaced in HTTP error bodies.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

// NewTemplateNotImplementedError reports a discipline with no registered template.
func NewTemplateNotImplementedError(discipline string) *DomainError {
	return NewError(CodeTemplateNotImplemented,
		fmt.Sprintf("template not implemented for %s", discipline),
		ErrTemplateNotImplemented,
	).WithContext("discipline", discipline)
}

func NewTemplateCycleError(discipline string, cause error) *DomainError {
	return NewError(CodeTemplateCycle,
		fmt.Sprintf("category prerequisites for %s are not acyclic", discipline),
		cause,
	).WithContext("discipline", discipline)
}

func NewInvalidTemplateError(discipline string, cause error) *DomainError {
	return NewError(CodeInvalidTemplate,
		fmt.Sprintf("invalid curriculum template %q", discipline),
		cause,
	)
}

func NewProgressionOrderError(category, prerequisite string) *DomainError {
	return NewError(CodeProgressionOrder,
		fmt.Sprintf("category %q is listed before its prerequisite %q", category, prerequisite),
		nil,
	).WithContext("category", category).WithContext("prerequisite", prerequisite)
}

func NewBuildNotFoundError(discipline string) *DomainError {
	return NewError(CodeBuildNotFound,
		fmt.Sprintf("no curriculum build found for %s", discipline),
		ErrBuildNotFound,
	)
}

// ValidationError is a single field-level finding.
type ValidationError struct {
	Field   string      `json:"field"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every finding of one validation pass.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Code: CodeMissingField, Message: "field is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Code: CodeInvalidFormat, Message: "invalid format", Value: value}
}

func NewOutOfRangeError(field string, value interface{}, min, max interface{}) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("must be between %v and %v", min, max),
		Value:   value,
	}
}

func NewFieldError(field, message string, value interface{}) ValidationError {
	return ValidationError{Field: field, Code: CodeValidation, Message: message, Value: value}
}
