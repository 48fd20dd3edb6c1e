package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeSyntax represents malformed record framing (unterminated record, bad top-level syntax)
	ErrTypeSyntax ErrorType = "syntax"
	// ErrTypeSkip means a property cannot be marshalled or parsed and must be dropped
	ErrTypeSkip ErrorType = "skip"
	// ErrTypeCannotParse means a property value must be kept as a raw/unknown property
	ErrTypeCannotParse ErrorType = "cannot_parse"
	// ErrTypeUnsupported represents an encoding a scribe declines to handle
	ErrTypeUnsupported ErrorType = "unsupported"
	// ErrTypeDepth represents an embedded record nesting limit violation
	ErrTypeDepth ErrorType = "depth"
	// ErrTypeConfig represents configuration errors
	ErrTypeConfig ErrorType = "config"
	// ErrTypeValidation represents validation errors
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeNotFound represents resource not found errors
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeIO represents read/write failures of the underlying stream or store
	ErrTypeIO ErrorType = "io"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		contextParts := make([]string, 0, len(keys))
		for _, k := range keys {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// SyntaxError creates a record framing error at the given line
func SyntaxError(msg string, line int) *AppError {
	err := &AppError{
		Type:    ErrTypeSyntax,
		Message: msg,
	}
	if line > 0 {
		err.WithContext("line", line)
	}
	return err
}

// SkipError signals that a property must be left out of the output
func SkipError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeSkip,
		Message: msg,
	}
}

// CannotParseError signals that a property value should be preserved as a raw property
func CannotParseError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeCannotParse,
		Message: msg,
	}
}

// UnsupportedError creates an error for an encoding a component does not handle
func UnsupportedError(what string) *AppError {
	return &AppError{
		Type:    ErrTypeUnsupported,
		Message: fmt.Sprintf("%s is not supported", what),
	}
}

// DepthError creates an error for nested records exceeding the configured depth
func DepthError(limit int) *AppError {
	return &AppError{
		Type:    ErrTypeDepth,
		Message: fmt.Sprintf("embedded records nested deeper than %d", limit),
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// ValidationError creates a new validation error
func ValidationError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: msg,
	}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// IOError creates a new I/O error
func IOError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeIO,
		Message: msg,
		Cause:   cause,
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}

	return appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return ErrTypeInternal
	}

	return appErr.Type
}
