package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeParser represents document parsing errors
	ErrorTypeParser ErrorType = "parser"
	// ErrorTypeURN represents identifier generation/parsing errors
	ErrorTypeURN ErrorType = "urn"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeAssistant represents assistant/LLM-related errors
	ErrorTypeAssistant ErrorType = "assistant"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrType exposes the category. Wrapper types embedding BaseError inherit it,
// which is what IsErrorType keys on.
func (e *BaseError) ErrType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// URN Errors

// ErrURNInvalid is returned when an identifier cannot be parsed
type ErrURNInvalid struct {
	*BaseError
	URN string
}

func NewURNInvalid(urn string) *ErrURNInvalid {
	return &ErrURNInvalid{
		BaseError: NewBaseError(ErrorTypeURN, fmt.Sprintf("invalid identifier: %s", urn), nil),
		URN:       urn,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, "query failed", err),
		Query:     query,
	}
}

// ErrImportFailed is returned when executing a generated script fails
type ErrImportFailed struct {
	*BaseError
	Statement string
}

func NewImportFailed(statement string, err error) *ErrImportFailed {
	return &ErrImportFailed{
		BaseError: NewBaseError(ErrorTypeGraph, "import statement failed", err),
		Statement: statement,
	}
}

// Assistant Errors

// ErrAssistantNoResponse is returned when the LLM returns no choices
var ErrAssistantNoResponse = NewBaseError(ErrorTypeAssistant, "no response from LLM", nil)

// ErrAssistantFailed is returned when the LLM request fails
type ErrAssistantFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewAssistantFailed(model string, attempts int, err error) *ErrAssistantFailed {
	return &ErrAssistantFailed{
		BaseError: NewBaseError(ErrorTypeAssistant, fmt.Sprintf("LLM request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if typed, ok := err.(interface{ ErrType() ErrorType }); ok {
			return typed.ErrType() == errType
		}
		wrapped, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = wrapped.Unwrap()
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	// Graph connection errors are retryable
	if IsErrorType(err, ErrorTypeGraph) {
		return true
	}
	return false
}
