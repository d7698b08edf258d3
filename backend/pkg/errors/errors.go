package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeDiscord represents Discord-related errors
	ErrorTypeDiscord ErrorType = "discord"
	// ErrorTypeAgent represents planner/executor errors
	ErrorTypeAgent ErrorType = "agent"
	// ErrorTypeLLM represents language-model boundary errors
	ErrorTypeLLM ErrorType = "llm"
	// ErrorTypeMemory represents memory store errors
	ErrorTypeMemory ErrorType = "memory"
	// ErrorTypeStore represents backing store errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeTool represents tool execution errors
	ErrorTypeTool ErrorType = "tool"
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

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Calculator errors. Distinct sentinels so callers can report division by
// zero, bad syntax and unsupported operators differently.
var (
	ErrDivisionByZero      = errors.New("division by zero")
	ErrInvalidSyntax       = errors.New("invalid syntax")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrEmptyExpression     = errors.New("empty expression")
)

