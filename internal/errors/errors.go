package errors

import (
	"fmt"
	"time"
)

// Error types for the pqgrep pipeline
type ErrorType string

const (
	// ErrorTypePattern marks a query that failed to compile. Fatal: the run
	// aborts before any file is opened.
	ErrorTypePattern ErrorType = "invalid_pattern"

	// ErrorTypeWindow marks a negative offset or limit. Fatal: the run
	// aborts before any file is opened.
	ErrorTypeWindow ErrorType = "invalid_window"

	// ErrorTypeSource marks a file or remote resource that could not be
	// opened or decoded. Recovered per file by the orchestrator.
	ErrorTypeSource ErrorType = "source_unreadable"
)

// PatternError represents a query string that failed to compile
type PatternError struct {
	Type       ErrorType
	Query      string
	Underlying error
	Timestamp  time.Time
}

// NewPatternError creates a new pattern error
func NewPatternError(query string, err error) *PatternError {
	return &PatternError{
		Type:       ErrorTypePattern,
		Query:      query,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Query, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *PatternError) Unwrap() error {
	return e.Underlying
}

// WindowError represents an invalid offset/limit parameter
type WindowError struct {
	Type      ErrorType
	Param     string
	Value     int
	Timestamp time.Time
}

// NewWindowError creates a new window parameter error
func NewWindowError(param string, value int) *WindowError {
	return &WindowError{
		Type:      ErrorTypeWindow,
		Param:     param,
		Value:     value,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *WindowError) Error() string {
	return fmt.Sprintf("invalid %s %d: must be a non-negative integer", e.Param, e.Value)
}

// SourceError represents a file or remote resource that could not be read.
// It always identifies the source so the orchestrator can report the failure
// against that file and continue with the rest.
type SourceError struct {
	Type       ErrorType
	Locator    string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewSourceError creates a new source error with context
func NewSourceError(op, locator string, err error) *SourceError {
	return &SourceError{
		Type:       ErrorTypeSource,
		Locator:    locator,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s failed for %s: %v", e.Operation, e.Locator, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SourceError) Unwrap() error {
	return e.Underlying
}
