// Package utils provides logging and error handling utilities shared by the
// extraction pipeline.
package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns string representation of error severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorCode represents predefined error codes for categorization
type ErrorCode string

const (
	// Pipeline related errors. Decode, extraction, and coercion failures are
	// recovered locally and never escalate past their component; identity and
	// store failures surface to the caller.
	ErrCodeDecodeFailed    ErrorCode = "DECODE_FAILED"
	ErrCodeExtractionMiss  ErrorCode = "EXTRACTION_MISS"
	ErrCodeCoercionFailed  ErrorCode = "COERCION_FAILED"
	ErrCodeIdentityMissing ErrorCode = "IDENTITY_MISSING"
	ErrCodeStoreFailed     ErrorCode = "STORE_FAILED"

	// Fetcher related errors
	ErrCodeNetworkTimeout ErrorCode = "NETWORK_TIMEOUT"
	ErrCodeHTTPStatus     ErrorCode = "HTTP_STATUS"

	// Configuration related errors
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrCodeMissingConfig ErrorCode = "MISSING_CONFIG"

	// Output related errors
	ErrCodeExportFailed ErrorCode = "EXPORT_FAILED"

	// Generic errors
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
)

// StructuredError provides rich error information for better debugging and handling
type StructuredError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Severity  ErrorSeverity          `json:"severity"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error unwrapping
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target error code
func (e *StructuredError) Is(target error) bool {
	if se, ok := target.(*StructuredError); ok {
		return e.Code == se.Code
	}
	return false
}

// WithContext adds contextual information to the error
func (e *StructuredError) WithContext(key string, value interface{}) *StructuredError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *StructuredError) WithSeverity(severity ErrorSeverity) *StructuredError {
	e.Severity = severity
	return e
}

// WithRetryable marks the error as retryable
func (e *StructuredError) WithRetryable(retryable bool) *StructuredError {
	e.Retryable = retryable
	return e
}

// NewError creates a new structured error
func NewError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:      code,
		Message:   message,
		Severity:  SeverityError,
		Timestamp: time.Now(),
	}
}

// WrapError wraps an existing error in a structured error
func WrapError(err error, code ErrorCode, message string) *StructuredError {
	se := NewError(code, message)
	se.Cause = err
	return se
}

// CodeOf returns the error code of a structured error, or ErrCodeInternal
// for plain errors.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsRetryableError checks if an error should be retried
func IsRetryableError(err error) bool {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Retryable
	}

	errorStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout",
		"connection refused",
		"temporary failure",
		"503 service unavailable",
		"502 bad gateway",
		"504 gateway timeout",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errorStr, pattern) {
			return true
		}
	}
	return false
}

// ErrorCollector collects multiple errors for batch reporting
type ErrorCollector struct {
	errors    []*StructuredError
	maxErrors int
}

// NewErrorCollector creates a new error collector
func NewErrorCollector(maxErrors int) *ErrorCollector {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollector{maxErrors: maxErrors}
}

// Add adds an error to the collection
func (ec *ErrorCollector) Add(err *StructuredError) {
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddSimple adds an error with basic information
func (ec *ErrorCollector) AddSimple(code ErrorCode, message string) {
	ec.Add(NewError(code, message))
}

// HasErrors returns true if there are collected errors
func (ec *ErrorCollector) HasErrors() bool {
	return len(ec.errors) > 0
}

// Errors returns all collected errors
func (ec *ErrorCollector) Errors() []*StructuredError {
	return ec.errors
}

// Count returns the number of collected errors
func (ec *ErrorCollector) Count() int {
	return len(ec.errors)
}

// Clear removes all collected errors
func (ec *ErrorCollector) Clear() {
	ec.errors = ec.errors[:0]
}
