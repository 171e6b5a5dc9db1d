package common

import (
	"errors"
	"fmt"
)

// Error codes. They double as the failure reason prefix in run summaries.
const (
	CodeUnreadablePaper     = "UnreadablePaper"
	CodeServiceError        = "ServiceError"
	CodeMalformedExtraction = "MalformedExtraction"
	CodeConfigurationError  = "ConfigurationError"
	CodeOutputError         = "OutputError"
	CodeLedgerError         = "LedgerError"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	switch {
	case e.Message == "" && e.Cause == nil:
		return e.Code
	case e.Message == "":
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any *AppError carrying the same code, so the sentinels below
// work with errors.Is regardless of message or cause.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrUnreadablePaper     = &AppError{Code: CodeUnreadablePaper}
	ErrServiceError        = &AppError{Code: CodeServiceError}
	ErrMalformedExtraction = &AppError{Code: CodeMalformedExtraction}
	ErrConfiguration       = &AppError{Code: CodeConfigurationError}
	ErrOutput              = &AppError{Code: CodeOutputError}
	ErrLedger              = &AppError{Code: CodeLedgerError}
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func UnreadablePaper(message string, cause error) *AppError {
	return NewAppError(CodeUnreadablePaper, message, cause)
}

func ServiceError(message string, cause error) *AppError {
	return NewAppError(CodeServiceError, message, cause)
}

func MalformedExtraction(message string, cause error) *AppError {
	return NewAppError(CodeMalformedExtraction, message, cause)
}

func ConfigurationError(message string, cause error) *AppError {
	return NewAppError(CodeConfigurationError, message, cause)
}

// ErrorCode returns the code of the first *AppError in err's chain, or "" when
// there is none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
