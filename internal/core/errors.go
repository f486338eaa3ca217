// Package core holds the structured error type shared across the scanner.
package core

import "fmt"

// Error is a coded error with an optional cause. Codes let callers match a
// failure class with errors.Is without string comparison.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Market data errors
	ErrSymbolNotFound = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}
	ErrNoData         = &Error{Code: "NO_DATA", Message: "no market data available"}
	ErrChainFailed    = &Error{Code: "CHAIN_FAILED", Message: "option chain request failed"}
	ErrQuoteFailed    = &Error{Code: "QUOTE_FAILED", Message: "quote request failed"}

	// Auth errors
	ErrAuthFailed = &Error{Code: "AUTH_FAILED", Message: "broker authentication failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Snapshot errors
	ErrSnapshotInvalid = &Error{Code: "SNAPSHOT_INVALID", Message: "snapshot file invalid"}

	// Archive errors
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archive write failed"}

	// Advisor errors
	ErrAdvisorFailed = &Error{Code: "ADVISOR_FAILED", Message: "advisor request failed"}
)
