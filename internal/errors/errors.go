// Package errors provides structured errors with stable codes for the
// failure kinds the backup pipeline distinguishes.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a failure category.
type Code string

const (
	// ErrUnreadableSource is a per-task failure reading or hashing a
	// source file.
	ErrUnreadableSource Code = "UNREADABLE_SOURCE"
	// ErrTransferFailed is a per-task failure reported by the external
	// transfer tool.
	ErrTransferFailed Code = "TRANSFER_FAILED"
	// ErrDestinationUnavailable means the destination root is missing or
	// unwritable at startup. Fatal.
	ErrDestinationUnavailable Code = "DESTINATION_UNAVAILABLE"
	// ErrCatalogScan means the destination walk could not complete.
	// Fatal unless the user confirms a degraded run.
	ErrCatalogScan Code = "CATALOG_SCAN_FAILED"

	ErrConfigLoad    Code = "CONFIG_LOAD"
	ErrConfigInvalid Code = "CONFIG_INVALID"
	ErrInvalidInput  Code = "INVALID_INPUT"
	ErrUnknown       Code = "UNKNOWN"
)

// Error is an error with a code and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches another *Error by code, so tests can compare against a
// sentinel like &Error{Code: ErrTransferFailed}.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates an error with a code.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code. Returns nil if err is nil.
func Wrap(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// GetCode extracts the code from err, or ErrUnknown if err carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}
