package domain

import (
	"errors"
	"strings"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeMissingPermission Code = "MISSING_PERMISSION"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL"
)

// Error is the domain error type. Two errors are equal under errors.Is when
// their codes match, so callers can test against the category sentinels below.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a domain error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that keeps the underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Category sentinels, usable as errors.Is targets.
var (
	ErrNotFound          = New(CodeNotFound, "not found")
	ErrUnauthorized      = New(CodeUnauthorized, "unauthorized")
	ErrMissingPermission = New(CodeMissingPermission, "missing permission")
	ErrInvalidArgument   = New(CodeInvalidArgument, "invalid argument")
	ErrConflict          = New(CodeConflict, "conflict")
)

// Domain errors.
var (
	ErrEventNotFound        = New(CodeNotFound, "event not found")
	ErrRegistrationNotFound = New(CodeNotFound, "registration not found")
	ErrInvalidAccessKey     = New(CodeUnauthorized, "access key does not match registration")
	ErrInvalidYear          = New(CodeInvalidArgument, "year is out of the supported range")
	ErrUserOrGuestRequired  = New(CodeInvalidArgument, "exactly one of user key or guest name is required")
	ErrDuplicateGuestName   = New(CodeInvalidArgument, "a guest with this name is already registered")
	ErrDuplicateAssignment  = New(CodeInvalidArgument, "a registration cannot be assigned to more than one slot")
	ErrEventNameRequired    = New(CodeInvalidArgument, "event name is required")
	ErrEventEndBeforeStart  = New(CodeInvalidArgument, "event end must not be before its start")
	ErrInvalidEventState    = New(CodeInvalidArgument, "unknown event state")
	ErrPositionRequired     = New(CodeInvalidArgument, "position is required")
	ErrAlreadyConfirmed     = New(CodeConflict, "registration is already confirmed")
)

// CodeOf returns the code of the first domain error in err's chain, or
// CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// CodeName returns the lowercase code of err ("not_found", ...), or "" for nil.
func CodeName(err error) string {
	if err == nil {
		return ""
	}
	return strings.ToLower(string(CodeOf(err)))
}
