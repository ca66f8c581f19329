package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes failure semantics across the schema, mapping and upload flows.
type ErrorCode string

const (
	CodeValidation     ErrorCode = "validation"
	CodeUnavailable    ErrorCode = "unavailable"
	CodeUploadRejected ErrorCode = "upload_rejected"
	CodeNotFound       ErrorCode = "not_found"
	CodeInternal       ErrorCode = "internal"
)

// Error is the canonical error wrapper returned by services and collaborators.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with a code. Errors that already carry a code keep it.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return NewError(code, op, err.Error(), err)
}

// ValidationError reports malformed or incomplete caller input.
func ValidationError(op, format string, args ...any) error {
	return NewError(CodeValidation, op, fmt.Sprintf(format, args...), nil)
}

// UnavailableError reports a collaborator that could not be reached.
func UnavailableError(op string, cause error) error {
	msg := "backing store unavailable"
	if cause != nil {
		msg = cause.Error()
	}
	return NewError(CodeUnavailable, op, msg, cause)
}

// UploadError reports a batch explicitly rejected by the graph persistence collaborator.
func UploadError(op string, cause error) error {
	msg := "graph batch rejected"
	if cause != nil {
		msg = cause.Error()
	}
	return NewError(CodeUploadRejected, op, msg, cause)
}

func NotFoundError(op, format string, args ...any) error {
	return NewError(CodeNotFound, op, fmt.Sprintf(format, args...), nil)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the error code when available.
func CodeOf(err error) ErrorCode {
	var de *Error
	if !errors.As(err, &de) {
		return ""
	}
	return de.Code
}
