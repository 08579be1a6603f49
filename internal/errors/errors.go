package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"segstats/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"

	// Statistical validation failures
	CodeInsufficientSample    = "INSUFFICIENT_SAMPLE"
	CodeDegenerateColumn      = "DEGENERATE_COLUMN"
	CodeNonFiniteValue        = "NON_FINITE_VALUE"
	CodeEmptyGroup            = "EMPTY_GROUP"
	CodeNoVarianceColumns     = "NO_VARIANCE_COLUMNS"
	CodeInsufficientGroups    = "INSUFFICIENT_GROUPS"
	CodeTypeMismatch          = "TYPE_MISMATCH"
	CodeDegenerateAssociation = "DEGENERATE_ASSOCIATION"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

var domainCodes = []struct {
	sentinel error
	code     string
}{
	{core.ErrNotFound, CodeNotFound},
	{core.ErrInsufficientSample, CodeInsufficientSample},
	{core.ErrDegenerateColumn, CodeDegenerateColumn},
	{core.ErrNonFiniteValue, CodeNonFiniteValue},
	{core.ErrEmptyGroup, CodeEmptyGroup},
	{core.ErrNoVarianceColumns, CodeNoVarianceColumns},
	{core.ErrInsufficientGroups, CodeInsufficientGroups},
	{core.ErrTypeMismatch, CodeTypeMismatch},
	{core.ErrDegenerateAssociation, CodeDegenerateAssociation},
	{core.ErrInvalidAlternative, CodeInvalidInput},
	{core.ErrInvalidTable, CodeInvalidInput},
}

// FromDomain classifies an error from the domain or toolkit layers.
// AppErrors pass through; unrecognised errors become INTERNAL_ERROR.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	for _, dc := range domainCodes {
		if stderrors.Is(err, dc.sentinel) {
			return &AppError{Code: dc.code, Message: err.Error(), Cause: err}
		}
	}
	return &AppError{Code: CodeInternalError, Message: "internal error", Cause: err}
}

// HTTPStatus maps an error code onto the response status
func HTTPStatus(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeInsufficientSample, CodeDegenerateColumn, CodeNonFiniteValue, CodeEmptyGroup,
		CodeNoVarianceColumns, CodeInsufficientGroups, CodeTypeMismatch, CodeDegenerateAssociation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
