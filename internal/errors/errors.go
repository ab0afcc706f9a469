// Package errors provides the error kinds shared by the store, the engine and the HTTP layer
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind identifies the category of an application error
type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindValidation    Kind = "VALIDATION_ERROR"
	KindConflict      Kind = "CONFLICT"
	KindUnauthorized  Kind = "UNAUTHORIZED"
	KindBadRequest    Kind = "BAD_REQUEST"
	KindSetupRequired Kind = "SETUP_REQUIRED"
	KindInternal      Kind = "INTERNAL_ERROR"
)

// AppError is the base interface for all Haven errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// BaseError is the base implementation of AppError
type BaseError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	ErrorCode  Kind   `json:"code"`
	Details    string `json:"details,omitempty"`
}

func (e *BaseError) Error() string {
	return e.Message
}

func (e *BaseError) HTTPStatus() int {
	return e.StatusCode
}

func (e *BaseError) Code() string {
	return string(e.ErrorCode)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	BaseError
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s not found", resource),
			StatusCode: http.StatusNotFound,
			ErrorCode:  KindNotFound,
		},
		Resource: resource,
	}
}

// ValidationError represents a failed form or payload check
type ValidationError struct {
	BaseError
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  KindValidation,
		},
		Field: field,
	}
}

// ConflictError represents a constraint violation reported by the database
type ConflictError struct {
	BaseError
	Resource string
}

func NewConflictError(resource, details string) *ConflictError {
	return &ConflictError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s conflicts with existing data", resource),
			StatusCode: http.StatusConflict,
			ErrorCode:  KindConflict,
			Details:    details,
		},
		Resource: resource,
	}
}

// UnauthorizedError represents an authentication error
type UnauthorizedError struct {
	BaseError
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	if message == "" {
		message = "authentication required"
	}
	return &UnauthorizedError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusUnauthorized,
			ErrorCode:  KindUnauthorized,
		},
	}
}

// BadRequestError represents a generic bad request error
type BadRequestError struct {
	BaseError
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  KindBadRequest,
		},
	}
}

// SetupRequiredError is returned when a third-party integration has no credentials
type SetupRequiredError struct {
	BaseError
	Integration string
	Fallback    string
}

func NewSetupRequiredError(integration, fallback string) *SetupRequiredError {
	return &SetupRequiredError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s is not configured", integration),
			StatusCode: http.StatusServiceUnavailable,
			ErrorCode:  KindSetupRequired,
			Details:    fallback,
		},
		Integration: integration,
		Fallback:    fallback,
	}
}

// InternalError represents an internal server error
type InternalError struct {
	BaseError
	OriginalError error
}

func NewInternalError(original error) *InternalError {
	return &InternalError{
		BaseError: BaseError{
			Message:    "internal server error",
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  KindInternal,
		},
		OriginalError: original,
	}
}

func (e *InternalError) Unwrap() error {
	return e.OriginalError
}

// KindOf reports the kind of err; unknown errors are internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae AppError
	if stderrors.As(err, &ae) {
		return Kind(ae.Code())
	}
	return KindInternal
}

// Is reports whether err is of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromDB converts a gorm error into an AppError for the named resource.
// The connection must be opened with TranslateError so that constraint
// violations arrive as gorm sentinel errors.
func FromDB(err error, resource string) error {
	if err == nil {
		return nil
	}
	var ae AppError
	if stderrors.As(err, &ae) {
		return err
	}
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFoundError(resource)
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		return NewConflictError(resource, "referenced by or referencing other records")
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return NewConflictError(resource, "duplicate value")
	default:
		return NewInternalError(err)
	}
}

// ToHTTPError converts any error to an appropriate HTTP response
func ToHTTPError(err error) (int, map[string]interface{}) {
	if err == nil {
		return http.StatusOK, nil
	}

	var ae AppError
	if stderrors.As(err, &ae) {
		body := map[string]interface{}{
			"error":   ae.Code(),
			"message": ae.Error(),
		}
		var ve *ValidationError
		if stderrors.As(err, &ve) && ve.Field != "" {
			body["field"] = ve.Field
		}
		var se *SetupRequiredError
		if stderrors.As(err, &se) && se.Fallback != "" {
			body["fallback"] = se.Fallback
		}
		return ae.HTTPStatus(), body
	}

	return http.StatusInternalServerError, map[string]interface{}{
		"error":   string(KindInternal),
		"message": "internal server error",
	}
}
