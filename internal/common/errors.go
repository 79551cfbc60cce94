package common

import (
	"errors"
	"net/http"
)

// Error codes rendered in the error envelope.
const (
	CodeInternal        = "INTERNAL"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidCartID   = "INVALID_CART_ID"
	CodeInvalidItemID   = "INVALID_ITEM_ID"
	CodeValidation      = "VALIDATION_FAILED"
	CodeCartEmpty       = "CART_EMPTY"
	CodeUnknownAddon    = "UNKNOWN_ADDON"
	CodeRateLimited     = "RATE_LIMITED"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// AppError is an error that already knows how it should be rendered over HTTP.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// WriteAppError renders err when it wraps an AppError and reports whether it did.
func WriteAppError(w http.ResponseWriter, err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	code := appErr.Code
	if code == "" {
		code = CodeInternal
	}
	JSONError(w, status, code, appErr.Message, appErr.Details)
	return true
}
