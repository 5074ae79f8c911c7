package util

import (
	"errors"
	"fmt"
	"net/http"
)

// ClientError standardizes errors surfaced by the SDK.
type ClientError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

const (
	// CodeAuthFailure covers bad credentials and inactive accounts. Callers
	// show a blocking dialog and must not retry.
	CodeAuthFailure = "AUTH_FAILURE"
	// CodeRequestFailure covers network errors, timeouts and non-auth HTTP
	// failures. Transient; callers may retry manually.
	CodeRequestFailure = "REQUEST_FAILURE"
)

// NewAuthFailure constructs an authentication/authorization error.
func NewAuthFailure(message string, status int) error {
	return &ClientError{Code: CodeAuthFailure, Message: message, HTTPStatus: status}
}

// NewRequestFailure wraps a transport or HTTP status error.
func NewRequestFailure(message string, status int, err error) error {
	return &ClientError{Code: CodeRequestFailure, Message: message, HTTPStatus: status, Err: err}
}

// IsAuthFailure reports whether err is an AuthFailure.
func IsAuthFailure(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Code == CodeAuthFailure
}

// IsRequestFailure reports whether err is a RequestFailure.
func IsRequestFailure(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Code == CodeRequestFailure
}

// ToClientError converts generic errors to ClientError.
func ToClientError(err error) *ClientError {
	if err == nil {
		return nil
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce
	}
	return &ClientError{
		Code:       CodeRequestFailure,
		Message:    "request failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
