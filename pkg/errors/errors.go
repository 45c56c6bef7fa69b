package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTooManyRequests = errors.New("too many requests")
	ErrRemoteCall      = errors.New("remote call failed")
	ErrNoSession       = errors.New("no session")
	ErrPageNotSelected = errors.New("page not selected")
)

// Error codes attached with WrapWithCode.
const (
	CodeRemoteHTTP    = "remote_http"
	CodeRemoteDecode  = "remote_decode"
	CodeRemoteNetwork = "remote_network"
	CodeRemoteAPI     = "remote_api"
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with a message
func New(message string) error {
	return &Error{
		Message: message,
	}
}

// Wrap wraps an error with additional message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Remote marks err as a failed call to the remote graph API.
func Remote(code, message string, err error) error {
	if err == nil {
		err = ErrRemoteCall
	} else {
		err = fmt.Errorf("%w: %w", ErrRemoteCall, err)
	}
	return WrapWithCode(err, code, message)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound returns true if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRemoteCall returns true if the error came from the remote graph API
func IsRemoteCall(err error) bool {
	return errors.Is(err, ErrRemoteCall)
}

// IsMissingSession returns true if the request lacks the session state it needs
func IsMissingSession(err error) bool {
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrPageNotSelected)
}

// HTTPStatus maps an error to the status code the web layer answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case IsRemoteCall(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
