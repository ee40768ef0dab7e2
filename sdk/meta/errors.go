package meta

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error codes the task API server attaches to structured error responses.
const (
	// ErrorCodeAccessUnauthorized indicates the authenticated principal may not
	// access the requested workspace or resource.
	ErrorCodeAccessUnauthorized = "ACCESS_UNAUTHORIZED"
	// ErrorCodeAuthUnauthorizedAccess indicates the request carried no valid
	// credentials.
	ErrorCodeAuthUnauthorizedAccess = "AUTH_UNAUTHORIZED_ACCESS"
	// ErrorCodeAuthUserNotFound indicates the credentials did not match a user.
	ErrorCodeAuthUserNotFound = "AUTH_USER_NOT_FOUND"
	// ErrorCodeResourceNotFound indicates the requested resource does not
	// exist.
	ErrorCodeResourceNotFound = "RESOURCE_NOT_FOUND"
	// ErrorCodeValidationError indicates the request was malformed.
	ErrorCodeValidationError = "VALIDATION_ERROR"
	// ErrorCodeInternalServerError indicates the API server failed.
	ErrorCodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// APIError is implemented by every structured error the API server can
// return.
type APIError interface {
	error
	// Code returns the machine-readable error code, if any.
	Code() string
}

// ErrorCode returns the machine-readable code carried by the (possibly
// wrapped) error, or the empty string if the error carries none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := errors.Cause(err).(APIError); ok {
		return apiErr.Code()
	}
	return ""
}

// ErrAuthentication represents an error wherein the API server could not
// authenticate the request.
type ErrAuthentication struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func (e *ErrAuthentication) Error() string {
	return fmt.Sprintf("Could not authenticate the request: %s", e.Message)
}

// Code returns the machine-readable error code.
func (e *ErrAuthentication) Code() string {
	return e.ErrorCode
}

// ErrAuthorization represents an error wherein the request was authenticated
// but the principal is not permitted to do what was asked.
type ErrAuthorization struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func (e *ErrAuthorization) Error() string {
	if e.Message == "" {
		return "The request is not authorized."
	}
	return fmt.Sprintf("The request is not authorized: %s", e.Message)
}

// Code returns the machine-readable error code.
func (e *ErrAuthorization) Code() string {
	return e.ErrorCode
}

// ErrBadRequest represents an error wherein the request was malformed.
type ErrBadRequest struct {
	Message   string   `json:"message"`
	ErrorCode string   `json:"errorCode,omitempty"`
	Details   []string `json:"details,omitempty"`
}

func (e *ErrBadRequest) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("Bad request: %s", e.Message)
	}
	msg := fmt.Sprintf("Bad request: %s:", e.Message)
	for i, detail := range e.Details {
		msg = fmt.Sprintf("%s\n  %d. %s", msg, i, detail)
	}
	return msg
}

// Code returns the machine-readable error code.
func (e *ErrBadRequest) Code() string {
	return e.ErrorCode
}

// ErrNotFound represents an error wherein a requested resource does not
// exist.
type ErrNotFound struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func (e *ErrNotFound) Error() string {
	if e.Message == "" {
		return "The requested resource was not found."
	}
	return e.Message
}

// Code returns the machine-readable error code.
func (e *ErrNotFound) Code() string {
	return e.ErrorCode
}

// ErrConflict represents an error wherein a request conflicts with the
// current state of a resource.
type ErrConflict struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("Conflict: %s", e.Message)
}

// Code returns the machine-readable error code.
func (e *ErrConflict) Code() string {
	return e.ErrorCode
}

// ErrInternalServer represents a failure on the API server's side.
type ErrInternalServer struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func (e *ErrInternalServer) Error() string {
	return "An internal server error occurred."
}

// Code returns the machine-readable error code.
func (e *ErrInternalServer) Code() string {
	return e.ErrorCode
}

// ErrUnexpectedStatus represents an error response whose status code the
// client has no more specific error type for.
type ErrUnexpectedStatus struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	ErrorCode  string `json:"errorCode,omitempty"`
}

func (e *ErrUnexpectedStatus) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("received %d from API server", e.StatusCode)
	}
	return fmt.Sprintf(
		"received %d from API server: %s",
		e.StatusCode,
		e.Message,
	)
}

// Code returns the machine-readable error code.
func (e *ErrUnexpectedStatus) Code() string {
	return e.ErrorCode
}
