package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed operation for the UI layer.
type ErrorKind int

const (
	// KindNetwork covers connectivity failures and unexpected server errors.
	KindNetwork ErrorKind = iota
	// KindAuthorization covers a missing, expired, or rejected token.
	KindAuthorization
	// KindValidation covers requests the server rejected as invalid
	// (e.g. slot already taken, past date).
	KindValidation
)

// GenericFailureMessage is shown when the server supplies no usable message.
const GenericFailureMessage = "Something went wrong, please try again"

// APIError is the error type returned by the remote client. The Message is
// safe to surface to the user; Err carries the underlying cause, if any.
type APIError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.Status, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// AuthorizationError builds a KindAuthorization APIError.
func AuthorizationError(status int, message string) *APIError {
	if message == "" {
		message = "Authorization failed"
	}
	return &APIError{Kind: KindAuthorization, Message: message, Status: status}
}

// ValidationError builds a KindValidation APIError carrying the server's
// message verbatim.
func ValidationError(status int, message string) *APIError {
	if message == "" {
		message = GenericFailureMessage
	}
	return &APIError{Kind: KindValidation, Message: message, Status: status}
}

// NetworkError wraps a transport-level failure.
func NetworkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: GenericFailureMessage, Err: err}
}

// ClassifyStatus maps a non-2xx HTTP status and the server-provided message
// into the error taxonomy.
func ClassifyStatus(status int, serverMessage string) *APIError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return AuthorizationError(status, serverMessage)
	case status == http.StatusBadRequest || status == http.StatusConflict ||
		status == http.StatusUnprocessableEntity:
		return ValidationError(status, serverMessage)
	default:
		return &APIError{Kind: KindNetwork, Message: GenericFailureMessage, Status: status}
	}
}

// IsAuthorization reports whether err is an authorization failure.
func IsAuthorization(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuthorization
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindValidation
}

// UserMessage extracts the user-facing message from err, falling back to the
// generic message for anything outside the taxonomy.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericFailureMessage
}
