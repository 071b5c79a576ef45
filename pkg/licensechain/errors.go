package licensechain

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/licensechain/licensechain-go/pkg/utils"
)

// ErrorKind classifies an *Error.
type ErrorKind string

const (
	KindInvalidAPIKey   ErrorKind = "invalid_api_key"
	KindInvalidURL      ErrorKind = "invalid_url"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindNetwork         ErrorKind = "network"
	KindHTTP            ErrorKind = "http"
	KindValidation      ErrorKind = "validation"
	KindAuthentication  ErrorKind = "authentication"
	KindNotFound        ErrorKind = "not_found"
	KindRateLimit       ErrorKind = "rate_limit"
	KindServer          ErrorKind = "server"
	KindUnknown         ErrorKind = "unknown"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrInvalidAPIKey   = &Error{Kind: KindInvalidAPIKey}
	ErrInvalidURL      = &Error{Kind: KindInvalidURL}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrNetwork         = &Error{Kind: KindNetwork}
	ErrHTTP            = &Error{Kind: KindHTTP}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrAuthentication  = &Error{Kind: KindAuthentication}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrRateLimit       = &Error{Kind: KindRateLimit}
	ErrServer          = &Error{Kind: KindServer}
	ErrUnknown         = &Error{Kind: KindUnknown}
)

// unknownHTTPMessage is used when a non-2xx body carries no "error" string.
const unknownHTTPMessage = "Unknown error"

// Error is returned by every Client operation.
type Error struct {
	Kind ErrorKind
	// StatusCode is set for KindHTTP.
	StatusCode int
	Message    string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	return e.Description()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. An HTTP error additionally
// matches the kind its status code implies, so errors.Is(err, ErrNotFound)
// holds for a 404 response.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return e.Kind == KindHTTP && t.Kind == statusKind(e.StatusCode)
}

// Retryable reports whether the request pipeline retries after this error.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindInvalidResponse
}

// Description is a one-line human readable summary.
func (e *Error) Description() string {
	switch e.Kind {
	case KindInvalidAPIKey:
		return "Invalid API key provided"
	case KindInvalidURL:
		if e.Message != "" {
			return "Invalid URL: " + e.Message
		}
		return "Invalid URL"
	case KindInvalidResponse:
		if e.Err != nil {
			return "Invalid response from server: " + e.Err.Error()
		}
		return "Invalid response from server"
	case KindNetwork:
		if e.Err != nil {
			return "Network error: " + e.Err.Error()
		}
		return "Network error: " + e.Message
	case KindHTTP:
		return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Message)
	case KindValidation:
		return "Validation error: " + e.Message
	case KindAuthentication:
		return "Authentication error: " + e.Message
	case KindNotFound:
		return "Not found: " + e.Message
	case KindRateLimit:
		return "Rate limit exceeded: " + e.Message
	case KindServer:
		return "Server error: " + e.Message
	default:
		return "Unknown error occurred"
	}
}

// FailureReason explains what went wrong.
func (e *Error) FailureReason() string {
	switch e.Kind {
	case KindInvalidAPIKey:
		return "The API key is missing or invalid"
	case KindInvalidURL:
		return "The URL could not be constructed"
	case KindInvalidResponse:
		return "The server response could not be parsed"
	case KindNetwork:
		return "A network connection error occurred"
	case KindHTTP:
		return fmt.Sprintf("HTTP request failed with status code %d", e.StatusCode)
	case KindValidation:
		return "The request data failed validation"
	case KindAuthentication:
		return "Authentication failed"
	case KindNotFound:
		return "The requested resource was not found"
	case KindRateLimit:
		return "Too many requests were made"
	case KindServer:
		return "An internal server error occurred"
	default:
		return "An unexpected error occurred"
	}
}

// RecoverySuggestion tells the caller what to try next.
func (e *Error) RecoverySuggestion() string {
	switch e.Kind {
	case KindInvalidAPIKey:
		return "Please check your API key and try again"
	case KindInvalidURL:
		return "Please check the base URL configuration"
	case KindInvalidResponse:
		return "Please try again later or contact support"
	case KindNetwork:
		return "Please check your internet connection and try again"
	case KindHTTP:
		return httpRecoverySuggestion(e.StatusCode)
	case KindValidation:
		return "Please check your input data and try again"
	case KindAuthentication:
		return "Please check your API key and try again"
	case KindNotFound:
		return "The requested resource may have been moved or deleted"
	case KindRateLimit:
		return "Please wait before making another request"
	case KindServer:
		return "Please try again later or contact support"
	default:
		return "Please try again or contact support"
	}
}

func httpRecoverySuggestion(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "Please check your request parameters"
	case status == http.StatusUnauthorized:
		return "Please check your API key"
	case status == http.StatusForbidden:
		return "You don't have permission to access this resource"
	case status == http.StatusNotFound:
		return "The requested resource was not found"
	case status == http.StatusTooManyRequests:
		return "Please wait before making another request"
	case status >= 500 && status <= 599:
		return "Please try again later or contact support"
	default:
		return "Please try again"
	}
}

// statusKind maps an HTTP status to the semantic kind it implies, or "".
func statusKind(status int) ErrorKind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuthentication
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 500 && status <= 599:
		return KindServer
	default:
		return ""
	}
}

func newHTTPError(status int, message string) *Error {
	if message == "" {
		message = unknownHTTPMessage
	}
	return &Error{Kind: KindHTTP, StatusCode: status, Message: message}
}

func newNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

func newValidationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

// asValidationError converts helper and validator failures into a
// KindValidation *Error. Other errors are returned unchanged.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var lcErr *Error
	if errors.As(err, &lcErr) {
		return err
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return newValidationError(describeFieldErrors(fieldErrs), err)
	}
	if errors.Is(err, utils.ErrValidation) {
		return newValidationError(err.Error(), err)
	}
	return err
}
