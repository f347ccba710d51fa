package transport

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies transport failures
type ErrorType int

const (
	NetworkError ErrorType = iota
	TimeoutError
	HTTPError
	CanceledError
	EncodingError
)

// String returns the human readable error type
func (t ErrorType) String() string {
	switch t {
	case NetworkError:
		return "network error"
	case TimeoutError:
		return "timeout error"
	case HTTPError:
		return "HTTP error"
	case CanceledError:
		return "canceled error"
	case EncodingError:
		return "encoding error"
	default:
		return "unknown error"
	}
}

// ClientError is implemented by every error the HTTP transport returns
type ClientError interface {
	error
	Type() ErrorType
}

type networkError struct {
	message string
	err     error
}

// NewNetworkError creates an error for connection level failures
func NewNetworkError(message string, err error) ClientError {
	return &networkError{message: message, err: err}
}

func (e *networkError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", NetworkError, e.message, e.err)
	}
	return fmt.Sprintf("%s: %s", NetworkError, e.message)
}

func (e *networkError) Type() ErrorType { return NetworkError }
func (e *networkError) Unwrap() error { return e.err }

type timeoutError struct {
	message string
	timeout time.Duration
	err     error
}

// NewTimeoutError creates an error for calls that exceeded their deadline
func NewTimeoutError(message string, timeout time.Duration, err error) ClientError {
	return &timeoutError{message: message, timeout: timeout, err: err}
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("%s: %s (timeout %s)", TimeoutError, e.message, e.timeout)
}

func (e *timeoutError) Type() ErrorType { return TimeoutError }
func (e *timeoutError) Unwrap() error { return e.err }

type httpError struct {
	message    string
	statusCode int
	body       []byte
}

// NewHTTPError creates an error for a non-2xx response
func NewHTTPError(message string, statusCode int, body []byte) ClientError {
	return &httpError{message: message, statusCode: statusCode, body: body}
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", HTTPError, e.message, e.statusCode)
}

func (e *httpError) Type() ErrorType { return HTTPError }
func (e *httpError) StatusCode() int { return e.statusCode }
func (e *httpError) Body() []byte { return e.body }

type canceledError struct {
	message string
	cause   error
}

// NewCanceledError creates an error for a call preempted by cancellation.
// cause is the cancellation cause, e.g. the abort signal of an executable.
func NewCanceledError(message string, cause error) ClientError {
	return &canceledError{message: message, cause: cause}
}

func (e *canceledError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", CanceledError, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", CanceledError, e.message)
}

func (e *canceledError) Type() ErrorType { return CanceledError }
func (e *canceledError) Unwrap() error { return e.cause }

type encodingError struct {
	message string
	err     error
}

// NewEncodingError creates an error for request bodies that could not be serialized
func NewEncodingError(message string, err error) ClientError {
	return &encodingError{message: message, err: err}
}

func (e *encodingError) Error() string {
	return fmt.Sprintf("%s: %s: %v", EncodingError, e.message, e.err)
}

func (e *encodingError) Type() ErrorType { return EncodingError }
func (e *encodingError) Unwrap() error { return e.err }

// IsErrorType reports whether err, or an error it wraps, is a ClientError of type t
func IsErrorType(err error, t ErrorType) bool {
	var ce ClientError
	if errors.As(err, &ce) {
		return ce.Type() == t
	}
	return false
}

// StatusCode extracts the HTTP status of a non-2xx response error
func StatusCode(err error) (int, bool) {
	var se interface{ StatusCode() int }
	if errors.As(err, &se) {
		return se.StatusCode(), true
	}
	return 0, false
}

// IsHTTPStatusError reports whether err is an HTTP error with the given status
func IsHTTPStatusError(err error, statusCode int) bool {
	code, ok := StatusCode(err)
	return ok && code == statusCode
}

// IsSuccessStatus reports whether statusCode is in the 2xx range
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
