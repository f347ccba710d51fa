package request

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch matches every *TypeMismatchError
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrAborted is the cancellation cause of an aborted executable
	ErrAborted = errors.New("request aborted")
)

const (
	invalidNameType      = "'name' should be type of string or Pair"
	invalidHeadersFormat = "'headers' should be []Pair, a map type or a record"
	invalidParamsFormat  = "'params' should be []Pair, a map type or a record"
	invalidQueryFormat   = "'query' should be []Pair, a map type or a record"
)

// TypeMismatchError reports an argument whose shape a builder method does not accept
type TypeMismatchError struct {
	Message     string
	Description string
	Got         any
}

func newTypeMismatch(message string, got any) *TypeMismatchError {
	return &TypeMismatchError{Message: message, Description: "Type Mismatch", Got: got}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s (got %T)", e.Description, e.Message, e.Got)
}

// Is makes errors.Is(err, ErrTypeMismatch) hold
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// Hook phases
const (
	PhaseSuccess = "success"
	PhaseError   = "error"
)

// HookError reports a hook that returned an error or panicked. It aborts the
// whole hook phase and is returned by Execute as is.
type HookError struct {
	Phase string
	Index int
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook #%d failed: %v", e.Phase, e.Index, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
