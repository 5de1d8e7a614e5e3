/*
Package shared holds the error vocabulary common to every domain
operation. Sentinel errors support errors.Is checks; DomainError carries
the business context and a stack captured at the point of creation,
formatted only when a log line actually needs it. HTTP concerns stay in
the API layer.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrNotFound signals a missing user, item, notification or request.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals an illegal state change, e.g. updating a
	// request that already reached a terminal status.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput signals failed argument validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden signals an authorized caller lacking permission.
	ErrForbidden = errors.New("forbidden")
)

// DomainError attaches entity context and a captured stack to one of
// the sentinel errors above.
type DomainError struct {
	Err     error
	Entity  string
	Message string
	Field   string

	stack []uintptr
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

// Stack formats the captured frames. Deferred until log time so error
// construction stays cheap.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack records the current call stack. skip counts the frames
// to drop (Callers, CaptureStack and the constructor itself).
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders frames as "file:line func", dropping runtime
// internals and capping at ten frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

func NewForbiddenError(entity, reason string) error {
	return &DomainError{
		Err:     ErrForbidden,
		Entity:  entity,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// Stacker is implemented by errors that carry their own stack; the API
// layer uses it to log the point of failure.
type Stacker interface {
	Stack() []string
}
