// Package errors provides enhanced error handling for the boostgen design
// pipeline, including the failure taxonomy the outer optimizer recovers
// from (domain, convergence, infeasible selection).
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// Kind classifies a design pipeline failure.
type Kind int

const (
	// KindUnknown is an unclassified error.
	KindUnknown Kind = iota
	// KindDomain marks malformed electrical inputs (VO <= VI, non-positive
	// catalog ratings) detected at map-build or parse time.
	KindDomain
	// KindConvergence marks a bounded iterative procedure that failed to
	// stabilize within its iteration cap.
	KindConvergence
	// KindInfeasible marks a catalog search with no surviving candidate.
	KindInfeasible
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	case KindConvergence:
		return "convergence"
	case KindInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Error represents an error with context and stack trace.
type Error struct {
	// The underlying error that was returned
	Err error
	// A human-readable message describing the error
	Message string
	// The operation that was being performed when the error occurred
	Operation string
	// The component or package where the error occurred
	Component string
	// The failure classification used by the optimizer's recovery policy
	Kind Kind
	// The stack trace
	Stack []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var builder strings.Builder

	if e.Message != "" {
		builder.WriteString(e.Message)
	}

	if e.Operation != "" {
		if builder.Len() > 0 {
			builder.WriteString(": ")
		}
		builder.WriteString("operation=")
		builder.WriteString(e.Operation)
	}

	if e.Component != "" {
		if builder.Len() > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString("component=")
		builder.WriteString(e.Component)
	}

	if e.Err != nil {
		if builder.Len() > 0 {
			builder.WriteString(": ")
		}
		builder.WriteString(e.Err.Error())
	}

	return builder.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithMessage adds a message to the error.
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithOperation adds an operation to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Operation = op
	return e
}

// WithComponent adds a component to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// WithKind classifies the error.
func (e *Error) WithKind(kind Kind) *Error {
	e.Kind = kind
	return e
}

// StackTrace returns the stack trace as a slice of strings.
func (e *Error) StackTrace() []string {
	return e.Stack
}

// New creates a new error with a message.
func New(msg string) *Error {
	return &Error{
		Message: msg,
		Stack:   getStackTrace(),
	}
}

// Errorf creates a new error with a formatted message.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Stack:   getStackTrace(),
	}
}

// Domainf creates a new domain error with a formatted message.
func Domainf(format string, args ...interface{}) *Error {
	return Errorf(format, args...).WithKind(KindDomain)
}

// Convergencef creates a new convergence error with a formatted message.
func Convergencef(format string, args ...interface{}) *Error {
	return Errorf(format, args...).WithKind(KindConvergence)
}

// Infeasiblef creates a new infeasible-selection error with a formatted
// message.
func Infeasiblef(format string, args ...interface{}) *Error {
	return Errorf(format, args...).WithKind(KindInfeasible)
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) *Error {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		e = &Error{
			Err:   err,
			Stack: getStackTrace(),
		}
	}

	if msg != "" {
		e.Message = msg
	}

	return e
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		e = &Error{
			Err:   err,
			Stack: getStackTrace(),
		}
	}

	e.Message = fmt.Sprintf(format, args...)
	return e
}

// KindOf reports the classification of err, walking the unwrap chain until
// a classified error is found.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind != KindUnknown {
			return e.Kind
		}
		err = Unwrap(err)
	}
	return KindUnknown
}

// IsRecoverable reports whether the optimizer may substitute a penalty loss
// for err and continue exploring. Context cancellation is never recoverable.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindDomain, KindConvergence, KindInfeasible:
		return true
	default:
		return false
	}
}

// getStackTrace returns the current stack trace as a slice of strings.
func getStackTrace() []string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:]) // Skip runtime.Callers, getStackTrace, and the constructor
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]string, 0, n)

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") && !strings.Contains(frame.File, "internal/errors") {
			stack = append(stack, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}

	return stack
}

// Unwrap returns the result of calling the Unwrap method on err, if err's
// type contains an Unwrap method returning error.
// Otherwise, Unwrap returns nil.
func Unwrap(err error) error {
	u, ok := err.(interface {
		Unwrap() error
	})
	if !ok {
		return nil
	}
	return u.Unwrap()
}
