package errs

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Error enforces errors that include a stacktrace
type Error interface {
	Unwrap() error
	Stack() pkgerrors.StackTrace
}

// WrappedErr is what we use for errors created from this package, this does not mean every error returned from this
// package is wrapping something, it simply has the plumbing to.
type WrappedErr struct {
	msg     string
	wrapped error
	stack   pkgerrors.StackTrace
}

// Error returns the error message
func (e *WrappedErr) Error() string {
	return e.msg
}

// Unwrap returns the parent error, if one exists
func (e *WrappedErr) Unwrap() error {
	return e.wrapped
}

// Stack returns the stacktrace for where this error was created
func (e *WrappedErr) Stack() pkgerrors.StackTrace {
	return e.stack
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

func newError(msg string, wrapTarget error) *WrappedErr {
	var stack pkgerrors.StackTrace
	if st, ok := pkgerrors.New(msg).(stackTracer); ok {
		// Drop the frames of this package: newError and its exported caller.
		stack = st.StackTrace()
		if len(stack) > 2 {
			stack = stack[2:]
		}
	}
	return &WrappedErr{msg, wrapTarget, stack}
}

// New creates a new error, similar to errors.New
func New(message string, args ...interface{}) error {
	return newError(fmt.Sprintf(message, args...), nil)
}

// Wrap creates a new error that wraps the given error
func Wrap(wrapTarget error, message string, args ...interface{}) error {
	return newError(fmt.Sprintf(message, args...), wrapTarget)
}

// JoinMessage joins all error messages in the Unwrap stack that are visible to the end-user.
func JoinMessage(err error) string {
	var message []string
	for _, err := range Unpack(err) {
		msg := err.Error()
		if len(message) > 0 && message[len(message)-1] == msg {
			continue
		}
		message = append(message, msg)
	}
	return strings.Join(message, ": ")
}

// Unpack will recursively unpack an error into a list of errors, which is useful if you need to iterate over all errors.
func Unpack(err error) []error {
	result := []error{}
	for err != nil {
		result = append(result, err)
		err = errors.Unwrap(err)
	}
	return result
}

// Matches is an analog for errors.As that just checks whether err matches the given type, so you can do:
// errs.Matches(err, &MyErr{})
// Without having to first assign it to a variable
func Matches(err error, target interface{}) bool {
	if target == nil {
		panic("target cannot be nil")
	}
	for _, e := range Unpack(err) {
		if fmt.Sprintf("%T", e) == fmt.Sprintf("%T", target) {
			return true
		}
	}
	return false
}
