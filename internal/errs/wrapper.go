package errs

import "fmt"

// WrapperError is embedded by typed errors so they carry a message, a cause and a stack while still being
// distinguishable with errors.As.
type WrapperError struct {
	*WrappedErr
}

// NewWrapperError creates the embeddable wrapper for a typed error.
func NewWrapperError(wrapTarget error, message string, args ...interface{}) *WrapperError {
	return &WrapperError{newError(fmt.Sprintf(message, args...), wrapTarget)}
}
