package envdef

import (
	"fmt"

	"github.com/ActiveState/devenv/internal/errs"
)

// MergeConflictError is returned when two definitions of the same variable cannot be merged
type MergeConflictError struct {
	*errs.WrapperError
	Variable string
}

func newMergeConflictError(variable string, reason string, args ...interface{}) *MergeConflictError {
	return &MergeConflictError{
		errs.NewWrapperError(nil, "cannot merge environment variable %s: %s", variable, fmt.Sprintf(reason, args...)),
		variable,
	}
}
