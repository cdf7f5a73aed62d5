package envspec

import (
	"fmt"

	"github.com/ActiveState/devenv/internal/errs"
)

// InvalidSpecError is returned for specs that cannot be evaluated: an unknown role or an empty
// dependency name.
type InvalidSpecError struct {
	*errs.WrapperError
	Role Role
	Name string
}

func newInvalidSpecError(role Role, name string, reason string, args ...interface{}) *InvalidSpecError {
	return &InvalidSpecError{
		errs.NewWrapperError(nil, "Invalid environment spec: %s", fmt.Sprintf(reason, args...)),
		role,
		name,
	}
}
