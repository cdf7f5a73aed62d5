package evaluator

import (
	"github.com/ActiveState/devenv/internal/errs"
	"github.com/ActiveState/devenv/pkg/envspec"
)

// DependencyNotFoundError is returned when a dependency of the spec cannot be resolved. The resolver's error is
// kept as the cause; resolver.IsNotFound tells an absent dependency apart from a broken package source.
type DependencyNotFoundError struct {
	*errs.WrapperError
	Name envspec.Ref
	Role envspec.Role
}

func newDependencyNotFoundError(entry envspec.Entry, cause error) *DependencyNotFoundError {
	return &DependencyNotFoundError{
		errs.NewWrapperError(cause, "Could not resolve %s dependency %s", entry.Role, entry.Ref),
		entry.Ref,
		entry.Role,
	}
}

// ConflictError is returned when the contribution of a dependency cannot be merged into the environment, eg. because
// two dependencies set the same single valued variable to different values.
type ConflictError struct {
	*errs.WrapperError
	Variable string
	Name     envspec.Ref
	Role     envspec.Role
}

func newConflictError(entry envspec.Entry, variable string, cause error) *ConflictError {
	return &ConflictError{
		errs.NewWrapperError(cause, "Environment of %s dependency %s conflicts with earlier dependencies", entry.Role, entry.Ref),
		variable,
		entry.Ref,
		entry.Role,
	}
}
