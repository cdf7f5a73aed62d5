// Package resolver turns dependency names into the environment contributions of the
// installed dependency. Resolvers are expected to be deterministic: the same name
// resolves to the same definition for as long as the package source is unchanged.
package resolver

import (
	"errors"

	"github.com/ActiveState/devenv/internal/errs"
	"github.com/ActiveState/devenv/pkg/envdef"
	"github.com/ActiveState/devenv/pkg/envspec"
)

// ErrNotFound is returned (wrapped) when the package source does not know a dependency
var ErrNotFound = errors.New("dependency not found")

// IsNotFound reports whether err says that a dependency is absent from the package source
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NotFound returns an ErrNotFound wrapping error naming the dependency
func NotFound(ref envspec.Ref) error {
	return errs.Wrap(ErrNotFound, "Dependency %s not found", ref)
}

// Resolver resolves a single dependency
type Resolver interface {
	Resolve(ref envspec.Ref) (*envdef.EnvironmentDefinition, error)
}

// Func adapts a function to the Resolver interface
type Func func(ref envspec.Ref) (*envdef.EnvironmentDefinition, error)

func (f Func) Resolve(ref envspec.Ref) (*envdef.EnvironmentDefinition, error) {
	return f(ref)
}

// Static resolves from a fixed in-memory view
type Static map[envspec.Ref]*envdef.EnvironmentDefinition

func (s Static) Resolve(ref envspec.Ref) (*envdef.EnvironmentDefinition, error) {
	ed, ok := s[ref]
	if !ok || ed == nil {
		return nil, NotFound(ref)
	}
	return ed.Copy(), nil
}

// Chain tries each resolver in order and returns the first result that is not a not-found error
type Chain []Resolver

func (c Chain) Resolve(ref envspec.Ref) (*envdef.EnvironmentDefinition, error) {
	for _, r := range c {
		ed, err := r.Resolve(ref)
		if err == nil {
			return ed, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, NotFound(ref)
}
