// Package evaluator folds the resolved dependencies of an environment spec into the environment
// variables of a build or development shell.
//
// Evaluation is a pure function of the spec and the resolver's view of the package source: no
// state is kept between calls, and the same inputs always produce the same descriptor.
package evaluator

import (
	"errors"

	"github.com/gammazero/workerpool"

	"github.com/ActiveState/devenv/internal/errs"
	"github.com/ActiveState/devenv/internal/logging"
	"github.com/ActiveState/devenv/pkg/envdef"
	"github.com/ActiveState/devenv/pkg/envspec"
	"github.com/ActiveState/devenv/pkg/resolver"
)

type options struct {
	parallelism int
}

// Option configures an evaluation
type Option func(*options)

// WithParallelism resolves up to n dependencies concurrently. Values below 2 resolve sequentially.
// The resolver must be safe for concurrent use. Results are folded in spec order either way.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// Evaluate resolves every dependency of spec and merges their contributions into a descriptor.
//
// Roles are folded in priority order (build tools before libraries), dependencies in the order they
// are listed. Path entries are appended, and a path that was already contributed keeps its first
// position. The spec is validated before anything is resolved; any failure aborts the evaluation
// and no descriptor is returned.
func Evaluate(spec *envspec.Spec, r resolver.Resolver, opts ...Option) (*Descriptor, error) {
	if spec == nil {
		return nil, errs.New("No environment spec given")
	}
	if r == nil {
		return nil, errs.New("No resolver given")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	entries := spec.Entries()
	var artifacts []*envdef.EnvironmentDefinition
	var err error
	if o.parallelism > 1 && len(entries) > 1 {
		artifacts, err = resolveParallel(entries, r, o.parallelism)
	} else {
		artifacts, err = resolveSequential(entries, r)
	}
	if err != nil {
		return nil, err
	}

	return fold(entries, artifacts)
}

func resolveOne(entry envspec.Entry, r resolver.Resolver) (*envdef.EnvironmentDefinition, error) {
	logging.Debug("Resolving %s dependency %s", entry.Role, entry.Ref)
	ed, err := r.Resolve(entry.Ref)
	if err != nil {
		return nil, newDependencyNotFoundError(entry, err)
	}
	if ed == nil {
		ed = &envdef.EnvironmentDefinition{}
	}
	return ed, nil
}

func resolveSequential(entries []envspec.Entry, r resolver.Resolver) ([]*envdef.EnvironmentDefinition, error) {
	artifacts := make([]*envdef.EnvironmentDefinition, len(entries))
	for i, entry := range entries {
		ed, err := resolveOne(entry, r)
		if err != nil {
			return nil, err
		}
		artifacts[i] = ed
	}
	return artifacts, nil
}

// resolveParallel resolves all entries on a worker pool. Every entry is attempted, and the
// reported failure is the first one in fold order so the result does not depend on scheduling.
func resolveParallel(entries []envspec.Entry, r resolver.Resolver, workers int) ([]*envdef.EnvironmentDefinition, error) {
	artifacts := make([]*envdef.EnvironmentDefinition, len(entries))
	failures := make([]error, len(entries))

	wp := workerpool.New(workers)
	for i, entry := range entries {
		i, entry := i, entry
		wp.Submit(func() {
			artifacts[i], failures[i] = resolveOne(entry, r)
		})
	}
	wp.StopWait()

	for _, err := range failures {
		if err != nil {
			return nil, err
		}
	}
	return artifacts, nil
}

// contribution returns the definition as it is folded: path list variables are appended regardless
// of the join directive the package declared. Single valued variables never inherit and their
// separator is unused, so both are normalized and only the value decides a conflict.
func contribution(ed *envdef.EnvironmentDefinition) *envdef.EnvironmentDefinition {
	res := ed.Copy()
	for i := range res.Env {
		ev := &res.Env[i]
		if ev.Join == envdef.Disallowed {
			ev.Inherit = false
			ev.Separator = envdef.DefaultSeparator
			continue
		}
		ev.Join = envdef.Append
	}
	return res
}

func fold(entries []envspec.Entry, artifacts []*envdef.EnvironmentDefinition) (*Descriptor, error) {
	acc := &envdef.EnvironmentDefinition{}
	resolved := make([]ResolvedDependency, 0, len(entries))
	for i, entry := range entries {
		c := contribution(artifacts[i])
		for _, ev := range c.Env {
			if ev.Join == envdef.Disallowed && len(ev.Values) > 1 {
				return nil, newConflictError(entry, ev.Name, errs.New("single valued variable %s has %d values", ev.Name, len(ev.Values)))
			}
		}
		merged, err := acc.Merge(c)
		if err != nil {
			var conflict *envdef.MergeConflictError
			variable := ""
			if errors.As(err, &conflict) {
				variable = conflict.Variable
			}
			return nil, newConflictError(entry, variable, err)
		}
		acc = merged
		resolved = append(resolved, ResolvedDependency{Role: entry.Role, Name: entry.Ref, InstallDir: artifacts[i].InstallDir})
	}

	d := newDescriptor(acc, resolved)
	logging.Debug("Evaluated %d dependencies into %d environment variables", len(entries), len(d.env))
	return d, nil
}
