package evaluator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/ActiveState/devenv/pkg/envdef"
	"github.com/ActiveState/devenv/pkg/envspec"
)

// ResolvedDependency records which installation a dependency of the spec resolved to
type ResolvedDependency struct {
	Role       envspec.Role `json:"role"`
	Name       envspec.Ref  `json:"name"`
	InstallDir string       `json:"installdir,omitempty"`
}

// Descriptor is the result of an evaluation: the environment variables to set for the build or
// development process. It is immutable, all accessors return copies.
type Descriptor struct {
	def          *envdef.EnvironmentDefinition
	env          map[string]string
	dependencies []ResolvedDependency
}

func newDescriptor(def *envdef.EnvironmentDefinition, dependencies []ResolvedDependency) *Descriptor {
	return &Descriptor{
		def:          def,
		env:          def.GetEnv(),
		dependencies: dependencies,
	}
}

// Env returns the variables of the environment, path lists joined with their separator
func (d *Descriptor) Env() map[string]string {
	res := make(map[string]string, len(d.env))
	for k, v := range d.env {
		res[k] = v
	}
	return res
}

// Names returns the sorted variable names
func (d *Descriptor) Names() []string {
	names := make([]string, 0, len(d.env))
	for k := range d.env {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Value returns the value of a single variable
func (d *Descriptor) Value(name string) (string, bool) {
	v, ok := d.env[name]
	return v, ok
}

// Environ returns the environment as sorted NAME=value entries, ready for exec.Cmd.Env
func (d *Descriptor) Environ() []string {
	res := make([]string, 0, len(d.env))
	for _, k := range d.Names() {
		res = append(res, k+"="+d.env[k])
	}
	return res
}

// EnvBasedOn returns the environment joined with a base environment. Inheriting path lists keep the
// entries of the dependencies first, followed by the entries of the base value.
func (d *Descriptor) EnvBasedOn(lookup func(string) (string, bool)) (map[string]string, error) {
	return d.def.GetEnvBasedOn(lookup)
}

// Definition returns the merged environment definition
func (d *Descriptor) Definition() *envdef.EnvironmentDefinition {
	return d.def.Copy()
}

// Dependencies returns the resolved dependencies in fold order
func (d *Descriptor) Dependencies() []ResolvedDependency {
	return append([]ResolvedDependency{}, d.dependencies...)
}

// Hash fingerprints the environment. Two descriptors with the same variables and values have the same hash.
func (d *Descriptor) Hash() string {
	hasher := xxhash.New()
	for _, entry := range d.Environ() {
		// NUL cannot appear in environment entries, so entries cannot run into each other
		hasher.Write([]byte(entry))
		hasher.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}

func (d *Descriptor) String() string {
	return strings.Join(d.Environ(), "\n")
}
