package envspec

import (
	"sort"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/ActiveState/devenv/internal/logging"
)

// Ref is the name of a dependency as known to the package source. It carries no version.
type Ref string

func (r Ref) String() string {
	return string(r)
}

// Entry is a single dependency together with the role it was requested in
type Entry struct {
	Role Role
	Ref  Ref
}

// Spec maps roles to the ordered dependencies requested in them.
// The zero value is not usable, use New.
type Spec struct {
	deps map[Role][]Ref
}

// New returns an empty spec
func New() *Spec {
	return &Spec{deps: map[Role][]Ref{}}
}

// Default returns the environment of the display distributor project: pkg-config at build time,
// linked against systemd and dbus.
func Default() *Spec {
	s := New()
	s.Add(NativeBuildTool, "pkg-config")
	s.Add(LinkableLibrary, "systemd", "dbus")
	return s
}

// Add appends dependencies to a role. A dependency that is already listed for the role is
// dropped, so the first occurrence determines its position.
func (s *Spec) Add(role Role, refs ...Ref) *Spec {
	existing, ok := s.deps[role]
	if !ok {
		existing = []Ref{}
	}
	for _, ref := range refs {
		if funk.Contains(existing, ref) {
			logging.Debug("Dropping duplicate %s dependency %s", role, ref)
			continue
		}
		existing = append(existing, ref)
	}
	s.deps[role] = existing
	return s
}

// Refs returns a copy of the dependencies of a role
func (s *Spec) Refs(role Role) []Ref {
	return append([]Ref{}, s.deps[role]...)
}

// Roles returns the roles present in the spec. Known roles come first in priority order,
// unknown ones follow sorted by name.
func (s *Spec) Roles() []Role {
	var roles, unknown []Role
	for role := range s.deps {
		if role.Valid() {
			roles = append(roles, role)
		} else {
			unknown = append(unknown, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].priority() < roles[j].priority() })
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(roles, unknown...)
}

// Entries flattens the spec into fold order: role priority first, then the order within a role
func (s *Spec) Entries() []Entry {
	var entries []Entry
	for _, role := range s.Roles() {
		for _, ref := range s.deps[role] {
			entries = append(entries, Entry{role, ref})
		}
	}
	return entries
}

// Len returns the number of dependencies across all roles
func (s *Spec) Len() int {
	n := 0
	for _, refs := range s.deps {
		n += len(refs)
	}
	return n
}

// Validate checks that only known roles are used and that every dependency has a name.
// Names consisting only of whitespace count as empty.
func (s *Spec) Validate() error {
	for _, role := range s.Roles() {
		if !role.Valid() {
			return newInvalidSpecError(role, "", "unknown role %q", role)
		}
		for i, ref := range s.deps[role] {
			if strings.TrimSpace(string(ref)) == "" {
				return newInvalidSpecError(role, string(ref), "dependency #%d of role %s has an empty name", i+1, role)
			}
		}
	}
	return nil
}
