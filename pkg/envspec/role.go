package envspec

import (
	"github.com/thoas/go-funk"
)

// Role names how a dependency is consumed by the build
type Role string

const (
	// NativeBuildTool is a tool executed on the build machine, eg. pkg-config
	NativeBuildTool Role = "native-build-tool"
	// LinkableLibrary is a library the build compiles and links against, eg. dbus
	LinkableLibrary Role = "linkable-library"
)

// roleOrder is the fold priority: build-time tools come before libraries so their
// search path entries take precedence.
var roleOrder = []Role{NativeBuildTool, LinkableLibrary}

var roleAliases = map[string]Role{
	"nativeBuildInputs": NativeBuildTool,
	"buildInputs":       LinkableLibrary,
}

// Roles returns all known roles in fold priority order
func Roles() []Role {
	return append([]Role{}, roleOrder...)
}

// Valid returns whether the role is part of the known set
func (r Role) Valid() bool {
	return funk.Contains(roleOrder, r)
}

func (r Role) priority() int {
	return funk.IndexOf(roleOrder, r)
}

func (r Role) String() string {
	return string(r)
}

// ParseRole returns the role for a canonical name or one of its aliases
func ParseRole(name string) (Role, error) {
	if alias, ok := roleAliases[name]; ok {
		return alias, nil
	}
	r := Role(name)
	if !r.Valid() {
		return "", newInvalidSpecError(r, "", "unknown role %q", name)
	}
	return r, nil
}
