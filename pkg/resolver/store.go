package resolver

import (
	"path/filepath"

	"github.com/ActiveState/devenv/internal/constants"
	"github.com/ActiveState/devenv/internal/errs"
	"github.com/ActiveState/devenv/internal/fileutils"
	"github.com/ActiveState/devenv/internal/logging"
	"github.com/ActiveState/devenv/pkg/envdef"
	"github.com/ActiveState/devenv/pkg/envspec"
)

// layout maps the conventional sub directories of an installation prefix to the
// variables they contribute to. Order is the order of contribution.
var layout = []struct {
	variable string
	subdirs  []string
}{
	{"PATH", []string{"bin"}},
	{"PKG_CONFIG_PATH", []string{"lib/pkgconfig", "share/pkgconfig"}},
	{"LIBRARY_PATH", []string{"lib"}},
	{"LD_LIBRARY_PATH", []string{"lib"}},
	{"CPATH", []string{"include"}},
}

// Store resolves dependencies installed as `<Root>/<name>` directories. An entry that exists but
// is not a directory is reported as a broken store rather than as a missing dependency.
//
// A dependency that ships a runtime.json gets its environment from that file, with
// `${INSTALLDIR}` pointing at the dependency directory. Otherwise the directory is
// treated as an installation prefix and its bin, lib, lib/pkgconfig, share/pkgconfig
// and include directories are added to the matching search path variables.
type Store struct {
	Root string
}

// NewStore returns a resolver for the store at root
func NewStore(root string) *Store {
	return &Store{Root: root}
}

func (s *Store) Resolve(ref envspec.Ref) (*envdef.EnvironmentDefinition, error) {
	name := string(ref)
	if name != filepath.Base(name) || name == "." || name == ".." {
		// names are single path components, anything else could escape the store
		return nil, NotFound(ref)
	}

	dir := filepath.Join(s.Root, name)
	if !fileutils.TargetExists(dir) {
		return nil, NotFound(ref)
	}
	if !fileutils.DirExists(dir) {
		return nil, errs.New("Store entry %s is not a directory", dir)
	}

	defFile := filepath.Join(dir, constants.EnvironmentDefinitionFilename)
	if fileutils.FileExists(defFile) {
		logging.Debug("Loading environment definition of %s from %s", ref, defFile)
		ed, err := envdef.NewEnvironmentDefinition(defFile)
		if err != nil {
			return nil, errs.Wrap(err, "Could not load environment definition of %s", ref)
		}
		ed = ed.ExpandVariables(envdef.NewConstants(dir))
		ed.InstallDir = dir
		return ed, nil
	}

	logging.Debug("Deriving environment of %s from the layout of %s", ref, dir)
	ed := &envdef.EnvironmentDefinition{InstallDir: dir}
	for _, l := range layout {
		if dirs := fileutils.ExistingDirs(dir, l.subdirs...); len(dirs) > 0 {
			ed.Env = append(ed.Env, envdef.NewPathVariable(l.variable, dirs...))
		}
	}
	return ed, nil
}
