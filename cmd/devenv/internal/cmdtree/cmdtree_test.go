package cmdtree

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ActiveState/devenv/internal/config"
	"github.com/ActiveState/devenv/internal/errs"
	"github.com/ActiveState/devenv/pkg/envdef"
)

func newConfig(t *testing.T) *config.Instance {
	cfg, err := config.NewCustom(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cfg.Close() })
	return cfg
}

func newStore(t *testing.T) string {
	root := t.TempDir()
	for _, dir := range []string{"pkg-config/bin", "systemd/lib", "dbus/lib", "dbus/include"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0755))
	}
	return root
}

func run(t *testing.T, cfg *config.Instance, args ...string) (string, error) {
	out := &bytes.Buffer{}
	err := New(cfg, out, &bytes.Buffer{}).Execute(args)
	return out.String(), err
}

func TestEnvShell(t *testing.T) {
	store := newStore(t)
	out, err := run(t, newConfig(t), "env", "--store", store)
	require.NoError(t, err)

	lib := filepath.Join(store, "systemd", "lib") + envdef.DefaultSeparator + filepath.Join(store, "dbus", "lib")
	assert.Contains(t, out, "export LIBRARY_PATH="+shellQuote(lib)+"\n")
	assert.Contains(t, out, "export PATH="+shellQuote(filepath.Join(store, "pkg-config", "bin"))+"\n")
	assert.True(t, strings.HasPrefix(out, "export CPATH="), "variables are sorted: %s", out)
}

func TestEnvJSON(t *testing.T) {
	store := newStore(t)
	out, err := run(t, newConfig(t), "env", "--store", store, "--format", "json", "-j", "3")
	require.NoError(t, err)

	var parsed jsonOutput
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Len(t, parsed.Dependencies, 3)
	assert.Equal(t, "pkg-config", string(parsed.Dependencies[0].Name))
	assert.Len(t, parsed.Hash, 16)
	assert.Equal(t, filepath.Join(store, "dbus", "include"), parsed.Env["CPATH"])
}

func TestEnvInherit(t *testing.T) {
	store := newStore(t)
	t.Setenv("CPATH", "/usr/include")
	out, err := run(t, newConfig(t), "env", "--store", store, "--format", "env", "--inherit")
	require.NoError(t, err)
	assert.Contains(t, out, "CPATH="+filepath.Join(store, "dbus", "include")+envdef.DefaultSeparator+"/usr/include\n")
}

func TestEnvStoresFromConfig(t *testing.T) {
	cfg := newConfig(t)
	store := newStore(t)
	_, err := run(t, cfg, "config", "set", config.StoresKey, filepath.Join(t.TempDir(), "empty"), store)
	require.NoError(t, err)

	out, err := run(t, cfg, "hash")
	require.NoError(t, err)

	direct, err := run(t, newConfig(t), "hash", "--store", store)
	require.NoError(t, err)
	assert.Equal(t, direct, out)
}

func TestEnvSpecFile(t *testing.T) {
	store := newStore(t)
	specFile := filepath.Join(t.TempDir(), "devenv.yaml")
	require.NoError(t, os.WriteFile(specFile, []byte("buildInputs: [dbus]\n"), 0644))

	out, err := run(t, newConfig(t), "env", "--store", store, "--spec", specFile, "--format", "env")
	require.NoError(t, err)
	assert.NotContains(t, out, "PATH="+filepath.Join(store, "pkg-config"))
	assert.Contains(t, out, "CPATH="+filepath.Join(store, "dbus", "include"))
}

func TestEnvErrors(t *testing.T) {
	store := newStore(t)

	_, err := run(t, newConfig(t), "env")
	require.Error(t, err)
	assert.True(t, errs.IsUserFacing(err))
	assert.NotEmpty(t, errs.Tips(err))

	specFile := filepath.Join(t.TempDir(), "devenv.yaml")
	require.NoError(t, os.WriteFile(specFile, []byte("linkable-library: [dbus, libudev]\n"), 0644))
	_, err = run(t, newConfig(t), "env", "--store", store, "--spec", specFile)
	require.Error(t, err)
	assert.Equal(t, "The linkable-library dependency 'libudev' was not found in any package store.", errs.UserMessage(err))
	assert.Equal(t, 1, errs.UnwrapExitCode(err))

	_, err = run(t, newConfig(t), "env", "--store", store, "--format", "xml")
	require.Error(t, err)
	assert.True(t, errs.IsUserFacing(err))
}

func TestSpec(t *testing.T) {
	out, err := run(t, newConfig(t), "spec")
	require.NoError(t, err)
	assert.Contains(t, out, "native-build-tool:")
	assert.Contains(t, out, "- pkg-config")

	specFile := filepath.Join(t.TempDir(), "devenv.yaml")
	require.NoError(t, os.WriteFile(specFile, []byte("linkable-library: ['']\n"), 0644))
	_, err = run(t, newConfig(t), "spec", "--spec", specFile)
	require.Error(t, err)
	assert.True(t, errs.IsUserFacing(err))
}

func TestConfig(t *testing.T) {
	cfg := newConfig(t)

	_, err := run(t, cfg, "config", "set", config.ParallelismKey, "4")
	require.NoError(t, err)
	out, err := run(t, cfg, "config", "get", config.ParallelismKey)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	_, err = run(t, cfg, "config", "set", config.ParallelismKey, "4", "5")
	assert.Error(t, err)

	_, err = run(t, cfg, "config", "set", "unknown.key", "x")
	assert.Error(t, err)

	_, err = run(t, cfg, "config", "set", config.LogLevelKey, "chatty")
	assert.Error(t, err)

	_, err = run(t, cfg, "config", "set", config.InheritKey, "true")
	require.NoError(t, err)

	out, err = run(t, cfg, "config")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		config.InheritKey + ": true",
		config.ParallelismKey + ": 4",
		config.LogLevelKey + ": normal (default)",
		config.StoresKey + ": (default)",
	}, "\n")+"\n", out)

	out, err = run(t, cfg, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfg.ConfigPath()+"\n", out)
}

func TestResolveSettings(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, cfg.Set(config.StoresKey, []string{"/configured"}))
	require.NoError(t, cfg.Set(config.ParallelismKey, 2))

	s, err := resolveSettings(cfg, settings{Parallelism: 8})
	require.NoError(t, err)
	assert.Equal(t, []string{"/configured"}, s.Stores)
	assert.Equal(t, 8, s.Parallelism)
	assert.Equal(t, formatShell, s.Format)

	s, err = resolveSettings(cfg, settings{Stores: []string{"/flag"}, Format: formatJSON})
	require.NoError(t, err)
	assert.Equal(t, []string{"/flag"}, s.Stores)
	assert.Equal(t, 2, s.Parallelism)
	assert.Equal(t, formatJSON, s.Format)
	assert.False(t, s.Inherit)

	require.NoError(t, cfg.Set(config.InheritKey, true))
	s, err = resolveSettings(cfg, settings{})
	require.NoError(t, err)
	assert.True(t, s.Inherit)
}

func TestShellQuote(t *testing.T) {
	for _, v := range []string{"/store/dbus/lib", "a b", "it's", "$HOME:/x", ""} {
		words, err := shellquote.Split("export X=" + shellQuote(v))
		require.NoError(t, err)
		assert.Equal(t, []string{"export", "X=" + v}, words)
	}
}
