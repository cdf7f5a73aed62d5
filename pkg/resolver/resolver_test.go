package resolver_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ActiveState/devenv/pkg/envdef"
	"github.com/ActiveState/devenv/pkg/envspec"
	"github.com/ActiveState/devenv/pkg/resolver"
)

func mkdirs(t *testing.T, base string, dirs ...string) {
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(base, filepath.FromSlash(d)), 0755))
	}
}

func TestStatic(t *testing.T) {
	r := resolver.Static{
		"dbus": {Env: []envdef.EnvironmentVariable{envdef.NewPathVariable("PKG_CONFIG_PATH", "/store/dbus/lib/pkgconfig")}},
	}

	ed, err := r.Resolve("dbus")
	require.NoError(t, err)
	assert.Equal(t, "/store/dbus/lib/pkgconfig", ed.Env[0].Values[0])

	ed.Env[0].Values[0] = "changed"
	again, err := r.Resolve("dbus")
	require.NoError(t, err)
	assert.Equal(t, "/store/dbus/lib/pkgconfig", again.Env[0].Values[0], "results must not share state with the view")

	_, err = r.Resolve("systemd")
	assert.True(t, resolver.IsNotFound(err))
	assert.Contains(t, err.Error(), "systemd")
}

func TestFunc(t *testing.T) {
	boom := errors.New("boom")
	r := resolver.Func(func(ref envspec.Ref) (*envdef.EnvironmentDefinition, error) {
		return nil, boom
	})
	_, err := r.Resolve("x")
	assert.Equal(t, boom, err)
}

func TestStoreLayout(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "dbus/lib/pkgconfig", "dbus/include", "dbus/bin", "dbus/share/pkgconfig", "pkg-config/bin")
	dbus := filepath.Join(root, "dbus")

	ed, err := resolver.NewStore(root).Resolve("dbus")
	require.NoError(t, err)
	assert.Equal(t, dbus, ed.InstallDir)
	assert.Equal(t, map[string]string{
		"PATH":            filepath.Join(dbus, "bin"),
		"PKG_CONFIG_PATH": filepath.Join(dbus, "lib", "pkgconfig") + envdef.DefaultSeparator + filepath.Join(dbus, "share", "pkgconfig"),
		"LIBRARY_PATH":    filepath.Join(dbus, "lib"),
		"LD_LIBRARY_PATH": filepath.Join(dbus, "lib"),
		"CPATH":           filepath.Join(dbus, "include"),
	}, ed.GetEnv())
	assert.Equal(t, []string{"PATH", "PKG_CONFIG_PATH", "LIBRARY_PATH", "LD_LIBRARY_PATH", "CPATH"}, ed.Names())

	ed, err = resolver.NewStore(root).Resolve("pkg-config")
	require.NoError(t, err)
	assert.Equal(t, []string{"PATH"}, ed.Names())
}

func TestStoreRuntimeJSON(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "systemd")
	systemd := filepath.Join(root, "systemd")
	require.NoError(t, os.WriteFile(filepath.Join(systemd, "runtime.json"), []byte(`{
		"env": [
			{"env_name": "PKG_CONFIG_PATH", "values": ["${INSTALLDIR}/lib/pkgconfig"], "join": "append"},
			{"env_name": "SYSTEMD_UNIT_PATH", "values": ["${INSTALLDIR}/units"], "join": "disallowed"}
		]
	}`), 0644))

	ed, err := resolver.NewStore(root).Resolve("systemd")
	require.NoError(t, err)
	assert.Equal(t, systemd, ed.InstallDir)
	assert.Equal(t, []string{systemd + "/lib/pkgconfig"}, ed.Env[0].Values)
	assert.Equal(t, envdef.Disallowed, ed.Env[1].Join)
}

func TestStoreInvalidRuntimeJSON(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "broken")
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken", "runtime.json"), []byte(`{`), 0644))

	_, err := resolver.NewStore(root).Resolve("broken")
	require.Error(t, err)
	assert.False(t, resolver.IsNotFound(err), "a broken definition is not a missing dependency")
}

func TestStoreNotFound(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "dbus")

	for _, name := range []envspec.Ref{"missing", "../dbus", "dbus/lib", "..", "."} {
		_, err := resolver.NewStore(root).Resolve(name)
		assert.True(t, resolver.IsNotFound(err), "%s should not be found", name)
	}
}

func TestStoreEntryNotADirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "file"), []byte("x"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling")))

	for _, name := range []envspec.Ref{"file", "dangling"} {
		_, err := resolver.NewStore(root).Resolve(name)
		require.Error(t, err, name)
		assert.False(t, resolver.IsNotFound(err), "%s exists in the store, so it is not missing", name)
	}
}

func TestChain(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	mkdirs(t, first, "dbus/lib")
	mkdirs(t, second, "dbus/include", "systemd/lib")

	r := resolver.Chain{resolver.NewStore(first), resolver.NewStore(second)}

	ed, err := r.Resolve("dbus")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "dbus"), ed.InstallDir, "the first store wins")

	ed, err = r.Resolve("systemd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "systemd"), ed.InstallDir)

	_, err = r.Resolve("pkg-config")
	assert.True(t, resolver.IsNotFound(err))
}

func TestChainStopsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	called := false
	r := resolver.Chain{
		resolver.Func(func(ref envspec.Ref) (*envdef.EnvironmentDefinition, error) { return nil, boom }),
		resolver.Func(func(ref envspec.Ref) (*envdef.EnvironmentDefinition, error) {
			called = true
			return &envdef.EnvironmentDefinition{}, nil
		}),
	}
	_, err := r.Resolve("dbus")
	assert.Equal(t, boom, err)
	assert.False(t, called)
}

func TestCached(t *testing.T) {
	calls := map[envspec.Ref]int{}
	inner := resolver.Func(func(ref envspec.Ref) (*envdef.EnvironmentDefinition, error) {
		calls[ref]++
		if ref == "missing" {
			return nil, resolver.NotFound(ref)
		}
		return &envdef.EnvironmentDefinition{Env: []envdef.EnvironmentVariable{envdef.NewPathVariable("PATH", "/store/"+string(ref)+"/bin")}}, nil
	})
	r := resolver.NewCached(inner, 0)

	for i := 0; i < 3; i++ {
		ed, err := r.Resolve("dbus")
		require.NoError(t, err)
		assert.Equal(t, "/store/dbus/bin", ed.Env[0].Values[0])
		ed.Env[0].Values[0] = "mutated"

		_, err = r.Resolve("missing")
		assert.True(t, resolver.IsNotFound(err))
	}
	assert.Equal(t, 1, calls["dbus"])
	assert.Equal(t, 3, calls["missing"], "failures are not cached")

	r.Flush()
	_, err := r.Resolve("dbus")
	require.NoError(t, err)
	assert.Equal(t, 2, calls["dbus"])
}
