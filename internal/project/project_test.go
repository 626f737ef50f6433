package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctree/synctree/internal/middleware"
	"github.com/synctree/synctree/internal/vfs"
)

func writeManifest(t *testing.T, mem *vfs.Mem, manifestPath, raw string) {
	t.Helper()
	require.NoError(t, mem.Write(manifestPath, []byte(raw)))
}

func TestLoadMaterializesTreeFromManifest(t *testing.T) {
	mem := vfs.NewMem()
	require.NoError(t, mem.Write("/src/main.luau", []byte("return 1")))
	writeManifest(t, mem, "/default.project.json", `{
		"name": "my-place",
		"tree": {
			"$className": "DataModel",
			"ReplicatedStorage": { "$path": "src" }
		}
	}`)

	d := middleware.New(middleware.DefaultConfig())
	p, err := Load("/default.project.json", d, mem)
	require.NoError(t, err)

	assert.Equal(t, "my-place", p.Name())
	roots := p.Tree().PlaceRoots()
	require.Len(t, roots, 1)
	child, ok := p.Tree().Get(roots[0])
	require.True(t, ok)
	assert.Equal(t, "ReplicatedStorage", child.Name)
}

func TestLoadExtractsTreePaths(t *testing.T) {
	mem := vfs.NewMem()
	require.NoError(t, mem.Write("/src/main.luau", []byte("return 1")))
	require.NoError(t, mem.Write("/assets/icon.txt", []byte("x")))
	writeManifest(t, mem, "/default.project.json", `{
		"name": "my-place",
		"tree": {
			"$className": "DataModel",
			"ReplicatedStorage": { "$path": "src" },
			"ServerStorage": { "$path": "assets" }
		}
	}`)

	d := middleware.New(middleware.DefaultConfig())
	p, err := Load("/default.project.json", d, mem)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"/src", "/assets"}, p.TreePaths())
}

func TestReloadSwapsTreeAtomicallyOnSuccess(t *testing.T) {
	mem := vfs.NewMem()
	require.NoError(t, mem.Write("/src/main.luau", []byte("return 1")))
	writeManifest(t, mem, "/default.project.json", `{
		"name": "first",
		"tree": { "$className": "DataModel", "ReplicatedStorage": { "$path": "src" } }
	}`)

	d := middleware.New(middleware.DefaultConfig())
	p, err := Load("/default.project.json", d, mem)
	require.NoError(t, err)
	require.Equal(t, "first", p.Name())

	writeManifest(t, mem, "/default.project.json", `{
		"name": "second",
		"tree": { "$className": "DataModel", "ReplicatedStorage": { "$path": "src" } }
	}`)

	oldPaths, newPaths, err := p.Reload(d, mem)
	require.NoError(t, err)
	assert.Equal(t, "second", p.Name())
	assert.Equal(t, []string{"/src"}, oldPaths)
	assert.Equal(t, []string{"/src"}, newPaths)
}

func TestReloadLeavesPreviousProjectOnFailure(t *testing.T) {
	mem := vfs.NewMem()
	writeManifest(t, mem, "/default.project.json", `{"name": "first", "tree": {"$className": "DataModel"}}`)

	d := middleware.New(middleware.DefaultConfig())
	p, err := Load("/default.project.json", d, mem)
	require.NoError(t, err)

	writeManifest(t, mem, "/default.project.json", `not json`)

	_, _, err = p.Reload(d, mem)
	require.Error(t, err)
	assert.Equal(t, "first", p.Name())
}

func TestHostPortFallBackToConfig(t *testing.T) {
	mem := vfs.NewMem()
	writeManifest(t, mem, "/default.project.json", `{"name": "first", "tree": {"$className": "DataModel"}}`)

	d := middleware.New(middleware.DefaultConfig())
	p, err := Load("/default.project.json", d, mem)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", p.Host("0.0.0.0"))
	assert.Equal(t, 8000, p.Port(8000))
}
