package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctree/synctree/internal/changes"
	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/middleware"
	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/tree"
	"github.com/synctree/synctree/internal/vfs"
)

func newTestProcessor(t *testing.T) (*Processor, *vfs.Mem) {
	t.Helper()
	mem := vfs.NewMem()
	require.NoError(t, mem.CreateDir("/src"))

	d := middleware.New(middleware.DefaultConfig())
	root := snapshot.New().WithClass("DataModel").WithPath("/")
	tr := tree.New(root)
	return New(d, mem, tr), mem
}

func TestForwardDetectsNewModuleScript(t *testing.T) {
	p, mem := newTestProcessor(t)

	folder := snapshot.New().WithName("src").WithClass("Folder").WithPath("/src")
	folder.Meta = meta.Empty().WithSource(meta.Source{Kind: meta.SourcePath, Path: "/src"})
	folderID := p.Tree.Insert(folder, p.Tree.Root())

	require.NoError(t, mem.Write("/src/foo.luau", []byte("return 1")))

	out, err := p.Forward(vfs.Event{Kind: vfs.Create, Path: "/src/foo.luau"})
	require.NoError(t, err)
	require.Len(t, out.Additions, 1)
	assert.Equal(t, "foo", out.Additions[0].Name)
	assert.Equal(t, folderID, out.Additions[0].Parent)
}

func TestForwardDetectsPropertyUpdate(t *testing.T) {
	p, mem := newTestProcessor(t)

	require.NoError(t, mem.Write("/src/foo.luau", []byte("return 1")))
	folder := snapshot.New().WithName("src").WithClass("Folder").WithPath("/src")
	folder.Meta = meta.Empty().WithSource(meta.Source{Kind: meta.SourcePath, Path: "/src"})
	p.Tree.Insert(folder, p.Tree.Root())

	_, err := p.Forward(vfs.Event{Kind: vfs.Create, Path: "/src/foo.luau"})
	require.NoError(t, err)

	require.NoError(t, mem.Write("/src/foo.luau", []byte("return 2")))
	out, err := p.Forward(vfs.Event{Kind: vfs.Write, Path: "/src/foo.luau"})
	require.NoError(t, err)
	require.Len(t, out.Updates, 1)
	assert.Contains(t, out.Updates[0].Properties["Source"].String, "return 2")
}

func TestForwardDetectsRemoval(t *testing.T) {
	p, mem := newTestProcessor(t)

	require.NoError(t, mem.Write("/src/foo.luau", []byte("return 1")))
	folder := snapshot.New().WithName("src").WithClass("Folder").WithPath("/src")
	folder.Meta = meta.Empty().WithSource(meta.Source{Kind: meta.SourcePath, Path: "/src"})
	p.Tree.Insert(folder, p.Tree.Root())

	_, err := p.Forward(vfs.Event{Kind: vfs.Create, Path: "/src/foo.luau"})
	require.NoError(t, err)

	require.NoError(t, mem.Remove("/src/foo.luau"))
	out, err := p.Forward(vfs.Event{Kind: vfs.Delete, Path: "/src/foo.luau"})
	require.NoError(t, err)
	require.Len(t, out.Removals, 1)
}

func TestApplyClientChangesRejectsOverThreshold(t *testing.T) {
	p, _ := newTestProcessor(t)
	p.Threshold = 1

	incoming := changes.Empty()
	incoming.AddRemoval(p.Tree.Root())
	incoming.AddRemoval(p.Tree.Root())

	_, err := p.ApplyClientChanges(incoming)
	require.Error(t, err)
	var confirmErr *ErrConfirmationRequired
	require.ErrorAs(t, err, &confirmErr)
}

func TestApplyClientChangesWritesScriptSource(t *testing.T) {
	p, mem := newTestProcessor(t)

	folder := snapshot.New().WithName("src").WithClass("Folder").WithPath("/src")
	folder.Meta = meta.Empty().WithSource(meta.Source{Kind: meta.SourcePath, Path: "/src"})
	folderID := p.Tree.Insert(folder, p.Tree.Root())

	incoming := changes.Empty()
	incoming.AddAddition(changes.AddedSnapshot{
		Parent: folderID,
		Name:   "bar",
		Class:  "ModuleScript",
	})

	_, err := p.ApplyClientChanges(incoming)
	require.NoError(t, err)

	content, err := mem.Read("/src/bar.luau")
	require.NoError(t, err)
	assert.Equal(t, "", string(content))
}
