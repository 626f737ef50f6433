package tree

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctree/synctree/internal/snapshot"
)

func TestInsertAndGet(t *testing.T) {
	root := snapshot.New().WithClass("DataModel").WithPath("/")
	tr := New(root)

	child := snapshot.New().WithName("foo").WithClass("Folder").WithPath("/src/foo")
	id := tr.Insert(child, tr.Root())

	inst, ok := tr.Get(id)
	require.True(t, ok)
	assert.Equal(t, "foo", inst.Name)
	assert.Equal(t, []uuid.UUID{id}, tr.IDsAt("/src/foo"))
}

func TestRemoveCascadesAndSweepsPathIndex(t *testing.T) {
	root := snapshot.New().WithClass("DataModel").WithPath("/")
	tr := New(root)

	parent := snapshot.New().WithName("bar").WithClass("Folder").WithPath("/src/bar")
	parentID := tr.Insert(parent, tr.Root())

	child := snapshot.New().WithName("baz").WithClass("ModuleScript").WithPath("/src/bar/baz.luau")
	childID := tr.Insert(child, parentID)

	tr.Remove(parentID)

	_, ok := tr.Get(parentID)
	assert.False(t, ok)
	_, ok = tr.Get(childID)
	assert.False(t, ok)
	assert.Empty(t, tr.IDsAt("/src/bar"))
	assert.Empty(t, tr.IDsAt("/src/bar/baz.luau"))
}

func TestGetMetaFallsBackToAncestor(t *testing.T) {
	root := snapshot.New().WithClass("DataModel").WithPath("/")
	tr := New(root)

	parent := snapshot.New().WithName("bar").WithClass("Folder").WithPath("/src/bar")
	parentID := tr.Insert(parent, tr.Root())
	parent.Meta.UseLegacyScripts = true
	tr.SetMeta(parentID, parent.Meta)

	childNoMeta := snapshot.New().WithName("baz").WithClass("ModuleScript")
	childID := tr.Insert(childNoMeta, parentID)

	assert.True(t, tr.GetMeta(childID).UseLegacyScripts)
}

func TestAncestorIDsOfReturnsClosestTrackedLevelOnly(t *testing.T) {
	root := snapshot.New().WithClass("DataModel").WithPath("/")
	tr := New(root)

	parent := snapshot.New().WithName("src").WithClass("Folder").WithPath("/src")
	parentID := tr.Insert(parent, tr.Root())

	child := snapshot.New().WithName("foo").WithClass("ModuleScript").WithPath("/src/foo.luau")
	childID := tr.Insert(child, parentID)

	assert.Equal(t, []uuid.UUID{childID}, tr.AncestorIDsOf("/src/foo.luau"))
	assert.Equal(t, []uuid.UUID{parentID}, tr.AncestorIDsOf("/src/bar.luau"))
	assert.Nil(t, tr.AncestorIDsOf("/other/path.luau"))
}
