package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctree/synctree/internal/snapshot"
)

func TestExportWalksSubtreeWithLiveParents(t *testing.T) {
	root := snapshot.New().WithClass("DataModel")
	tr := New(root)

	folder := snapshot.New().WithName("src").WithClass("Folder")
	folderID := tr.Insert(folder, tr.Root())

	child := snapshot.New().WithName("foo").WithClass("ModuleScript")
	childID := tr.Insert(child, folderID)

	out, ok := tr.Export(folderID)
	require.True(t, ok)
	assert.Equal(t, "src", out.Name)
	assert.Equal(t, tr.Root(), out.Parent)
	require.Len(t, out.Children, 1)
	assert.Equal(t, childID, out.Children[0].ID)
	assert.Equal(t, folderID, out.Children[0].Parent)
}

func TestExportAllReturnsEveryPlaceRoot(t *testing.T) {
	root := snapshot.New().WithClass("DataModel")
	tr := New(root)

	tr.Insert(snapshot.New().WithName("a").WithClass("Folder"), tr.Root())
	tr.Insert(snapshot.New().WithName("b").WithClass("Folder"), tr.Root())

	out := tr.ExportAll()
	require.Len(t, out, 2)
	names := []string{out[0].Name, out[1].Name}
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}
