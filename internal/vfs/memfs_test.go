package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemWriteReadRoundTrip(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Write("/src/foo.luau", []byte("return 1")))

	data, err := m.Read("/src/foo.luau")
	require.NoError(t, err)
	assert.Equal(t, "return 1", string(data))
	assert.True(t, m.IsFile("/src/foo.luau"))
	assert.True(t, m.IsDir("/src"))
}

func TestMemCreateDirMakesAncestorsDirs(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.CreateDir("/a/b/c"))

	assert.True(t, m.IsDir("/a"))
	assert.True(t, m.IsDir("/a/b"))
	assert.True(t, m.IsDir("/a/b/c"))
}

func TestMemRemoveDeletesDescendants(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Write("/a/b/c.txt", []byte("x")))
	require.NoError(t, m.Remove("/a"))

	assert.False(t, m.Exists("/a"))
	assert.False(t, m.Exists("/a/b"))
	assert.False(t, m.Exists("/a/b/c.txt"))
}

func TestMemRenameMovesSubtree(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Write("/a/b/c.txt", []byte("x")))
	require.NoError(t, m.Rename("/a", "/z"))

	assert.False(t, m.Exists("/a"))
	data, err := m.Read("/z/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestMemReadDirListsChildren(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Write("/src/a.luau", []byte("")))
	require.NoError(t, m.Write("/src/b.luau", []byte("")))

	children, err := m.ReadDir("/src")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/src/a.luau", "/src/b.luau"}, children)
}

func TestMemReadMissingFails(t *testing.T) {
	m := NewMem()
	_, err := m.Read("/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemReadToStringNormalizesNewlines(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Write("/a.txt", []byte("a\r\nb\rc\n")))

	s, err := m.ReadToString("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", s)
}
