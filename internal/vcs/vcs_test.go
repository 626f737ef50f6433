package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDisabledOnNonGitWorkspace(t *testing.T) {
	dir := t.TempDir()
	r := Open(dir, "tester")
	assert.False(t, r.Enabled())

	hash, err := r.Record("should be a no-op")
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestRecordCommitsPendingChanges(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	r := Open(dir, "tester")
	require.True(t, r.Enabled())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.luau"), []byte("return 1"), 0644))

	hash, err := r.Record("sync: wrote foo.luau")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestDisabledRecorderNeverCommits(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.luau"), []byte("return 1"), 0644))

	r := Disabled("tester")
	assert.False(t, r.Enabled())

	hash, err := r.Record("should be a no-op")
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestRecordIsNoOpWhenWorkTreeIsClean(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	r := Open(dir, "tester")

	hash, err := r.Record("nothing changed")
	require.NoError(t, err)
	assert.Empty(t, hash)
}
