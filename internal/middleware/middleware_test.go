package middleware

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/vfs"
)

func newTestDispatcher() (*Dispatcher, *vfs.Mem) {
	cfg := DefaultConfig()
	cfg.ContentDir = ""
	return New(cfg), vfs.NewMem()
}

func TestFromPathDispatchesModuleScript(t *testing.T) {
	d, mem := newTestDispatcher()
	require.NoError(t, mem.Write("/src/foo.luau", []byte("return 1")))

	snap, ok, err := d.FromPath("/src/foo.luau", meta.Empty(), mem)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ModuleScript", snap.Class)
	assert.Equal(t, "foo", snap.Name)
}

func TestFromPathHonorsDisableDirective(t *testing.T) {
	d, mem := newTestDispatcher()
	require.NoError(t, mem.Write("/src/foo.server.luau", []byte("--disable\nprint(1)")))

	_, ok, err := d.FromPath("/src/foo.server.luau", meta.Empty(), mem)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFromPathSkipsBlacklistedFile(t *testing.T) {
	d, mem := newTestDispatcher()
	require.NoError(t, mem.Write("/src/.DS_Store", []byte("junk")))

	_, ok, err := d.FromPath("/src/.DS_Store", meta.Empty(), mem)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSONModuleTransliteratesToLuaTable(t *testing.T) {
	d, mem := newTestDispatcher()
	require.NoError(t, mem.Write("/src/config.json", []byte(`{"enabled": true, "items": [1, 2, 3]}`)))

	snap, ok, err := d.FromPath("/src/config.json", meta.Empty(), mem)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ModuleScript", snap.Class)
	source := snap.Properties["Source"].String
	assert.Contains(t, source, "return {")
	assert.Contains(t, source, `["enabled"] = true`)
	assert.Contains(t, source, `["items"] = {1, 2, 3}`)
}

func TestDirectoryMergesSiblingDataFile(t *testing.T) {
	d, mem := newTestDispatcher()
	require.NoError(t, mem.CreateDir("/src/Parts"))
	require.NoError(t, mem.Write("/src/Parts/Handle.lua", []byte("return 1")))
	require.NoError(t, mem.Write("/src/Parts/Handle.data.json", []byte(`{"className": "Model"}`)))

	snap, ok, err := d.FromPath("/src/Parts", meta.Empty(), mem)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, snap.Children, 1)
	assert.Equal(t, "Model", snap.Children[0].Class)
}

func TestCSVBuildsLocalizationTable(t *testing.T) {
	d, mem := newTestDispatcher()
	require.NoError(t, mem.Write("/src/strings.csv", []byte("Key,Source,es\nhello,Hello,Hola")))

	snap, ok, err := d.FromPath("/src/strings.csv", meta.Empty(), mem)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "LocalizationTable", snap.Class)

	var entries []localizationEntry
	require.NoError(t, json.Unmarshal([]byte(snap.Properties["Contents"].String), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Key)
	assert.Equal(t, "Hello", entries[0].Source)
	assert.Equal(t, "Hola", entries[0].Values["es"])
}

func TestCSVRoundTripsThroughWriteCSV(t *testing.T) {
	d, mem := newTestDispatcher()
	require.NoError(t, mem.Write("/src/strings.csv", []byte("Key,Source,es\nhello,Hello,Hola")))

	snap, _, err := d.FromPath("/src/strings.csv", meta.Empty(), mem)
	require.NoError(t, err)

	raw, err := WriteCSV(snap.Properties["Contents"].String)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Key,Source,Context,Example,es")
	assert.Contains(t, string(raw), "hello,Hello,,,Hola")
}

func TestMarkdownProducesRichText(t *testing.T) {
	d, mem := newTestDispatcher()
	require.NoError(t, mem.Write("/src/notes.md", []byte("**bold** and *italic*")))

	snap, ok, err := d.FromPath("/src/notes.md", meta.Empty(), mem)
	require.NoError(t, err)
	require.True(t, ok)
	value := snap.Properties["Value"].String
	assert.Contains(t, value, "<b>bold</b>")
	assert.Contains(t, value, "<i>italic</i>")
}
