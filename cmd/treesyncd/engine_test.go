package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctree/synctree/internal/changes"
	"github.com/synctree/synctree/internal/config"
	"github.com/synctree/synctree/internal/value"
	"github.com/synctree/synctree/internal/vfs"
)

func changesAddingModuleScript(parent uuid.UUID) changes.Changes {
	out := changes.Empty()
	out.AddAddition(changes.AddedSnapshot{
		Parent:     parent,
		Name:       "NewModule",
		Class:      "ModuleScript",
		Properties: map[string]value.Value{"Source": value.String("return {}")},
	})
	return out
}

func testConfig(t *testing.T, projectPath string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]string{"-project", projectPath, "-vcs=false"})
	require.NoError(t, err)
	return cfg
}

func TestNewEngineLoadsProjectAndReportsDetails(t *testing.T) {
	mem := vfs.NewMem()
	require.NoError(t, mem.Write("/src/main.luau", []byte("return 1")))
	require.NoError(t, mem.Write("/default.project.json", []byte(`{
		"name": "my-place",
		"tree": { "$className": "DataModel", "ReplicatedStorage": { "$path": "src" } }
	}`)))

	cfg := testConfig(t, "/default.project.json")
	e, err := NewEngine(cfg, mem, config.Logger(cfg))
	require.NoError(t, err)

	details := e.Details()
	assert.Equal(t, "my-place", details.Name)
	assert.Equal(t, ProtocolVersion, details.Version)
}

func TestEngineSubscribeReadWriteRoundTrip(t *testing.T) {
	mem := vfs.NewMem()
	require.NoError(t, mem.Write("/src/main.luau", []byte("return 1")))
	require.NoError(t, mem.Write("/default.project.json", []byte(`{
		"name": "my-place",
		"tree": { "$className": "DataModel", "ReplicatedStorage": { "$path": "src" } }
	}`)))

	cfg := testConfig(t, "/default.project.json")
	e, err := NewEngine(cfg, mem, config.Logger(cfg))
	require.NoError(t, err)

	e.Subscribe("client-1", nil, nil)

	snap := e.ReadAll()
	require.Len(t, snap.Additions, 1)
	assert.Equal(t, "ReplicatedStorage", snap.Additions[0].Name)

	committed, err := e.Write(changesAddingModuleScript(snap.Additions[0].ID))
	require.NoError(t, err)
	require.Len(t, committed.Additions, 1)
	assert.Equal(t, "NewModule", committed.Additions[0].Name)
}

func TestEngineUnsubscribeReleasesBlockedRead(t *testing.T) {
	mem := vfs.NewMem()
	require.NoError(t, mem.Write("/default.project.json", []byte(`{"name": "p", "tree": {"$className": "DataModel"}}`)))

	cfg := testConfig(t, "/default.project.json")
	e, err := NewEngine(cfg, mem, config.Logger(cfg))
	require.NoError(t, err)

	e.Subscribe("client-1", nil, nil)

	done := make(chan struct{})
	go func() {
		_, _ = e.Read(context.Background(), "client-1")
		close(done)
	}()

	e.Unsubscribe("client-1")
	<-done
}
