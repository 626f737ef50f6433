package middleware

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctree/synctree/internal/value"
)

func TestRootMetaPrependsSyncRuleOverrides(t *testing.T) {
	doc := ProjectDocument{
		Name: "test",
		SyncRules: []SyncRuleOverride{
			{Pattern: "*.lua", Kind: "Text", Suffix: ".lua"},
		},
	}

	m, err := RootMeta(doc)
	require.NoError(t, err)

	rule, ok := m.SyncRules.Match("/src/foo.lua")
	require.True(t, ok)
	assert.Equal(t, TextKind, rule.Kind)
}

func TestRootMetaRejectsUnknownOverrideKind(t *testing.T) {
	doc := ProjectDocument{
		Name:      "test",
		SyncRules: []SyncRuleOverride{{Pattern: "*.lua", Kind: "NotAKind"}},
	}

	_, err := RootMeta(doc)
	assert.Error(t, err)
}

func TestBuildProjectNodeResolvesPathReference(t *testing.T) {
	d, mem := newTestDispatcher()
	require.NoError(t, mem.Write("/src/main.luau", []byte("return 1")))

	doc := ProjectDocument{
		Name: "test",
		Tree: ProjectNode{
			ClassName: "DataModel",
			Children: map[string]ProjectNode{
				"ReplicatedStorage": {Path: "src"},
			},
		},
	}

	m, err := RootMeta(doc)
	require.NoError(t, err)

	snap, err := d.BuildProjectNode(doc.Tree, "/", m, mem, map[string]struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "DataModel", snap.Class)
	require.Len(t, snap.Children, 1)
	assert.Equal(t, "ReplicatedStorage", snap.Children[0].Name)
}

func TestProjectNodeUnmarshalsTagsArray(t *testing.T) {
	var n ProjectNode
	require.NoError(t, json.Unmarshal([]byte(`{
		"$className": "Model",
		"tags": ["a", "b"],
		"Child": {"$className": "Folder"}
	}`), &n))

	assert.Equal(t, "Model", n.ClassName)
	assert.Equal(t, []string{"a", "b"}, n.Tags)
	require.Contains(t, n.Children, "Child")
	assert.Equal(t, "Folder", n.Children["Child"].ClassName)
}

func TestBuildProjectNodeAppliesTags(t *testing.T) {
	d, mem := newTestDispatcher()

	doc := ProjectDocument{
		Name: "test",
		Tree: ProjectNode{
			ClassName: "Model",
			Tags:      []string{"a", "b", "a"},
		},
	}

	m, err := RootMeta(doc)
	require.NoError(t, err)

	snap, err := d.BuildProjectNode(doc.Tree, "/", m, mem, map[string]struct{}{})
	require.NoError(t, err)
	assert.Equal(t, value.TagsOf([]string{"a", "b"}), snap.Properties["Tags"])
}
