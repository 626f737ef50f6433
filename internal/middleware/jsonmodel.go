package middleware

import (
	"encoding/json"

	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/vfs"
)

// jsonModelNode is a *.model.json node: a serialized instance subtree
// using the same className/properties/children shape the project manifest
// uses for its own nodes.
type jsonModelNode struct {
	ClassName  string                    `json:"className"`
	Properties map[string]any            `json:"properties"`
	Attributes map[string]any            `json:"attributes"`
	Tags       []string                  `json:"tags"`
	Children   map[string]jsonModelNode  `json:"children"`
}

// readJSONModel decodes a *.model.json file into a Snapshot tree. Unlike
// the project manifest, a model file carries no host/port/gameId wrapper:
// the document root *is* the node.
func (d *Dispatcher) readJSONModel(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	var root jsonModelNode
	if err := json.Unmarshal(raw, &root); err != nil {
		return snapshot.Snapshot{}, &ParseError{Path: p, Kind: "JSONModel", Excerpt: excerpt(string(raw)), Err: err}
	}
	return d.buildJSONModelNode(root), nil
}

func (d *Dispatcher) buildJSONModelNode(node jsonModelNode) snapshot.Snapshot {
	snap := snapshot.New()
	class := node.ClassName
	if class == "" {
		class = "Model"
	}
	snap.SetClass(class)

	applyInstanceData(d.cfg.Schema, &snap, instanceData{
		Properties: node.Properties,
		Attributes: node.Attributes,
		Tags:       node.Tags,
	})

	for name, child := range node.Children {
		childSnap := d.buildJSONModelNode(child)
		childSnap.SetName(name)
		snap.AddChild(childSnap)
	}
	return snap
}
