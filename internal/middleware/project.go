package middleware

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"

	"github.com/synctree/synctree/internal/glob"
	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/syncrule"
	"github.com/synctree/synctree/internal/vfs"
)

// SyncRuleOverride is one entry of a manifest's `syncRules` override list:
// a glob pattern plus the FileKind name (see syncrule.FileKind.String) it
// should dispatch to, prepended ahead of the shipped defaults so overrides
// are matched first.
type SyncRuleOverride struct {
	Pattern string `json:"pattern"`
	Kind    string `json:"kind"`
	Suffix  string `json:"suffix,omitempty"`
}

// Resolve converts o into a syncrule.Rule, or an error if Kind isn't a
// recognized FileKind name or Pattern isn't a valid glob.
func (o SyncRuleOverride) Resolve() (syncrule.Rule, error) {
	kind, ok := syncrule.ParseFileKind(o.Kind)
	if !ok {
		return syncrule.Rule{}, fmt.Errorf("project: unknown syncRules kind %q", o.Kind)
	}
	pattern, err := glob.New(o.Pattern)
	if err != nil {
		return syncrule.Rule{}, fmt.Errorf("project: invalid syncRules pattern %q: %w", o.Pattern, err)
	}
	return syncrule.Rule{Kind: kind, Pattern: pattern, Suffix: o.Suffix}, nil
}

// ProjectNode is one node of a project manifest's tree: either a reference
// to a filesystem path to dispatch through the middleware, or an inline
// className/properties/attributes/tags/children subtree, or both (path
// plus overriding properties, the common "attach data to a synced folder"
// case).
type ProjectNode struct {
	ClassName  string                 `json:"$className,omitempty"`
	Path       string                 `json:"$path,omitempty"`
	Properties map[string]any         `json:"properties,omitempty"`
	Attributes map[string]any         `json:"attributes,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
	Children   map[string]ProjectNode `json:"-"`
}

// UnmarshalJSON splits a node's object keys into the known fields above and
// everything else into Children, matching the manifest format's convention
// of nesting child node names as sibling object keys. $className, $path,
// properties, attributes, and tags are reserved; any other key is treated
// as a nested child node object.
func (n *ProjectNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type alias ProjectNode
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = ProjectNode(a)

	n.Children = map[string]ProjectNode{}
	for key, val := range raw {
		if key == "$className" || key == "$path" || key == "properties" || key == "attributes" || key == "tags" {
			continue
		}
		var child ProjectNode
		if err := json.Unmarshal(val, &child); err != nil {
			return fmt.Errorf("project node %q: %w", key, err)
		}
		n.Children[key] = child
	}
	return nil
}

// ProjectDocument is the full manifest shape: name plus the node tree,
// serving metadata, and inherited sync policy.
type ProjectDocument struct {
	Name        string                 `json:"name"`
	Tree        ProjectNode            `json:"tree"`
	Host        string                 `json:"host,omitempty"`
	Port        int                    `json:"port,omitempty"`
	GameID      *int64                 `json:"gameId,omitempty"`
	PlaceIDs    []int64                `json:"placeIds,omitempty"`
	SyncRules   []SyncRuleOverride     `json:"syncRules,omitempty"`
	IgnoreGlobs []string               `json:"ignoreGlobs,omitempty"`
}

// ParseProjectDocument decodes a *.project.json manifest.
func ParseProjectDocument(raw []byte) (ProjectDocument, error) {
	var doc ProjectDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ProjectDocument{}, &ParseError{Kind: "Project", Excerpt: excerpt(string(raw)), Err: err}
	}
	return doc, nil
}

// readProjectFile builds a snapshot for a *.project.json encountered as an
// ordinary matched file (a nested project, not necessarily the workspace
// root), recursively resolving its tree.
func (d *Dispatcher) readProjectFile(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	doc, err := ParseProjectDocument(raw)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	base := path.Dir(p)
	m, err := RootMeta(doc)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	visited := map[string]struct{}{filepath.Clean(p): {}}
	return d.BuildProjectNode(doc.Tree, base, m, backend, visited)
}

// RootMeta builds the inherited Meta a project document's tree descends
// from: the default sync-rule table with doc.SyncRules overrides prepended
// (so they're matched before the defaults) and doc.IgnoreGlobs compiled
// in. Shared by the nested-project file constructor above and the
// top-level project loader (internal/project), which both start a descent
// from the same manifest-derived policy.
func RootMeta(doc ProjectDocument) (meta.Meta, error) {
	m := meta.Empty()

	if len(doc.SyncRules) > 0 {
		overrides := make(syncrule.Table, 0, len(doc.SyncRules))
		for _, o := range doc.SyncRules {
			rule, err := o.Resolve()
			if err != nil {
				return meta.Meta{}, err
			}
			overrides = append(overrides, rule)
		}
		m.SyncRules = append(overrides, m.SyncRules...)
	}

	for _, pattern := range doc.IgnoreGlobs {
		g, err := glob.New(pattern)
		if err != nil {
			return meta.Meta{}, fmt.Errorf("project: invalid ignoreGlobs pattern %q: %w", pattern, err)
		}
		m.IgnoreGlobs = append(m.IgnoreGlobs, g)
	}

	return m, nil
}

// BuildProjectNode resolves one ProjectNode into a Snapshot, recursing into
// $path references (dispatched through the ordinary middleware pipeline)
// and inline children, and detecting cycles by tracking the canonical set
// of $path targets visited on the current descent: without this guard a
// project that references its own ancestor directory would recurse
// forever.
func (d *Dispatcher) BuildProjectNode(node ProjectNode, basePath string, m meta.Meta, backend vfs.Backend, visited map[string]struct{}) (snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var err error

	if d.cfg.UseLegacyScripts {
		m.UseLegacyScripts = true
	}

	if node.Path != "" {
		target := node.Path
		if !path.IsAbs(target) {
			target = path.Join(basePath, target)
		}
		canon := filepath.Clean(target)
		if _, seen := visited[canon]; seen {
			return snapshot.Snapshot{}, fmt.Errorf("project node cycle detected at %s", canon)
		}
		visited[canon] = struct{}{}
		defer delete(visited, canon)

		var ok bool
		snap, ok, err = d.FromPath(target, m, backend)
		if err != nil {
			return snapshot.Snapshot{}, err
		}
		if !ok {
			snap = snapshot.New()
		}
		snap.Meta = snap.Meta.WithSource(meta.Source{Kind: meta.SourceProjectNode, ProjectPath: basePath, NodePath: target})
	} else {
		snap = snapshot.New()
		snap.Meta = m.WithSource(meta.Source{Kind: meta.SourceProjectNode, ProjectPath: basePath})
	}

	if node.ClassName != "" {
		snap.SetClass(node.ClassName)
	}
	applyInstanceData(d.cfg.Schema, &snap, instanceData{
		Properties: node.Properties,
		Attributes: node.Attributes,
		Tags:       node.Tags,
	})

	for name, child := range node.Children {
		childSnap, err := d.BuildProjectNode(child, basePath, snap.Meta, backend, visited)
		if err != nil {
			continue // a single bad nested node is skipped, not fatal to the whole manifest
		}
		childSnap.SetName(name)
		snap.AddChild(childSnap)
	}

	return snap, nil
}
