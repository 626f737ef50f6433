// Package tree implements the in-memory instance tree: a typed scene
// graph with id<->path indexes and per-id metadata.
package tree

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/value"
)

// Root is the sentinel id of the tree's implicit root. It is never present
// in Tree.instances.
var Root = uuid.Nil

// Instance is a live node in the tree.
type Instance struct {
	ID         uuid.UUID
	Name       string
	Class      string
	Properties map[string]value.Value
	Children   []uuid.UUID
	Parent     uuid.UUID
}

// Tree is the typed scene graph.
type Tree struct {
	instances map[uuid.UUID]*Instance
	metas     map[uuid.UUID]meta.Meta
	pathToIDs map[string][]uuid.UUID

	placeRoots []uuid.UUID
}

// New builds a tree from a root snapshot, the way the project loader
// materializes the initial tree. The root snapshot's own meta is stored
// against Root; its children are inserted recursively.
func New(root snapshot.Snapshot) *Tree {
	t := &Tree{
		instances: map[uuid.UUID]*Instance{},
		metas:     map[uuid.UUID]meta.Meta{Root: root.Meta},
		pathToIDs: map[string][]uuid.UUID{},
	}
	if root.Path != "" {
		t.pathToIDs[root.Path] = append(t.pathToIDs[root.Path], Root)
	}
	for _, child := range root.Children {
		t.Insert(child, Root)
	}
	return t
}

// Insert adds snapshot (and its children, recursively) under parent,
// returning the new instance's freshly assigned id. Every insert indexes
// snapshot.Path (if any) and stores snapshot.Meta when its Source is not
// SourceNone. An insert directly under Root registers a place root.
func (t *Tree) Insert(s snapshot.Snapshot, parent uuid.UUID) uuid.UUID {
	id := uuid.New()

	inst := &Instance{
		ID:         id,
		Name:       s.Name,
		Class:      s.Class,
		Properties: s.Properties,
		Parent:     parent,
	}
	t.instances[id] = inst

	if parent != Root {
		if p, ok := t.instances[parent]; ok {
			p.Children = append(p.Children, id)
		}
	} else {
		t.placeRoots = append(t.placeRoots, id)
	}

	if s.Path != "" {
		t.pathToIDs[s.Path] = append(t.pathToIDs[s.Path], id)
	}
	if s.Meta.Source.Kind != meta.SourceNone {
		t.metas[id] = s.Meta
	}

	for _, child := range s.Children {
		t.Insert(child, id)
	}

	return id
}

// Remove destroys the subtree rooted at id and sweeps any path->ids entries
// that become empty.
func (t *Tree) Remove(id uuid.UUID) {
	inst, ok := t.instances[id]
	if !ok {
		return
	}

	for _, child := range append([]uuid.UUID{}, inst.Children...) {
		t.Remove(child)
	}

	if inst.Parent != Root {
		if p, ok := t.instances[inst.Parent]; ok {
			p.Children = removeID(p.Children, id)
		}
	} else {
		t.placeRoots = removeID(t.placeRoots, id)
	}

	delete(t.instances, id)
	delete(t.metas, id)

	for path, ids := range t.pathToIDs {
		filtered := removeID(ids, id)
		if len(filtered) == 0 {
			delete(t.pathToIDs, path)
		} else {
			t.pathToIDs[path] = filtered
		}
	}
}

func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// Get returns the live instance for id, or false if it has been removed or
// never existed.
func (t *Tree) Get(id uuid.UUID) (*Instance, bool) {
	inst, ok := t.instances[id]
	return inst, ok
}

// GetMeta walks to the nearest ancestor that holds meta if id has none,
// falling back to root.
func (t *Tree) GetMeta(id uuid.UUID) meta.Meta {
	if m, ok := t.metas[id]; ok {
		return m
	}
	inst, ok := t.instances[id]
	if !ok {
		return t.metas[Root]
	}
	return t.GetMeta(inst.Parent)
}

// SetMeta replaces id's own metadata (not an ancestor's).
func (t *Tree) SetMeta(id uuid.UUID, m meta.Meta) { t.metas[id] = m }

// IDsAt returns every id whose source path is exactly path. This is
// multi-valued because a path may produce multiple instances through a
// project node.
func (t *Tree) IDsAt(path string) []uuid.UUID {
	return append([]uuid.UUID{}, t.pathToIDs[path]...)
}

// AncestorIDsOf returns the ids tracked at the closest ancestor of path
// (walking upward until the first hit, then stopping), the lookup the
// processor performs for each forward VFS event. An event two levels below
// the nearest tracked directory reconciles just that directory once,
// which recurses into its own descendants rather than being independently
// re-diffed at every intermediate level.
func (t *Tree) AncestorIDsOf(path string) []uuid.UUID {
	var best string
	found := false
	for p := range t.pathToIDs {
		if (p == path || isAncestor(p, path)) && (!found || len(p) > len(best)) {
			best = p
			found = true
		}
	}
	if !found {
		return nil
	}
	return append([]uuid.UUID{}, t.pathToIDs[best]...)
}

func isAncestor(ancestor, path string) bool {
	if ancestor == path {
		return true
	}
	if len(path) <= len(ancestor) {
		return false
	}
	return path[:len(ancestor)] == ancestor && path[len(ancestor)] == '/'
}

// Root returns the sentinel root id.
func (t *Tree) Root() uuid.UUID { return Root }

// PlaceRoots returns the children of the root, for place projects.
func (t *Tree) PlaceRoots() []uuid.UUID {
	return append([]uuid.UUID{}, t.placeRoots...)
}

func (t *Tree) String() string {
	return fmt.Sprintf("Tree{instances=%d}", len(t.instances))
}
