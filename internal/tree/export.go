package tree

import (
	"github.com/google/uuid"
	"github.com/synctree/synctree/internal/changes"
)

// Export walks id and its descendants into an AddedSnapshot tree, the
// shape a full-tree sync response takes. id's own parent is reported as
// its live Parent; descendants report their live parent too, so the
// result is a self-consistent subtree regardless of where id sits in the
// overall tree.
func (t *Tree) Export(id uuid.UUID) (changes.AddedSnapshot, bool) {
	inst, ok := t.instances[id]
	if !ok {
		return changes.AddedSnapshot{}, false
	}

	out := changes.AddedSnapshot{
		ID:         inst.ID,
		Parent:     inst.Parent,
		Name:       inst.Name,
		Class:      inst.Class,
		Properties: inst.Properties,
		Meta:       t.GetMeta(id),
	}
	for _, childID := range inst.Children {
		child, ok := t.Export(childID)
		if ok {
			out.Children = append(out.Children, child)
		}
	}
	return out, true
}

// ExportAll flattens every place root's subtree into the additions list a
// fresh subscriber's full-tree sync carries.
func (t *Tree) ExportAll() []changes.AddedSnapshot {
	roots := t.PlaceRoots()
	out := make([]changes.AddedSnapshot, 0, len(roots))
	for _, id := range roots {
		if snap, ok := t.Export(id); ok {
			out = append(out, snap)
		}
	}
	return out
}
