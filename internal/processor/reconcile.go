package processor

import (
	"github.com/google/uuid"
	"github.com/synctree/synctree/internal/changes"
	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/snapshot"
)

// reconcileNode diffs the live instance at id against the rebuilt snap,
// recording any changed top-level fields and then pairing children.
func (p *Processor) reconcileNode(id uuid.UUID, snap snapshot.Snapshot, out *changes.Changes) {
	inst, ok := p.Tree.Get(id)
	if !ok {
		return
	}

	upd := changes.UpdatedSnapshot{ID: id}

	if inst.Name != snap.Name {
		name := snap.Name
		upd.Name = &name
		inst.Name = snap.Name
	}
	if inst.Class != snap.Class {
		class := snap.Class
		upd.Class = &class
		inst.Class = snap.Class
	}
	if !snapshot.PropertiesEqual(inst.Properties, snap.Properties) {
		upd.Properties = snap.Properties
		inst.Properties = snap.Properties
	}

	current := p.Tree.GetMeta(id)
	if !metaEqual(current, snap.Meta) {
		m := snap.Meta
		upd.Meta = &m
		p.Tree.SetMeta(id, snap.Meta)
	}

	if !upd.IsEmpty() {
		out.AddUpdate(upd)
	}

	p.pairChildren(id, inst.Children, snap.Children, out)
}

// pairChildren greedily pairs each existing child (in order) with the
// first unmatched snapshot child sharing its (name, class), recursing into
// matched pairs, inserting unmatched snapshot children as additions, and
// removing unmatched existing children as cascading removals.
func (p *Processor) pairChildren(parent uuid.UUID, existing []uuid.UUID, wanted []snapshot.Snapshot, out *changes.Changes) {
	usedSnap := make([]bool, len(wanted))
	usedExisting := make([]bool, len(existing))

	for ei, childID := range existing {
		child, ok := p.Tree.Get(childID)
		if !ok {
			continue
		}
		for si, s := range wanted {
			if usedSnap[si] {
				continue
			}
			if child.Name == s.Name && child.Class == s.Class {
				usedSnap[si] = true
				usedExisting[ei] = true
				p.reconcileNode(childID, s, out)
				break
			}
		}
	}

	for ei, childID := range existing {
		if usedExisting[ei] {
			continue
		}
		p.Tree.Remove(childID)
		out.AddRemoval(childID)
	}

	for si, s := range wanted {
		if usedSnap[si] {
			continue
		}
		added := p.insertSnapshot(s, parent)
		out.AddAddition(added)
	}
}

// insertSnapshot inserts a brand-new snapshot subtree into the tree,
// assigning fresh ids throughout, and builds the matching AddedSnapshot for
// the outgoing change set in the same pass.
func (p *Processor) insertSnapshot(s snapshot.Snapshot, parent uuid.UUID) changes.AddedSnapshot {
	top := s
	top.Children = nil
	id := p.Tree.Insert(top, parent)

	added := changes.AddedSnapshot{
		ID:         id,
		Parent:     parent,
		Name:       s.Name,
		Class:      s.Class,
		Properties: s.Properties,
		Meta:       s.Meta,
	}
	for _, child := range s.Children {
		added.Children = append(added.Children, p.insertSnapshot(child, id))
	}
	return added
}

// metaEqual compares the policy fields clients actually observe; IgnoreGlobs
// and SyncRules are left out because they're derived purely from the parent
// chain and the sync-rule table, both of which are invariant between
// rebuilds of the same path.
func metaEqual(a, b meta.Meta) bool {
	return a.Source == b.Source &&
		a.UseLegacyScripts == b.UseLegacyScripts &&
		a.KeepUnknownChildren == b.KeepUnknownChildren &&
		a.SanitizePolicy == b.SanitizePolicy &&
		a.OriginalName == b.OriginalName &&
		a.MeshSource == b.MeshSource
}
