package processor

import (
	"github.com/google/uuid"
	"github.com/synctree/synctree/internal/changes"
	"github.com/synctree/synctree/internal/meta"
)

// ApplyClientChanges applies a reverse change set from a client: additions
// are inserted (and written through to disk where the parent is
// file-backed), updates mutate the named instance (and write through),
// removals delete the instance and, when file-backed, its on-disk source.
// A change set whose size exceeds p.Threshold is rejected with
// *ErrConfirmationRequired instead of applied.
func (p *Processor) ApplyClientChanges(incoming changes.Changes) (changes.Changes, error) {
	if size := incoming.Len(); size > p.Threshold {
		return changes.Empty(), &ErrConfirmationRequired{Pending: incoming, Size: size}
	}

	committed := changes.Empty()

	for _, rm := range incoming.Removals {
		p.applyRemoval(rm)
		committed.AddRemoval(rm)
	}

	for _, upd := range incoming.Updates {
		if p.applyUpdate(upd) {
			committed.AddUpdate(upd)
		}
	}

	for _, add := range incoming.Additions {
		committed.AddAddition(p.applyAddition(add))
	}

	return committed, nil
}

func (p *Processor) applyRemoval(id uuid.UUID) {
	m := p.Tree.GetMeta(id)
	// GetMeta falls back to an ancestor's meta; only a path indexed to id
	// itself is this instance's own source.
	ownsPath := false
	for _, other := range p.Tree.IDsAt(m.Source.Path) {
		ownsPath = ownsPath || other == id
	}
	p.Tree.Remove(id)
	if ownsPath && m.Source.Kind == meta.SourcePath && m.Source.Path != "" {
		p.suppress.mark(m.Source.Path)
		_ = p.Backend.Remove(m.Source.Path)
	}
}

func (p *Processor) applyUpdate(upd changes.UpdatedSnapshot) bool {
	inst, ok := p.Tree.Get(upd.ID)
	if !ok {
		return false
	}

	changed := false
	if upd.Name != nil {
		inst.Name = *upd.Name
		changed = true
	}
	if upd.Class != nil {
		inst.Class = *upd.Class
		changed = true
	}
	if upd.Properties != nil {
		inst.Properties = upd.Properties
		changed = true
	}
	if upd.Meta != nil {
		p.Tree.SetMeta(upd.ID, *upd.Meta)
		changed = true
	}
	if !changed {
		return false
	}

	m := p.Tree.GetMeta(upd.ID)
	// As in applyRemoval, an ancestor's source path is not written over.
	ownsPath := false
	for _, other := range p.Tree.IDsAt(m.Source.Path) {
		ownsPath = ownsPath || other == upd.ID
	}
	if ownsPath && m.Source.Kind == meta.SourcePath && m.Source.Path != "" {
		_ = p.writeInstanceFile(m.Source.Path, inst.Class, inst.Properties)
	}
	return true
}

func (p *Processor) applyAddition(add changes.AddedSnapshot) changes.AddedSnapshot {
	snap := addedToSnapshot(add)

	parentMeta := p.Tree.GetMeta(add.Parent)
	if parentMeta.Source.Kind == meta.SourcePath && parentMeta.Source.Path != "" {
		var targetPath string
		if add.Class == "Folder" {
			targetPath = parentMeta.Source.Path + "/" + add.Name
			p.suppress.mark(targetPath)
			_ = p.Backend.CreateDir(targetPath)
		} else {
			targetPath = parentMeta.Source.Path + "/" + filenameFor(add.Name, add.Class, add.Properties, parentMeta.UseLegacyScripts)
			_ = p.writeInstanceFile(targetPath, add.Class, add.Properties)
		}
		snap.Meta = snap.Meta.WithSource(meta.Source{Kind: meta.SourcePath, Path: targetPath})
		snap.Path = targetPath
	}

	return p.insertSnapshot(snap, add.Parent)
}
