package processor

import (
	"github.com/synctree/synctree/internal/changes"
	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/snapshot"
)

// addedToSnapshot converts a client-submitted AddedSnapshot into the
// Snapshot shape the tree and middleware deal in, recursing through
// Children. The incoming ID is intentionally discarded: the tree always
// assigns its own fresh id on insert, and the server's committed Changes
// (returned by ApplyClientChanges) carries the id that actually won.
func addedToSnapshot(add changes.AddedSnapshot) snapshot.Snapshot {
	snap := snapshot.New()
	snap.SetName(add.Name)
	snap.SetClass(add.Class)
	snap.SetProperties(add.Properties)
	snap.Meta = meta.Empty()
	for _, child := range add.Children {
		snap.AddChild(addedToSnapshot(child))
	}
	return snap
}
