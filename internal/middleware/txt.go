package middleware

import (
	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/value"
	"github.com/synctree/synctree/internal/vfs"
)

// readText builds a StringValue snapshot from a plain .txt file.
func (d *Dispatcher) readText(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	text, err := backend.ReadToString(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	snap := snapshot.New()
	snap.SetClass("StringValue")
	snap.Properties["Value"] = value.String(vfs.NormalizeNewlines(text))
	return snap, nil
}
