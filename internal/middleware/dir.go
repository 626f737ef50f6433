package middleware

import (
	"path"
	"strings"

	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/syncrule"
	"github.com/synctree/synctree/internal/vfs"
)

// snapshotDir builds a directory snapshot from its children. It defaults to
// Folder, or to the directory's own name when that name is a conventional
// top-level service class and no sidecar overrides it. Any
// *.data.json/*.meta.json sibling whose stripped name matches another child
// is merged into that child's snapshot rather than becoming an instance of
// its own; any that match the directory's own name (or are named
// init.data.json/init.meta.json) are merged into the directory snapshot
// itself, extending the inherited Meta for the rest of the walk.
func (d *Dispatcher) snapshotDir(p string, m meta.Meta, backend vfs.Backend) (snapshot.Snapshot, error) {
	children, err := backend.ReadDir(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	dirName := path.Base(p)
	sidecars := map[string]string{} // stripped stem -> sidecar path
	var ownSidecar string
	var regular []string

	for _, child := range children {
		base := path.Base(child)
		if d.cfg.IsBlacklisted(child) || m.IsIgnored(child) {
			continue
		}
		stem, ok := dataSidecarStem(base)
		if !ok {
			regular = append(regular, child)
			continue
		}
		if stem == "" || stem == dirName || base == "init.data.json" || base == "init.meta.json" {
			ownSidecar = child
			continue
		}
		sidecars[stem] = child
	}

	snap := snapshot.New()
	snap.Path = p
	snap.Meta = m.WithSource(meta.Source{Kind: meta.SourcePath, Path: p})
	snap.SetName(d.cfg.sanitize(&snap.Meta, dirName))

	if d.cfg.Schema.IsService(dirName) {
		snap.SetClass(dirName)
	}

	if ownSidecar != "" {
		data, err := readSidecar(ownSidecar, backend)
		if err == nil {
			applyInstanceData(d.cfg.Schema, &snap, data)
			snap.Meta = m.Extend(snap.Meta)
		}
	}

	for _, childPath := range regular {
		base := path.Base(childPath)
		stem := strings.TrimSuffix(base, path.Ext(childPath))

		childSnap, ok, err := d.FromPath(childPath, snap.Meta, backend)
		if err != nil || !ok {
			continue
		}

		if sidecarPath, has := sidecars[stem]; has {
			data, err := readSidecar(sidecarPath, backend)
			if err == nil {
				applyInstanceData(d.cfg.Schema, &childSnap, data)
			}
		}

		snap.AddChild(childSnap)
	}

	return snap, nil
}

// dataSidecarStem reports whether base is a *.data.json/*.meta.json file
// and, if so, the name it applies to (empty string for a bare
// .data.json/.meta.json with no stem, which always targets the directory).
func dataSidecarStem(base string) (string, bool) {
	for _, suffix := range []string{".data.json", ".meta.json"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix), true
		}
	}
	return "", false
}

func readSidecar(p string, backend vfs.Backend) (instanceData, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return instanceData{}, err
	}
	return parseInstanceData(raw)
}

var _ = syncrule.Directory // Directory is a classification result, not a dispatch target: see snapshotDir.
