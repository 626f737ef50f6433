package middleware

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
)

// defaultContentDir is the sidecar directory mesh blobs spill into when no
// explicit ContentDir is configured.
func defaultContentDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "synctree", "meshes")
	}
	return filepath.Join(dir, "synctree", "meshes")
}

// spillMeshBlob writes a MeshPart's raw XML model content to a content-addressed
// file under cfg.ContentDir and returns its path relative to that directory,
// so large mesh payloads don't round-trip through every tree diff.
// Best-effort: a write failure just means the mesh stays embedded in
// RawXML, so ok is false rather than an error.
func (c Config) spillMeshBlob(source []byte) (string, bool) {
	if c.ContentDir == "" {
		return "", false
	}
	sum := sha1.Sum(source)
	name := hex.EncodeToString(sum[:]) + ".mesh"

	if err := os.MkdirAll(c.ContentDir, 0o755); err != nil {
		return "", false
	}
	full := filepath.Join(c.ContentDir, name)
	if _, err := os.Stat(full); err == nil {
		return name, true // already spilled, content-addressed dedup
	}
	if err := os.WriteFile(full, source, 0o644); err != nil {
		return "", false
	}
	return name, true
}

func (d *Dispatcher) spillMesh(sourcePath string, raw []byte) (string, bool) {
	return d.cfg.spillMeshBlob(raw)
}

// SweepStaleMeshes deletes any content-addressed mesh blob under
// cfg.ContentDir that doesn't have a matching *.rbxmx source anymore,
// keyed by the live set of names still referenced by the tree. Nothing in
// this module calls it; it runs only when a caller invokes it.
func SweepStaleMeshes(cfg Config, liveNames map[string]struct{}) error {
	entries, err := os.ReadDir(cfg.ContentDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := liveNames[e.Name()]; ok {
			continue
		}
		_ = os.Remove(filepath.Join(cfg.ContentDir, e.Name()))
	}
	return nil
}
