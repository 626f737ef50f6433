// Package project implements the project loader: manifest parsing,
// recursive node-graph descent into an initial instance tree, tree-paths
// (watch-root) extraction, and atomic reload-on-manifest-write.
package project

import (
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/synctree/synctree/internal/middleware"
	"github.com/synctree/synctree/internal/tree"
	"github.com/synctree/synctree/internal/vfs"
)

// Project is the loaded manifest plus the instance tree materialized from
// it. ManifestPath and WorkspaceDir never change after Load; Document,
// Tree, and TreePaths are swapped together, under mu, by Reload: the new
// tree and index are built on the side, then swapped in under a lock.
type Project struct {
	ManifestPath string
	WorkspaceDir string

	mu        sync.RWMutex
	document  middleware.ProjectDocument
	tr        *tree.Tree
	treePaths []string
}

// Load parses manifestPath and materializes the initial tree.
func Load(manifestPath string, d *middleware.Dispatcher, backend vfs.Backend) (*Project, error) {
	doc, tr, treePaths, err := build(manifestPath, d, backend)
	if err != nil {
		return nil, err
	}

	return &Project{
		ManifestPath: manifestPath,
		WorkspaceDir: path.Dir(manifestPath),
		document:     doc,
		tr:           tr,
		treePaths:    treePaths,
	}, nil
}

// Reload re-parses p's manifest and, on success, atomically swaps in the
// freshly built document/tree/tree-paths; on failure the previous project
// state is left untouched and the error is returned for the caller to
// surface. The caller is responsible for unwatching oldPaths and watching
// the returned newPaths.
func (p *Project) Reload(d *middleware.Dispatcher, backend vfs.Backend) (oldPaths, newPaths []string, err error) {
	doc, tr, treePaths, err := build(p.ManifestPath, d, backend)
	if err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	oldPaths = p.treePaths
	p.document = doc
	p.tr = tr
	p.treePaths = treePaths
	p.mu.Unlock()

	return oldPaths, treePaths, nil
}

func build(manifestPath string, d *middleware.Dispatcher, backend vfs.Backend) (middleware.ProjectDocument, *tree.Tree, []string, error) {
	raw, err := backend.Read(manifestPath)
	if err != nil {
		return middleware.ProjectDocument{}, nil, nil, err
	}
	doc, err := middleware.ParseProjectDocument(raw)
	if err != nil {
		return middleware.ProjectDocument{}, nil, nil, err
	}

	base := path.Dir(manifestPath)
	m, err := middleware.RootMeta(doc)
	if err != nil {
		return middleware.ProjectDocument{}, nil, nil, err
	}

	visited := map[string]struct{}{filepath.Clean(manifestPath): {}}
	root, err := d.BuildProjectNode(doc.Tree, base, m, backend, visited)
	if err != nil {
		return middleware.ProjectDocument{}, nil, nil, err
	}
	root.SetName(doc.Name)
	if root.Class == "" {
		root.SetClass("DataModel")
	}

	tr := tree.New(root)
	return doc, tr, collectTreePaths(doc.Tree, base), nil
}

// Name, Host, Port, GameID, and PlaceIDs read the current document's
// serving metadata; Host/Port fall back to cfgHost/cfgPort when the
// manifest leaves them unset (project value wins, config value is the
// fallback).
func (p *Project) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.document.Name
}

func (p *Project) Host(cfgHost string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.document.Host != "" {
		return p.document.Host
	}
	return cfgHost
}

func (p *Project) Port(cfgPort int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.document.Port != 0 {
		return p.document.Port
	}
	return cfgPort
}

func (p *Project) GameID() *int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.document.GameID
}

func (p *Project) PlaceIDs() []int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]int64{}, p.document.PlaceIDs...)
}

// Tree returns the currently-loaded instance tree. The returned pointer is
// stable until the next Reload; callers that span a reload should re-fetch
// it rather than cache it indefinitely.
func (p *Project) Tree() *tree.Tree {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tr
}

// TreePaths returns the filesystem roots the watcher should observe.
func (p *Project) TreePaths() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string{}, p.treePaths...)
}

// collectTreePaths walks the manifest's node graph (not the built snapshot
// tree) collecting every resolved $path reference: each one is an
// independent watch root, since a recursive watch on it already covers
// whatever the middleware discovers underneath. Cycle-guarded the same way
// BuildProjectNode is, so a self-referencing manifest can't recurse
// forever here either.
func collectTreePaths(node middleware.ProjectNode, basePath string) []string {
	seen := map[string]struct{}{}
	var out []string
	var walk func(n middleware.ProjectNode, base string, visited map[string]struct{})
	walk = func(n middleware.ProjectNode, base string, visited map[string]struct{}) {
		if n.Path != "" {
			target := n.Path
			if !path.IsAbs(target) {
				target = path.Join(base, target)
			}
			canon := filepath.Clean(target)
			if _, dup := visited[canon]; dup {
				return
			}
			visited[canon] = struct{}{}
			defer delete(visited, canon)
			if _, already := seen[canon]; !already {
				seen[canon] = struct{}{}
				out = append(out, canon)
			}
		}
		for _, child := range n.Children {
			walk(child, base, visited)
		}
	}
	walk(node, basePath, map[string]struct{}{})
	sort.Strings(out)
	return out
}
