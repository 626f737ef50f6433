// Package processor implements the reconciliation loop: a forward diff
// (VFS event -> Changes) and a reverse apply (client Changes -> tree
// mutation plus write-through), sharing one Tree.
package processor

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/synctree/synctree/internal/changes"
	"github.com/synctree/synctree/internal/middleware"
	"github.com/synctree/synctree/internal/tree"
	"github.com/synctree/synctree/internal/vfs"
)

// DefaultThreshold is the default change-set magnitude above which a
// reverse apply requires operator confirmation before it proceeds.
const DefaultThreshold = 5

// ErrConfirmationRequired is returned by ApplyClientChanges when an
// incoming change set's size exceeds the configured threshold; Pending
// carries the change set so the caller can re-submit it after obtaining
// confirmation.
type ErrConfirmationRequired struct {
	Pending changes.Changes
	Size    int
}

func (e *ErrConfirmationRequired) Error() string {
	return fmt.Sprintf("change set of size %d exceeds confirmation threshold", e.Size)
}

// ErrManifestRemoved is returned by Forward when the event path is the
// loaded project's own manifest and the event kind is Delete: losing the
// manifest invalidates every path rule derived from it, so the caller must
// stop processing that project rather than attempt an ordinary reconcile.
var ErrManifestRemoved = errors.New("processor: project manifest removed")

// Processor owns one tree and the dispatcher/backend pair used to rebuild
// and write through snapshots.
type Processor struct {
	Dispatcher *middleware.Dispatcher
	Backend    vfs.Backend
	Tree       *tree.Tree
	Threshold  int

	// ManifestPath, when non-empty, marks the loaded project's own
	// manifest file; Forward special-cases events on this exact path
	// rather than running the ordinary ancestor-rebuild logic.
	ManifestPath string

	suppress *suppressSet
}

// New builds a Processor over an existing tree.
func New(d *middleware.Dispatcher, backend vfs.Backend, t *tree.Tree) *Processor {
	return &Processor{
		Dispatcher: d,
		Backend:    backend,
		Tree:       t,
		Threshold:  DefaultThreshold,
		suppress:   newSuppressSet(),
	}
}

// Forward processes one VFS event and returns the resulting Changes. A
// blacklisted or suppressed path yields an empty Changes and no error. The
// manifest path, if configured, yields ErrManifestRemoved on a Delete event
// rather than being diffed like an ordinary path.
func (p *Processor) Forward(event vfs.Event) (changes.Changes, error) {
	cfg := p.Dispatcher.ConfigSnapshot()
	if cfg.IsBlacklisted(event.Path) {
		return changes.Empty(), nil
	}
	if p.suppress.active(event.Path) {
		return changes.Empty(), nil
	}

	if p.ManifestPath != "" && event.Path == p.ManifestPath {
		if event.Kind == vfs.Delete {
			return changes.Empty(), ErrManifestRemoved
		}
		// The caller (cmd/treesyncd's Engine.handleEvent) reloads the
		// project and repoints Tree before calling Forward; nothing to
		// reconcile here for the manifest path itself.
		return changes.Empty(), nil
	}

	out := changes.Empty()
	for _, id := range p.Tree.AncestorIDsOf(event.Path) {
		sub, err := p.forwardOne(id)
		if err != nil {
			continue // an ancestor that fails to rebuild is skipped, not fatal to the rest
		}
		out.Extend(sub)
	}
	return out, nil
}

func (p *Processor) forwardOne(id uuid.UUID) (changes.Changes, error) {
	out := changes.Empty()

	_, ok := p.Tree.Get(id)
	if !ok {
		return out, nil
	}
	m := p.Tree.GetMeta(id)
	if m.Source.Path == "" {
		return out, nil
	}

	snap, matched, err := p.Dispatcher.FromPath(m.Source.Path, m, p.Backend)
	if err != nil {
		return out, err
	}
	if !matched {
		p.Tree.Remove(id)
		out.AddRemoval(id)
		return out, nil
	}

	p.reconcileNode(id, snap, &out)
	return out, nil
}
