// Package main wires the engine's packages together into a long-running
// process: a watched VFS backend, a dispatcher, a loaded project, a
// processor sharing the project's tree, a subscriber queue, and an
// optional audit-trail recorder.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/synctree/synctree/internal/changes"
	"github.com/synctree/synctree/internal/config"
	"github.com/synctree/synctree/internal/middleware"
	"github.com/synctree/synctree/internal/processor"
	"github.com/synctree/synctree/internal/project"
	"github.com/synctree/synctree/internal/queue"
	"github.com/synctree/synctree/internal/vcs"
	"github.com/synctree/synctree/internal/vfs"
)

// Engine is the process-wide state the transport layers (HTTP, MCP) call
// into. Everything that isn't independently synchronized (the queue, the
// VCS recorder) goes through mu, held at a granularity coarse enough to
// keep reconciliation atomic per event.
type Engine struct {
	cfg     *config.Config
	backend vfs.Backend
	dispatcher *middleware.Dispatcher
	rec     *vcs.Recorder
	q       *queue.Queue
	log     *slog.Logger

	mu   sync.Mutex
	proj *project.Project
	proc *processor.Processor
}

// NewEngine loads the configured project, materializes its processor, and
// starts watching every tree path it reports.
func NewEngine(cfg *config.Config, backend vfs.Backend, logger *slog.Logger) (*Engine, error) {
	mcfg := middleware.DefaultConfig()
	mcfg.SanitizePolicy = cfg.SanitizePolicy
	mcfg.UseLegacyScripts = cfg.UseLegacyScripts
	if cfg.ContentDir != "" {
		mcfg.ContentDir = cfg.ContentDir
	}
	dispatcher := middleware.New(mcfg)

	proj, err := project.Load(cfg.ProjectPath, dispatcher, backend)
	if err != nil {
		return nil, fmt.Errorf("engine: load project: %w", err)
	}

	proc := processor.New(dispatcher, backend, proj.Tree())
	proc.Threshold = cfg.Threshold
	proc.ManifestPath = cfg.ProjectPath

	for _, p := range proj.TreePaths() {
		if err := backend.Watch(p, true); err != nil {
			logger.Warn("failed to watch tree path", "path", p, "error", err)
		}
	}
	if err := backend.Watch(cfg.ProjectPath, false); err != nil {
		logger.Warn("failed to watch project manifest", "path", cfg.ProjectPath, "error", err)
	}

	var rec *vcs.Recorder
	if cfg.VCSEnabled {
		rec = vcs.Open(proj.WorkspaceDir, cfg.VCSAuthorName)
	} else {
		rec = vcs.Disabled(cfg.VCSAuthorName)
	}

	return &Engine{
		cfg:        cfg,
		backend:    backend,
		dispatcher: dispatcher,
		rec:        rec,
		q:          queue.New(cfg.QueueMaxPayloadBytes),
		log:        logger,
		proj:       proj,
		proc:       proc,
	}, nil
}

// Run drains the backend's event channel forever, reconciling every raw
// filesystem event into a change set and broadcasting it to every
// subscriber. It returns when ctx is canceled or the backend's channel
// closes.
func (e *Engine) Run(ctx context.Context) {
	events := e.backend.Receiver()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.handleEvent(ev)
		}
	}
}

func (e *Engine) handleEvent(ev vfs.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ev.Path == e.proj.ManifestPath {
		if err := e.reloadLocked(); err != nil {
			e.log.Error("project reload failed, keeping previous project", "error", err)
			return
		}
		e.log.Info("project reloaded", "manifest", e.proj.ManifestPath)
	}

	out, err := e.proc.Forward(ev)
	if err != nil {
		e.log.Error("forward reconciliation failed", "path", ev.Path, "error", err)
		return
	}
	if out.IsEmpty() {
		return
	}

	if err := e.q.Push(out, nil); err != nil {
		e.log.Error("broadcast change set failed", "error", err)
	}

	if e.rec != nil && e.rec.Enabled() {
		if hash, err := e.rec.Record(fmt.Sprintf("sync: %s %s", ev.Kind, ev.Path)); err != nil {
			e.log.Warn("audit-trail commit failed", "error", err)
		} else if hash != "" {
			e.log.Debug("audit-trail commit recorded", "commit", hash)
		}
	}
}

// reloadLocked re-parses the project manifest and, on success, diffs the
// old and new tree-path lists: unwatching roots that disappeared,
// watching ones that are new, and pointing the processor at the freshly
// built tree. Callers must hold e.mu.
func (e *Engine) reloadLocked() error {
	oldPaths, newPaths, err := e.proj.Reload(e.dispatcher, e.backend)
	if err != nil {
		return err
	}

	oldSet := make(map[string]struct{}, len(oldPaths))
	for _, p := range oldPaths {
		oldSet[p] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newPaths))
	for _, p := range newPaths {
		newSet[p] = struct{}{}
	}

	for _, p := range oldPaths {
		if _, keep := newSet[p]; !keep {
			if err := e.backend.Unwatch(p); err != nil {
				e.log.Warn("failed to unwatch removed tree path", "path", p, "error", err)
			}
		}
	}
	for _, p := range newPaths {
		if _, already := oldSet[p]; !already {
			if err := e.backend.Watch(p, true); err != nil {
				e.log.Warn("failed to watch new tree path", "path", p, "error", err)
			}
		}
	}

	e.proc.Tree = e.proj.Tree()
	return nil
}

// Subscribe registers clientID with the queue. placeID and gameID are
// accepted for parity with the external endpoint signature but the
// in-process queue doesn't key on them; validating a client's project
// affiliation is a concern of the HTTP/MCP framing layer, not the engine.
func (e *Engine) Subscribe(clientID string, placeID, gameID *int64) {
	e.q.Subscribe(clientID)
}

// Unsubscribe removes clientID from the queue.
func (e *Engine) Unsubscribe(clientID string) {
	e.q.Unsubscribe(clientID)
}

// Read long-polls the next message for clientID.
func (e *Engine) Read(ctx context.Context, clientID string) (changes.Changes, error) {
	timeout := time.Duration(e.cfg.QueueTimeoutSeconds) * time.Second
	return e.q.Get(ctx, clientID, timeout)
}

// ReadAll reports a full-tree sync: every place root's subtree, as
// additions against the implicit root parent.
func (e *Engine) ReadAll() changes.Changes {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := changes.Empty()
	out.Additions = e.proj.Tree().ExportAll()
	return out
}

// Write applies a reverse change set from a client and, when anything was
// committed, records a best-effort audit-trail commit.
func (e *Engine) Write(incoming changes.Changes) (changes.Changes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	committed, err := e.proc.ApplyClientChanges(incoming)
	if err != nil || committed.IsEmpty() {
		return committed, err
	}
	if e.rec != nil && e.rec.Enabled() {
		if _, err := e.rec.Record("sync: client write"); err != nil {
			e.log.Warn("audit-trail commit failed", "error", err)
		}
	}
	return committed, nil
}

// Snapshot returns the full current tree, same shape as ReadAll but
// intended for a one-shot poll rather than a subscriber's resync.
func (e *Engine) Snapshot() changes.Changes {
	return e.ReadAll()
}

// Details reports the project's serving metadata: its name, optional
// game ID, the place IDs it serves, and the engine/protocol version.
func (e *Engine) Details() Details {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Details{
		Name:     e.proj.Name(),
		GameID:   e.proj.GameID(),
		PlaceIDs: e.proj.PlaceIDs(),
		Version:  ProtocolVersion,
	}
}

// ProtocolVersion is reported by Details() and never changes within a
// released binary; bump it when the wire shapes in internal/changes
// change incompatibly.
const ProtocolVersion = "1.0.0"

// Details is the wire shape returned by the details operation.
type Details struct {
	Name     string  `json:"name"`
	GameID   *int64  `json:"gameId,omitempty"`
	PlaceIDs []int64 `json:"placeIds"`
	Version  string  `json:"version"`
}
