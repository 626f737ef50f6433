// Package middleware implements the dispatcher that turns a path plus
// inherited sync rules into a typed instance Snapshot.
package middleware

import (
	"errors"
	"fmt"
	"path"

	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/syncrule"
	"github.com/synctree/synctree/internal/value"
	"github.com/synctree/synctree/internal/vfs"
)

// ParseError carries a path and a source excerpt, the shape every
// middleware parse failure takes.
type ParseError struct {
	Path    string
	Kind    string
	Excerpt string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func excerpt(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Config threads process-wide policy explicitly rather than through
// implicit singletons: the mesh-blob content directory, the
// name-sanitization policy, and the platform-artifact blacklist consulted
// before dispatch runs at all.
type Config struct {
	Schema             *value.Schema
	SanitizePolicy     meta.NameSanitizePolicy
	ContentDir         string // base directory for mesh-blob sidecar spill
	Blacklist          []string
	UseLegacyScripts   bool
}

// DefaultConfig returns sensible defaults: permissive name sanitization
// and a blacklist of common platform artifacts.
func DefaultConfig() Config {
	return Config{
		Schema:         value.NewSchema(),
		SanitizePolicy: meta.Permissive,
		ContentDir:     defaultContentDir(),
		Blacklist:      []string{".DS_Store", "Thumbs.db", "desktop.ini"},
	}
}

// IsBlacklisted reports whether path's base name is a configured platform
// artifact that must be ignored entirely.
func (c Config) IsBlacklisted(p string) bool {
	base := path.Base(p)
	for _, b := range c.Blacklist {
		if base == b {
			return true
		}
	}
	return false
}

// Dispatcher runs the rule-based classifier against a VFS.
type Dispatcher struct {
	cfg Config
}

func New(cfg Config) *Dispatcher {
	if cfg.Schema == nil {
		cfg.Schema = value.NewSchema()
	}
	return &Dispatcher{cfg: cfg}
}

// ConfigSnapshot returns the dispatcher's configuration, for callers (like
// the processor) that need to consult the blacklist or sanitize policy
// without duplicating it.
func (d *Dispatcher) ConfigSnapshot() Config { return d.cfg }

// FromPath classifies path by matching inherited sync rules in order and
// returns the resulting Snapshot, or ok=false when the path is ignored or
// doesn't classify into anything.
func (d *Dispatcher) FromPath(p string, m meta.Meta, backend vfs.Backend) (snapshot.Snapshot, bool, error) {
	if d.cfg.IsBlacklisted(p) {
		return snapshot.Snapshot{}, false, nil
	}
	if m.IsIgnored(p) {
		return snapshot.Snapshot{}, false, nil
	}
	if name := path.Base(p); d.cfg.SanitizePolicy == meta.Strict && name != "/" && illegalChars.MatchString(name) {
		return snapshot.Snapshot{}, false, &vfs.PathError{Op: "sanitize", Path: p, Err: fmt.Errorf("name %q contains characters illegal under the strict policy", name)}
	}

	isFile := backend.IsFile(p)
	isDir := backend.IsDir(p)
	if !isFile && !isDir {
		return snapshot.Snapshot{}, false, nil
	}

	if isFile {
		rule, ok := m.SyncRules.Match(p)
		if !ok {
			return snapshot.Snapshot{}, false, nil
		}
		snap, err := d.buildFile(rule, p, m, backend)
		if errors.Is(err, errDisabled) {
			return snapshot.Snapshot{}, false, nil
		}
		if err != nil {
			return snapshot.Snapshot{}, false, err
		}
		name := d.cfg.sanitize(&snap.Meta, rule.StripSuffix(baseName(p)))
		snap = snap.WithName(name).WithPath(p)
		snap.Meta = snap.Meta.WithSource(meta.Source{Kind: meta.SourcePath, Path: p})
		return snap, true, nil
	}

	children, err := backend.ReadDir(p)
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}

	if rule, childName, ok := m.SyncRules.MatchDir(children); ok {
		snap, err := d.buildDirRule(rule, p, childName, m, backend)
		if errors.Is(err, errDisabled) {
			return snapshot.Snapshot{}, false, nil
		}
		if err != nil {
			return snapshot.Snapshot{}, false, err
		}
		return snap, true, nil
	}

	snap, err := d.snapshotDir(p, m, backend)
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (d *Dispatcher) buildFile(rule syncrule.Rule, p string, m meta.Meta, backend vfs.Backend) (snapshot.Snapshot, error) {
	switch rule.Kind {
	case InstanceData:
		return d.snapshotData(p, m, backend)
	case ServerScript:
		return d.readScript(p, m, backend, Server)
	case ClientScript:
		return d.readScript(p, m, backend, Client)
	case ModuleScript:
		return d.readScript(p, m, backend, Module)
	case JSONModule:
		return d.readJSONModule(p, backend)
	case TOMLModule:
		return d.readTOMLModule(p, backend)
	case YAMLModule:
		return d.readYAMLModule(p, backend)
	case MsgPackModuleKind:
		return d.readMsgPackModule(p, backend)
	case CSVKind:
		return d.readCSV(p, backend)
	case TextKind:
		return d.readText(p, backend)
	case MarkdownKind:
		return d.readMarkdown(p, backend)
	case JSONModelKind:
		return d.readJSONModel(p, backend)
	case BinaryModelKind:
		return d.readBinaryModel(p, backend)
	case XMLModelKind:
		return d.readXMLModel(p, backend)
	case ProjectKind:
		return d.readProjectFile(p, backend)
	default:
		return snapshot.Snapshot{}, fmt.Errorf("unhandled file kind %v", rule.Kind)
	}
}

// buildDirRule handles a directory whose identity is established by a
// matching child (e.g. init.luau inside a folder acting as a ModuleScript
// with children, or default.project.json establishing a nested project
// root).
func (d *Dispatcher) buildDirRule(rule syncrule.Rule, p, childName string, m meta.Meta, backend vfs.Backend) (snapshot.Snapshot, error) {
	childPath := path.Join(p, childName)
	snap, err := d.buildFile(rule, childPath, m, backend)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	name := d.cfg.sanitize(&snap.Meta, baseName(p))
	snap = snap.WithName(name).WithPath(p)
	snap.Meta = snap.Meta.WithSource(meta.Source{Kind: meta.SourcePath, Path: p})

	children, err := backend.ReadDir(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	for _, childPath := range children {
		if path.Base(childPath) == childName {
			continue
		}
		childSnap, ok, err := d.FromPath(childPath, snap.Meta, backend)
		if err != nil {
			continue // a child that fails to classify is skipped, not fatal to the parent
		}
		if ok {
			snap.AddChild(childSnap)
		}
	}

	return snap, nil
}

func baseName(p string) string {
	return path.Base(p)
}

const (
	ProjectKind        = syncrule.Project
	InstanceData       = syncrule.InstanceData
	ServerScript       = syncrule.ServerScript
	ClientScript       = syncrule.ClientScript
	ModuleScript       = syncrule.ModuleScript
	JSONModule         = syncrule.JSONModule
	TOMLModule         = syncrule.TOMLModule
	YAMLModule         = syncrule.YAMLModule
	MsgPackModuleKind  = syncrule.MsgPackModule
	CSVKind            = syncrule.CSV
	TextKind           = syncrule.Text
	MarkdownKind       = syncrule.Markdown
	BinaryModelKind    = syncrule.BinaryModel
	XMLModelKind       = syncrule.XMLModel
	JSONModelKind      = syncrule.JSONModel
	DirectoryKind      = syncrule.Directory
)
