// Package meta implements per-instance bookkeeping: where an instance came
// from on disk, which sync rules and ignore globs it inherited, and the
// policy flags that shape how its subtree is built.
package meta

import (
	"github.com/synctree/synctree/internal/glob"
	"github.com/synctree/synctree/internal/syncrule"
)

// SourceKind tags Meta.Source as coming from a filesystem path, a project
// manifest node, or neither.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourcePath
	SourceProjectNode
)

// Source describes where an instance's content is authored.
type Source struct {
	Kind SourceKind
	// Path holds the filesystem path when Kind == SourcePath.
	Path string
	// ProjectPath/NodePath hold the project manifest path and the node's
	// position in the project's node graph when Kind == SourceProjectNode.
	ProjectPath string
	NodePath    string
}

// NameSanitizePolicy selects between two name-sanitization strategies.
// Strict rejects a name containing characters illegal on the target
// filesystem; Permissive slugifies it and records the original (the
// optional "original-name" field only makes sense under this policy).
// Default is Permissive; see DESIGN.md for the reasoning.
type NameSanitizePolicy int

const (
	Permissive NameSanitizePolicy = iota
	Strict
)

// Meta is the per-instance metadata the tree stores alongside each id. A
// live tree's instances always have a non-None Source; a zero-value Meta
// (used transiently while building a snapshot before it's paired) carries
// SourceNone.
type Meta struct {
	Source Source

	IgnoreGlobs []glob.Glob
	SyncRules   syncrule.Table

	UseLegacyScripts   bool
	KeepUnknownChildren bool
	SanitizePolicy     NameSanitizePolicy

	// OriginalName is set when the on-disk name was sanitized under the
	// Permissive policy.
	OriginalName string

	// MeshSource is the sidecar blob path a MeshPart's mesh content was
	// spilled to, relative to the content directory. Empty when not
	// applicable or the spill failed.
	MeshSource string
}

// Empty returns a Meta with SourceNone and the default sync-rule table
// (every other field zero), the starting point for a path
// that hasn't been paired with a project node yet.
func Empty() Meta {
	return Meta{SyncRules: syncrule.Defaults()}
}

// Extend merges child into the receiver by extension, the way a directory
// snapshot merges a nested project-data file's Meta into its own before
// continuing the walk. Fields set on child win; slices are appended.
func (m Meta) Extend(child Meta) Meta {
	out := m
	if child.Source.Kind != SourceNone {
		out.Source = child.Source
	}
	out.IgnoreGlobs = append(append([]glob.Glob{}, out.IgnoreGlobs...), child.IgnoreGlobs...)
	if len(child.SyncRules) > 0 {
		out.SyncRules = child.SyncRules
	}
	if child.UseLegacyScripts {
		out.UseLegacyScripts = true
	}
	if child.KeepUnknownChildren {
		out.KeepUnknownChildren = true
	}
	if child.SanitizePolicy != Permissive {
		out.SanitizePolicy = child.SanitizePolicy
	}
	if child.OriginalName != "" {
		out.OriginalName = child.OriginalName
	}
	if child.MeshSource != "" {
		out.MeshSource = child.MeshSource
	}
	return out
}

// IsIgnored reports whether relPath matches any inherited ignore glob.
func (m Meta) IsIgnored(relPath string) bool {
	for _, g := range m.IgnoreGlobs {
		if g.MatchesWithDir(relPath) {
			return true
		}
	}
	return false
}

// WithSource returns a copy of m with Source set, used when a snapshot is
// paired with the path or project node that authored it.
func (m Meta) WithSource(s Source) Meta {
	out := m
	out.Source = s
	return out
}
