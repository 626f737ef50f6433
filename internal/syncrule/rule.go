// Package syncrule implements SyncRule and the middleware dispatcher's
// file-kind classification: glob patterns matched in declaration order
// against a path, or against a directory's children.
package syncrule

import (
	"path/filepath"
	"strings"

	"github.com/synctree/synctree/internal/glob"
)

// FileKind enumerates every snapshot constructor the middleware dispatcher
// can route to.
type FileKind int

const (
	Project FileKind = iota
	InstanceData
	ServerScript
	ClientScript
	ModuleScript
	JSONModule
	TOMLModule
	YAMLModule
	MsgPackModule
	CSV
	Text
	Markdown
	BinaryModel
	XMLModel
	JSONModel
	Directory
)

var fileKindNames = [...]string{
	"Project", "InstanceData", "ServerScript", "ClientScript", "ModuleScript",
	"JSONModule", "TOMLModule", "YAMLModule", "MsgPackModule", "CSV", "Text",
	"Markdown", "BinaryModel", "XMLModel", "JSONModel", "Directory",
}

func (k FileKind) String() string {
	if int(k) < len(fileKindNames) {
		return fileKindNames[k]
	}
	return "Unknown"
}

// ParseFileKind resolves a manifest's `syncRules` override entry's kind
// name back to a FileKind.
func ParseFileKind(name string) (FileKind, bool) {
	for i, n := range fileKindNames {
		if n == name {
			return FileKind(i), true
		}
	}
	return 0, false
}

// Rule is one SyncRule: a glob pattern mapped to a FileKind, with
// an optional child pattern (matched against a directory's children to
// decide the directory's own identity), an optional suffix stripped from
// the resulting instance name, and optional excludes.
type Rule struct {
	Kind         FileKind
	Pattern      glob.Glob
	ChildPattern *glob.Glob
	Suffix       string
	Excludes     []glob.Glob
}

// Matches tests Rule.Pattern against a file path's base name, honoring
// Excludes.
func (r Rule) Matches(path string) bool {
	base := filepath.Base(path)
	if !r.Pattern.Matches(base) {
		return false
	}
	for _, ex := range r.Excludes {
		if ex.Matches(base) || ex.Matches(path) {
			return false
		}
	}
	return true
}

// MatchesChild tests Rule.ChildPattern against each of a directory's
// children, returning true (and the matched child's base name) if any
// child establishes this directory's identity.
func (r Rule) MatchesChild(children []string) (string, bool) {
	if r.ChildPattern == nil {
		return "", false
	}
	for _, child := range children {
		base := filepath.Base(child)
		if r.ChildPattern.Matches(base) {
			return base, true
		}
	}
	return "", false
}

// StripSuffix removes the rule's configured suffix from name, if present.
func (r Rule) StripSuffix(name string) string {
	if r.Suffix == "" {
		return name
	}
	return strings.TrimSuffix(name, r.Suffix)
}

// Table is an ordered list of rules; first match wins.
type Table []Rule

// Match returns the first rule whose Pattern matches path, when path is a
// file.
func (t Table) Match(path string) (Rule, bool) {
	for _, r := range t {
		if r.Matches(path) {
			return r, true
		}
	}
	return Rule{}, false
}

// MatchDir returns the first rule whose ChildPattern matches one of dir's
// children, when path is a directory, plus the matched child's base name.
func (t Table) MatchDir(children []string) (Rule, string, bool) {
	for _, r := range t {
		if name, ok := r.MatchesChild(children); ok {
			return r, name, true
		}
	}
	return Rule{}, "", false
}

// Defaults is the shipped sync-rule table: project manifests, instance
// data, server/client/module scripts in both
// .lua and .luau with child variants, text, CSV, JSON/TOML/YAML/MsgPack
// modules, binary and XML models, and JSON models.
func Defaults() Table {
	return Table{
		{Kind: Project, Pattern: glob.MustNew("*.project.json"), ChildPattern: ptr(glob.MustNew("default.project.json"))},

		{Kind: InstanceData, Pattern: glob.MustNew("*.data.json")},
		{Kind: InstanceData, Pattern: glob.MustNew("*.meta.json")},

		{Kind: ServerScript, Pattern: glob.MustNew("*.server.lua"), Suffix: ".server.lua", ChildPattern: ptr(glob.MustNew("init.server.lua"))},
		{Kind: ServerScript, Pattern: glob.MustNew("*.server.luau"), Suffix: ".server.luau", ChildPattern: ptr(glob.MustNew("init.server.luau"))},
		{Kind: ClientScript, Pattern: glob.MustNew("*.client.lua"), Suffix: ".client.lua", ChildPattern: ptr(glob.MustNew("init.client.lua"))},
		{Kind: ClientScript, Pattern: glob.MustNew("*.client.luau"), Suffix: ".client.luau", ChildPattern: ptr(glob.MustNew("init.client.luau"))},
		{Kind: ModuleScript, Pattern: glob.MustNew("*.lua"), Suffix: ".lua", ChildPattern: ptr(glob.MustNew("init.lua"))},
		{Kind: ModuleScript, Pattern: glob.MustNew("*.luau"), Suffix: ".luau", ChildPattern: ptr(glob.MustNew("init.luau"))},

		{Kind: Text, Pattern: glob.MustNew("*.txt"), Suffix: ".txt"},
		{Kind: Markdown, Pattern: glob.MustNew("*.md"), Suffix: ".md"},
		{Kind: CSV, Pattern: glob.MustNew("*.csv"), Suffix: ".csv"},

		{Kind: JSONModel, Pattern: glob.MustNew("*.model.json"), Suffix: ".model.json"},
		{Kind: JSONModule, Pattern: glob.MustNew("*.json"), Suffix: ".json"},
		{Kind: TOMLModule, Pattern: glob.MustNew("*.toml"), Suffix: ".toml"},
		{Kind: YAMLModule, Pattern: glob.MustNew("*.yaml"), Suffix: ".yaml"},
		{Kind: YAMLModule, Pattern: glob.MustNew("*.yml"), Suffix: ".yml"},
		{Kind: MsgPackModule, Pattern: glob.MustNew("*.msgpack"), Suffix: ".msgpack"},

		{Kind: BinaryModel, Pattern: glob.MustNew("*.rbxm"), Suffix: ".rbxm"},
		{Kind: XMLModel, Pattern: glob.MustNew("*.rbxmx"), Suffix: ".rbxmx"},
	}
}

func ptr(g glob.Glob) *glob.Glob { return &g }
