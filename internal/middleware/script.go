package middleware

import (
	"errors"
	"strings"

	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/value"
	"github.com/synctree/synctree/internal/vfs"
)

// ScriptContext is the directory-derived default for a script's run
// context, overridable per-file by a leading directive comment.
type ScriptContext int

const (
	Server ScriptContext = iota
	Client
	Module
)

// errDisabled signals a `--disable` directive; the dispatcher treats this
// exactly like a path that failed to match any rule: a script carrying
// --disable is skipped entirely, as if absent.
var errDisabled = errors.New("middleware: script disabled")

// scriptClass maps a context (possibly overridden by directive) plus the
// legacy-scripts flag to the instance class to emit.
func scriptClass(ctx ScriptContext, legacy bool) string {
	switch ctx {
	case Server:
		if legacy {
			return "Script"
		}
		return "Script"
	case Client:
		if legacy {
			return "LocalScript"
		}
		return "Script"
	default:
		return "ModuleScript"
	}
}

// parseDirectives scans the leading comment lines of a Luau source file
// for --disable, --server, --client, --plugin. Scanning stops at the
// first non-comment, non-blank line.
func parseDirectives(source string) (ctx *ScriptContext, disabled bool) {
	lines := strings.Split(source, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "--") {
			break
		}
		directive := strings.TrimSpace(strings.TrimPrefix(trimmed, "--"))
		switch directive {
		case "disable":
			disabled = true
		case "server":
			c := Server
			ctx = &c
		case "client":
			c := Client
			ctx = &c
		case "plugin":
			// Plugin-context scripts are synced as server Scripts; the
			// distinction only matters to the running engine, not to the
			// instance tree.
			c := Server
			ctx = &c
		}
	}
	return ctx, disabled
}

// readScript builds a snapshot for a server/client/module script, applying
// directive overrides and the UseLegacyScripts meta flag. Without the flag,
// server and client scripts are both Script instances told apart by their
// RunContext enum (1 server, 2 client). Source keeps the file text as read,
// directive lines included.
func (d *Dispatcher) readScript(p string, m meta.Meta, backend vfs.Backend, context ScriptContext) (snapshot.Snapshot, error) {
	raw, err := backend.ReadToString(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	override, disabled := parseDirectives(raw)
	if disabled {
		return snapshot.Snapshot{}, errDisabled
	}
	if override != nil {
		context = *override
	}

	snap := snapshot.New()
	snap.SetClass(scriptClass(context, m.UseLegacyScripts))
	if !m.UseLegacyScripts && context != Module {
		runContext := uint32(1)
		if context == Client {
			runContext = 2
		}
		snap.Properties["RunContext"] = value.Value{Kind: value.KindEnum, Enum: value.Enum{EnumName: "RunContext", Value: runContext}}
	}
	snap.Properties["Source"] = value.String(raw)
	return snap, nil
}
