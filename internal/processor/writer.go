package processor

import (
	"encoding/json"
	"strings"

	"github.com/synctree/synctree/internal/middleware"
	"github.com/synctree/synctree/internal/value"
)

// writeInstanceFile writes class/props back to targetPath, marking the
// write-back suppression window first so the VFS event the write itself
// provokes is dropped rather than re-diffed. Script classes have any leading
// directive lines stripped from Source and rebuilt from RunContext/Disabled; the
// localization table reconstructs spreadsheet text from its JSON entries;
// other known classes write their single text-shaped property; anything
// else falls back to a *.data.json sidecar.
func (p *Processor) writeInstanceFile(targetPath, class string, props map[string]value.Value) error {
	p.suppress.mark(targetPath)

	switch class {
	case "Script", "LocalScript", "ModuleScript":
		return p.Backend.Write(targetPath, []byte(scriptSource(class, props)))
	case "StringValue":
		return p.Backend.Write(targetPath, []byte(stringProp(props, "Value")))
	case "LocalizationTable":
		csv, err := middleware.WriteCSV(stringProp(props, "Contents"))
		if err != nil {
			return err
		}
		return p.Backend.Write(targetPath, csv)
	default:
		return p.writeDataSidecar(targetPath, class, props)
	}
}

func stringProp(props map[string]value.Value, name string) string {
	v, ok := props[name]
	if !ok || v.Kind != value.KindString {
		return ""
	}
	return v.String
}

// scriptSource reconstructs a script's on-disk text: directive comments
// first (--client/--plugin/--disable, as applicable), then Source with its
// own leading directive lines removed, so a read-then-write round trip does
// not stack them.
func scriptSource(class string, props map[string]value.Value) string {
	var directives []string

	if class == "Script" {
		if rc, ok := props["RunContext"]; ok && rc.Kind == value.KindEnum && rc.Enum.EnumName == "RunContext" {
			switch rc.Enum.Value {
			case 2:
				directives = append(directives, "--client")
			case 3:
				directives = append(directives, "--plugin")
			}
		}
	}
	if class == "LocalScript" {
		directives = append(directives, "--client")
	}
	if d, ok := props["Disabled"]; ok && d.Kind == value.KindBool && d.Bool {
		directives = append(directives, "--disable")
	}

	source := stringProp(props, "Source")
	for {
		line, rest, _ := strings.Cut(source, "\n")
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "--") {
			break
		}
		switch strings.TrimSpace(strings.TrimPrefix(trimmed, "--")) {
		case "disable", "server", "client", "plugin":
			source = rest
			continue
		}
		break
	}
	if len(directives) == 0 {
		return source
	}
	return strings.Join(directives, "\n") + "\n" + source
}

// sidecarFile is the instanceData shape from internal/middleware, repeated
// here rather than imported to avoid a processor->middleware->processor
// cycle; both encode/decode the same *.data.json document shape (spec
// §4.D item 2).
type sidecarFile struct {
	ClassName  *string        `json:"className,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// writeDataSidecar writes class/props as a *.data.json document directly at
// targetPath, which already carries the .data.json suffix (filenameFor for
// a fresh addition, or the instance's existing Source.Path for an update to
// one already on disk in that shape).
func (p *Processor) writeDataSidecar(targetPath, class string, props map[string]value.Value) error {
	plain := make(map[string]any, len(props))
	for name, v := range props {
		plain[name] = v // value.Value implements json.Marshaler (fully-qualified form)
	}

	doc := sidecarFile{ClassName: &class, Properties: plain}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return p.Backend.Write(targetPath, raw)
}
