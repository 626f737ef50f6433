package middleware

import (
	"encoding/json"

	"github.com/synctree/synctree/internal/glob"
	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/value"
	"github.com/synctree/synctree/internal/vfs"
)

// instanceData is the decoded shape of a *.data.json / *.meta.json sidecar:
// className and properties apply to the sibling instance of the same stem
// (or, for init.data.json/init.meta.json, to the directory that contains
// it); ignoreGlobs/keepUnknownChildren/useLegacyScripts extend that
// instance's inherited Meta.
type instanceData struct {
	ClassName           *string        `json:"className"`
	Properties          map[string]any `json:"properties"`
	Attributes          map[string]any `json:"attributes"`
	Tags                []string       `json:"tags"`
	IgnoreGlobs         []string       `json:"ignoreGlobs"`
	KeepUnknownChildren *bool          `json:"keepUnknownChildren"`
	UseLegacyScripts    *bool          `json:"useLegacyScripts"`
}

func parseInstanceData(raw []byte) (instanceData, error) {
	var d instanceData
	if err := json.Unmarshal(raw, &d); err != nil {
		return instanceData{}, &ParseError{Kind: "InstanceData", Excerpt: excerpt(string(raw)), Err: err}
	}
	return d, nil
}

// snapshotData reads a *.data.json/*.meta.json file in isolation (used when
// no sibling/parent pairing applies, e.g. the dispatcher was pointed at the
// data file directly). It produces a bare snapshot carrying whatever class
// and properties the file declares.
func (d *Dispatcher) snapshotData(p string, m meta.Meta, backend vfs.Backend) (snapshot.Snapshot, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	data, err := parseInstanceData(raw)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	snap := snapshot.New()
	applyInstanceData(d.cfg.Schema, &snap, data)
	return snap, nil
}

// applyInstanceData merges a decoded instanceData file onto an existing
// snapshot in place: class, resolved properties/attributes/tags, and the
// meta policy fields it carries.
func applyInstanceData(schema *value.Schema, snap *snapshot.Snapshot, data instanceData) {
	class := snap.Class
	if data.ClassName != nil {
		class = *data.ClassName
		snap.SetClass(class)
	}

	if snap.Properties == nil {
		snap.Properties = map[string]value.Value{}
	}
	for name, raw := range data.Properties {
		v, err := value.Resolve(schema, value.Unresolved{Raw: raw}, class, name)
		if err != nil {
			continue // an unresolvable individual property is skipped, not fatal to the rest
		}
		snap.Properties[name] = v
	}

	if len(data.Attributes) > 0 {
		attrs := make(map[string]value.Value, len(data.Attributes))
		for name, raw := range data.Attributes {
			v, err := value.ResolveUnambiguous(value.Unresolved{Raw: raw})
			if err != nil {
				continue
			}
			attrs[name] = v
		}
		snap.Properties["Attributes"] = value.Value{Kind: value.KindAttributes, Attributes: attrs}
	}

	if len(data.Tags) > 0 {
		snap.Properties["Tags"] = value.TagsOf(data.Tags)
	}

	if len(data.IgnoreGlobs) > 0 {
		for _, pattern := range data.IgnoreGlobs {
			if g, err := glob.New(pattern); err == nil {
				snap.Meta.IgnoreGlobs = append(snap.Meta.IgnoreGlobs, g)
			}
		}
	}
	if data.KeepUnknownChildren != nil {
		snap.Meta.KeepUnknownChildren = *data.KeepUnknownChildren
	}
	if data.UseLegacyScripts != nil {
		snap.Meta.UseLegacyScripts = *data.UseLegacyScripts
	}
}
