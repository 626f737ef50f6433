package middleware

import (
	"encoding/xml"

	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/value"
	"github.com/synctree/synctree/internal/vfs"
)

// readBinaryModel and readXMLModel are deliberately scope-limited: no
// faithful rbxm/rbxmx codec exists in the Go ecosystem (the format is a
// proprietary, versioned binary chunk layout for .rbxm and a bespoke XML
// dialect for .rbxmx), and writing one from scratch is out of scope here.
// Both constructors instead preserve round-trip fidelity for the common
// case the dispatcher actually needs to support, without attempting to
// decode the instance graph: readBinaryModel carries the raw bytes as an
// opaque BinaryStringValue, and readXMLModel keeps the root Item's class
// with the raw text in a RawXML string property.

func (d *Dispatcher) readBinaryModel(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	snap := snapshot.New()
	snap.SetClass("BinaryStringValue")
	snap.Properties["Value"] = value.Binary(raw)
	return snap, nil
}

// rbxmxDocument captures just enough of the XML model's top-level shape to
// recover a single root instance's class; its name and everything beneath it
// (properties, children, referents) is preserved verbatim in RawXML rather
// than decoded, per the scope limitation above.
type rbxmxDocument struct {
	XMLName xml.Name `xml:"roblox"`
	Item    struct {
		Class string `xml:"class,attr"`
	} `xml:"Item"`
}

func (d *Dispatcher) readXMLModel(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	var doc rbxmxDocument
	class := "Model"
	if err := xml.Unmarshal(raw, &doc); err == nil && doc.Item.Class != "" {
		class = doc.Item.Class
	}

	snap := snapshot.New()
	snap.SetClass(class)
	snap.Properties["RawXML"] = value.String(string(raw))

	if class == "MeshPart" {
		if spilled, ok := d.spillMesh(p, raw); ok {
			snap.Meta.MeshSource = spilled
		}
	}

	return snap, nil
}
