// Package snapshot implements Snapshot: an ephemeral description of a
// desired subtree produced by the middleware dispatcher, with no stable id
// until the processor pairs it with a tree instance.
package snapshot

import (
	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/value"
)

// Snapshot describes a proposed instance subtree at a path.
type Snapshot struct {
	Name       string
	Class      string
	Path       string // filesystem path this snapshot was built from, if any
	Properties map[string]value.Value
	Children   []Snapshot
	Meta       meta.Meta
}

// New returns an empty Folder-classed snapshot, the zero value middleware
// constructors start from.
func New() Snapshot {
	return Snapshot{Class: "Folder", Properties: map[string]value.Value{}, Meta: meta.Empty()}
}

func (s Snapshot) WithName(name string) Snapshot    { s.Name = name; return s }
func (s Snapshot) WithClass(class string) Snapshot  { s.Class = class; return s }
func (s Snapshot) WithPath(path string) Snapshot    { s.Path = path; return s }
func (s Snapshot) WithMeta(m meta.Meta) Snapshot    { s.Meta = m; return s }

func (s Snapshot) WithProperties(props map[string]value.Value) Snapshot {
	s.Properties = props
	return s
}

func (s *Snapshot) SetProperties(props map[string]value.Value) { s.Properties = props }
func (s *Snapshot) SetClass(class string)                      { s.Class = class }
func (s *Snapshot) SetName(name string)                         { s.Name = name }

func (s Snapshot) WithChildren(children []Snapshot) Snapshot {
	s.Children = children
	return s
}

func (s *Snapshot) AddChild(child Snapshot) {
	s.Children = append(s.Children, child)
}

// PropertiesEqual compares two property maps value-by-value, used by the
// processor's top-level diff and by the round-trip tests.
func PropertiesEqual(a, b map[string]value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
