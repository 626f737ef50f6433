package vfs

import (
	"path"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

type entryKind int

const (
	fileEntry entryKind = iota
	dirEntry
)

type entry struct {
	kind     entryKind
	data     []byte
	children map[string]struct{} // child base names, dirEntry only
}

// Mem is the in-memory Backend: a map path -> entry. Watch,
// Unwatch, Pause and Resume are no-ops; Receiver is idle. It exists for
// deterministic, fast tests of the middleware and processor without
// touching a real filesystem.
type Mem struct {
	mu      sync.Mutex
	entries map[string]*entry
	events  chan Event
}

// NewMem creates an empty in-memory filesystem with a root directory.
func NewMem() *Mem {
	m := &Mem{
		entries: map[string]*entry{
			"/": {kind: dirEntry, children: map[string]struct{}{}},
		},
		events: make(chan Event),
	}
	return m
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	c := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return c
}

func (m *Mem) parentOf(p string) string {
	if p == "/" {
		return "/"
	}
	return path.Dir(p)
}

func (m *Mem) Read(p string) ([]byte, error) {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[p]
	if !ok {
		return nil, newPathError("read", p, ErrNotFound)
	}
	if e.kind != fileEntry {
		return nil, newPathError("read", p, ErrNotFile)
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

func (m *Mem) ReadToString(p string) (string, error) {
	data, err := m.Read(p)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", newPathError("read", p, ErrInvalidData)
	}
	return NormalizeNewlines(string(data)), nil
}

func (m *Mem) ReadDir(p string) ([]string, error) {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[p]
	if !ok {
		return nil, newPathError("read_dir", p, ErrNotFound)
	}
	if e.kind != dirEntry {
		return nil, newPathError("read_dir", p, ErrNotDir)
	}

	out := make([]string, 0, len(e.children))
	for name := range e.children {
		if p == "/" {
			out = append(out, "/"+name)
		} else {
			out = append(out, p+"/"+name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Mem) mkdirAllLocked(p string) {
	if p == "/" {
		return
	}
	if _, ok := m.entries[p]; ok {
		return
	}
	parent := m.parentOf(p)
	m.mkdirAllLocked(parent)
	pe := m.entries[parent]
	if pe.children == nil {
		pe.children = map[string]struct{}{}
	}
	pe.children[path.Base(p)] = struct{}{}
	m.entries[p] = &entry{kind: dirEntry, children: map[string]struct{}{}}
}

func (m *Mem) Write(p string, data []byte) error {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[p]; ok && e.kind == dirEntry {
		return newPathError("write", p, ErrNotFile)
	}

	m.mkdirAllLocked(m.parentOf(p))
	parent := m.entries[m.parentOf(p)]
	parent.children[path.Base(p)] = struct{}{}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.entries[p] = &entry{kind: fileEntry, data: buf}
	return nil
}

func (m *Mem) CreateDir(p string) error {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[p]; ok {
		if e.kind != dirEntry {
			return newPathError("create_dir", p, ErrNotDir)
		}
		return nil
	}
	m.mkdirAllLocked(p)
	return nil
}

func (m *Mem) descendants(p string) []string {
	prefix := p
	if prefix != "/" {
		prefix += "/"
	}
	var out []string
	for path := range m.entries {
		if path == p {
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix) {
			out = append(out, path)
		}
	}
	return out
}

func (m *Mem) Rename(from, to string) error {
	from, to = clean(from), clean(to)
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[from]
	if !ok {
		return newPathError("rename", from, ErrNotFound)
	}

	fromParent := m.entries[m.parentOf(from)]
	delete(fromParent.children, path.Base(from))

	m.mkdirAllLocked(m.parentOf(to))
	toParent := m.entries[m.parentOf(to)]
	toParent.children[path.Base(to)] = struct{}{}

	for _, desc := range m.descendants(from) {
		rel := strings.TrimPrefix(desc, from)
		m.entries[to+rel] = m.entries[desc]
		delete(m.entries, desc)
	}

	delete(m.entries, from)
	m.entries[to] = e
	return nil
}

func (m *Mem) Remove(p string) error {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[p]; !ok {
		return newPathError("remove", p, ErrNotFound)
	}

	for _, desc := range m.descendants(p) {
		delete(m.entries, desc)
	}
	delete(m.entries, p)

	if parent, ok := m.entries[m.parentOf(p)]; ok {
		delete(parent.children, path.Base(p))
	}
	return nil
}

func (m *Mem) Exists(p string) bool {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[p]
	return ok
}

func (m *Mem) IsDir(p string) bool {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[p]
	return ok && e.kind == dirEntry
}

func (m *Mem) IsFile(p string) bool {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[p]
	return ok && e.kind == fileEntry
}

func (m *Mem) Watch(path string, recursive bool) error { return nil }
func (m *Mem) Unwatch(path string) error                { return nil }
func (m *Mem) Pause()                                   {}
func (m *Mem) Resume()                                  {}

func (m *Mem) Receiver() <-chan Event { return m.events }

func (m *Mem) Close() error {
	close(m.events)
	return nil
}

var _ Backend = (*Mem)(nil)
