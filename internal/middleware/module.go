package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/value"
	"github.com/synctree/synctree/internal/vfs"
	"github.com/tinylib/msgp/msgp"
	"gopkg.in/yaml.v3"
)

// readJSONModule, readTOMLModule, readYAMLModule and readMsgPackModule all
// decode their respective format into a generic Go value and hand it to the
// shared writeLuaLiteral transliterator, producing a ModuleScript whose
// Source is `return <literal>`.

func (d *Dispatcher) readJSONModule(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return snapshot.Snapshot{}, &ParseError{Path: p, Kind: "JSONModule", Excerpt: excerpt(string(raw)), Err: err}
	}
	return moduleSnapshot(decoded), nil
}

func (d *Dispatcher) readTOMLModule(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	var decoded map[string]any
	if _, err := toml.Decode(string(raw), &decoded); err != nil {
		return snapshot.Snapshot{}, &ParseError{Path: p, Kind: "TOMLModule", Excerpt: excerpt(string(raw)), Err: err}
	}
	return moduleSnapshot(normalizeGeneric(decoded)), nil
}

func (d *Dispatcher) readYAMLModule(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	var decoded any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return snapshot.Snapshot{}, &ParseError{Path: p, Kind: "YAMLModule", Excerpt: excerpt(string(raw)), Err: err}
	}
	return moduleSnapshot(normalizeGeneric(decoded)), nil
}

func (d *Dispatcher) readMsgPackModule(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	raw, err := backend.Read(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	decoded, err := msgp.NewReader(bytes.NewReader(raw)).ReadIntf()
	if err != nil {
		return snapshot.Snapshot{}, &ParseError{Path: p, Kind: "MsgPackModule", Excerpt: "<binary>", Err: err}
	}
	return moduleSnapshot(normalizeGeneric(decoded)), nil
}

func moduleSnapshot(decoded any) snapshot.Snapshot {
	snap := snapshot.New()
	snap.SetClass("ModuleScript")
	var b strings.Builder
	b.WriteString("return ")
	writeLuaLiteral(&b, decoded)
	snap.Properties["Source"] = value.String(b.String())
	return snap
}

// normalizeGeneric recursively converts YAML's map[any]any (and msgp's
// map[string]interface{} with []byte/[]interface{} leaves) into the plain
// map[string]any / []any / primitive shape writeLuaLiteral expects, the same
// normalization the JSON module skips because encoding/json already
// produces it.
func normalizeGeneric(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeGeneric(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeGeneric(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeGeneric(val)
		}
		return out
	default:
		return v
	}
}

// writeLuaLiteral transliterates a generic decoded value (bool, string,
// number, nil, []any, map[string]any) into a Luau literal: arrays become
// sequences {a, b, c}, objects become keyed tables {["k"] = v}, with keys
// sorted for a deterministic, diff-friendly rendering.
func writeLuaLiteral(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		b.WriteString(luaQuote(t))
	case float64:
		b.WriteString(formatLuaNumber(t))
	case int:
		b.WriteString(strconv.Itoa(t))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case []any:
		b.WriteByte('{')
		for i, el := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			writeLuaLiteral(b, el)
		}
		b.WriteByte('}')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("[")
			b.WriteString(luaQuote(k))
			b.WriteString("] = ")
			writeLuaLiteral(b, t[k])
		}
		b.WriteByte('}')
	default:
		b.WriteString(luaQuote(fmt.Sprintf("%v", t)))
	}
}

func luaQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func formatLuaNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
