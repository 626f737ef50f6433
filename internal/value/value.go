// Package value implements the typed value union and the resolver that
// turns ambiguous JSON-like input into one of those types against a
// class-and-property schema.
package value

import "fmt"

// Kind tags the variant held by a Value.
type Kind int

const (
	KindBool Kind = iota
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBinary
	KindTags
	KindEnum
	KindColor3
	KindVector2
	KindVector3
	KindCFrame
	KindContent
	KindAttributes
	KindFont
	KindMaterialColors
)

func (k Kind) String() string {
	names := [...]string{
		"Bool", "Int32", "Int64", "Float32", "Float64", "String", "Binary",
		"Tags", "Enum", "Color3", "Vector2", "Vector3", "CFrame", "Content",
		"Attributes", "Font", "MaterialColors",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Vector3 is also used for Color3 (both are 3 float32 components) and for
// CFrame's position and basis rows.
type Vector3 struct{ X, Y, Z float32 }

type Vector2 struct{ X, Y float32 }

// Matrix3 is a 3x3 orthonormal rotation basis, stored row-major.
type Matrix3 struct{ Row0, Row1, Row2 Vector3 }

type CFrame struct {
	Position    Vector3
	Orientation Matrix3
}

// Enum holds a raw enum value plus the enum name it was resolved against.
type Enum struct {
	EnumName string
	Value    uint32
}

// Font mirrors the engine's Font value type: a content id, a numeric
// weight, and a style name. Values always arrive as already-typed object
// forms rather than as a scalar.
type Font struct {
	Family string
	Weight int
	Style  string
}

// MaterialColors is carried opaquely as the serialized override table; the
// engine doesn't interpret it beyond round-tripping.
type MaterialColors struct {
	Raw []byte
}

// Value is the tagged union over every supported typed value.
type Value struct {
	Kind Kind

	Bool    bool
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	String  string
	Binary  []byte
	Tags    []string // ordered, duplicates removed
	Enum    Enum
	Color3  Vector3
	Vector2 Vector2
	Vector3 Vector3
	CFrame  CFrame
	Content string
	// Attributes maps attribute name to a value resolved unambiguously:
	// only Bool/Number/String inputs are accepted there.
	Attributes map[string]Value
	Font       Font
	Materials  MaterialColors
}

func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func Int32(i int32) Value        { return Value{Kind: KindInt32, Int32: i} }
func Int64(i int64) Value        { return Value{Kind: KindInt64, Int64: i} }
func Float32(f float32) Value    { return Value{Kind: KindFloat32, Float32: f} }
func Float64(f float64) Value    { return Value{Kind: KindFloat64, Float64: f} }
func String(s string) Value      { return Value{Kind: KindString, String: s} }
func Binary(b []byte) Value      { return Value{Kind: KindBinary, Binary: b} }
func ContentOf(s string) Value   { return Value{Kind: KindContent, Content: s} }

// TagsOf builds a Tags value with duplicates removed, preserving first
// occurrence order.
func TagsOf(tags []string) Value {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return Value{Kind: KindTags, Tags: out}
}

// Equal compares two values for the round-trip and diffing invariants the
// processor and tests rely on.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == other.Bool
	case KindInt32:
		return v.Int32 == other.Int32
	case KindInt64:
		return v.Int64 == other.Int64
	case KindFloat32:
		return v.Float32 == other.Float32
	case KindFloat64:
		return v.Float64 == other.Float64
	case KindString:
		return v.String == other.String
	case KindBinary:
		return string(v.Binary) == string(other.Binary)
	case KindTags:
		if len(v.Tags) != len(other.Tags) {
			return false
		}
		for i := range v.Tags {
			if v.Tags[i] != other.Tags[i] {
				return false
			}
		}
		return true
	case KindEnum:
		return v.Enum == other.Enum
	case KindColor3:
		return v.Color3 == other.Color3
	case KindVector2:
		return v.Vector2 == other.Vector2
	case KindVector3:
		return v.Vector3 == other.Vector3
	case KindCFrame:
		return v.CFrame == other.CFrame
	case KindContent:
		return v.Content == other.Content
	case KindAttributes:
		if len(v.Attributes) != len(other.Attributes) {
			return false
		}
		for k, val := range v.Attributes {
			ov, ok := other.Attributes[k]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	case KindFont:
		return v.Font == other.Font
	case KindMaterialColors:
		return string(v.Materials.Raw) == string(other.Materials.Raw)
	default:
		return false
	}
}

func (v Value) String_() string { return fmt.Sprintf("%s(%v)", v.Kind, v.describe()) }

func (v Value) describe() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindString:
		return v.String
	default:
		return nil
	}
}
