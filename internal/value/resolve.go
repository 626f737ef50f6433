package value

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

func marshalJSON(v any) ([]byte, error) { return json.Marshal(v) }

// ResolveError is returned by Resolve/ResolveUnambiguous.
type ResolveError struct {
	Kind     string // UnknownProperty | UnknownEnumMember | WrongType | InvalidUnambiguous
	Class    string
	Property string
	Expected string
	Observed string
}

func (e *ResolveError) Error() string {
	switch e.Kind {
	case "UnknownProperty":
		return fmt.Sprintf("unknown property %s.%s", e.Class, e.Property)
	case "UnknownEnumMember":
		return fmt.Sprintf("invalid value for %s.%s: expected a member of %s, got %s", e.Class, e.Property, e.Expected, e.Observed)
	case "InvalidUnambiguous":
		return fmt.Sprintf("cannot unambiguously resolve %s", e.Observed)
	default:
		return fmt.Sprintf("wrong type for %s.%s: expected %s, got %s", e.Class, e.Property, e.Expected, e.Observed)
	}
}

// Unresolved is the ambiguous-JSON-or-fully-qualified input to Resolve.
// Raw holds whatever encoding/json (or a YAML/TOML/MsgPack decode
// normalized to the same generic shape) produced: nil, bool, float64,
// string, []any, map[string]any.
type Unresolved struct {
	Raw any
}

// fully-qualified form: {"type": "<TypeName>", "value": <json>}
func (u Unresolved) fullyQualified() (string, any, bool) {
	m, ok := u.Raw.(map[string]any)
	if !ok {
		return "", nil, false
	}
	t, ok := m["type"].(string)
	if !ok {
		if t2, ok2 := m["Type"].(string); ok2 {
			t = t2
		} else {
			return "", nil, false
		}
	}
	v, hasValue := m["value"]
	if !hasValue {
		v = m["Value"]
	}
	return t, v, true
}

// Resolve resolves u against class.property's descriptor.
func Resolve(schema *Schema, u Unresolved, class, property string) (Value, error) {
	if typeName, raw, ok := u.fullyQualified(); ok {
		return resolveFullyQualified(typeName, raw)
	}

	desc, ok := schema.Lookup(class, property)
	if !ok {
		return Value{}, &ResolveError{Kind: "UnknownProperty", Class: class, Property: property}
	}

	if desc.IsEnum {
		s, ok := u.Raw.(string)
		if !ok {
			return Value{}, &ResolveError{Kind: "WrongType", Class: class, Property: property, Expected: "a string enum member", Observed: describeShape(u.Raw)}
		}
		n, ok := schema.EnumValue(desc.EnumName, s)
		if !ok {
			return Value{}, &ResolveError{Kind: "UnknownEnumMember", Class: class, Property: property, Expected: desc.EnumName, Observed: s}
		}
		return Value{Kind: KindEnum, Enum: Enum{EnumName: desc.EnumName, Value: n}}, nil
	}

	return resolveValueKind(desc.ValueKind, u.Raw, class, property)
}

func resolveValueKind(kind Kind, raw any, class, property string) (Value, error) {
	wrongType := func(expected string) error {
		return &ResolveError{Kind: "WrongType", Class: class, Property: property, Expected: expected, Observed: describeShape(raw)}
	}

	switch kind {
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, wrongType("a bool")
		}
		return Bool(b), nil

	case KindFloat32:
		n, ok := asNumber(raw)
		if !ok {
			return Value{}, wrongType("a number")
		}
		return Float32(float32(n)), nil

	case KindFloat64:
		n, ok := asNumber(raw)
		if !ok {
			return Value{}, wrongType("a number")
		}
		return Float64(n), nil

	case KindInt32:
		n, ok := asNumber(raw)
		if !ok {
			return Value{}, wrongType("a number")
		}
		return Int32(int32(n)), nil

	case KindInt64:
		n, ok := asNumber(raw)
		if !ok {
			return Value{}, wrongType("a number")
		}
		return Int64(int64(n)), nil

	case KindString:
		s, ok := raw.(string)
		if !ok {
			return Value{}, wrongType("a string")
		}
		return String(s), nil

	case KindContent:
		s, ok := raw.(string)
		if !ok {
			return Value{}, wrongType("a string")
		}
		return ContentOf(s), nil

	case KindTags:
		arr, ok := raw.([]any)
		if !ok {
			return Value{}, wrongType("an array of strings")
		}
		tags := make([]string, 0, len(arr))
		for _, el := range arr {
			s, ok := el.(string)
			if !ok {
				return Value{}, wrongType("an array of strings")
			}
			tags = append(tags, s)
		}
		return TagsOf(tags), nil

	case KindVector2:
		nums, ok := asNumberArray(raw, 2)
		if !ok {
			return Value{}, wrongType("an array of two numbers")
		}
		return Value{Kind: KindVector2, Vector2: Vector2{X: float32(nums[0]), Y: float32(nums[1])}}, nil

	case KindVector3:
		nums, ok := asNumberArray(raw, 3)
		if !ok {
			return Value{}, wrongType("an array of three numbers")
		}
		return Value{Kind: KindVector3, Vector3: Vector3{X: float32(nums[0]), Y: float32(nums[1]), Z: float32(nums[2])}}, nil

	case KindColor3:
		nums, ok := asNumberArray(raw, 3)
		if !ok {
			return Value{}, wrongType("an array of three numbers")
		}
		return Value{Kind: KindColor3, Color3: Vector3{X: float32(nums[0]), Y: float32(nums[1]), Z: float32(nums[2])}}, nil

	case KindCFrame:
		nums, ok := asNumberArray(raw, 12)
		if !ok {
			return Value{}, wrongType("an array of twelve numbers (position + 3x3 basis, row-major)")
		}
		f := make([]float32, 12)
		for i, n := range nums {
			f[i] = float32(n)
		}
		return Value{Kind: KindCFrame, CFrame: CFrame{
			Position: Vector3{X: f[0], Y: f[1], Z: f[2]},
			Orientation: Matrix3{
				Row0: Vector3{X: f[3], Y: f[4], Z: f[5]},
				Row1: Vector3{X: f[6], Y: f[7], Z: f[8]},
				Row2: Vector3{X: f[9], Y: f[10], Z: f[11]},
			},
		}}, nil

	case KindAttributes:
		m, ok := raw.(map[string]any)
		if !ok {
			return Value{}, wrongType("an object of {name: value}")
		}
		attrs := make(map[string]Value, len(m))
		for name, v := range m {
			resolved, err := ResolveUnambiguous(Unresolved{Raw: v})
			if err != nil {
				return Value{}, fmt.Errorf("attribute %q: %w", name, err)
			}
			attrs[name] = resolved
		}
		return Value{Kind: KindAttributes, Attributes: attrs}, nil

	case KindFont:
		m, ok := raw.(map[string]any)
		if !ok {
			return Value{}, wrongType("an object describing a Font")
		}
		f := Font{}
		if family, ok := m["family"].(string); ok {
			f.Family = family
		}
		if style, ok := m["style"].(string); ok {
			f.Style = style
		}
		if weight, ok := asNumber(m["weight"]); ok {
			f.Weight = int(weight)
		}
		return Value{Kind: KindFont, Font: f}, nil

	case KindMaterialColors:
		// Already-typed object form, carried opaquely.
		m, ok := raw.(map[string]any)
		if !ok {
			return Value{}, wrongType("an object describing MaterialColors")
		}
		raw, err := marshalJSON(m)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindMaterialColors, Materials: MaterialColors{Raw: raw}}, nil

	default:
		return Value{}, wrongType("a supported value type")
	}
}

func resolveFullyQualified(typeName string, raw any) (Value, error) {
	if typeName == "Binary" {
		s, ok := raw.(string)
		if !ok {
			return Value{}, &ResolveError{Kind: "WrongType", Expected: "a base64 string", Observed: describeShape(raw)}
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return Value{}, err
		}
		return Binary(data), nil
	}
	if typeName == "Enum" {
		m, ok := raw.(map[string]any)
		if !ok {
			return Value{}, &ResolveError{Kind: "WrongType", Expected: "an Enum object", Observed: describeShape(raw)}
		}
		name, _ := m["enumName"].(string)
		n, _ := asNumber(m["value"])
		return Value{Kind: KindEnum, Enum: Enum{EnumName: name, Value: uint32(n)}}, nil
	}

	kind, ok := kindByName(typeName)
	if !ok {
		return Value{}, fmt.Errorf("unknown fully-qualified type %q", typeName)
	}
	return resolveValueKind(kind, raw, "", "")
}

func kindByName(name string) (Kind, bool) {
	switch name {
	case "Bool":
		return KindBool, true
	case "Int32":
		return KindInt32, true
	case "Int64":
		return KindInt64, true
	case "Float32":
		return KindFloat32, true
	case "Float64":
		return KindFloat64, true
	case "String":
		return KindString, true
	case "Tags":
		return KindTags, true
	case "Color3":
		return KindColor3, true
	case "Vector2":
		return KindVector2, true
	case "Vector3":
		return KindVector3, true
	case "CFrame":
		return KindCFrame, true
	case "Content":
		return KindContent, true
	case "Attributes":
		return KindAttributes, true
	case "Font":
		return KindFont, true
	case "MaterialColors":
		return KindMaterialColors, true
	default:
		return 0, false
	}
}

// ResolveUnambiguous accepts only bool/number/string inputs, used for
// attribute values; anything else fails with InvalidUnambiguous.
func ResolveUnambiguous(u Unresolved) (Value, error) {
	switch v := u.Raw.(type) {
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case float64:
		return Float64(v), nil
	case int:
		return Float64(float64(v)), nil
	default:
		return Value{}, &ResolveError{Kind: "InvalidUnambiguous", Observed: describeShape(u.Raw)}
	}
}

func asNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func asNumberArray(raw any, n int) ([]float64, bool) {
	arr, ok := raw.([]any)
	if !ok || len(arr) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i, el := range arr {
		num, ok := asNumber(el)
		if !ok {
			return nil, false
		}
		out[i] = num
	}
	return out, true
}

func describeShape(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "null"
	case bool:
		return "a bool"
	case string:
		return "a string"
	case float64, float32, int, int64:
		return "a number"
	case []any:
		return fmt.Sprintf("an array of length %d", len(v))
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
