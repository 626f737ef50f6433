package value

import "encoding/json"

// wireShape is the fully-qualified {"type", "value"} form every Value
// marshals to on the wire; Resolve already accepts this exact shape back
// in, so a Value round-trips through JSON without re-resolving against a
// schema.
type wireShape struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// MarshalJSON renders v in the fully-qualified wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireShape{Type: v.Kind.String(), Value: v.nativeValue()})
}

func (v Value) nativeValue() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt32:
		return v.Int32
	case KindInt64:
		return v.Int64
	case KindFloat32:
		return v.Float32
	case KindFloat64:
		return v.Float64
	case KindString:
		return v.String
	case KindBinary:
		return v.Binary
	case KindTags:
		return v.Tags
	case KindEnum:
		return map[string]any{"enumName": v.Enum.EnumName, "value": v.Enum.Value}
	case KindColor3:
		return []float32{v.Color3.X, v.Color3.Y, v.Color3.Z}
	case KindVector2:
		return []float32{v.Vector2.X, v.Vector2.Y}
	case KindVector3:
		return []float32{v.Vector3.X, v.Vector3.Y, v.Vector3.Z}
	case KindCFrame:
		b := v.CFrame.Orientation
		p := v.CFrame.Position
		return []float32{
			p.X, p.Y, p.Z,
			b.Row0.X, b.Row0.Y, b.Row0.Z,
			b.Row1.X, b.Row1.Y, b.Row1.Z,
			b.Row2.X, b.Row2.Y, b.Row2.Z,
		}
	case KindContent:
		return v.Content
	case KindAttributes:
		out := make(map[string]any, len(v.Attributes))
		for name, a := range v.Attributes {
			out[name] = a.nativeValue()
		}
		return out
	case KindFont:
		return map[string]any{"family": v.Font.Family, "weight": v.Font.Weight, "style": v.Font.Style}
	case KindMaterialColors:
		return json.RawMessage(v.Materials.Raw)
	default:
		return nil
	}
}

// UnmarshalJSON parses the fully-qualified wire form back into a typed
// Value by delegating to resolveFullyQualified, the same path Resolve uses
// for an already-typed input.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireShape
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	resolved, err := resolveFullyQualified(w.Type, w.Value)
	if err != nil {
		return err
	}
	*v = resolved
	return nil
}
