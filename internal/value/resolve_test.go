package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBoolAndString(t *testing.T) {
	s := NewSchema()

	v, err := Resolve(s, Unresolved{Raw: true}, "BaseScript", "Disabled")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	v, err = Resolve(s, Unresolved{Raw: "print(1)"}, "ModuleScript", "Source")
	require.NoError(t, err)
	assert.Equal(t, String("print(1)"), v)
}

func TestResolveEnum(t *testing.T) {
	s := NewSchema()

	v, err := Resolve(s, Unresolved{Raw: "Client"}, "Script", "RunContext")
	require.NoError(t, err)
	require.Equal(t, KindEnum, v.Kind)
	assert.Equal(t, uint32(2), v.Enum.Value)
}

func TestResolveEnumUnknownMember(t *testing.T) {
	s := NewSchema()
	_, err := Resolve(s, Unresolved{Raw: "NotReal"}, "Script", "RunContext")
	require.Error(t, err)
	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "UnknownEnumMember", re.Kind)
}

func TestResolveUnknownProperty(t *testing.T) {
	s := NewSchema()
	_, err := Resolve(s, Unresolved{Raw: "x"}, "ModuleScript", "NotAProperty")
	require.Error(t, err)
	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "UnknownProperty", re.Kind)
}

func TestResolveVector3AndCFrame(t *testing.T) {
	s := NewSchema()

	v, err := Resolve(s, Unresolved{Raw: []any{1.0, 2.0, 3.0}}, "BasePart", "Position")
	require.NoError(t, err)
	assert.Equal(t, Vector3{X: 1, Y: 2, Z: 3}, v.Vector3)

	cf := make([]any, 12)
	for i := range cf {
		cf[i] = float64(i)
	}
	v, err = Resolve(s, Unresolved{Raw: cf}, "BasePart", "CFrame")
	require.NoError(t, err)
	assert.Equal(t, Vector3{X: 0, Y: 1, Z: 2}, v.CFrame.Position)
	assert.Equal(t, Vector3{X: 3, Y: 4, Z: 5}, v.CFrame.Orientation.Row0)
}

func TestResolveFullyQualifiedBypassesInference(t *testing.T) {
	s := NewSchema()
	v, err := Resolve(s, Unresolved{Raw: map[string]any{"type": "String", "value": "hi"}}, "AnyClass", "AnyProp")
	require.NoError(t, err)
	assert.Equal(t, String("hi"), v)
}

func TestResolveUnambiguousAcceptsOnlyPrimitives(t *testing.T) {
	v, err := ResolveUnambiguous(Unresolved{Raw: "x"})
	require.NoError(t, err)
	assert.Equal(t, String("x"), v)

	v, err = ResolveUnambiguous(Unresolved{Raw: true})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	v, err = ResolveUnambiguous(Unresolved{Raw: 3.5})
	require.NoError(t, err)
	assert.Equal(t, Float64(3.5), v)

	_, err = ResolveUnambiguous(Unresolved{Raw: []any{1.0, 2.0}})
	require.Error(t, err)
	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "InvalidUnambiguous", re.Kind)
}

func TestAttributesResolveEachValueUnambiguously(t *testing.T) {
	s := NewSchema()
	s.RegisterClass("Instance", "", map[string]Descriptor{
		"Attributes": {ValueKind: KindAttributes},
	})

	v, err := Resolve(s, Unresolved{Raw: map[string]any{"a": 1.0, "b": "x", "c": true}}, "Instance", "Attributes")
	require.NoError(t, err)
	require.Equal(t, KindAttributes, v.Kind)
	assert.Equal(t, Float64(1.0), v.Attributes["a"])
	assert.Equal(t, String("x"), v.Attributes["b"])
	assert.Equal(t, Bool(true), v.Attributes["c"])
}
