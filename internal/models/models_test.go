package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONObject_SetKeepsOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("b", 1)
	obj.Set("a", 2)
	obj.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, obj.Keys())
	v, ok := obj.Get("b")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, obj.Len())
}

func TestJSONObject_Delete(t *testing.T) {
	obj := NewObject()
	obj.Set("a", 1)
	obj.Set("b", 2)
	obj.Set("c", 3)
	obj.Delete("b")
	obj.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, obj.Keys())
	_, ok := obj.Get("b")
	assert.False(t, ok)
}

func TestJSONObject_MarshalJSON(t *testing.T) {
	inner := NewObject()
	inner.Set("z", nil)
	obj := NewObject()
	obj.Set("name", "x")
	obj.Set("list", JSONArray{json.Number("1"), true})
	obj.Set("inner", inner)

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x","list":[1,true],"inner":{"z":null}}`, string(out))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value JSONValue
		want  Kind
	}{
		{nil, KindNull},
		{true, KindBoolean},
		{json.Number("1"), KindNumber},
		{"s", KindString},
		{JSONArray{}, KindArray},
		{NewObject(), KindObject},
		{struct{}{}, KindInvalid},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.value))
	}
}

func TestDeepEqual(t *testing.T) {
	objA := NewObject()
	objA.Set("a", json.Number("1"))
	objA.Set("b", JSONArray{"x"})
	objB := NewObject()
	objB.Set("b", JSONArray{"x"})
	objB.Set("a", json.Number("1.0"))

	tests := []struct {
		name string
		a, b JSONValue
		want bool
	}{
		{"nulls", nil, nil, true},
		{"number vs string", json.Number("1"), "1", false},
		{"equal numbers different text", json.Number("1"), json.Number("1.0"), true},
		{"different numbers", json.Number("1"), json.Number("2"), false},
		{"objects ignore key order", objA, objB, true},
		{"arrays differ in length", JSONArray{1}, JSONArray{1, 2}, false},
		{"bool vs null", false, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeepEqual(tt.a, tt.b))
		})
	}
}
