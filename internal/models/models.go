package models

import (
	"bytes"
	"encoding/json"
	"math/big"
)

// JSONValue is a generic type to represent any JSON value.
// It holds one of: nil, bool, json.Number, string, JSONArray or *JSONObject.
type JSONValue interface{}

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// JSONObject represents a JSON object whose keys keep their insertion order.
// Keys are unique; setting an existing key replaces its value in place.
type JSONObject struct {
	keys   []string
	values map[string]JSONValue
}

// NewObject creates an empty ordered object.
func NewObject() *JSONObject {
	return &JSONObject{values: make(map[string]JSONValue)}
}

// Set assigns value to key, appending the key if it is new.
func (o *JSONObject) Set(key string, value JSONValue) {
	if o.values == nil {
		o.values = make(map[string]JSONValue)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Delete removes key from the object.
func (o *JSONObject) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (o *JSONObject) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of members.
func (o *JSONObject) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// MarshalJSON encodes the object with its members in insertion order.
func (o *JSONObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// IntermediateRepresentation is a structure to hold the parsed JSON data
// in a way that's easy for the path, diff and designer packages to work with.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}

// Kind names the JSON type of a value.
type Kind string

const (
	KindNull    Kind = "null"
	KindBoolean Kind = "boolean"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindInvalid Kind = "invalid"
)

// KindOf reports the JSON kind of v.
func KindOf(v JSONValue) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case json.Number, float64, float32, int, int64, int32:
		return KindNumber
	case string:
		return KindString
	case JSONArray:
		return KindArray
	case *JSONObject:
		return KindObject
	default:
		return KindInvalid
	}
}

// IsContainer reports whether v is an object or an array.
func IsContainer(v JSONValue) bool {
	k := KindOf(v)
	return k == KindArray || k == KindObject
}

// DeepEqual compares two values structurally. No coercion happens between
// kinds; numbers compare by numeric value.
func DeepEqual(a, b JSONValue) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch av := a.(type) {
	case nil:
		return true
	case bool:
		return av == b.(bool)
	case string:
		return av == b.(string)
	case JSONArray:
		bv := b.(JSONArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !DeepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *JSONObject:
		bv := b.(*JSONObject)
		if av == bv {
			return true
		}
		if av.Len() != bv.Len() {
			return false
		}
		for _, key := range av.keys {
			other, ok := bv.Get(key)
			if !ok || !DeepEqual(av.values[key], other) {
				return false
			}
		}
		return true
	default:
		return numbersEqual(a, b)
	}
}

func numbersEqual(a, b JSONValue) bool {
	x, okA := numberText(a)
	y, okB := numberText(b)
	if !okA || !okB {
		return false
	}
	if x == y {
		return true
	}
	fx, _, errA := big.ParseFloat(x, 10, 256, big.ToNearestEven)
	fy, _, errB := big.ParseFloat(y, 10, 256, big.ToNearestEven)
	if errA != nil || errB != nil {
		return false
	}
	return fx.Cmp(fy) == 0
}

func numberText(v JSONValue) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	default:
		b, err := json.Marshal(n)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
