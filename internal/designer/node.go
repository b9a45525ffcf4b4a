// Package designer holds the editable node tree behind the JSON designer:
// typed nodes, the tree operations, serialization to JSON and the importer
// that derives a tree from an existing document.
package designer

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/xid"
)

// NodeType is the JSON type a node produces.
type NodeType string

const (
	TypeString  NodeType = "string"
	TypeNumber  NodeType = "number"
	TypeBoolean NodeType = "boolean"
	TypeNull    NodeType = "null"
	TypeObject  NodeType = "object"
	TypeArray   NodeType = "array"
)

// Valid reports whether t is one of the six node types.
func (t NodeType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeNull, TypeObject, TypeArray:
		return true
	}
	return false
}

// IsContainer reports whether nodes of type t hold children.
func (t NodeType) IsContainer() bool {
	return t == TypeObject || t == TypeArray
}

// Data is the typed payload of a node. Only Object and Array carry children.
type Data interface {
	Type() NodeType
	isData()
}

// String is a string node's value.
type String struct{ Value string }

// Number keeps the number as it was typed; it is parsed on serialization.
type Number struct{ Value string }

// Boolean is a boolean node's value.
type Boolean struct{ Value bool }

// Null has no payload.
type Null struct{}

// Object holds named children.
type Object struct{ Children []*Node }

// Array holds positional children; their names are ignored.
type Array struct{ Children []*Node }

func (String) Type() NodeType  { return TypeString }
func (Number) Type() NodeType  { return TypeNumber }
func (Boolean) Type() NodeType { return TypeBoolean }
func (Null) Type() NodeType    { return TypeNull }
func (Object) Type() NodeType  { return TypeObject }
func (Array) Type() NodeType   { return TypeArray }

func (String) isData()  {}
func (Number) isData()  {}
func (Boolean) isData() {}
func (Null) isData()    {}
func (Object) isData()  {}
func (Array) isData()   {}

// Node is one element of the tree. The name only matters under an object.
type Node struct {
	ID   string
	Name string
	Data Data
}

// IDSource produces node ids. Every call must return a new id.
type IDSource func() string

// NewID returns a fresh node id.
func NewID() string {
	return "node_" + xid.New().String()
}

// NewNode creates a node of type t holding the type's zero value.
func NewNode(id, name string, t NodeType) *Node {
	return &Node{ID: id, Name: name, Data: zeroData(t)}
}

// Type returns the node's type.
func (n *Node) Type() NodeType {
	if n.Data == nil {
		return TypeNull
	}
	return n.Data.Type()
}

// IsContainer reports whether the node holds children.
func (n *Node) IsContainer() bool {
	return n.Type().IsContainer()
}

// Children returns the node's children, or nil for scalars.
func (n *Node) Children() []*Node {
	switch d := n.Data.(type) {
	case Object:
		return d.Children
	case Array:
		return d.Children
	}
	return nil
}

func (n *Node) setChildren(children []*Node) {
	switch n.Data.(type) {
	case Object:
		n.Data = Object{Children: children}
	case Array:
		n.Data = Array{Children: children}
	}
}

// Value returns the scalar payload as a plain Go value: a string for string
// and number nodes, a bool, or nil.
func (n *Node) Value() any {
	switch d := n.Data.(type) {
	case String:
		return d.Value
	case Number:
		return d.Value
	case Boolean:
		return d.Value
	}
	return nil
}

// clone deep-copies the subtree, dropping nil children. With a non-nil
// newID every copied node gets a fresh id; otherwise ids are kept.
func (n *Node) clone(newID IDSource) *Node {
	out := &Node{ID: n.ID, Name: n.Name, Data: n.Data}
	if newID != nil {
		out.ID = newID()
	}
	if n.IsContainer() {
		out.setChildren(cloneAll(n.Children(), newID))
	}
	return out
}

// contains reports whether id names n or one of its descendants.
func (n *Node) contains(id string) bool {
	if n.ID == id {
		return true
	}
	for _, child := range n.Children() {
		if child.contains(id) {
			return true
		}
	}
	return false
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children() {
		child.walk(fn)
	}
}

func zeroData(t NodeType) Data {
	switch t {
	case TypeNumber:
		return Number{Value: "0"}
	case TypeBoolean:
		return Boolean{}
	case TypeNull:
		return Null{}
	case TypeObject:
		return Object{Children: []*Node{}}
	case TypeArray:
		return Array{Children: []*Node{}}
	default:
		return String{}
	}
}

// coerce converts a patch value into the payload of a scalar type.
func coerce(t NodeType, v any) Data {
	switch t {
	case TypeString:
		return String{Value: valueText(v)}
	case TypeNumber:
		return Number{Value: valueText(v)}
	case TypeBoolean:
		return Boolean{Value: truthy(v)}
	case TypeNull:
		return Null{}
	}
	return zeroData(t)
}

// truthy accepts the boolean true and the string "true".
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}

func valueText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
