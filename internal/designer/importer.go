package designer

import (
	"fmt"

	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/models"
)

// Import derives a tree from a parsed JSON document. It captures shape, not
// data: scalars come back with their type's zero value and an array keeps
// only its first element as a sample child. An array root yields a single
// sample node, or none when the array is empty.
func Import(value models.JSONValue, newID IDSource) (Structure, error) {
	if newID == nil {
		newID = NewID
	}
	switch v := value.(type) {
	case *models.JSONObject:
		return Structure{RootType: TypeObject, Data: importMembers(v, newID)}, nil
	case models.JSONArray:
		return Structure{RootType: TypeArray, Data: importSample(v, newID)}, nil
	}
	return Structure{}, errors.NewDesignError(
		fmt.Sprintf("cannot import a %s at the top level", models.KindOf(value)), errors.ErrNotContainer)
}

func importMembers(obj *models.JSONObject, newID IDSource) []*Node {
	nodes := make([]*Node, 0, obj.Len())
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		nodes = append(nodes, importValue(key, v, newID))
	}
	return nodes
}

func importSample(arr models.JSONArray, newID IDSource) []*Node {
	if len(arr) == 0 {
		return []*Node{}
	}
	return []*Node{importValue("", arr[0], newID)}
}

func importValue(name string, value models.JSONValue, newID IDSource) *Node {
	n := NewNode(newID(), name, nodeTypeOf(value))
	switch v := value.(type) {
	case *models.JSONObject:
		n.setChildren(importMembers(v, newID))
	case models.JSONArray:
		n.setChildren(importSample(v, newID))
	}
	return n
}

func nodeTypeOf(value models.JSONValue) NodeType {
	switch models.KindOf(value) {
	case models.KindObject:
		return TypeObject
	case models.KindArray:
		return TypeArray
	case models.KindString:
		return TypeString
	case models.KindNumber:
		return TypeNumber
	case models.KindBoolean:
		return TypeBoolean
	}
	return TypeNull
}
