package designer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/mcncl/jsonbench/internal/errors"
)

// Structure is the persisted form of a designer tree:
// {"rootType": "object", "data": [...nodes]}.
type Structure struct {
	RootType NodeType `json:"rootType"`
	Data     []*Node  `json:"data"`
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	NodeType NodeType        `json:"nodeType"`
	Value    json.RawMessage `json:"value,omitempty"`
	Children []*Node         `json:"children,omitempty"`
}

// MarshalJSON writes {"id","name","nodeType","value"} for scalars and
// {"id","name","nodeType","children"} for containers.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{ID: n.ID, Name: n.Name, NodeType: n.Type()}

	var err error
	switch d := n.Data.(type) {
	case Object, Array:
		out.Children = n.Children()
		if out.Children == nil {
			out.Children = []*Node{}
		}
		return json.Marshal(struct {
			nodeJSON
			Children []*Node `json:"children"`
		}{out, out.Children})
	case String:
		out.Value, err = json.Marshal(d.Value)
	case Number:
		out.Value, err = numberJSON(d.Value)
	case Boolean:
		out.Value, err = json.Marshal(d.Value)
	default:
		out.Value = json.RawMessage("null")
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// numberJSON writes a number as a JSON number when it is one, otherwise as
// the string the user typed.
func numberJSON(text string) (json.RawMessage, error) {
	if jsonNumber.MatchString(text) {
		return json.RawMessage(text), nil
	}
	return json.Marshal(text)
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// UnmarshalJSON reads a node written by MarshalJSON. A missing nodeType
// means string; values are coerced to the node type.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.NodeType == "" {
		in.NodeType = TypeString
	}
	if !in.NodeType.Valid() {
		return fmt.Errorf("unknown nodeType %q", in.NodeType)
	}

	n.ID = in.ID
	n.Name = in.Name
	switch in.NodeType {
	case TypeObject:
		n.Data = Object{Children: nonNil(in.Children)}
	case TypeArray:
		n.Data = Array{Children: nonNil(in.Children)}
	default:
		value, err := rawValue(in.Value)
		if err != nil {
			return err
		}
		n.Data = coerce(in.NodeType, value)
		if in.NodeType == TypeNumber && value == nil {
			n.Data = Number{Value: "0"}
		}
	}
	return nil
}

func rawValue(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// nonNil drops null entries and never returns a nil slice.
func nonNil(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// LoadStructure parses a saved structure. Ids are kept so serialization is
// repeatable; a node with a missing or repeated id gets a fresh one. Null
// entries in data or children are dropped. A missing rootType means object.
func LoadStructure(data []byte, newID IDSource) (Structure, error) {
	var s Structure
	if err := json.Unmarshal(data, &s); err != nil {
		return Structure{}, errors.NewDesignError("invalid designer structure", err)
	}
	if s.RootType == "" {
		s.RootType = TypeObject
	}
	if !s.RootType.IsContainer() {
		return Structure{}, errors.NewDesignError(fmt.Sprintf("rootType must be object or array, got %q", s.RootType), nil)
	}
	if newID == nil {
		newID = NewID
	}
	s.Data = cloneAll(s.Data, nil)
	seen := make(map[string]bool)
	for _, n := range s.Data {
		n.walk(func(n *Node) {
			for n.ID == "" || seen[n.ID] {
				n.ID = newID()
			}
			seen[n.ID] = true
		})
	}
	return s, nil
}
