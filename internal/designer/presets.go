package designer

import (
	"fmt"
	"sort"

	"github.com/mcncl/jsonbench/internal/errors"
)

type presetNode struct {
	name     string
	nodeType NodeType
	value    any
	children []presetNode
}

var presets = map[string][]presetNode{
	"package": {
		{name: "name", nodeType: TypeString, value: "my-project"},
		{name: "version", nodeType: TypeString, value: "1.0.0"},
		{name: "description", nodeType: TypeString, value: ""},
		{name: "main", nodeType: TypeString, value: "index.js"},
		{name: "scripts", nodeType: TypeObject, children: []presetNode{
			{name: "start", nodeType: TypeString, value: "node index.js"},
			{name: "test", nodeType: TypeString, value: `echo "No tests"`},
		}},
		{name: "dependencies", nodeType: TypeObject},
		{name: "devDependencies", nodeType: TypeObject},
	},
	"config": {
		{name: "appName", nodeType: TypeString, value: "My App"},
		{name: "debug", nodeType: TypeBoolean, value: false},
		{name: "port", nodeType: TypeNumber, value: "3000"},
		{name: "database", nodeType: TypeObject, children: []presetNode{
			{name: "host", nodeType: TypeString, value: "localhost"},
			{name: "port", nodeType: TypeNumber, value: "5432"},
			{name: "name", nodeType: TypeString, value: "mydb"},
		}},
		{name: "features", nodeType: TypeArray, children: []presetNode{
			{nodeType: TypeString, value: "feature1"},
			{nodeType: TypeString, value: "feature2"},
		}},
	},
	"api": {
		{name: "success", nodeType: TypeBoolean, value: true},
		{name: "status", nodeType: TypeNumber, value: "200"},
		{name: "message", nodeType: TypeString, value: "OK"},
		{name: "data", nodeType: TypeObject, children: []presetNode{
			{name: "id", nodeType: TypeNumber, value: "1"},
			{name: "items", nodeType: TypeArray},
		}},
		{name: "meta", nodeType: TypeObject, children: []presetNode{
			{name: "total", nodeType: TypeNumber, value: "0"},
			{name: "page", nodeType: TypeNumber, value: "1"},
			{name: "limit", nodeType: TypeNumber, value: "10"},
		}},
	},
}

// PresetNames lists the built-in starting structures.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset builds the named starting structure with fresh ids. Every preset
// has an object root.
func Preset(name string, newID IDSource) (Structure, error) {
	fields, ok := presets[name]
	if !ok {
		return Structure{}, errors.NewDesignError(fmt.Sprintf("unknown preset %q", name), nil)
	}
	if newID == nil {
		newID = NewID
	}
	return Structure{RootType: TypeObject, Data: buildPreset(fields, newID)}, nil
}

func buildPreset(fields []presetNode, newID IDSource) []*Node {
	nodes := make([]*Node, len(fields))
	for i, p := range fields {
		n := NewNode(newID(), p.name, p.nodeType)
		switch {
		case p.nodeType.IsContainer():
			n.setChildren(buildPreset(p.children, newID))
		case p.value != nil:
			n.Data = coerce(p.nodeType, p.value)
		}
		nodes[i] = n
	}
	return nodes
}
