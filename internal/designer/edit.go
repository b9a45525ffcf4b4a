package designer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/jsonbench/internal/errors"
)

// Edit operations accepted by Tree.Apply.
const (
	OpAdd       = "add"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpDuplicate = "duplicate"
	OpMove      = "move"
	OpDrop      = "drop"
	OpRootType  = "root-type"
	OpClear     = "clear"
)

// Edit is one tree operation of a batch. An id written as "$N" names the
// node created by edit N of the same batch.
//
//	add        parent (empty for the root sequence), type, optional name and value
//	update     id, optional name, type and value
//	delete     id
//	duplicate  id
//	move       ids, parent (empty for the root sequence), index
//	drop       id, target (empty drops on the root), position
//	root-type  type
//	clear
type Edit struct {
	Op       string          `json:"op"`
	ID       string          `json:"id,omitempty"`
	IDs      []string        `json:"ids,omitempty"`
	Parent   string          `json:"parent,omitempty"`
	Target   string          `json:"target,omitempty"`
	Position string          `json:"position,omitempty"`
	Index    int             `json:"index,omitempty"`
	Type     NodeType        `json:"type,omitempty"`
	Name     *string         `json:"name,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// EditResult reports one applied edit. ID is the node an add or duplicate
// created.
type EditResult struct {
	Op      string `json:"op"`
	Changed bool   `json:"changed"`
	ID      string `json:"id,omitempty"`
}

// NewTreeFrom builds a tree holding a copy of s. Ids are kept.
func NewTreeFrom(s Structure, opts ...Option) *Tree {
	t := NewTree(opts...)
	if s.RootType.IsContainer() {
		t.rootType = s.RootType
	}
	t.roots = cloneAll(s.Data, nil)
	return t
}

// Apply runs edits in order. An edit that names a missing node or would
// break the tree reports Changed false and the batch goes on. A malformed
// edit stops the batch with a design error; edits before it stay applied.
func (t *Tree) Apply(edits []Edit) ([]EditResult, error) {
	created := make([]string, len(edits))
	ref := func(id string) string {
		n, ok := strings.CutPrefix(id, "$")
		if !ok {
			return id
		}
		i, err := strconv.Atoi(n)
		if err != nil || i < 0 || i >= len(created) {
			return id
		}
		return created[i]
	}

	results := make([]EditResult, 0, len(edits))
	for i, e := range edits {
		res, err := t.applyOne(e, ref)
		if err != nil {
			return results, errors.NewDesignError(fmt.Sprintf("edit %d (%s)", i, e.Op), err)
		}
		created[i] = res.ID
		results = append(results, res)
	}
	return results, nil
}

func (t *Tree) applyOne(e Edit, ref func(string) string) (EditResult, error) {
	res := EditResult{Op: e.Op}

	switch e.Op {
	case OpAdd:
		if !e.Type.Valid() {
			return res, fmt.Errorf("unknown node type %q", e.Type)
		}
		value, err := rawValue(e.Value)
		if err != nil {
			return res, fmt.Errorf("invalid value: %w", err)
		}
		if e.Parent == "" {
			res.ID = t.AddRoot(e.Type)
			res.Changed = res.ID != ""
		} else {
			res.ID, res.Changed = t.AddChild(ref(e.Parent), e.Type)
		}
		if res.Changed && (e.Name != nil || value != nil) {
			t.Update(res.ID, Patch{Name: e.Name, Value: value})
		}

	case OpUpdate:
		if e.Type != "" && !e.Type.Valid() {
			return res, fmt.Errorf("unknown node type %q", e.Type)
		}
		value, err := rawValue(e.Value)
		if err != nil {
			return res, fmt.Errorf("invalid value: %w", err)
		}
		res.Changed = t.Update(ref(e.ID), Patch{Name: e.Name, Type: e.Type, Value: value})

	case OpDelete:
		res.Changed = t.Delete(ref(e.ID))

	case OpDuplicate:
		res.ID, res.Changed = t.Duplicate(ref(e.ID))

	case OpMove:
		ids := make([]string, len(e.IDs))
		for i, id := range e.IDs {
			ids[i] = ref(id)
		}
		res.Changed = t.Move(ids, ref(e.Parent), e.Index)

	case OpDrop:
		if e.Target == "" {
			res.Changed = t.DropOnRoot(ref(e.ID))
			break
		}
		pos, ok := ParsePosition(e.Position)
		if !ok {
			return res, fmt.Errorf("unknown position %q", e.Position)
		}
		res.Changed = t.Drop(ref(e.ID), ref(e.Target), pos)

	case OpRootType:
		if !e.Type.IsContainer() {
			return res, fmt.Errorf("root type must be object or array, got %q", e.Type)
		}
		res.Changed = t.SetRootType(e.Type)

	case OpClear:
		t.Clear()
		res.Changed = true

	default:
		return res, fmt.Errorf("unknown op %q", e.Op)
	}
	return res, nil
}
