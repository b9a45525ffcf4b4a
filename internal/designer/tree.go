package designer

import (
	"strings"
	"sync"

	"github.com/mcncl/jsonbench/internal/models"
)

// Position is where a dropped node lands relative to the drop target.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
	Inside Position = "inside"
)

// ParsePosition accepts before/after/inside and the above/below aliases.
func ParsePosition(s string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "before", "above":
		return Before, true
	case "after", "below":
		return After, true
	case "inside":
		return Inside, true
	}
	return "", false
}

// Patch lists the fields Update changes. A nil Name keeps the name, an
// empty Type keeps the type and a nil Value keeps the value.
type Patch struct {
	Name  *string
	Type  NodeType
	Value any
}

// Tree is an ordered forest of nodes with a root type. All methods are safe
// for concurrent use; writes are serialized. Operations that reference a
// missing node or would break the tree report false and change nothing.
type Tree struct {
	mu       sync.RWMutex
	roots    []*Node
	rootType NodeType
	newID    IDSource
}

// Option configures a Tree.
type Option func(*Tree)

// WithIDSource replaces the xid-based id generator.
func WithIDSource(src IDSource) Option {
	return func(t *Tree) {
		t.newID = src
	}
}

// NewTree returns an empty tree with an object root.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		roots:    []*Node{},
		rootType: TypeObject,
		newID:    NewID,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// location is where a node sits: its parent (nil for the root sequence)
// and its index among the parent's children.
type location struct {
	parent *Node
	index  int
	node   *Node
}

func (t *Tree) locate(id string) (location, bool) {
	return locateIn(nil, t.roots, id)
}

func locateIn(parent *Node, nodes []*Node, id string) (location, bool) {
	for i, n := range nodes {
		if n.ID == id {
			return location{parent: parent, index: i, node: n}, true
		}
		if loc, ok := locateIn(n, n.Children(), id); ok {
			return loc, true
		}
	}
	return location{}, false
}

func (t *Tree) siblings(parent *Node) []*Node {
	if parent == nil {
		return t.roots
	}
	return parent.Children()
}

func (t *Tree) setSiblings(parent *Node, nodes []*Node) {
	if parent == nil {
		t.roots = nodes
		return
	}
	parent.setChildren(nodes)
}

func (t *Tree) insert(parent *Node, index int, nodes ...*Node) {
	current := t.siblings(parent)
	index = max(0, min(index, len(current)))

	next := make([]*Node, 0, len(current)+len(nodes))
	next = append(next, current[:index]...)
	next = append(next, nodes...)
	next = append(next, current[index:]...)
	t.setSiblings(parent, next)
}

func (t *Tree) remove(loc location) {
	current := t.siblings(loc.parent)
	next := make([]*Node, 0, len(current)-1)
	next = append(next, current[:loc.index]...)
	next = append(next, current[loc.index+1:]...)
	t.setSiblings(loc.parent, next)
}

// AddRoot appends a new node of type nt to the root sequence and returns
// its id, or "" when nt is not a node type.
func (t *Tree) AddRoot(nt NodeType) string {
	if !nt.Valid() {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	n := NewNode(t.newID(), "", nt)
	t.roots = append(t.roots, n)
	return n.ID
}

// AddChild appends a new node of type nt to the container parentID.
func (t *Tree) AddChild(parentID string, nt NodeType) (string, bool) {
	if !nt.Valid() {
		return "", false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	loc, ok := t.locate(parentID)
	if !ok || !loc.node.IsContainer() {
		return "", false
	}
	n := NewNode(t.newID(), "", nt)
	loc.node.setChildren(append(loc.node.Children(), n))
	return n.ID, true
}

// Update applies p to the node. A type change resets the payload to the
// new type's zero value; object and array convert into each other keeping
// their children. When a type is given the value in p is ignored.
func (t *Tree) Update(id string, p Patch) bool {
	if p.Type != "" && !p.Type.Valid() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	loc, ok := t.locate(id)
	if !ok {
		return false
	}
	n := loc.node

	if p.Name != nil {
		n.Name = *p.Name
	}

	switch {
	case p.Type != "":
		n.Data = retype(n, p.Type)
	case p.Value != nil && !n.IsContainer():
		n.Data = coerce(n.Type(), p.Value)
	}
	return true
}

func retype(n *Node, to NodeType) Data {
	if to.IsContainer() && n.IsContainer() {
		children := n.Children()
		if to == TypeObject {
			return Object{Children: children}
		}
		return Array{Children: children}
	}
	return zeroData(to)
}

// Delete removes the node and its subtree.
func (t *Tree) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	loc, ok := t.locate(id)
	if !ok {
		return false
	}
	t.remove(loc)
	return true
}

// Duplicate inserts a deep copy of the node right after it. Every copied
// node gets a fresh id and a non-empty name gains a "_copy" suffix.
func (t *Tree) Duplicate(id string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	loc, ok := t.locate(id)
	if !ok {
		return "", false
	}
	dup := loc.node.clone(t.newID)
	if dup.Name != "" {
		dup.Name += "_copy"
	}
	t.insert(loc.parent, loc.index+1, dup)
	return dup.ID, true
}

// Move detaches the dragged nodes and inserts them as one block at index
// among the children of targetParentID, or of the root sequence when
// targetParentID is empty. The block keeps tree order; a dragged node
// inside another dragged node travels with its ancestor. The index counts
// positions after the dragged nodes were removed and is clamped. Moving a
// node into its own subtree is rejected.
func (t *Tree) Move(dragIDs []string, targetParentID string, index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	wanted := make(map[string]bool, len(dragIDs))
	for _, id := range dragIDs {
		wanted[id] = true
	}

	var dragged []location
	var collect func(parent *Node, nodes []*Node)
	collect = func(parent *Node, nodes []*Node) {
		for i, n := range nodes {
			if wanted[n.ID] {
				dragged = append(dragged, location{parent: parent, index: i, node: n})
				continue
			}
			collect(n, n.Children())
		}
	}
	collect(nil, t.roots)
	if len(dragged) == 0 {
		return false
	}

	var target *Node
	if targetParentID != "" {
		loc, ok := t.locate(targetParentID)
		if !ok || !loc.node.IsContainer() {
			return false
		}
		for _, d := range dragged {
			if d.node.contains(targetParentID) {
				return false
			}
		}
		target = loc.node
	}

	// Remove back to front so earlier indices stay valid.
	nodes := make([]*Node, len(dragged))
	for i := len(dragged) - 1; i >= 0; i-- {
		nodes[i] = dragged[i].node
		t.remove(dragged[i])
	}

	t.insert(target, index, nodes...)
	return true
}

// Drop moves dragID relative to targetID. Inside appends to a container
// target and behaves like After for scalars.
func (t *Tree) Drop(dragID, targetID string, pos Position) bool {
	if dragID == "" || dragID == targetID {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	drag, ok := t.locate(dragID)
	if !ok {
		return false
	}
	if _, ok := t.locate(targetID); !ok || drag.node.contains(targetID) {
		return false
	}

	t.remove(drag)
	target, _ := t.locate(targetID)

	switch {
	case pos == Inside && target.node.IsContainer():
		t.insert(target.node, len(target.node.Children()), drag.node)
	case pos == Before:
		t.insert(target.parent, target.index, drag.node)
	default:
		t.insert(target.parent, target.index+1, drag.node)
	}
	return true
}

// DropOnRoot moves the node to the end of the root sequence.
func (t *Tree) DropOnRoot(dragID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	drag, ok := t.locate(dragID)
	if !ok {
		return false
	}
	t.remove(drag)
	t.roots = append(t.roots, drag.node)
	return true
}

// Find returns a copy of the node with the given id.
func (t *Tree) Find(id string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	loc, ok := t.locate(id)
	if !ok {
		return nil, false
	}
	return loc.node.clone(nil), true
}

// Nodes returns a deep copy of the root sequence.
func (t *Tree) Nodes() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return cloneAll(t.roots, nil)
}

// RootType returns the type of the value the tree serializes to.
func (t *Tree) RootType() NodeType {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rootType
}

// SetRootType switches between an object and an array root.
func (t *Tree) SetRootType(rt NodeType) bool {
	if !rt.IsContainer() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rootType = rt
	return true
}

// Clear removes every node.
func (t *Tree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.roots = []*Node{}
}

// Load replaces the tree with copies of nodes carrying fresh ids. An empty
// root type keeps the current one.
func (t *Tree) Load(rootType NodeType, nodes []*Node) bool {
	if rootType != "" && !rootType.IsContainer() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.roots = cloneAll(nodes, t.newID)
	if rootType != "" {
		t.rootType = rootType
	}
	return true
}

// Append adds copies of nodes with fresh ids to the end of the root sequence.
func (t *Tree) Append(nodes []*Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.roots = append(t.roots, cloneAll(nodes, t.newID)...)
}

// CopyOut returns a copy of the subtree with fresh ids, ready to be
// appended to another tree.
func (t *Tree) CopyOut(id string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	loc, ok := t.locate(id)
	if !ok {
		return nil, false
	}
	return loc.node.clone(t.newID), true
}

// Structure returns a snapshot of the tree in its persisted shape.
func (t *Tree) Structure() Structure {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Structure{RootType: t.rootType, Data: cloneAll(t.roots, nil)}
}

// Serialize converts the tree into a JSON value.
func (t *Tree) Serialize(opts SerializeOptions) models.JSONValue {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Serialize(t.roots, t.rootType, opts)
}

// cloneAll copies nodes, skipping nil entries.
func cloneAll(nodes []*Node, newID IDSource) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n.clone(newID))
		}
	}
	return out
}
