package differ

import (
	"github.com/mcncl/jsonbench/internal/config"
	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/models"
)

// ArrayMethod selects how array elements are paired.
type ArrayMethod string

const (
	// ArrayLCS aligns elements along their longest common subsequence.
	ArrayLCS ArrayMethod = "lcs"
	// ArrayPositional compares elements index for index.
	ArrayPositional ArrayMethod = "positional"
)

// Valid reports whether m is a known method. The empty method means LCS.
func (m ArrayMethod) Valid() bool {
	return m == "" || m == ArrayLCS || m == ArrayPositional
}

// Options tunes DiffValues.
type Options struct {
	ArrayMethod ArrayMethod `json:"arrayDiffMethod"`
	// DetectCircular tracks the containers on the current descent and stops
	// at a container that is entered a second time.
	DetectCircular bool `json:"detectCircular"`
	// ShowModifications reports a changed member as one modified entry
	// instead of a removed and an added entry.
	ShowModifications bool `json:"showModifications"`
	// MaxDepth bounds recursion; 0 means unlimited.
	MaxDepth int `json:"maxDepth"`
}

// DefaultOptions returns LCS alignment with cycle detection and
// modifications enabled.
func DefaultOptions() Options {
	return Options{
		ArrayMethod:       ArrayLCS,
		DetectCircular:    true,
		ShowModifications: true,
	}
}

// OptionsFromConfig maps the diff section of the config file.
func OptionsFromConfig(cfg config.DiffConfig) Options {
	return Options{
		ArrayMethod:       ArrayMethod(cfg.ArrayMethod),
		DetectCircular:    cfg.DetectCircular,
		ShowModifications: cfg.ShowModifications,
		MaxDepth:          cfg.MaxDepth,
	}
}

// Node is one entry of the diff tree. Key is set for object members and
// Index for array elements; the root has neither. Children is non-nil only
// for containers whose members were compared one by one.
type Node struct {
	Key            string           `json:"key,omitempty"`
	Index          int              `json:"index"`
	IsIndex        bool             `json:"isIndex,omitempty"`
	Classification Classification   `json:"classification"`
	Left           models.JSONValue `json:"left,omitempty"`
	Right          models.JSONValue `json:"right,omitempty"`
	HasLeft        bool             `json:"hasLeft"`
	HasRight       bool             `json:"hasRight"`
	Circular       bool             `json:"circular,omitempty"`
	Children       []*Node          `json:"children,omitempty"`
}

// Result is a structural comparison.
type Result struct {
	Root     *Node `json:"root"`
	Stats    Stats `json:"stats"`
	Circular bool  `json:"circular"`
}

// Identical reports whether no entry differs.
func (r *Result) Identical() bool {
	return r.Stats.Changes() == 0
}

// DiffTexts parses both documents and compares them structurally.
func DiffTexts(left, right string, opts Options, lenient bool) (*Result, error) {
	leftValue, err := parseSide(errors.SideLeft, left, lenient)
	if err != nil {
		return nil, err
	}
	rightValue, err := parseSide(errors.SideRight, right, lenient)
	if err != nil {
		return nil, err
	}
	return DiffValues(leftValue, rightValue, opts), nil
}

// DiffValues compares two values member by member. Equality is strict:
// 1 and "1" differ, 1 and 1.0 do not.
func DiffValues(left, right models.JSONValue, opts Options) *Result {
	if opts.ArrayMethod == "" {
		opts.ArrayMethod = ArrayLCS
	}
	d := &differ{
		opts:      opts,
		leftSeen:  make(map[any]bool),
		rightSeen: make(map[any]bool),
	}

	root := d.compare(segment{}, left, right, 0, true)[0]

	result := &Result{Root: root, Circular: d.circular}
	countLeaves(root, &result.Stats)
	return result
}

type segment struct {
	key     string
	index   int
	isIndex bool
}

func keySegment(key string) segment { return segment{key: key} }

func indexSegment(i int) segment { return segment{index: i, isIndex: true} }

func (s segment) node(c Classification) *Node {
	return &Node{Key: s.key, Index: s.index, IsIndex: s.isIndex, Classification: c}
}

type differ struct {
	opts      Options
	leftSeen  map[any]bool
	rightSeen map[any]bool
	circular  bool
}

// compare returns one node, or a removed and an added node when a change is
// split. The document root is never split.
func (d *differ) compare(seg segment, left, right models.JSONValue, depth int, root bool) []*Node {
	leftKind, rightKind := models.KindOf(left), models.KindOf(right)
	bothContainers := leftKind == rightKind && models.IsContainer(left)

	if !bothContainers || d.depthExceeded(depth) {
		if d.equal(left, right) {
			return []*Node{withSides(seg.node(Same), left, right)}
		}
		return d.changed(seg, left, right, root)
	}

	if d.opts.DetectCircular {
		leftID, rightID := identity(left), identity(right)
		if (leftID != nil && d.leftSeen[leftID]) || (rightID != nil && d.rightSeen[rightID]) {
			// The values are left off so the node can be printed.
			d.circular = true
			node := seg.node(Same)
			node.HasLeft, node.HasRight = true, true
			node.Circular = true
			return []*Node{node}
		}
		if leftID != nil {
			d.leftSeen[leftID] = true
			defer delete(d.leftSeen, leftID)
		}
		if rightID != nil {
			d.rightSeen[rightID] = true
			defer delete(d.rightSeen, rightID)
		}
	}

	node := withSides(seg.node(Same), left, right)
	if leftKind == models.KindObject {
		node.Children = d.objectMembers(left.(*models.JSONObject), right.(*models.JSONObject), depth)
	} else {
		node.Children = d.arrayElements(left.(models.JSONArray), right.(models.JSONArray), depth)
	}
	if node.Children == nil {
		node.Children = []*Node{}
	}
	for _, child := range node.Children {
		if child.Classification != Same {
			node.Classification = Modified
			break
		}
	}
	return []*Node{node}
}

func (d *differ) depthExceeded(depth int) bool {
	return d.opts.MaxDepth > 0 && depth >= d.opts.MaxDepth
}

func (d *differ) changed(seg segment, left, right models.JSONValue, root bool) []*Node {
	if d.opts.ShowModifications || root {
		return []*Node{withSides(seg.node(Modified), left, right)}
	}
	return []*Node{removedNode(seg, left), addedNode(seg, right)}
}

func (d *differ) objectMembers(left, right *models.JSONObject, depth int) []*Node {
	children := []*Node{}
	for _, key := range left.Keys() {
		leftValue, _ := left.Get(key)
		rightValue, ok := right.Get(key)
		if !ok {
			children = append(children, removedNode(keySegment(key), leftValue))
			continue
		}
		children = append(children, d.compare(keySegment(key), leftValue, rightValue, depth+1, false)...)
	}
	for _, key := range right.Keys() {
		if _, ok := left.Get(key); ok {
			continue
		}
		rightValue, _ := right.Get(key)
		children = append(children, addedNode(keySegment(key), rightValue))
	}
	return children
}

// lcsCellLimit bounds the n*m alignment table. Larger array pairs are
// compared positionally.
var lcsCellLimit = 4 << 20

func (d *differ) arrayElements(left, right models.JSONArray, depth int) []*Node {
	n, m := len(left), len(right)
	if d.opts.ArrayMethod == ArrayPositional || n*m > lcsCellLimit {
		return d.pairRun(left, right, 0, 0, depth)
	}

	equal := make([][]bool, n)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		equal[i] = make([]bool, m)
		for j := m - 1; j >= 0; j-- {
			if d.equal(left[i], right[j]) {
				equal[i][j] = true
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}

	children := []*Node{}
	i, j := 0, 0
	gapLeft, gapRight := 0, 0
	for i < n && j < m {
		if equal[i][j] {
			children = append(children, d.pairRun(left[gapLeft:i], right[gapRight:j], gapLeft, gapRight, depth)...)
			children = append(children, d.compare(indexSegment(j), left[i], right[j], depth+1, false)...)
			i++
			j++
			gapLeft, gapRight = i, j
			continue
		}
		if table[i+1][j] >= table[i][j+1] {
			i++
		} else {
			j++
		}
	}
	children = append(children, d.pairRun(left[gapLeft:], right[gapRight:], gapLeft, gapRight, depth)...)
	return children
}

// pairRun compares two runs of unmatched elements index for index; leftover
// elements on the longer side are removed or added.
func (d *differ) pairRun(left, right models.JSONArray, leftStart, rightStart, depth int) []*Node {
	var nodes []*Node
	paired := min(len(left), len(right))
	for k := 0; k < paired; k++ {
		nodes = append(nodes, d.compare(indexSegment(rightStart+k), left[k], right[k], depth+1, false)...)
	}
	for k := paired; k < len(left); k++ {
		nodes = append(nodes, removedNode(indexSegment(leftStart+k), left[k]))
	}
	for k := paired; k < len(right); k++ {
		nodes = append(nodes, addedNode(indexSegment(rightStart+k), right[k]))
	}
	return nodes
}

// equal is strict deep equality. With cycle detection on, a pair of
// containers re-entered during the comparison is assumed equal.
func (d *differ) equal(a, b models.JSONValue) bool {
	if !d.opts.DetectCircular {
		return models.DeepEqual(a, b)
	}
	return equalGuarded(a, b, make(map[[2]any]bool))
}

func equalGuarded(a, b models.JSONValue, active map[[2]any]bool) bool {
	kind := models.KindOf(a)
	if kind != models.KindOf(b) {
		return false
	}
	if kind != models.KindObject && kind != models.KindArray {
		return models.DeepEqual(a, b)
	}

	pair := [2]any{identity(a), identity(b)}
	if pair[0] != nil && pair[1] != nil {
		if active[pair] {
			return true
		}
		active[pair] = true
		defer delete(active, pair)
	}

	if kind == models.KindArray {
		av, bv := a.(models.JSONArray), b.(models.JSONArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalGuarded(av[i], bv[i], active) {
				return false
			}
		}
		return true
	}

	ao, bo := a.(*models.JSONObject), b.(*models.JSONObject)
	if ao.Len() != bo.Len() {
		return false
	}
	for _, key := range ao.Keys() {
		av, _ := ao.Get(key)
		bv, ok := bo.Get(key)
		if !ok || !equalGuarded(av, bv, active) {
			return false
		}
	}
	return true
}

// identity returns a comparable handle for a container, or nil for scalars
// and empty arrays.
func identity(v models.JSONValue) any {
	switch c := v.(type) {
	case *models.JSONObject:
		return c
	case models.JSONArray:
		if len(c) == 0 {
			return nil
		}
		return &c[0]
	}
	return nil
}

func withSides(n *Node, left, right models.JSONValue) *Node {
	n.Left, n.Right = left, right
	n.HasLeft, n.HasRight = true, true
	return n
}

func addedNode(seg segment, value models.JSONValue) *Node {
	n := seg.node(Added)
	n.Right, n.HasRight = value, true
	return n
}

func removedNode(seg segment, value models.JSONValue) *Node {
	n := seg.node(Removed)
	n.Left, n.HasLeft = value, true
	return n
}

// countLeaves counts entries that were not expanded into children.
func countLeaves(n *Node, stats *Stats) {
	if len(n.Children) == 0 {
		stats.add(n.Classification)
		return
	}
	for _, child := range n.Children {
		countLeaves(child, stats)
	}
}
