package differ

import (
	"strings"

	"github.com/mcncl/jsonbench/internal/formatter"
	"github.com/mcncl/jsonbench/internal/models"
)

const circularText = "[Circular]"

// Lines flattens the diff tree into side-by-side rows. Containers that were
// compared member by member open and close on rows of their own; every other
// entry is printed in full on the sides it exists on and keeps the
// classification of its node. Trailing commas never make a row modified.
func (r *Result) Lines(indent int) []Line {
	if indent <= 0 {
		indent = naiveIndent
	}
	indent = min(indent, formatter.MaxIndent)

	rd := &renderer{unit: strings.Repeat(" ", indent), width: indent}
	rd.node(r.Root, 0, false, false, false)
	return rd.lines
}

type renderer struct {
	unit  string
	width int
	lines []Line
}

func (rd *renderer) node(n *Node, depth int, inObject, leftComma, rightComma bool) {
	pad := strings.Repeat(rd.unit, depth)
	label := ""
	if inObject {
		label = formatter.Quote(n.Key) + ": "
	}

	switch {
	case n.Circular:
		text := pad + label + circularText
		rd.pair(text+comma(leftComma), text+comma(rightComma))

	case n.Children != nil:
		open, close := "{", "}"
		if models.KindOf(n.Left) == models.KindArray {
			open, close = "[", "]"
		}
		if len(n.Children) == 0 {
			text := pad + label + open + close
			rd.pair(text+comma(leftComma), text+comma(rightComma))
			return
		}

		rd.pair(pad+label+open, pad+label+open)
		for i, child := range n.Children {
			rest := n.Children[i+1:]
			rd.node(child, depth+1, open == "{", anyLeft(rest), anyRight(rest))
		}
		rd.pair(pad+close+comma(leftComma), pad+close+comma(rightComma))

	default:
		var leftLines, rightLines []string
		if n.HasLeft {
			leftLines = rd.valueLines(n.Left, pad, label, leftComma)
		}
		if n.HasRight {
			rightLines = rd.valueLines(n.Right, pad, label, rightComma)
		}
		for k := 0; k < max(len(leftLines), len(rightLines)); k++ {
			var l, r string
			if k < len(leftLines) {
				l = leftLines[k]
			}
			if k < len(rightLines) {
				r = rightLines[k]
			}
			rd.emit(l, r, n.Classification)
		}
	}
}

func (rd *renderer) valueLines(v models.JSONValue, pad, label string, trailingComma bool) []string {
	if hasCycle(v, make(map[any]bool)) {
		return []string{pad + label + circularText + comma(trailingComma)}
	}
	lines := formatter.Lines(v, rd.width)
	for i := range lines {
		if i == 0 {
			lines[i] = pad + label + lines[i]
			continue
		}
		lines[i] = pad + lines[i]
	}
	lines[len(lines)-1] += comma(trailingComma)
	return lines
}

func (rd *renderer) pair(left, right string) {
	c := Same
	if strings.TrimSuffix(left, ",") != strings.TrimSuffix(right, ",") {
		c = Modified
	}
	rd.emit(left, right, c)
}

func (rd *renderer) emit(left, right string, c Classification) {
	rd.lines = append(rd.lines, Line{
		LineNumber:     len(rd.lines) + 1,
		LeftContent:    left,
		RightContent:   right,
		Classification: c,
	})
}

func comma(present bool) string {
	if present {
		return ","
	}
	return ""
}

func anyLeft(nodes []*Node) bool {
	for _, n := range nodes {
		if n.HasLeft {
			return true
		}
	}
	return false
}

func anyRight(nodes []*Node) bool {
	for _, n := range nodes {
		if n.HasRight {
			return true
		}
	}
	return false
}

func hasCycle(v models.JSONValue, active map[any]bool) bool {
	id := identity(v)
	if id == nil {
		return false
	}
	if active[id] {
		return true
	}
	active[id] = true
	defer delete(active, id)

	switch c := v.(type) {
	case models.JSONArray:
		for _, item := range c {
			if hasCycle(item, active) {
				return true
			}
		}
	case *models.JSONObject:
		for _, key := range c.Keys() {
			item, _ := c.Get(key)
			if hasCycle(item, active) {
				return true
			}
		}
	}
	return false
}
