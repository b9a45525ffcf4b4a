package differ

import (
	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/formatter"
)

// naiveIndent is the fixed indent both documents are printed with.
const naiveIndent = 2

// LineOptions tunes DiffLines.
type LineOptions struct {
	// Inline attaches character segments to modified lines.
	Inline bool
	// Lenient accepts comments and trailing commas.
	Lenient bool
}

// LineDiff is the result of a positional line comparison.
type LineDiff struct {
	Lines []Line `json:"lines"`
	Stats Stats  `json:"stats"`
}

// Identical reports whether every line is the same on both sides.
func (d *LineDiff) Identical() bool {
	return d.Stats.Changes() == 0
}

// DiffLines pretty-prints both documents and compares them line by line at
// equal indices. Lines are never realigned: an insertion near the top shows
// every following line as modified.
func DiffLines(left, right string, opts LineOptions) (*LineDiff, error) {
	leftValue, err := parseSide(errors.SideLeft, left, opts.Lenient)
	if err != nil {
		return nil, err
	}
	rightValue, err := parseSide(errors.SideRight, right, opts.Lenient)
	if err != nil {
		return nil, err
	}

	leftLines := formatter.Lines(leftValue, naiveIndent)
	rightLines := formatter.Lines(rightValue, naiveIndent)

	n := max(len(leftLines), len(rightLines))
	result := &LineDiff{Lines: make([]Line, 0, n)}
	for i := 0; i < n; i++ {
		var l, r string
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}

		line := Line{
			LineNumber:     i + 1,
			LeftContent:    l,
			RightContent:   r,
			Classification: classifyLine(l, r),
		}
		if opts.Inline && line.Classification == Modified {
			line.Segments = InlineSegments(l, r)
		}

		result.Stats.add(line.Classification)
		result.Lines = append(result.Lines, line)
	}

	return result, nil
}

func classifyLine(left, right string) Classification {
	switch {
	case left == right:
		return Same
	case left == "":
		return Added
	case right == "":
		return Removed
	default:
		return Modified
	}
}
