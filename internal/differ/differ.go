// Package differ compares JSON documents. DiffLines is a positional line
// comparison of the pretty-printed documents; DiffValues walks both values
// and aligns object members and array elements structurally.
package differ

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/models"
	"github.com/mcncl/jsonbench/internal/parser"
)

// Classification labels a line or diff node.
type Classification string

const (
	Same     Classification = "same"
	Added    Classification = "added"
	Removed  Classification = "removed"
	Modified Classification = "modified"
)

// Line is one row of a side-by-side rendering.
type Line struct {
	LineNumber     int            `json:"lineNumber"`
	LeftContent    string         `json:"leftContent"`
	RightContent   string         `json:"rightContent"`
	Classification Classification `json:"classification"`
	Segments       []Segment      `json:"segments,omitempty"`
}

// Segment is a run of characters inside a modified line.
type Segment struct {
	Op   Classification `json:"op"`
	Text string         `json:"text"`
}

// Stats counts classifications.
type Stats struct {
	Same     int `json:"same"`
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
}

func (s *Stats) add(c Classification) {
	switch c {
	case Same:
		s.Same++
	case Added:
		s.Added++
	case Removed:
		s.Removed++
	case Modified:
		s.Modified++
	}
}

// Changes is the number of entries that are not the same on both sides.
func (s Stats) Changes() int {
	return s.Added + s.Removed + s.Modified
}

// InlineSegments splits a changed line into equal, removed and added runs.
func InlineSegments(left, right string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(left, right, false))

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			segments = append(segments, Segment{Op: Same, Text: d.Text})
		case diffmatchpatch.DiffDelete:
			segments = append(segments, Segment{Op: Removed, Text: d.Text})
		case diffmatchpatch.DiffInsert:
			segments = append(segments, Segment{Op: Added, Text: d.Text})
		}
	}
	return segments
}

// parseSide parses one side of a comparison, tagging failures with the side.
func parseSide(side errors.Side, text string, lenient bool) (models.JSONValue, error) {
	var (
		ir  models.IntermediateRepresentation
		err error
	)
	if lenient {
		ir, err = parser.ParseLenient(text)
	} else {
		ir, err = parser.ParseString(text)
	}
	if err != nil {
		return nil, errors.NewInvalidJSONError(side, err)
	}
	return ir.Root, nil
}
