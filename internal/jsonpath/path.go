// Package jsonpath maps cursor positions in raw JSON text to the structural
// path of the value under the cursor, and renders paths as JSONPath strings.
package jsonpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mcncl/jsonbench/internal/errors"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Segment is one step of a path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object-key segment.
func Key(key string) Segment {
	return Segment{Key: key}
}

// Index returns an array-index segment.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// Path is an ordered list of segments starting at the document root.
type Path []Segment

// String renders the path in JSONPath notation: $, $.key, $["odd key"], $[0].
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, seg := range p {
		switch {
		case seg.IsIndex:
			fmt.Fprintf(&sb, "[%d]", seg.Index)
		case identifierRegex.MatchString(seg.Key):
			sb.WriteByte('.')
			sb.WriteString(seg.Key)
		default:
			sb.WriteString(`["`)
			sb.WriteString(strings.ReplaceAll(seg.Key, `"`, `\"`))
			sb.WriteString(`"]`)
		}
	}
	return sb.String()
}

// GJSON renders the path in tidwall/gjson syntax.
func (p Path) GJSON() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		if seg.IsIndex {
			parts[i] = strconv.Itoa(seg.Index)
			continue
		}
		parts[i] = escapeGJSON(seg.Key)
	}
	return strings.Join(parts, ".")
}

func escapeGJSON(key string) string {
	var sb strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`\.*?|#@!=<>%`, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ParsePath reads a path written by Path.String back into segments.
func ParsePath(s string) (Path, error) {
	if !strings.HasPrefix(s, "$") {
		return nil, errors.NewPathError(fmt.Sprintf("path %q must start with $", s), nil)
	}
	path := Path{}
	i := 1
	for i < len(s) {
		switch s[i] {
		case '.':
			j := i + 1
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			if j == i+1 {
				return nil, errors.NewPathError(fmt.Sprintf("empty key at position %d in %q", i, s), nil)
			}
			path = append(path, Key(s[i+1:j]))
			i = j
		case '[':
			if i+1 < len(s) && s[i+1] == '"' {
				key, next, err := readQuotedKey(s, i+2)
				if err != nil {
					return nil, err
				}
				path = append(path, Key(key))
				i = next
				continue
			}
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, errors.NewPathError(fmt.Sprintf("unterminated index in %q", s), nil)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || n < 0 {
				return nil, errors.NewPathError(fmt.Sprintf("invalid index %q in %q", s[i+1:i+end], s), err)
			}
			path = append(path, Index(n))
			i += end + 1
		default:
			return nil, errors.NewPathError(fmt.Sprintf("unexpected %q at position %d in %q", s[i], i, s), nil)
		}
	}
	return path, nil
}

// readQuotedKey reads a key written as ["..."] starting just after the
// opening quote, returning the key and the index after the closing bracket.
func readQuotedKey(s string, start int) (string, int, error) {
	var sb strings.Builder
	for i := start; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '"':
			sb.WriteByte('"')
			i++
		case s[i] == '"':
			if i+1 >= len(s) || s[i+1] != ']' {
				return "", 0, errors.NewPathError(fmt.Sprintf("expected ] after quoted key in %q", s), nil)
			}
			return sb.String(), i + 2, nil
		default:
			sb.WriteByte(s[i])
		}
	}
	return "", 0, errors.NewPathError(fmt.Sprintf("unterminated quoted key in %q", s), nil)
}
