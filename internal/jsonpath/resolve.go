package jsonpath

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/mcncl/jsonbench/internal/parser"
)

// Resolve returns the path of the innermost value whose text span contains
// offset. Offsets outside every member or element resolve to the enclosing
// container; the root resolves to an empty path ("$"). It returns false for
// blank or malformed text. The offset is a byte offset and is clamped to the
// text.
func Resolve(text string, offset int) (Path, bool) {
	if strings.TrimSpace(text) == "" || !parser.Valid(text) {
		return nil, false
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	s := &scanner{text: text, offset: offset}
	s.scanValue()

	path := make(Path, len(s.path))
	copy(path, s.path)
	return path, true
}

// Standardize rewrites JWCC text (comments and trailing commas) as standard
// JSON. The removed characters become spaces, so offsets and line numbers
// address the same values before and after.
func Standardize(text string) (string, error) {
	out, err := parser.Standardize([]byte(text))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ResolveAt resolves the path under a 1-based line/column cursor.
func ResolveAt(text string, line, column int) (Path, bool) {
	return Resolve(text, OffsetAt(text, line, column))
}

// OffsetAt converts a 1-based line and column into a byte offset. Columns
// count characters; columns past the end of a line clamp to the line end and
// lines past the end of the text clamp to the last line.
func OffsetAt(text string, line, column int) int {
	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}
	lines := strings.Split(text, "\n")
	offset := 0
	for i := 0; i < line-1 && i < len(lines); i++ {
		offset += len(lines[i]) + 1
	}
	if line-1 >= len(lines) {
		return len(text)
	}
	current := lines[line-1]
	col := 0
	for i := 0; i < column-1 && col < len(current); i++ {
		_, size := utf8.DecodeRuneInString(current[col:])
		col += size
	}
	return offset + col
}

// Lookup returns the raw JSON of the value addressed by path.
func Lookup(text string, path Path) (string, bool) {
	if len(path) == 0 {
		if !parser.Valid(text) {
			return "", false
		}
		return strings.TrimSpace(text), true
	}
	result := gjson.Get(text, path.GJSON())
	if !result.Exists() {
		return "", false
	}
	return result.Raw, true
}

// scanner walks the text once, left to right, following the JSON grammar.
// The segment for a member or element stays on the path when the offset
// falls inside its value, and the walk stops there.
type scanner struct {
	text   string
	i      int
	offset int
	path   Path
	found  bool
}

func (s *scanner) scanValue() {
	s.skipWhitespace()
	if s.i >= len(s.text) {
		return
	}
	switch s.text[s.i] {
	case '"':
		s.readString()
	case '{':
		s.scanObject()
	case '[':
		s.scanArray()
	default:
		s.scanPrimitive()
	}
}

func (s *scanner) scanObject() {
	s.i++ // {
	s.skipWhitespace()
	for s.i < len(s.text) && s.text[s.i] != '}' {
		s.skipWhitespace()
		if s.i >= len(s.text) || s.text[s.i] != '"' {
			break
		}
		key := s.readString()

		s.skipWhitespace()
		if s.i < len(s.text) && s.text[s.i] == ':' {
			s.i++
		}
		s.skipWhitespace()

		start := s.i
		s.path = append(s.path, Key(key))
		s.scanValue()
		if s.found || s.contains(start) {
			s.found = true
			return
		}
		s.path = s.path[:len(s.path)-1]

		s.skipWhitespace()
		if s.i < len(s.text) && s.text[s.i] == ',' {
			s.i++
		}
	}
	if s.i < len(s.text) && s.text[s.i] == '}' {
		s.i++
	}
}

func (s *scanner) scanArray() {
	s.i++ // [
	s.skipWhitespace()
	for idx := 0; s.i < len(s.text) && s.text[s.i] != ']'; idx++ {
		s.skipWhitespace()
		if s.i >= len(s.text) || s.text[s.i] == ']' {
			break
		}

		start := s.i
		s.path = append(s.path, Index(idx))
		s.scanValue()
		if s.found || s.contains(start) {
			s.found = true
			return
		}
		s.path = s.path[:len(s.path)-1]
		if s.i == start {
			break
		}

		s.skipWhitespace()
		if s.i < len(s.text) && s.text[s.i] == ',' {
			s.i++
		}
	}
	if s.i < len(s.text) && s.text[s.i] == ']' {
		s.i++
	}
}

func (s *scanner) scanPrimitive() {
	for s.i < len(s.text) && !strings.ContainsRune(" \t\n\r,}]", rune(s.text[s.i])) {
		s.i++
	}
}

// readString consumes a string literal and returns its decoded content.
// Escaped characters, including \", never terminate the literal.
func (s *scanner) readString() string {
	start := s.i
	s.i++ // opening quote
	for s.i < len(s.text) && s.text[s.i] != '"' {
		if s.text[s.i] == '\\' && s.i+1 < len(s.text) {
			s.i += 2
			continue
		}
		s.i++
	}
	if s.i < len(s.text) {
		s.i++ // closing quote
	}

	raw := s.text[start:s.i]
	var decoded string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return strings.Trim(raw, `"`)
	}
	return decoded
}

func (s *scanner) skipWhitespace() {
	for s.i < len(s.text) {
		switch s.text[s.i] {
		case ' ', '\t', '\n', '\r':
			s.i++
		default:
			return
		}
	}
}

// contains reports whether the offset lies in [start, current position).
func (s *scanner) contains(start int) bool {
	return s.offset >= start && s.offset < s.i
}
