package formatter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/pretty"

	"github.com/mcncl/jsonbench/internal/models"
	"github.com/mcncl/jsonbench/internal/parser"
)

// MaxIndent mirrors the clamp JSON.stringify applies to numeric indents.
const MaxIndent = 10

// Formatter renders JSON text the same way a browser's JSON.stringify does
type Formatter struct {
	indent  int
	lenient bool
}

// NewFormatter creates a new Formatter instance
func NewFormatter(indent int) *Formatter {
	return &Formatter{indent: indent}
}

// WithLenient makes Format accept comments and trailing commas.
func (f *Formatter) WithLenient(lenient bool) *Formatter {
	f.lenient = lenient
	return f
}

// Format parses text and returns it pretty-printed with the configured indent
func (f *Formatter) Format(text string) (string, error) {
	ir, err := f.parse(text)
	if err != nil {
		return "", err
	}
	return Stringify(ir.Root, f.indent), nil
}

// Minify validates text and strips its insignificant whitespace. Number
// literals keep their original spelling.
func (f *Formatter) Minify(text string) (string, error) {
	data := []byte(text)
	if f.lenient {
		standard, err := parser.Standardize(data)
		if err != nil {
			return "", err
		}
		data = standard
	}
	if _, err := parser.ParseBytes(data); err != nil {
		return "", err
	}
	return string(pretty.Ugly(data)), nil
}

func (f *Formatter) parse(text string) (models.IntermediateRepresentation, error) {
	if f.lenient {
		return parser.ParseLenient(text)
	}
	return parser.ParseString(text)
}

// Colorize adds terminal colors to JSON text
func Colorize(text string) string {
	return string(pretty.Color([]byte(text), pretty.TerminalStyle))
}

// Stringify renders v like JSON.stringify(v, null, indent). An indent of
// zero or less produces compact output.
func Stringify(v models.JSONValue, indent int) string {
	if indent > MaxIndent {
		indent = MaxIndent
	}
	var sb strings.Builder
	w := writer{sb: &sb}
	if indent > 0 {
		w.indent = strings.Repeat(" ", indent)
	}
	w.value(v, "")
	return sb.String()
}

// Lines pretty-prints v and splits the result into lines.
func Lines(v models.JSONValue, indent int) []string {
	return strings.Split(Stringify(v, indent), "\n")
}

type writer struct {
	sb     *strings.Builder
	indent string
}

func (w writer) value(v models.JSONValue, prefix string) {
	switch val := v.(type) {
	case nil:
		w.sb.WriteString("null")
	case bool:
		w.sb.WriteString(strconv.FormatBool(val))
	case string:
		w.sb.WriteString(Quote(val))
	case json.Number:
		w.sb.WriteString(NumberText(val))
	case models.JSONArray:
		w.array(val, prefix)
	case *models.JSONObject:
		w.object(val, prefix)
	case float64:
		w.sb.WriteString(FormatFloat(val))
	case float32:
		w.sb.WriteString(FormatFloat(float64(val)))
	case int:
		w.sb.WriteString(strconv.Itoa(val))
	case int64:
		w.sb.WriteString(strconv.FormatInt(val, 10))
	default:
		// Anything else goes through encoding/json; failures render as null.
		b, err := json.Marshal(val)
		if err != nil {
			w.sb.WriteString("null")
			return
		}
		w.sb.Write(b)
	}
}

func (w writer) array(arr models.JSONArray, prefix string) {
	if len(arr) == 0 {
		w.sb.WriteString("[]")
		return
	}
	inner := prefix + w.indent
	w.sb.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			w.sb.WriteByte(',')
		}
		w.newline(inner)
		w.value(item, inner)
	}
	w.newline(prefix)
	w.sb.WriteByte(']')
}

func (w writer) object(obj *models.JSONObject, prefix string) {
	if obj.Len() == 0 {
		w.sb.WriteString("{}")
		return
	}
	inner := prefix + w.indent
	w.sb.WriteByte('{')
	for i, key := range obj.Keys() {
		if i > 0 {
			w.sb.WriteByte(',')
		}
		w.newline(inner)
		w.sb.WriteString(Quote(key))
		w.sb.WriteByte(':')
		if w.indent != "" {
			w.sb.WriteByte(' ')
		}
		val, _ := obj.Get(key)
		w.value(val, inner)
	}
	w.newline(prefix)
	w.sb.WriteByte('}')
}

func (w writer) newline(prefix string) {
	if w.indent == "" {
		return
	}
	w.sb.WriteByte('\n')
	w.sb.WriteString(prefix)
}

// NumberText renders a JSON number the way JavaScript prints a double.
func NumberText(n json.Number) string {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil && !math.IsInf(f, 0) {
		return string(n)
	}
	return FormatFloat(f)
}

// FormatFloat renders f the way JavaScript prints a double. NaN and the
// infinities render as null.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return "null"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return fmt.Sprintf("%se%c%s", mantissa, sign, digits)
}

// Quote escapes s as a JSON string literal using the minimal escaping of
// JSON.stringify: quotes, backslashes and control characters only.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
