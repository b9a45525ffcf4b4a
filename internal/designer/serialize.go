package designer

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/jsonbench/internal/formatter"
	"github.com/mcncl/jsonbench/internal/models"
)

// KeyCase rewrites object keys on serialization.
type KeyCase string

const (
	KeyCaseNone       KeyCase = ""
	KeyCaseSnake      KeyCase = "snake"
	KeyCaseCamel      KeyCase = "camel"
	KeyCaseLowerCamel KeyCase = "lower_camel"
	KeyCaseKebab      KeyCase = "kebab"
)

// Valid reports whether k is a known key case.
func (k KeyCase) Valid() bool {
	switch k {
	case KeyCaseNone, KeyCaseSnake, KeyCaseCamel, KeyCaseLowerCamel, KeyCaseKebab:
		return true
	}
	return false
}

// Apply converts name to the key case.
func (k KeyCase) Apply(name string) string {
	switch k {
	case KeyCaseSnake:
		return strcase.ToSnake(name)
	case KeyCaseCamel:
		return strcase.ToCamel(name)
	case KeyCaseLowerCamel:
		return strcase.ToLowerCamel(name)
	case KeyCaseKebab:
		return strcase.ToKebab(name)
	default:
		return name
	}
}

// SerializeOptions tunes Serialize.
type SerializeOptions struct {
	KeyCase KeyCase
}

// Serialize converts nodes into a JSON value. Under an array root names are
// ignored. Under an object root each node is keyed by its name; a node
// without a name is keyed "key_" plus the last four characters of its id,
// and a later node with the same key replaces the earlier value.
func Serialize(nodes []*Node, rootType NodeType, opts SerializeOptions) models.JSONValue {
	if rootType == TypeArray {
		return serializeArray(nodes, opts)
	}
	return serializeObject(nodes, opts)
}

func serializeArray(nodes []*Node, opts SerializeOptions) models.JSONArray {
	out := make(models.JSONArray, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, serializeNode(n, opts))
	}
	return out
}

func serializeObject(nodes []*Node, opts SerializeOptions) *models.JSONObject {
	out := models.NewObject()
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out.Set(objectKey(n, opts), serializeNode(n, opts))
	}
	return out
}

func objectKey(n *Node, opts SerializeOptions) string {
	if n.Name == "" {
		id := n.ID
		if len(id) > 4 {
			id = id[len(id)-4:]
		}
		return "key_" + id
	}
	return opts.KeyCase.Apply(n.Name)
}

func serializeNode(n *Node, opts SerializeOptions) models.JSONValue {
	switch d := n.Data.(type) {
	case Object:
		return serializeObject(d.Children, opts)
	case Array:
		return serializeArray(d.Children, opts)
	case Number:
		return numberValue(d.Value)
	case Boolean:
		return d.Value
	case String:
		return d.Value
	default:
		return nil
	}
}

// numberValue parses text the way JavaScript's parseFloat does, taking the
// longest numeric prefix. Unparsable text, NaN and zero become 0; the
// infinities become null.
func numberValue(text string) models.JSONValue {
	f, ok := parseFloatPrefix(text)
	switch {
	case !ok || math.IsNaN(f) || f == 0:
		return json.Number("0")
	case math.IsInf(f, 0):
		return nil
	}
	return json.Number(formatter.FormatFloat(f))
}

var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|[0-9]+(\.[0-9]*)?([eE][+-]?[0-9]+)?|\.[0-9]+([eE][+-]?[0-9]+)?)`)

func parseFloatPrefix(text string) (float64, bool) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	match := floatPrefix.FindString(text)
	if match == "" {
		return 0, false
	}
	switch strings.TrimLeft(match, "+-") {
	case "Infinity":
		if strings.HasPrefix(match, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil && !math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
