package jsonpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	const doc = `{"a":{"b":[1,2,3]}}`

	tests := []struct {
		name   string
		offset int
		want   string
	}{
		{"opening brace", 0, "$"},
		{"inside key", 2, "$"},
		{"start of object value", 5, "$.a"},
		{"inside nested key", 7, "$.a"},
		{"array bracket", 10, "$.a.b"},
		{"first element", 11, "$.a.b[0]"},
		{"comma between elements", 12, "$.a.b"},
		{"second element", 13, "$.a.b[1]"},
		{"third element", 15, "$.a.b[2]"},
		{"closing inner brace", 17, "$.a"},
		{"closing outer brace", 18, "$"},
		{"end of text", len(doc), "$"},
		{"negative offset clamps", -5, "$"},
		{"offset past end clamps", 1000, "$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := Resolve(doc, tt.offset)
			require.True(t, ok)
			assert.Equal(t, tt.want, path.String())
		})
	}
}

func TestResolve_InvalidInput(t *testing.T) {
	for _, text := range []string{"", "   \n\t", `{"a":`, `{"a":1}}`, `[1,2,]`} {
		t.Run(text, func(t *testing.T) {
			_, ok := Resolve(text, 0)
			assert.False(t, ok)
		})
	}
}

func TestResolve_StandardizedJWCC(t *testing.T) {
	text := "{\"a\": [1, 2,], // c\n\"b\": 3}"
	_, ok := Resolve(text, 10)
	assert.False(t, ok)

	standard, err := Standardize(text)
	require.NoError(t, err)
	require.Len(t, standard, len(text))

	path, ok := Resolve(standard, 10)
	require.True(t, ok)
	assert.Equal(t, "$.a[1]", path.String())

	path, ok = ResolveAt(standard, 2, 7)
	require.True(t, ok)
	assert.Equal(t, "$.b", path.String())

	_, err = Standardize(`{"a":`)
	assert.Error(t, err)
}

func TestResolve_ScalarRoot(t *testing.T) {
	path, ok := Resolve(`  42 `, 3)
	require.True(t, ok)
	assert.Empty(t, path)
	assert.Equal(t, "$", path.String())
}

func TestResolve_QuotedKeys(t *testing.T) {
	text := `{"first name": {"x\"y": true}}`
	path, ok := Resolve(text, strings.Index(text, "true"))
	require.True(t, ok)
	assert.Equal(t, `$["first name"]["x\"y"]`, path.String())
}

func TestResolve_StringsWithDelimiters(t *testing.T) {
	text := `{"s":"a]b,c}\"","n":1}`
	path, ok := Resolve(text, strings.LastIndex(text, "1"))
	require.True(t, ok)
	assert.Equal(t, "$.n", path.String())
}

func TestResolve_ConstantAcrossValueSpan(t *testing.T) {
	text := "{\n  \"k\": \"hello\",\n  \"list\": [true, null]\n}"
	start := strings.Index(text, `"hello"`)
	for offset := start; offset < start+len(`"hello"`); offset++ {
		path, ok := Resolve(text, offset)
		require.True(t, ok)
		assert.Equal(t, "$.k", path.String(), "offset %d", offset)
	}

	start = strings.Index(text, "null")
	for offset := start; offset < start+len("null"); offset++ {
		path, ok := Resolve(text, offset)
		require.True(t, ok)
		assert.Equal(t, "$.list[1]", path.String(), "offset %d", offset)
	}
}

func TestResolve_DeepestContainingValueWins(t *testing.T) {
	text := `[{"a":[[0,{"b":"c"}]]}]`
	path, ok := Resolve(text, strings.Index(text, `"c"`))
	require.True(t, ok)
	assert.Equal(t, "$[0].a[0][1].b", path.String())
}

func TestResolveAt(t *testing.T) {
	text := "{\n  \"a\": 1,\n  \"b\": [\n    \"x\"\n  ]\n}"

	path, ok := ResolveAt(text, 2, 8)
	require.True(t, ok)
	assert.Equal(t, "$.a", path.String())

	path, ok = ResolveAt(text, 4, 5)
	require.True(t, ok)
	assert.Equal(t, "$.b[0]", path.String())

	path, ok = ResolveAt(text, 1, 1)
	require.True(t, ok)
	assert.Equal(t, "$", path.String())
}

func TestOffsetAt(t *testing.T) {
	text := "{\n  \"a\": 1\n}"

	assert.Equal(t, 0, OffsetAt(text, 1, 1))
	assert.Equal(t, 4, OffsetAt(text, 2, 3))
	assert.Equal(t, 0, OffsetAt(text, 0, 0), "line and column clamp to 1")
	assert.Equal(t, 10, OffsetAt(text, 2, 100), "column clamps to line end")
	assert.Equal(t, len(text), OffsetAt(text, 99, 1), "line clamps to end of text")
	assert.Equal(t, 2, OffsetAt("é1", 1, 2), "columns count characters")
}

func TestPathString(t *testing.T) {
	path := Path{Key("a"), Key("b c"), Index(2), Key(`q"`), Key("_x9"), Key("9x")}
	assert.Equal(t, `$.a["b c"][2]["q\""]._x9["9x"]`, path.String())
	assert.Equal(t, "$", Path{}.String())
	assert.Equal(t, "$", Path(nil).String())
}

func TestParsePath(t *testing.T) {
	path := Path{Key("a"), Key("b c"), Index(2), Key(`q"`), Key("_x9"), Key("9x")}

	parsed, err := ParsePath(path.String())
	require.NoError(t, err)
	assert.Equal(t, path, parsed)

	root, err := ParsePath("$")
	require.NoError(t, err)
	assert.Empty(t, root)
}

func TestParsePath_Errors(t *testing.T) {
	for _, input := range []string{"a.b", "$.", "$[x]", "$[-1]", `$["a`, `$["a"`, "$[1", "$a"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePath(input)
			assert.Error(t, err)
		})
	}
}

func TestPathGJSON(t *testing.T) {
	assert.Equal(t, `a\.b.0.c`, Path{Key("a.b"), Index(0), Key("c")}.GJSON())
	assert.Equal(t, `\#tag.x\*`, Path{Key("#tag"), Key("x*")}.GJSON())
}

func TestLookup(t *testing.T) {
	text := ` {"a.b":[{"c":1}],"d":"x","#":{"y":[true]}} `

	raw, ok := Lookup(text, Path{Key("a.b"), Index(0), Key("c")})
	require.True(t, ok)
	assert.Equal(t, "1", raw)

	raw, ok = Lookup(text, Path{Key("#"), Key("y")})
	require.True(t, ok)
	assert.Equal(t, "[true]", raw)

	raw, ok = Lookup(text, Path{})
	require.True(t, ok)
	assert.Equal(t, strings.TrimSpace(text), raw)

	_, ok = Lookup(text, Path{Key("missing")})
	assert.False(t, ok)
}

func TestResolveThenLookup(t *testing.T) {
	text := `{"users":[{"name":"ada"},{"name":"bob"}]}`
	path, ok := Resolve(text, strings.Index(text, `"bob"`))
	require.True(t, ok)

	raw, ok := Lookup(text, path)
	require.True(t, ok)
	assert.Equal(t, `"bob"`, raw)
}
