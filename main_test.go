package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runResult struct {
	code   int
	stdout string
	stderr string
}

// testEnv writes a config file pointing the template store into a temp
// directory and returns a runner bound to it.
func testEnv(t *testing.T) (dir string, run func(stdin string, args ...string) runResult) {
	t.Helper()
	dir = t.TempDir()
	cfgPath := filepath.Join(dir, "jsonbench.yml")
	cfg := "templates:\n  dir: " + filepath.Join(dir, "templates") + "\nlog:\n  color: false\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	run = func(stdin string, args ...string) runResult {
		var stdout, stderr bytes.Buffer
		code := execute(context.Background(), append([]string{"--config", cfgPath}, args...),
			strings.NewReader(stdin), &stdout, &stderr)
		return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
	}
	return dir, run
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExecute_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--version"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "jsonbench version "+Version)
}

func TestExecute_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"frobnicate"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
}

func TestPathCommand(t *testing.T) {
	_, run := testEnv(t)

	res := run(`{"a":{"b":[1,2,3]}}`, "path", "--offset", "13", "--value")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "$.a.b[1]\t2\n", res.stdout)

	res = run("{\n  \"name\": \"Ada\"\n}", "path", "--line", "2", "--column", "12")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "$.name\n", res.stdout)

	res = run(`{"a":`, "path", "--offset", "1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "JSON parsing error")

	res = run(`{"a":1}`, "path")
	assert.Equal(t, 1, res.code)

	res = run(`{"a":{"b":[1,{"c":"x"}]}}`, "path", "--path", `$.a.b[1]`)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "{\"c\":\"x\"}\n", res.stdout)

	res = run(`{"a":1}`, "path", "--path", "$.missing")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "no value at $.missing")

	res = run(`{"a":1}`, "path", "--path", "a.b")
	assert.Equal(t, 1, res.code)

	res = run("{\"a\": [1, 2,], // c\n\"b\": 3}", "--lenient", "path", "--offset", "25", "--value")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "$.b\t3\n", res.stdout)
}

func TestFormatCommand(t *testing.T) {
	dir, run := testEnv(t)

	res := run(`{"a":[1,2.50]}`, "format")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2.5\n  ]\n}\n", res.stdout)

	res = run("{\n  \"a\": 1 }", "format", "--minify")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "{\"a\":1}\n", res.stdout)

	res = run(`{"a":1, /* note */ }`, "--lenient", "format", "--indent", "0")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "{\"a\":1}\n", res.stdout)

	out := filepath.Join(dir, "out.json")
	res = run(`[true]`, "format", "-o", out)
	require.Equal(t, 0, res.code, res.stderr)
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[\n  true\n]\n", string(written))

	res = run("", "format")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Input error")
}

func TestDiffCommand(t *testing.T) {
	dir, run := testEnv(t)
	left := writeFile(t, dir, "left.json", `[1,2,3]`)
	right := writeFile(t, dir, "right.json", `[0,1,2,3]`)

	res := run("", "diff", left, right)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "  [\n+   0,\n    1,\n    2,\n    3\n  ]\n3 same, 1 added, 0 removed, 0 modified\n", res.stdout)

	res = run("", "diff", "--mode", "naive", left, right)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "1 same, 1 added, 0 removed, 4 modified")

	res = run("", "diff", "--json", left, right)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"root"`)

	before := writeFile(t, dir, "before.json", `{"a":1}`)
	after := writeFile(t, dir, "after.json", `{"a":2}`)
	res = run("", "diff", "--no-modifications", before, after)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "0 same, 1 added, 1 removed, 0 modified")

	broken := writeFile(t, dir, "broken.json", `{`)
	res = run("", "diff", left, broken)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "(right)")
}

func TestPatchCommands(t *testing.T) {
	dir, run := testEnv(t)
	left := writeFile(t, dir, "left.json", `{"a":1,"b":[1,2]}`)
	right := writeFile(t, dir, "right.json", `{"a":2,"b":[1,2,3]}`)

	res := run("", "patch", "make", left, right)
	require.Equal(t, 0, res.code, res.stderr)
	patch := writeFile(t, dir, "patch.json", res.stdout)

	res = run("", "patch", "apply", left, patch)
	require.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, `{"a":2,"b":[1,2,3]}`, res.stdout)

	res = run("", "patch", "make", "--positional", left, right)
	require.Equal(t, 0, res.code, res.stderr)
	positional := writeFile(t, dir, "positional.json", res.stdout)
	res = run("", "patch", "apply", left, positional)
	require.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, `{"a":2,"b":[1,2,3]}`, res.stdout)

	res = run("", "patch", "make", "--merge", left, right)
	require.Equal(t, 0, res.code, res.stderr)
	merge := writeFile(t, dir, "merge.json", res.stdout)

	res = run("", "patch", "apply", "--merge", left, merge)
	require.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, `{"a":2,"b":[1,2,3]}`, res.stdout)
}

func TestDesignCommands(t *testing.T) {
	dir, run := testEnv(t)

	res := run(`{"userName":"Ada","tags":["x","y"],"age":36}`, "design", "import")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"rootType": "object"`)
	structure := writeFile(t, dir, "structure.json", res.stdout)

	res = run("", "design", "export", structure)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "{\n  \"userName\": \"\",\n  \"tags\": [\n    \"\"\n  ],\n  \"age\": 0\n}\n", res.stdout)

	res = run("", "design", "export", "--key-case", "snake", structure)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"user_name"`)

	res = run("", "design", "export", "--key-case", "shouty", structure)
	assert.Equal(t, 1, res.code)

	res = run("", "design", "preset", "config", "--json")
	require.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, `{"appName":"My App","debug":false,"port":3000,"database":{"host":"localhost","port":5432,"name":"mydb"},"features":["feature1","feature2"]}`, res.stdout)

	res = run("", "design", "preset", "missing")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Designer error")

	res = run(`"scalar"`, "design", "import")
	assert.Equal(t, 1, res.code)
}

func TestDesignEditCommand(t *testing.T) {
	dir, run := testEnv(t)
	structure := writeFile(t, dir, "structure.json",
		`{"rootType":"object","data":[{"id":"tags","name":"tags","nodeType":"array","children":[]}]}`)
	edits := writeFile(t, dir, "edits.json", `[
		{"op":"add","parent":"tags","type":"string","value":"go"},
		{"op":"duplicate","id":"$0"},
		{"op":"add","type":"boolean","name":"draft","value":true}
	]`)

	res := run("", "design", "edit", "--json", edits, structure)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "{\n  \"tags\": [\n    \"go\",\n    \"go\"\n  ],\n  \"draft\": true\n}\n", res.stdout)

	res = run("", "design", "edit", edits)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"rootType": "object"`)
	assert.Contains(t, res.stdout, `"name": "draft"`)

	bad := writeFile(t, dir, "bad.json", `[{"op":"drop","id":"x","target":"y","position":"sideways"}]`)
	res = run("", "design", "edit", bad)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Designer error")

	notArray := writeFile(t, dir, "object.json", `{"op":"clear"}`)
	res = run("", "design", "edit", notArray)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Input error")
}

func TestTemplatesCommands(t *testing.T) {
	dir, run := testEnv(t)

	res := run("", "templates", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "No templates saved.\n", res.stdout)

	res = run(`{"a":1}`, "templates", "save", "my doc", "--description", "first")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Template \"my_doc\" saved successfully\n", res.stdout)
	assert.FileExists(t, filepath.Join(dir, "templates", "my_doc.json"))

	res = run("", "templates", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "NAME")
	assert.Contains(t, res.stdout, "my_doc")
	assert.Contains(t, res.stdout, "first")

	res = run("", "templates", "get", "my_doc")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", res.stdout)

	structure := `{"rootType":"array","data":[{"id":"n","name":"","nodeType":"number","value":7}]}`
	res = run(structure, "templates", "save", "shape", "--type", "designer")
	require.Equal(t, 0, res.code, res.stderr)
	res = run("", "design", "export", "--template", "shape")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "[\n  7\n]\n", res.stdout)

	res = run("", "templates", "delete", "my_doc")
	require.Equal(t, 0, res.code, res.stderr)

	res = run("", "templates", "get", "my_doc")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Template error")
}

func TestExecute_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "bad.yml", "indent: 42\n")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--config", cfgPath, "format"}, strings.NewReader("{}"), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Configuration error")
}
