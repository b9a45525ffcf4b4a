package designer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonbench/internal/errors"
)

func decodeEdits(t *testing.T, text string) []Edit {
	t.Helper()
	var edits []Edit
	require.NoError(t, json.Unmarshal([]byte(text), &edits))
	return edits
}

func TestApply_BuildsTree(t *testing.T) {
	tree := NewTree(WithIDSource(seqIDs()))
	results, err := tree.Apply(decodeEdits(t, `[
		{"op":"add","type":"object","name":"db"},
		{"op":"add","parent":"$0","type":"number","name":"port","value":5432},
		{"op":"add","parent":"$0","type":"boolean","name":"ssl","value":"true"},
		{"op":"add","type":"string","name":"host","value":"localhost"},
		{"op":"drop","id":"$3","target":"$0","position":"above"},
		{"op":"duplicate","id":"$1"},
		{"op":"update","id":"$5","name":"replica_port","value":"5433"}
	]`))
	require.NoError(t, err)
	require.Len(t, results, 7)
	assert.Equal(t, EditResult{Op: OpAdd, Changed: true, ID: "n1"}, results[0])
	assert.Equal(t, "n5", results[5].ID)
	for _, r := range results {
		assert.True(t, r.Changed, r.Op)
	}

	assert.Equal(t, `{"host":"localhost","db":{"port":5432,"replica_port":5433,"ssl":true}}`, serialized(t, tree))
}

func TestApply_NoOpsReportUnchanged(t *testing.T) {
	tree := NewTree(WithIDSource(seqIDs()))
	results, err := tree.Apply(decodeEdits(t, `[
		{"op":"add","type":"string","name":"leaf"},
		{"op":"add","parent":"$0","type":"number"},
		{"op":"delete","id":"missing"},
		{"op":"move","ids":["$0"],"parent":"$0","index":0},
		{"op":"drop","id":"$0","target":"$0","position":"inside"}
	]`))
	require.NoError(t, err)

	var changed []bool
	for _, r := range results {
		changed = append(changed, r.Changed)
	}
	assert.Equal(t, []bool{true, false, false, false, false}, changed)
	assert.Equal(t, `{"leaf":""}`, serialized(t, tree))
}

func TestApply_MoveRootTypeAndClear(t *testing.T) {
	tree := NewTree(WithIDSource(seqIDs()))
	_, err := tree.Apply(decodeEdits(t, `[
		{"op":"add","type":"number","value":1},
		{"op":"add","type":"number","value":2},
		{"op":"add","type":"number","value":3},
		{"op":"move","ids":["$2"],"index":0},
		{"op":"root-type","type":"array"},
		{"op":"drop","id":"$1"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, `[3,1,2]`, serialized(t, tree))

	results, err := tree.Apply([]Edit{{Op: OpClear}})
	require.NoError(t, err)
	assert.True(t, results[0].Changed)
	assert.Equal(t, `[]`, serialized(t, tree))
}

func TestApply_MalformedEditStopsBatch(t *testing.T) {
	tests := []struct {
		name  string
		edits string
	}{
		{"unknown op", `[{"op":"rename"}]`},
		{"bad add type", `[{"op":"add","type":"date"}]`},
		{"bad update type", `[{"op":"update","id":"x","type":"date"}]`},
		{"bad position", `[{"op":"drop","id":"x","target":"y","position":"beside"}]`},
		{"scalar root type", `[{"op":"root-type","type":"string"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree()
			edits := append([]Edit{{Op: OpAdd, Type: TypeNull}}, decodeEdits(t, tt.edits)...)
			results, err := tree.Apply(edits)
			require.Error(t, err)
			assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeDesign})
			assert.Len(t, results, 1)
			assert.Len(t, tree.Nodes(), 1, "earlier edits stay applied")
		})
	}
}

func TestNewTreeFrom_KeepsIDs(t *testing.T) {
	s, err := LoadStructure([]byte(`{"rootType":"array","data":[{"id":"a","nodeType":"object","children":[{"id":"b","name":"k"}]}]}`), nil)
	require.NoError(t, err)

	tree := NewTreeFrom(s, WithIDSource(seqIDs()))
	assert.Equal(t, TypeArray, tree.RootType())
	assert.Equal(t, []string{"a", "b"}, allIDs(tree.Nodes()))

	results, err := tree.Apply([]Edit{{Op: OpUpdate, ID: "b", Value: json.RawMessage(`"v"`)}})
	require.NoError(t, err)
	assert.True(t, results[0].Changed)
	assert.Equal(t, `[{"k":"v"}]`, serialized(t, tree))
	assert.Equal(t, "b", s.Data[0].Children()[0].ID)
	assert.Equal(t, "", s.Data[0].Children()[0].Value(), "the source structure is not modified")
}
