package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonbench/internal/errors"
)

func TestMakePatch_RoundTrip(t *testing.T) {
	left := []byte(`{"a":1,"b":[1,2],"c":{"d":"x"}}`)
	right := []byte(`{"a":2,"b":[0,1,2],"c":{}}`)

	for _, method := range []ArrayMethod{ArrayLCS, ArrayPositional} {
		t.Run(string(method), func(t *testing.T) {
			opts := DefaultOptions()
			opts.ArrayMethod = method

			patch, err := MakePatch(left, right, opts)
			require.NoError(t, err)

			applied, err := ApplyPatch(left, patch)
			require.NoError(t, err)
			assert.JSONEq(t, string(right), string(applied))
		})
	}
}

func TestMakePatch_NoChanges(t *testing.T) {
	patch, err := MakePatch([]byte(`{"a":[1]}`), []byte(`{"a":[1]}`), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(patch))
}

func TestMakePatch_Operations(t *testing.T) {
	patch, err := MakePatch([]byte(`{"a":1}`), []byte(`{"a":1,"b":true}`), DefaultOptions())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"op":"add","path":"/b","value":true}]`, string(patch))
}

func TestMakePatch_InvalidSide(t *testing.T) {
	_, err := MakePatch([]byte(`{`), []byte(`{}`), DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, errors.SideLeft, errors.SideOf(err))

	_, err = MakePatch([]byte(`{}`), []byte(`}`), DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, errors.SideRight, errors.SideOf(err))
}

func TestApplyPatch_Errors(t *testing.T) {
	_, err := ApplyPatch([]byte(`{"a":1}`), []byte(`{"op":"add"}`))
	assert.Error(t, err, "a patch must be an array")

	_, err = ApplyPatch([]byte(`{"a":1}`), []byte(`[{"op":"remove","path":"/missing/key"}]`))
	assert.Error(t, err)

	_, err = ApplyPatch([]byte(`{"a":`), []byte(`[]`))
	assert.Error(t, err)
}

func TestMergePatch(t *testing.T) {
	patch, err := MakeMergePatch([]byte(`{"a":1,"b":2}`), []byte(`{"a":1,"b":3}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":3}`, string(patch))

	merged, err := ApplyMergePatch([]byte(`{"a":1,"b":2}`), []byte(`{"b":null,"c":[1]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"c":[1]}`, string(merged))
}
