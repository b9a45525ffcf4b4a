package differ

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/wI2L/jsondiff"

	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/parser"
)

// MakePatch returns the RFC 6902 patch that turns left into right. With
// ArrayLCS, array changes are computed along the longest common subsequence.
func MakePatch(left, right []byte, opts Options) ([]byte, error) {
	if _, err := parser.ParseBytes(left); err != nil {
		return nil, errors.NewInvalidJSONError(errors.SideLeft, err)
	}
	if _, err := parser.ParseBytes(right); err != nil {
		return nil, errors.NewInvalidJSONError(errors.SideRight, err)
	}

	var diffOpts []jsondiff.Option
	if opts.ArrayMethod != ArrayPositional {
		diffOpts = append(diffOpts, jsondiff.LCS())
	}

	patch, err := jsondiff.CompareJSON(left, right, diffOpts...)
	if err != nil {
		return nil, errors.NewDiffError("failed to compute patch", err)
	}
	if patch == nil {
		return []byte("[]"), nil
	}

	out, err := json.Marshal(patch)
	if err != nil {
		return nil, errors.NewOutputError("failed to encode patch", err)
	}
	return out, nil
}

// ApplyPatch applies an RFC 6902 patch to doc.
func ApplyPatch(doc, patch []byte) ([]byte, error) {
	if _, err := parser.ParseBytes(doc); err != nil {
		return nil, errors.NewInvalidJSONError(errors.SideLeft, err)
	}

	decoded, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, errors.NewDiffError("invalid JSON patch", err)
	}

	out, err := decoded.Apply(doc)
	if err != nil {
		return nil, errors.NewDiffError("failed to apply patch", err)
	}
	return out, nil
}

// MakeMergePatch returns the RFC 7386 merge patch that turns left into right.
func MakeMergePatch(left, right []byte) ([]byte, error) {
	if _, err := parser.ParseBytes(left); err != nil {
		return nil, errors.NewInvalidJSONError(errors.SideLeft, err)
	}
	if _, err := parser.ParseBytes(right); err != nil {
		return nil, errors.NewInvalidJSONError(errors.SideRight, err)
	}

	out, err := jsonpatch.CreateMergePatch(left, right)
	if err != nil {
		return nil, errors.NewDiffError("failed to compute merge patch", err)
	}
	return out, nil
}

// ApplyMergePatch applies an RFC 7386 merge patch to doc.
func ApplyMergePatch(doc, patch []byte) ([]byte, error) {
	out, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return nil, errors.NewDiffError("failed to apply merge patch", err)
	}
	return out, nil
}
