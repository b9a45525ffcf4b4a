package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcncl/jsonbench/internal/differ"
	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/formatter"
	"github.com/mcncl/jsonbench/internal/jsonpath"
	"github.com/mcncl/jsonbench/internal/models"
	"github.com/mcncl/jsonbench/internal/parser"
)

type pathRequest struct {
	Text   string `json:"text"`
	Offset *int   `json:"offset"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type pathResponse struct {
	Path  string          `json:"path"`
	Found bool            `json:"found"`
	Value json.RawMessage `json:"value,omitempty"`
}

// resolvePath answers with the path under the cursor. The cursor is either a
// byte offset or a 1-based line and column.
func (s *Server) resolvePath(c *gin.Context) {
	var req pathRequest
	if !s.bind(c, &req) {
		return
	}
	if _, err := s.parse(req.Text); err != nil {
		s.fail(c, errors.NewInvalidJSONError(errors.SideNone, err))
		return
	}
	text := req.Text
	if s.cfg.Lenient {
		var err error
		if text, err = jsonpath.Standardize(text); err != nil {
			s.fail(c, errors.NewInvalidJSONError(errors.SideNone, err))
			return
		}
	}

	var path jsonpath.Path
	var ok bool
	switch {
	case req.Offset != nil:
		path, ok = jsonpath.Resolve(text, *req.Offset)
	case req.Line > 0:
		path, ok = jsonpath.ResolveAt(text, req.Line, max(req.Column, 1))
	default:
		s.fail(c, errors.NewPathError("offset or line is required", nil))
		return
	}

	resp := pathResponse{Found: ok}
	if ok {
		resp.Path = path.String()
		if raw, found := jsonpath.Lookup(text, path); found {
			resp.Value = json.RawMessage(raw)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) parse(text string) (models.JSONValue, error) {
	if s.cfg.Lenient {
		ir, err := parser.ParseLenient(text)
		return ir.Root, err
	}
	ir, err := parser.ParseString(text)
	return ir.Root, err
}

type formatRequest struct {
	Text   string `json:"text"`
	Indent *int   `json:"indent"`
	Minify bool   `json:"minify"`
}

func (s *Server) format(c *gin.Context) {
	var req formatRequest
	if !s.bind(c, &req) {
		return
	}
	indent := s.cfg.Indent
	if req.Indent != nil {
		indent = min(max(*req.Indent, 0), formatter.MaxIndent)
	}

	f := formatter.NewFormatter(indent).WithLenient(s.cfg.Lenient)
	var out string
	var err error
	if req.Minify {
		out, err = f.Minify(req.Text)
	} else {
		out, err = f.Format(req.Text)
	}
	if err != nil {
		s.fail(c, errors.NewInvalidJSONError(errors.SideNone, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": out})
}

// Diff modes accepted by /api/diff.
const (
	modeNaive      = "naive"
	modeStructural = "structural"
)

type diffRequest struct {
	Left    string          `json:"left"`
	Right   string          `json:"right"`
	Mode    string          `json:"mode"`
	Inline  *bool           `json:"inline"`
	Options json.RawMessage `json:"options"`
}

type structuralResponse struct {
	*differ.Result
	Lines []differ.Line `json:"lines"`
}

func (s *Server) diff(c *gin.Context) {
	var req diffRequest
	if !s.bind(c, &req) {
		return
	}

	switch req.Mode {
	case "", modeStructural:
		opts, err := s.diffOptions(req.Options)
		if err != nil {
			s.fail(c, err)
			return
		}
		result, err := differ.DiffTexts(req.Left, req.Right, opts, s.cfg.Lenient)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, structuralResponse{Result: result, Lines: result.Lines(s.cfg.Indent)})
	case modeNaive:
		inline := s.cfg.Diff.Inline
		if req.Inline != nil {
			inline = *req.Inline
		}
		result, err := differ.DiffLines(req.Left, req.Right, differ.LineOptions{Inline: inline, Lenient: s.cfg.Lenient})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	default:
		s.fail(c, errors.NewInputError("mode must be naive or structural", nil))
	}
}

// diffOptions overlays the options sent with a request on the configured
// ones. Fields the request leaves out keep their configured value.
func (s *Server) diffOptions(raw json.RawMessage) (differ.Options, error) {
	opts := differ.OptionsFromConfig(s.cfg.Diff)
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return differ.Options{}, errors.NewInputError("invalid diff options", err)
		}
	}
	if !opts.ArrayMethod.Valid() {
		return differ.Options{}, errors.NewInputError("arrayDiffMethod must be lcs or positional", nil)
	}
	if opts.MaxDepth < 0 {
		return differ.Options{}, errors.NewInputError("maxDepth must not be negative", nil)
	}
	return opts, nil
}

type patchRequest struct {
	Left  string `json:"left"`
	Right string `json:"right"`
	Merge bool   `json:"merge"`
}

// patch returns the RFC 6902 patch, or with merge set the RFC 7386 merge
// patch, that turns left into right.
func (s *Server) patch(c *gin.Context) {
	var req patchRequest
	if !s.bind(c, &req) {
		return
	}
	var out []byte
	var err error
	if req.Merge {
		out, err = differ.MakeMergePatch([]byte(req.Left), []byte(req.Right))
	} else {
		out, err = differ.MakePatch([]byte(req.Left), []byte(req.Right), differ.OptionsFromConfig(s.cfg.Diff))
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}
