package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcncl/jsonbench/internal/designer"
	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/formatter"
)

type importRequest struct {
	JSON string `json:"json"`
}

type serializeRequest struct {
	RootType designer.NodeType `json:"rootType"`
	Data     json.RawMessage   `json:"data"`
	KeyCase  *designer.KeyCase `json:"keyCase"`
}

type applyRequest struct {
	Structure json.RawMessage   `json:"structure"`
	Edits     []designer.Edit   `json:"edits"`
	KeyCase   *designer.KeyCase `json:"keyCase"`
}

type applyResponse struct {
	Structure designer.Structure    `json:"structure"`
	Results   []designer.EditResult `json:"results"`
	JSON      string                `json:"json"`
}

type serializeResponse struct {
	JSON  string `json:"json"`
	Value any    `json:"value"`
}

func (s *Server) listPresets(c *gin.Context) {
	c.JSON(http.StatusOK, designer.PresetNames())
}

func (s *Server) preset(c *gin.Context) {
	structure, err := designer.Preset(c.Param("name"), nil)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, structure)
}

// importStructure derives a designer structure from a JSON document.
func (s *Server) importStructure(c *gin.Context) {
	var req importRequest
	if !s.bind(c, &req) {
		return
	}
	value, err := s.parse(req.JSON)
	if err != nil {
		s.fail(c, errors.NewInvalidJSONError(errors.SideNone, err))
		return
	}
	structure, err := designer.Import(value, nil)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, structure)
}

// serializeStructure turns a designer structure into its JSON document.
func (s *Server) serializeStructure(c *gin.Context) {
	var req serializeRequest
	if !s.bind(c, &req) {
		return
	}

	raw, err := json.Marshal(struct {
		RootType designer.NodeType `json:"rootType"`
		Data     json.RawMessage   `json:"data"`
	}{req.RootType, req.Data})
	if err != nil {
		s.fail(c, err)
		return
	}
	structure, err := designer.LoadStructure(raw, nil)
	if err != nil {
		s.fail(c, err)
		return
	}

	keyCase, err := s.keyCase(req.KeyCase)
	if err != nil {
		s.fail(c, err)
		return
	}
	value := designer.Serialize(structure.Data, structure.RootType, designer.SerializeOptions{KeyCase: keyCase})
	c.JSON(http.StatusOK, serializeResponse{
		JSON:  formatter.Stringify(value, s.cfg.Indent),
		Value: value,
	})
}

// applyStructure runs a batch of tree edits against a structure, or an
// empty object root when none is sent, and returns the edited structure.
func (s *Server) applyStructure(c *gin.Context) {
	var req applyRequest
	if !s.bind(c, &req) {
		return
	}
	keyCase, err := s.keyCase(req.KeyCase)
	if err != nil {
		s.fail(c, err)
		return
	}

	structure := designer.Structure{RootType: designer.TypeObject}
	if len(req.Structure) > 0 && string(req.Structure) != "null" {
		if structure, err = designer.LoadStructure(req.Structure, nil); err != nil {
			s.fail(c, err)
			return
		}
	}

	tree := designer.NewTreeFrom(structure)
	results, err := tree.Apply(req.Edits)
	if err != nil {
		s.fail(c, err)
		return
	}
	value := tree.Serialize(designer.SerializeOptions{KeyCase: keyCase})
	c.JSON(http.StatusOK, applyResponse{
		Structure: tree.Structure(),
		Results:   results,
		JSON:      formatter.Stringify(value, s.cfg.Indent),
	})
}

func (s *Server) keyCase(requested *designer.KeyCase) (designer.KeyCase, error) {
	keyCase := designer.KeyCase(s.cfg.Designer.KeyCase)
	if requested != nil {
		keyCase = *requested
	}
	if !keyCase.Valid() {
		return "", errors.NewInputError("unknown keyCase "+string(keyCase), nil)
	}
	return keyCase, nil
}
