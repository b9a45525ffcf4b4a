package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type saveTemplateRequest struct {
	Name        string          `json:"name"`
	Content     json.RawMessage `json:"content"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
}

type updateTemplateRequest struct {
	Content     json.RawMessage `json:"content"`
	Description *string         `json:"description"`
}

func (s *Server) listTemplates(c *gin.Context) {
	infos, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, infos)
}

func (s *Server) getTemplate(c *gin.Context) {
	data, err := s.store.Raw(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) saveTemplate(c *gin.Context) {
	var req saveTemplateRequest
	if !s.bind(c, &req) {
		return
	}
	name, err := s.store.Save(c.Request.Context(), req.Name, req.Content, req.Type, req.Description)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"name":    name,
		"message": fmt.Sprintf("Template %q saved successfully", name),
	})
}

func (s *Server) updateTemplate(c *gin.Context) {
	var req updateTemplateRequest
	if !s.bind(c, &req) {
		return
	}
	name := c.Param("name")
	if err := s.store.Update(c.Request.Context(), name, req.Content, req.Description); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Template %q updated successfully", name),
	})
}

func (s *Server) deleteTemplate(c *gin.Context) {
	name := c.Param("name")
	if err := s.store.Delete(c.Request.Context(), name); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Template %q deleted successfully", name),
	})
}
