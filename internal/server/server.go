// Package server exposes the workbench over HTTP: the template store, path
// resolution, document comparison and the structure designer.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"

	"github.com/mcncl/jsonbench/internal/config"
	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/logging"
	"github.com/mcncl/jsonbench/internal/templates"
)

const shutdownTimeout = 5 * time.Second

// Server serves the JSON API.
type Server struct {
	cfg    *config.Config
	store  *templates.Store
	engine *gin.Engine
}

// New builds the router for cfg backed by store.
func New(cfg *config.Config, store *templates.Store) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{cfg: cfg, store: store, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger(), s.limitBody())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")

	tpl := api.Group("/templates")
	tpl.GET("", s.listTemplates)
	tpl.POST("", s.saveTemplate)
	tpl.GET("/:name", s.getTemplate)
	tpl.PUT("/:name", s.updateTemplate)
	tpl.DELETE("/:name", s.deleteTemplate)

	api.POST("/path", s.resolvePath)
	api.POST("/format", s.format)
	api.POST("/diff", s.diff)
	api.POST("/patch", s.patch)

	designer := api.Group("/designer")
	designer.GET("/presets", s.listPresets)
	designer.GET("/presets/:name", s.preset)
	designer.POST("/import", s.importStructure)
	designer.POST("/serialize", s.serializeStructure)
	designer.POST("/apply", s.applyStructure)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		logging.Ctx(ctx).Info("Server running", "addr", s.cfg.Server.Addr, "templates", s.store.Dir())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	logging.Ctx(ctx).Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

// requestLogger tags every request with an id and logs it once it is done.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := xid.New().String()
		c.Header("X-Request-Id", id)

		ctx := logging.Append(c.Request.Context(), "request_id", id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logging.Ctx(ctx).Info("Request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.Server.MaxBody > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBody)
		}
		c.Next()
	}
}

// statusOf maps an error to the response status: missing templates are 404,
// input the caller can fix is 400 and everything else is 500.
func statusOf(err error) int {
	var maxBytes *http.MaxBytesError
	var appErr *errors.AppError
	switch {
	case stderrors.Is(err, errors.ErrTemplateNotFound):
		return http.StatusNotFound
	case stderrors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, errors.ErrTemplateNameRequired),
		stderrors.Is(err, errors.ErrTemplateContentRequired),
		stderrors.Is(err, errors.ErrInvalidJSON),
		stderrors.Is(err, errors.ErrEmptyInput):
		return http.StatusBadRequest
	case stderrors.As(err, &appErr):
		switch appErr.Type {
		case errors.ErrorTypeInput, errors.ErrorTypeParsing, errors.ErrorTypePath, errors.ErrorTypeDesign:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusOf(err)
	body := gin.H{"error": errors.UserFriendlyError(err)}
	if side := errors.SideOf(err); side != errors.SideNone {
		body["side"] = side
	}
	if status == http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error("Request failed", "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}

func (s *Server) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var maxBytes *http.MaxBytesError
		if stderrors.As(err, &maxBytes) {
			s.fail(c, err)
			return false
		}
		s.fail(c, errors.NewInputError("invalid request body", err))
		return false
	}
	return true
}
