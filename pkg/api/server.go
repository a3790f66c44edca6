// Package api exposes the orchestrator over HTTP: synchronous execution,
// hierarchy registration, async run management with cursor polling, and
// live WebSocket event streaming.
package api

import (
	"context"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/catface996/opstack-executor-sub002/pkg/config"
	"github.com/catface996/opstack-executor-sub002/pkg/service"
)

// Server is the HTTP API server.
type Server struct {
	runs        *service.RunService
	hierarchies *service.HierarchyService
	limits      *config.ExecutionLimits
	logger      *slog.Logger

	e    *echo.Echo
	http *http.Server
}

// NewServer wires the HTTP server around the application services.
func NewServer(runs *service.RunService, hierarchies *service.HierarchyService, limits *config.ExecutionLimits, logger *slog.Logger) *Server {
	if limits == nil {
		limits = config.DefaultExecutionLimits()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		runs:        runs,
		hierarchies: hierarchies,
		limits:      limits,
		logger:      logger.With("component", "api"),
	}

	e := echo.New()
	e.HTTPErrorHandler = s.httpErrorHandler
	e.Use(securityHeaders())
	e.Use(s.requestLogger())
	s.registerRoutes(e)
	s.e = e
	return s
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/health", s.healthHandler)
	e.GET("/", s.rootHandler)
	e.POST("/execute", s.executeHandler)

	v1 := e.Group("/api/executor/v1")
	v1.POST("/hierarchies/create", s.createHierarchyHandler)
	v1.POST("/hierarchies/list", s.listHierarchiesHandler)
	v1.POST("/hierarchies/get", s.getHierarchyHandler)
	v1.POST("/runs/start", s.startRunHandler)
	v1.POST("/runs/get", s.getRunHandler)
	v1.POST("/runs/list", s.listRunsHandler)
	v1.POST("/runs/cancel", s.cancelRunHandler)
	v1.GET("/runs/:id/stream", s.streamRunHandler)
}

// Handler returns the http.Handler for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start listens on addr and serves until Shutdown. Blocks.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.e}
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
