package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/catface996/opstack-executor-sub002/pkg/version"
)

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	return respond(c, http.StatusOK, HealthResponse{
		Status:            "ok",
		Service:           version.AppName,
		Version:           version.GitCommit,
		ActiveRuns:        s.runs.ActiveCount(),
		MaxConcurrentRuns: s.limits.MaxConcurrentRuns,
	})
}

// rootHandler handles GET / with a listing of the available endpoints.
func (s *Server) rootHandler(c *echo.Context) error {
	return respond(c, http.StatusOK, map[string]any{
		"service": version.AppName,
		"version": version.GitCommit,
		"endpoints": []string{
			"GET /health",
			"POST /execute",
			"POST /api/executor/v1/hierarchies/create",
			"POST /api/executor/v1/hierarchies/list",
			"POST /api/executor/v1/hierarchies/get",
			"POST /api/executor/v1/runs/start",
			"POST /api/executor/v1/runs/get",
			"POST /api/executor/v1/runs/list",
			"POST /api/executor/v1/runs/cancel",
			"GET /api/executor/v1/runs/:id/stream",
		},
	})
}
