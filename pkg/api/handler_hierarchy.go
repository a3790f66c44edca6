package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/catface996/opstack-executor-sub002/pkg/config"
)

// CreateHierarchyRequest registers a reusable hierarchy. The definition
// carries no task; tasks arrive with runs/start.
type CreateHierarchyRequest struct {
	Name string `json:"name,omitempty"`
	config.HierarchyConfig
}

// createHierarchyHandler handles POST /api/executor/v1/hierarchies/create.
func (s *Server) createHierarchyHandler(c *echo.Context) error {
	var req CreateHierarchyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h, err := s.hierarchies.Create(req.Name, &req.HierarchyConfig)
	if err != nil {
		return mapServiceError(err)
	}
	return respond(c, http.StatusCreated, IDResponse{ID: h.ID})
}

// PageRequest is a generic paginated list request.
type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// listHierarchiesHandler handles POST /api/executor/v1/hierarchies/list.
func (s *Server) listHierarchiesHandler(c *echo.Context) error {
	var req PageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	items, total := s.hierarchies.List(req.Page, req.Size)
	return respond(c, http.StatusOK, ListResponse{Items: items, Total: total})
}

// GetRequest addresses a resource by id.
type GetRequest struct {
	ID string `json:"id"`
}

// getHierarchyHandler handles POST /api/executor/v1/hierarchies/get.
func (s *Server) getHierarchyHandler(c *echo.Context) error {
	var req GetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "hierarchy id is required")
	}

	h, err := s.hierarchies.Get(req.ID)
	if err != nil {
		return mapServiceError(err)
	}
	return respond(c, http.StatusOK, h)
}
