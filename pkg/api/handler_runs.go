package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/catface996/opstack-executor-sub002/pkg/events"
	"github.com/catface996/opstack-executor-sub002/pkg/service"
)

// startRunHandler handles POST /api/executor/v1/runs/start. The run executes
// in the background; clients follow it via runs/get or the stream endpoint.
func (s *Server) startRunHandler(c *echo.Context) error {
	var req service.StartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	r, err := s.runs.Start(req)
	if err != nil {
		return mapServiceError(err)
	}
	return respond(c, http.StatusAccepted, IDResponse{ID: r.ID})
}

// GetRunRequest polls a run with a cursor. Since is the last event id the
// client has seen; zero returns the log from the start.
type GetRunRequest struct {
	ID    string `json:"id"`
	Since int64  `json:"since,omitempty"`
}

// getRunHandler handles POST /api/executor/v1/runs/get.
func (s *Server) getRunHandler(c *echo.Context) error {
	var req GetRunRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "run id is required")
	}

	r, err := s.runs.Get(req.ID)
	if err != nil {
		return mapServiceError(err)
	}
	evs, next, terminal, err := s.runs.Events(req.ID, req.Since)
	if err != nil {
		return mapServiceError(err)
	}
	if evs == nil {
		evs = []events.Event{}
	}

	return respond(c, http.StatusOK, RunStatusResponse{
		ID:       r.ID,
		Status:   r.Status,
		Events:   evs,
		Next:     next,
		Terminal: terminal,
		Result:   r.Result,
		Error:    r.Error,
	})
}

// listRunsHandler handles POST /api/executor/v1/runs/list.
func (s *Server) listRunsHandler(c *echo.Context) error {
	var req PageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	runs, total := s.runs.List(req.Page, req.Size)
	items := make([]RunResponse, 0, len(runs))
	for _, r := range runs {
		items = append(items, runResponse(r))
	}
	return respond(c, http.StatusOK, ListResponse{Items: items, Total: total})
}

// cancelRunHandler handles POST /api/executor/v1/runs/cancel.
func (s *Server) cancelRunHandler(c *echo.Context) error {
	var req GetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "run id is required")
	}

	if err := s.runs.Cancel(req.ID); err != nil {
		return mapServiceError(err)
	}
	return respond(c, http.StatusOK, map[string]string{"id": req.ID, "status": "cancellation requested"})
}
