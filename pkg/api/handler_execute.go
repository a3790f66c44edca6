package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/catface996/opstack-executor-sub002/pkg/config"
	"github.com/catface996/opstack-executor-sub002/pkg/events"
	"github.com/catface996/opstack-executor-sub002/pkg/run"
)

// executeHandler handles POST /execute: builds the topology, runs it to
// completion and returns the full event log. Partial success is still HTTP
// 200 with the errors embedded in the event log; only invalid configs and
// complete failure are non-200.
func (s *Server) executeHandler(c *echo.Context) error {
	var cfg config.HierarchyConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	r, evs, err := s.runs.ExecuteSync(c.Request().Context(), &cfg)
	if err != nil {
		return mapServiceError(err)
	}

	resp := ExecutionResponse{
		RunID:    r.ID,
		Status:   r.Status,
		Topology: events.SnapshotTopology(r.Topology),
		Events:   evs,
		Result:   r.Result,
		Error:    r.Error,
	}

	if r.Status == run.StatusFailed {
		message := "execution failed"
		if r.Error != nil {
			message = r.Error.Message
		}
		return c.JSON(http.StatusInternalServerError, Envelope{
			Success: false,
			Data:    resp,
			Error:   message,
		})
	}
	return respond(c, http.StatusOK, resp)
}
