package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	echo "github.com/labstack/echo/v5"
)

// streamRunHandler handles GET /api/executor/v1/runs/:id/stream. It upgrades
// to WebSocket and pushes the run's events as JSON text frames until the
// terminal event, then closes with a normal closure. last_event_id resumes
// after a previously seen event.
func (s *Server) streamRunHandler(c *echo.Context) error {
	runID := c.Param("id")
	if runID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "run id is required")
	}

	var cursor int64
	if v := c.QueryParam("last_event_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid last_event_id")
		}
		cursor = n
	}

	ctx := c.Request().Context()
	ch, err := s.runs.Stream(ctx, runID, cursor)
	if err != nil {
		return mapServiceError(err)
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	for ev := range ch {
		data, err := json.Marshal(ev)
		if err != nil {
			s.logger.Error("failed to encode event", "run_id", runID, "error", err)
			return nil
		}
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			// Client went away; the bus subscription ends with ctx.
			return nil
		}
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
	return nil
}
