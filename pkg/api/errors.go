package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/catface996/opstack-executor-sub002/pkg/config"
	"github.com/catface996/opstack-executor-sub002/pkg/service"
)

// mapServiceError maps service-layer errors to HTTP error responses.
func mapServiceError(err error) *echo.HTTPError {
	if ve, ok := config.AsValidationError(err); ok {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Reason).Wrap(ve).(*echo.HTTPError)
	}
	if errors.Is(err, service.ErrMissingConfig) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, service.ErrHierarchyNotFound) || errors.Is(err, service.ErrRunNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if errors.Is(err, service.ErrRunNotCancellable) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	slog.Error("Unexpected service error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// httpErrorHandler renders every error as a {success:false, error} envelope.
func (s *Server) httpErrorHandler(c *echo.Context, err error) {
	if res, resErr := echo.UnwrapResponse(c.Response()); resErr == nil && res.Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"
	var detail any
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != "" {
			message = he.Message
		}
		if ve, ok := config.AsValidationError(err); ok {
			message = ve.Reason
			detail = ValidationDetail{Field: ve.Field, Reason: ve.Reason}
		}
	}

	if writeErr := c.JSON(code, Envelope{Success: false, Data: detail, Error: message}); writeErr != nil {
		s.logger.Error("failed to write error response", "error", writeErr)
	}
}
