package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	jsonKeyStatus     = "status"
	statusOK          = "ok"
	statusUnavailable = "unavailable"
	pingTimeout       = 2 * time.Second
)

func (s *Server) health(c echo.Context) error {
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		if err := s.deps.DB.PingContext(ctx); err != nil {
			s.logger.Warn(ctx, "health check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{jsonKeyStatus: statusUnavailable})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{jsonKeyStatus: statusOK})
}
