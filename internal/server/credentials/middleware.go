package credentials

import (
	"errors"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	"github.com/labstack/echo/v4"
)

const contextKeyPrincipal = "principal"

// Middleware resolves the principal for every request and stores it on the
// echo context. It never rejects a request; authorization happens later.
func (e *Extractor) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := e.Extract(c.Request())
			if res.Reason != nil && !errors.Is(res.Reason, common.ErrCredentialAbsent) {
				e.logger.Debug(c.Request().Context(), "credential rejected",
					"reason", res.Reason.Error(),
					"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			}
			c.Set(contextKeyPrincipal, res.Principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Middleware, or the anonymous
// principal if there is none.
func PrincipalFrom(c echo.Context) models.Principal {
	p, ok := c.Get(contextKeyPrincipal).(models.Principal)
	if !ok {
		return models.Anonymous()
	}
	return p
}
