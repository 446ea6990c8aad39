package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/server/services"
	"github.com/labstack/echo/v4"
)

const (
	jsonKeyMsg = "msg"

	msgUnauthorized    = "Unauthorized"
	msgForbidden       = "Forbidden"
	msgPostNotFound    = "Post Not Found"
	msgBadRequest      = "Bad Request"
	msgInternal        = "Internal Server Error"
	msgTooManyRequests = "Too Many Requests"
)

func respondMsg(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{jsonKeyMsg: msg})
}

// fail writes the response for a service error. storageStatus is the status
// used for storage failures on this route: 400 for the collection and 404
// for routes addressing a single post.
func (s *Server) fail(c echo.Context, err error, storageStatus int) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return respondMsg(c, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, common.ErrorForbidden):
		return respondMsg(c, http.StatusForbidden, msgForbidden)
	case errors.Is(err, common.ErrorNotFound):
		return respondMsg(c, http.StatusNotFound, msgPostNotFound)
	case errors.Is(err, common.ErrorValidation):
		return respondMsg(c, http.StatusBadRequest, msgBadRequest)
	case errors.Is(err, common.ErrorAlreadyExists):
		return respondMsg(c, http.StatusConflict, http.StatusText(http.StatusConflict))
	}

	var se *services.StorageError
	if !errors.As(err, &se) {
		s.logger.Error(c.Request().Context(), "unexpected service error",
			"error", err, "request_id", requestID(c))
		return respondMsg(c, http.StatusInternalServerError, msgInternal)
	}

	s.logger.Error(c.Request().Context(), "storage failure",
		"op", se.Op, "error", se.Err, "request_id", requestID(c))

	msg := msgBadRequest
	if storageStatus == http.StatusNotFound {
		msg = msgPostNotFound
	}
	return respondMsg(c, storageStatus, msg)
}

// handleHTTPError renders errors that escaped the handlers: unknown routes,
// body limit, binder failures and recovered panics.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := msgInternal

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = http.StatusText(code)
		if m, ok := he.Message.(string); ok && m != "" && code < http.StatusInternalServerError {
			msg = m
		}
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "internal server error",
			"error", fmt.Sprint(err), "request_id", requestID(c))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = respondMsg(c, code, msg)
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return "unknown"
}
