package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *Server) login(c echo.Context) error {
	var body loginPayload
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c)
	}

	res, err := s.deps.Accounts.Login(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		return s.fail(c, err, http.StatusInternalServerError)
	}

	cfg := s.deps.Config
	c.SetCookie(s.cookie(cfg.SessionCookieName, res.Session.ID, res.Session.ExpiresAt))
	c.SetCookie(s.cookie(cfg.AuthCookieName, res.Token, time.Now().Add(cfg.TokenValidityDuration)))

	return c.JSON(http.StatusOK, loginResponse{Token: res.Token, Username: res.Principal.Username})
}

func (s *Server) logout(c echo.Context) error {
	cfg := s.deps.Config

	if ck, err := c.Cookie(cfg.SessionCookieName); err == nil && ck.Value != "" {
		if err := s.deps.Accounts.Logout(c.Request().Context(), ck.Value); err != nil {
			s.logger.Warn(c.Request().Context(), "logout failed", "error", err, "request_id", requestID(c))
		}
	}

	c.SetCookie(s.expiredCookie(cfg.SessionCookieName))
	c.SetCookie(s.expiredCookie(cfg.AuthCookieName))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.deps.Config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) expiredCookie(name string) *http.Cookie {
	ck := s.cookie(name, "", time.Unix(0, 0))
	ck.MaxAge = -1
	return ck
}
