package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/postgate/internal/server/credentials"
	"github.com/dmitrijs2005/postgate/internal/server/services"
	"github.com/labstack/echo/v4"
)

func (p postPayload) input() services.PostInput {
	return services.PostInput{Title: p.Title, Body: p.Body, Username: p.Username}
}

func (s *Server) listPosts(c echo.Context) error {
	items, err := s.deps.Posts.List(c.Request().Context())
	if err != nil {
		return s.fail(c, err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) createPost(c echo.Context) error {
	p := credentials.PrincipalFrom(c)
	if !p.IsAuthenticated() {
		return respondMsg(c, http.StatusUnauthorized, msgUnauthorized)
	}

	var body postPayload
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c)
	}

	post, err := s.deps.Posts.Create(c.Request().Context(), p, body.input())
	if err != nil {
		return s.fail(c, err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, post)
}

func (s *Server) updatePost(c echo.Context) error {
	p := credentials.PrincipalFrom(c)
	if !p.IsAuthenticated() {
		return respondMsg(c, http.StatusUnauthorized, msgUnauthorized)
	}

	var body postPayload
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c)
	}

	before, err := s.deps.Posts.Update(c.Request().Context(), p, c.Param("id"), body.input())
	if err != nil {
		return s.fail(c, err, http.StatusNotFound)
	}
	return c.JSON(http.StatusAccepted, before)
}

func (s *Server) deletePost(c echo.Context) error {
	p := credentials.PrincipalFrom(c)

	if err := s.deps.Posts.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return s.fail(c, err, http.StatusNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}
