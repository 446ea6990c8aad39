// Package credentials resolves the principal behind an HTTP request from the
// credentials it carries: a server-side session cookie first, then a signed
// token in a cookie or an Authorization header.
package credentials

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/logging"
	"github.com/dmitrijs2005/postgate/internal/server/auth"
	"github.com/dmitrijs2005/postgate/internal/server/models"
)

const authHeaderParts = 2

// SessionResolver maps a session id to its principal.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (models.Principal, error)
}

// TokenVerifier checks a signed token.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// Result is the outcome of extraction. Reason explains an anonymous result
// and is meant for logs only.
type Result struct {
	Principal models.Principal
	Reason    error
}

type Extractor struct {
	sessions          SessionResolver
	tokens            TokenVerifier
	sessionCookieName string
	authCookieName    string
	logger            logging.Logger
}

func NewExtractor(sessions SessionResolver, tokens TokenVerifier, sessionCookieName, authCookieName string, logger logging.Logger) *Extractor {
	if sessionCookieName == "" {
		sessionCookieName = common.SessionCookieName
	}
	if authCookieName == "" {
		authCookieName = common.AuthCookieName
	}
	return &Extractor{
		sessions:          sessions,
		tokens:            tokens,
		sessionCookieName: sessionCookieName,
		authCookieName:    authCookieName,
		logger:            logger.With("module", "credentials"),
	}
}

// Extract never fails: anything short of a valid credential yields the
// anonymous principal together with the reason.
func (e *Extractor) Extract(r *http.Request) Result {
	ctx := r.Context()
	var sessionErr error

	if id := cookieValue(r, e.sessionCookieName); id != "" && e.sessions != nil {
		p, err := e.sessions.Resolve(ctx, id)
		if err == nil && p.IsAuthenticated() {
			return Result{Principal: p}
		}
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			e.logger.Warn(ctx, "session lookup failed", "error", err)
			sessionErr = err
		}
	}

	raw := cookieValue(r, e.authCookieName)
	if raw == "" {
		raw = bearerToken(r)
	}

	if raw == "" {
		if sessionErr != nil {
			return Result{Principal: models.Anonymous(), Reason: sessionErr}
		}
		return Result{Principal: models.Anonymous(), Reason: common.ErrCredentialAbsent}
	}

	claims, err := e.tokens.Verify(raw)
	if err != nil {
		return Result{Principal: models.Anonymous(), Reason: err}
	}

	return Result{Principal: models.Principal{
		ID:       claims.UserID,
		Username: claims.Username,
		Kind:     models.KindToken,
	}}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if header == "" {
		return ""
	}

	parts := strings.Fields(header)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != common.BearerScheme {
		return ""
	}
	return parts[1]
}
