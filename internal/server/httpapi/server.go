// Package httpapi is the HTTP surface of postgate: the posts routes behind
// the credential extractor, login and logout, health, and the static client.
package httpapi

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/postgate/internal/logging"
	"github.com/dmitrijs2005/postgate/internal/server/config"
	"github.com/dmitrijs2005/postgate/internal/server/credentials"
	"github.com/dmitrijs2005/postgate/internal/server/models"
	"github.com/dmitrijs2005/postgate/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	requestBodyLimit = "1M"
	apiPrefix        = "/v1/api"
	healthPath       = "/health"

	loginRate  = 5
	loginBurst = 10
)

// PostGate is the post service as the HTTP layer uses it.
type PostGate interface {
	List(ctx context.Context) ([]*models.Post, error)
	Create(ctx context.Context, p models.Principal, in services.PostInput) (*models.Post, error)
	Update(ctx context.Context, p models.Principal, id string, in services.PostInput) (*models.Post, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}

// Accounts logs users in and out.
type Accounts interface {
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Dependencies struct {
	Config    *config.Config
	Logger    logging.Logger
	Posts     PostGate
	Accounts  Accounts
	Extractor *credentials.Extractor
	DB        Pinger

	// TracerProvider defaults to the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider
}

type Server struct {
	echo   *echo.Echo
	deps   *Dependencies
	logger logging.Logger
}

func NewServer(deps *Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		deps:   deps,
		logger: deps.Logger.With("module", "http"),
	}

	e.HTTPErrorHandler = s.handleHTTPError

	e.Use(middleware.RequestID())
	e.Use(tracing(deps.TracerProvider))
	e.Use(s.requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(requestBodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{deps.Config.ClientURL},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	if dir := deps.Config.StaticDir; dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
				Root:    dir,
				HTML5:   true,
				Skipper: skipAPI,
			}))
		}
	}

	e.GET(healthPath, s.health)

	if docs, err := apiDocs(deps.Config.SessionCookieName, deps.Config.AuthCookieName); err != nil {
		s.logger.Error(context.Background(), "api docs disabled", "error", err)
	} else {
		e.GET(docsPath, echo.WrapHandler(docs.Handler()))
	}

	api := e.Group(apiPrefix)
	api.Use(deps.Extractor.Middleware())

	api.GET("/posts", s.listPosts)
	api.POST("/posts", s.createPost)
	api.PUT("/posts/:id", s.updatePost)
	api.DELETE("/posts/:id", s.deletePost)

	loginLimiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(loginRate),
			Burst:     loginBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return respondMsg(c, http.StatusTooManyRequests, msgTooManyRequests)
		},
	})

	api.POST("/users/login", s.login, loginLimiter)
	api.POST("/users/logout", s.logout)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func skipAPI(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, apiPrefix) || p == healthPath || p == docsPath
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			ctx := c.Request().Context()
			if v.Error != nil {
				s.logger.Warn(ctx, "request", append(args, "error", v.Error.Error())...)
				return nil
			}
			s.logger.Info(ctx, "request", args...)
			return nil
		},
	})
}
