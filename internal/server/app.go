// Package server wires postgate together: configuration, logging, storage,
// the session store, the HTTP gate and the gRPC health endpoint, and runs
// them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/postgate/internal/dbx"
	"github.com/dmitrijs2005/postgate/internal/logging"
	"github.com/dmitrijs2005/postgate/internal/server/auth"
	"github.com/dmitrijs2005/postgate/internal/server/config"
	"github.com/dmitrijs2005/postgate/internal/server/credentials"
	gs "github.com/dmitrijs2005/postgate/internal/server/grpc"
	"github.com/dmitrijs2005/postgate/internal/server/httpapi"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/postgate/internal/server/services"
	"github.com/dmitrijs2005/postgate/internal/server/sessions"
)

const dbOpenTimeout = 5 * time.Second

// Seams for tests.
var (
	openDB         = dbx.Open
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *sessions.Manager
	http     *httpapi.Server
	grpc     *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := openDB(ctx, c.DatabaseDSN, dbOpenTimeout)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var store sessions.Store
	switch c.SessionBackend {
	case config.SessionBackendMemory:
		store = sessions.NewMemoryStore()
	case config.SessionBackendPostgres, "":
		store = sessions.NewPostgresStore(rm.Sessions(db))
	default:
		db.Close()
		return nil, fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}

	codec := auth.NewCodec(c.SecretKey, c.TokenValidityDuration)
	manager := sessions.NewManager(store, sessions.NewSerializer(rm.Users(db)), c.SessionTTL, logger)
	extractor := credentials.NewExtractor(manager, codec, c.SessionCookieName, c.AuthCookieName, logger)

	httpServer := httpapi.NewServer(&httpapi.Dependencies{
		Config:    c,
		Logger:    logger,
		Posts:     services.NewPostService(db, rm, c, logger),
		Accounts:  services.NewUserService(db, rm, manager, codec, logger),
		Extractor: extractor,
		DB:        db,
	})

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		sessions: manager,
		http:     httpServer,
		grpc:     gs.NewGRPCServer(c.GRPCAddr, logger, db),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := app.http.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "HTTP shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := app.http.Start(app.config.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sessions.RunCleanup(ctx, app.config.SessionCleanupInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close failed", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
