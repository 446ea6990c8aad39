package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/postgate/internal/cli"
	"github.com/dmitrijs2005/postgate/internal/dbx"
	"github.com/dmitrijs2005/postgate/internal/logging"
	"github.com/dmitrijs2005/postgate/internal/server/auth"
	"github.com/dmitrijs2005/postgate/internal/server/config"
	"github.com/dmitrijs2005/postgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/postgate/internal/server/services"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if !strings.EqualFold(os.Getenv("NODE_ENV"), "production") {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, "text")

	db, err := dbx.Open(ctx, cfg.DatabaseDSN, 5*time.Second)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	codec := auth.NewCodec(cfg.SecretKey, cfg.TokenValidityDuration)
	users := services.NewUserService(db, rm, nil, codec, logger)

	app := cli.NewApp(os.Stdin, os.Stdout, users, rm.Users(db), codec)
	return app.Run(ctx, os.Args[1:])
}
