package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/postgate/internal/server"
	"github.com/dmitrijs2005/postgate/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {
	if !strings.EqualFold(os.Getenv("NODE_ENV"), "production") {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("failed to load .env: %v", err)
		}
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
