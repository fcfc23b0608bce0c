package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mediabucket/mbx/internal/api"
	"github.com/mediabucket/mbx/internal/sessions"
	"github.com/mediabucket/mbx/internal/shared"
	"github.com/mediabucket/mbx/internal/uploader"
)

func main() {
	logger := shared.NewLogger(nil)
	if os.Getenv("MBX_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var store *sessions.SQLiteStore
	if config.Sessions.Path != "" {
		if db, err := shared.NewDatabase(config.Sessions.Path); err != nil {
			logger.Warn("session store unavailable, sessions will not persist", "error", err)
		} else if s, err := sessions.NewSQLiteStore(db); err != nil {
			logger.Warn("session store unavailable, sessions will not persist", "error", err)
		} else {
			store = s
		}
	}

	client := api.NewClient(config.API.BaseURL, nil, config.API.RequestsPerSec, logger)

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Client:   client,
		Sessions: sessions.NewManager(store),
		Pipeline: uploader.New(client, config.Upload, logger),
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "mbx",
		Usage:    "Browse, search and upload to media bucket servers",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Fatalf("%v", err)
		}
		logger.Fatalf("application error: %v", err)
	}
}
