package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/mediabucket/mbx/internal/sessions"
	"github.com/mediabucket/mbx/internal/shared"
)

// SetupConfig writes a config.toml template at the given path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("wrote configuration template", "path", path)
	return r.writePlain("%s Created %s, edit it to point at your server\n", r.styles.OK("✓"), path)
}

// SetupDatabase initializes the local session database.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		path = r.config.Sessions.Path
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := sessions.NewSQLiteStore(db); err != nil {
		return err
	}

	r.logger.Info("session database ready", "path", path)
	return r.writePlain("%s Session database initialized at %s\n", r.styles.OK("✓"), path)
}
