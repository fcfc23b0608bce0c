package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mediabucket/mbx/internal/api"
	"github.com/mediabucket/mbx/internal/models"
	"github.com/mediabucket/mbx/internal/sessions"
	"github.com/mediabucket/mbx/internal/shared"
	"github.com/mediabucket/mbx/internal/ui"
	"github.com/mediabucket/mbx/internal/uploader"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	client   *api.Client
	sessions *sessions.Manager
	pipeline *uploader.Pipeline
	logger   *log.Logger
	output   io.Writer
	styles   *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Client   *api.Client
	Sessions *sessions.Manager
	Pipeline *uploader.Pipeline
	Logger   *log.Logger
	Output   io.Writer
	Styles   *ui.Palette
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Sessions == nil {
		opts.Sessions = sessions.NewManager(nil)
	}
	if opts.Styles == nil {
		opts.Styles = ui.DefaultPalette()
	}
	if opts.Client == nil {
		opts.Client = api.NewClient(opts.Config.API.BaseURL, nil, opts.Config.API.RequestsPerSec, opts.Logger)
	}
	if opts.Pipeline == nil {
		opts.Pipeline = uploader.New(opts.Client, opts.Config.Upload, opts.Logger)
	}

	return &Runner{
		config:   opts.Config,
		client:   opts.Client,
		sessions: opts.Sessions,
		pipeline: opts.Pipeline,
		logger:   opts.Logger,
		output:   opts.Output,
		styles:   opts.Styles,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, bucketCommand, authCommand, searchCommand, postCommand, tagCommand, uploadCommand, statsCommand, playlistCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireAuth loads the stored session for a bucket, failing when the user
// never logged in or the session expired.
func (r *Runner) requireAuth(bucketID int64) (*models.Auth, error) {
	auth, err := r.sessions.Load(bucketID)
	if err != nil {
		return nil, err
	}
	if auth == nil {
		return nil, fmt.Errorf("%w: run 'mbx auth login --bucket %d' first", shared.ErrNotAuthenticated, bucketID)
	}
	return auth, nil
}

// buildQuery assembles a search query from the shared filter flags.
func (r *Runner) buildQuery(ctx context.Context, auth *models.Auth, cmd *cli.Command) (models.PostSearchQuery, error) {
	query := models.EmptySearchQuery()

	for _, tagID := range cmd.Int64Slice("tag") {
		tag, err := r.client.GetTagByID(ctx, *auth, tagID)
		if err != nil {
			return query, fmt.Errorf("failed to resolve tag %d: %w", tagID, err)
		}
		query = query.AddTag(tag.Tag)
	}
	for _, text := range cmd.StringSlice("text") {
		query = query.AddText(text)
	}

	if orderFlag := cmd.String("order"); orderFlag != "" {
		order, err := models.ParseSearchOrder(orderFlag)
		if err != nil {
			return query, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		query = query.SetOrder(order)
	}

	return query, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("%s\n", r.styles.Title(title))
}
