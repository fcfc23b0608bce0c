// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// bucketFlag selects which bucket a command works against.
func bucketFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:     "bucket",
		Aliases:  []string{"b"},
		Usage:    "Bucket ID",
		Required: true,
	}
}

// filterFlags are the shared post search filters.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64SliceFlag{
			Name:  "tag",
			Usage: "Filter by tag ID (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "text",
			Usage: "Filter by free text (repeatable)",
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "Result order: newest, oldest, relevant or random",
			Value: "newest",
		},
	}
}

// bucketCommand handles bucket discovery
func bucketCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "bucket",
		Usage: "Bucket discovery and statistics",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List buckets available on the server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BucketList,
			},
			{
				Name:   "stats",
				Usage:  "Show file count and storage statistics for a bucket",
				Flags:  []cli.Flag{bucketFlag()},
				Action: r.BucketStats,
			},
		},
	}
}

// authCommand handles bucket session management
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage bucket sessions",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Open a session against a bucket",
				Flags: []cli.Flag{
					bucketFlag(),
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Bucket password (omit for unprotected buckets)",
					},
					&cli.BoolFlag{
						Name:  "private",
						Usage: "Do not persist the session to disk",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Drop the stored session for a bucket",
				Flags:  []cli.Flag{bucketFlag()},
				Action: r.AuthLogout,
			},
			{
				Name:   "sessions",
				Usage:  "List live sessions",
				Action: r.AuthSessions,
			},
		},
	}
}

// searchCommand runs filtered post searches
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search posts in a bucket",
		Flags: append([]cli.Flag{
			bucketFlag(),
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of result pages to load",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Re-fetch every loaded page before printing",
			},
		}, filterFlags()...),
		Action: r.SearchPosts,
	}
}

// postCommand handles single post operations
func postCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "post",
		Usage: "Inspect and edit posts",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show a post with its items",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					bucketFlag(),
					&cli.IntFlag{
						Name:  "item",
						Usage: "Resolve the item at this position, with its neighbours",
						Value: -1,
					},
				},
				Action: r.PostShow,
			},
			{
				Name:  "update",
				Usage: "Replace a post's metadata",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					bucketFlag(),
					&cli.StringFlag{Name: "title", Usage: "New title"},
					&cli.StringFlag{Name: "description", Usage: "New description"},
					&cli.StringFlag{Name: "source", Usage: "New source URL"},
					&cli.Int64SliceFlag{Name: "tag", Usage: "Tag ID to link (repeatable, replaces existing)"},
				},
				Action: r.PostUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a post",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{bucketFlag()},
				Action: r.PostDelete,
			},
		},
	}
}

// tagCommand handles tag management
func tagCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "Manage tags",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Find tags by name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  []cli.Flag{bucketFlag()},
				Action: r.TagSearch,
			},
			{
				Name:  "create",
				Usage: "Create a tag",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{bucketFlag()},
				Action: r.TagCreate,
			},
			{
				Name:  "remove",
				Usage: "Remove a tag",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{bucketFlag()},
				Action: r.TagRemove,
			},
		},
	}
}

// uploadCommand runs the upload pipeline
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload files as a new post",
		ArgsUsage: "FILE [FILE...]",
		Flags: []cli.Flag{
			bucketFlag(),
			&cli.StringFlag{
				Name:     "title",
				Usage:    "Post title",
				Required: true,
			},
			&cli.StringFlag{Name: "description", Usage: "Post description"},
			&cli.StringFlag{Name: "source", Usage: "Source URL"},
			&cli.BoolFlag{
				Name:  "flatten",
				Usage: "Create one post per file instead of one post with all files",
			},
			&cli.Int64SliceFlag{Name: "tag", Usage: "Tag ID to attach (repeatable)"},
		},
		Action: r.UploadRun,
	}
}

// statsCommand loads aggregate charts
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Post count statistics over time",
		Flags: append([]cli.Flag{
			bucketFlag(),
			&cli.StringFlag{
				Name:  "interval",
				Usage: "Bucketing interval: hour, day, week, month or year",
				Value: "day",
			},
		}, filterFlags()...),
		Action: r.StatsChart,
	}
}

// playlistCommand builds shareable playlist links
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "playlist",
		Usage:  "Print the m3u playlist URL for a search",
		Flags:  append([]cli.Flag{bucketFlag()}, filterFlags()...),
		Action: r.PlaylistURL,
	}
}

// setupCommand handles local configuration
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the local session database",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Database path (defaults to the configured one)",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
