// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles account and session operations.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "google",
				Usage:  "Sign in with Google using OAuth2",
				Action: r.AuthGoogle,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:    "whoami",
				Aliases: []string{"status"},
				Usage:   "Show the current session state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
		},
	}
}

// artifactsCommand handles collection browsing and curation.
func artifactsCommand(r *Runner) *cli.Command {
	outputFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}

	draftFlags := []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Artifact name"},
		&cli.StringFlag{Name: "image", Usage: "Image URL"},
		&cli.StringFlag{Name: "type", Usage: "Artifact type"},
		&cli.StringFlag{Name: "context", Usage: "Historical context"},
		&cli.StringFlag{Name: "created", Usage: "Creation era, e.g. '100 BC'"},
		&cli.StringFlag{Name: "discovered", Usage: "Discovery date"},
		&cli.StringFlag{Name: "discovered-by", Usage: "Discoverer"},
		&cli.StringFlag{Name: "location", Usage: "Present location"},
	}

	return &cli.Command{
		Name:    "artifacts",
		Aliases: []string{"art"},
		Usage:   "Browse and curate the artifact collection",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all artifacts",
				Flags:  outputFlags,
				Action: r.ArtifactsList,
			},
			{
				Name:  "search",
				Usage: "Search artifacts by name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "term"},
				},
				Flags:  outputFlags,
				Action: r.ArtifactsSearch,
			},
			{
				Name:  "get",
				Usage: "Show a single artifact",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags,
				Action: r.ArtifactsGet,
			},
			{
				Name:   "add",
				Usage:  "Add an artifact to the collection",
				Flags:  draftFlags,
				Action: r.ArtifactsAdd,
			},
			{
				Name:  "update",
				Usage: "Update an artifact you own",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  draftFlags,
				Action: r.ArtifactsUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete an artifact you own",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ArtifactsDelete,
			},
			{
				Name:  "like",
				Usage: "Like an artifact",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ArtifactsLike,
			},
			{
				Name:   "mine",
				Usage:  "List artifacts you added",
				Flags:  outputFlags,
				Action: r.ArtifactsMine,
			},
			{
				Name:   "liked",
				Usage:  "List artifacts you liked",
				Flags:  outputFlags,
				Action: r.ArtifactsLiked,
			},
			{
				Name:  "top",
				Usage: "List the most liked artifacts",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of artifacts to return",
						Value: 6,
					},
				}, outputFlags...),
				Action: r.ArtifactsTop,
			},
		},
	}
}

// syncCommand handles local cache synchronization.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Synchronize the remote collection into the local cache",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a full sync against the artifact API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "details",
						Usage: "Refetch each artifact individually for full like membership",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Detail fetches per second",
						Value: 5,
					},
				},
				Action: r.SyncRun,
			},
			{
				Name:   "status",
				Usage:  "Show the most recent sync run",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.toml"}},
				Action: r.SyncStatus,
			},
		},
	}
}

// exportCommand handles exporting the collection to files.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export artifacts to CSV or Markdown",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file base path (no extension)",
				Value:   "artifacts",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format: csv, markdown, or text",
				Value: "csv",
			},
		},
		Action: r.Export,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing the collection",
		Action:  r.TUI,
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
