// submodule cmd contains command definitions
package main

import (
	"context"
	"os"
	"time"

	"github.com/desertthunder/tunedeck/internal/formatter"
	"github.com/desertthunder/tunedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

// command builds the root command. Configuration, environment and the session token are resolved before any action runs.
func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:    "tunedeck",
		Usage:   "Browse and play Spotify from the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Spotify access token (skips login for one-shot commands)",
				Sources: cli.EnvVars(shared.EnvToken),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}

// configure resolves the configuration and seeds the session from --token before a command runs.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := shared.LoadEnv(); err != nil {
		r.logger.Warn("failed to load .env", "error", err)
	}

	r.configPath = cmd.String("config")
	config, err := shared.ResolveConfig(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config

	level := config.Log.Level
	if cmd.Bool("debug") {
		level = "debug"
	}
	shared.SetLogLevel(r.logger, level)
	r.logger.Debug("configuration loaded", "path", r.configPath)

	// .env is loaded after flag parsing, so its token is read here.
	token := cmd.String("token")
	if token == "" {
		token = os.Getenv(shared.EnvToken)
	}
	if token != "" {
		r.credential.Set(token)
	}
	return ctx, nil
}

func outputFlags(formats string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (" + formats + ")",
			Value:   formatter.FormatText,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to a file instead of stdout",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the database",
		Action: r.Setup,
	}
}

// authCommand handles login operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify login",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with Spotify in the browser and print the access token",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser redirect",
						Value: 2 * time.Minute,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "url",
				Usage:  "Print the authorization URL",
				Action: r.AuthURL,
			},
			{
				Name:   "status",
				Usage:  "Show the account behind the current token",
				Action: r.AuthStatus,
			},
		},
	}
}

// playCommand returns the top-level TUI command.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "play",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive player",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Do not open the player page automatically",
			},
		},
		Action: r.Play,
	}
}

// searchCommand handles track search
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search for tracks",
		ArgsUsage: "<query>",
		Flags:     outputFlags("text, csv, markdown"),
		Action:    r.Search,
	}
}

// browseCommand handles playlist browsing
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse featured and category playlists",
		Commands: []*cli.Command{
			{
				Name:   "featured",
				Usage:  "List featured playlists",
				Flags:  outputFlags("text, csv"),
				Action: r.BrowseFeatured,
			},
			{
				Name:  "category",
				Usage: "List the playlists of a browse category (e.g. pop, hiphop, latin)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags("text, csv"),
				Action: r.BrowseCategory,
			},
		},
	}
}

// saveCommand adds a track to the library
func saveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save a track to your library",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "track-id"},
		},
		Action: r.Save,
	}
}

// historyCommand lists or clears the local play history
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show tracks played in the interactive player",
		Flags: append(outputFlags("text, csv"),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of entries (0 for all)",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Delete the play history",
			},
		),
		Action: r.History,
	}
}
