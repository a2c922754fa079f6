package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunedeck/internal/app"
	"github.com/desertthunder/tunedeck/internal/formatter"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search looks up tracks matching the words given as arguments.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	r.logger.Debug("searching tracks", "query", query)
	tracks, err := r.client().SearchTracks(ctx, query)
	if err != nil {
		return err
	}

	if len(tracks) == 0 && !cmd.Bool("json") {
		return r.writePlain("%s\n", app.Describe(app.ErrEmptyResult))
	}

	return r.emit(cmd, tracks, func(format string) ([]byte, error) {
		return formatter.RenderTracks(format, fmt.Sprintf("Results for %q", query), tracks)
	})
}

// BrowseFeatured lists the featured playlists.
func (r *Runner) BrowseFeatured(ctx context.Context, cmd *cli.Command) error {
	featured, err := r.client().FeaturedPlaylists(ctx)
	if err != nil {
		return err
	}

	title := featured.Message
	if title == "" {
		title = "Featured playlists"
	}
	return r.emit(cmd, featured, func(format string) ([]byte, error) {
		return renderPlaylists(format, title, featured.Playlists)
	})
}

// BrowseCategory lists the playlists of one browse category.
func (r *Runner) BrowseCategory(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: category id is required", shared.ErrMissingArgument)
	}

	playlists, err := r.client().CategoryPlaylists(ctx, id)
	if err != nil {
		return err
	}

	title := id
	for _, c := range app.MusicCategories {
		if c.ID == id {
			title = c.Name
		}
	}
	return r.emit(cmd, playlists, func(format string) ([]byte, error) {
		return renderPlaylists(format, title, playlists)
	})
}

// Save adds a track to the user's library.
func (r *Runner) Save(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("track-id"))
	if id == "" {
		return fmt.Errorf("%w: track id is required", shared.ErrMissingArgument)
	}
	id = strings.TrimPrefix(id, "spotify:track:")

	if err := r.client().SaveTrack(ctx, id); err != nil {
		return err
	}
	r.logger.Info("track saved", "id", id)
	return r.writePlain("✓ Added to your library\n")
}

func renderPlaylists(format, title string, playlists []models.Playlist) ([]byte, error) {
	switch format {
	case "", formatter.FormatText:
		return formatter.PlaylistsToText(title, playlists)
	case formatter.FormatCSV:
		return formatter.PlaylistsToCSV(playlists)
	}
	return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
}
