package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tunedeck/internal/formatter"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/repositories"
	"github.com/desertthunder/tunedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

type historyEntry struct {
	PlayedAt time.Time `json:"played_at"`
	TrackID  string    `json:"track_id"`
	URI      string    `json:"uri"`
	Name     string    `json:"name"`
	Artists  string    `json:"artists"`
	Album    string    `json:"album"`
}

// History lists, or with --clear deletes, the tracks recorded by the interactive player.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewPlayHistoryRepository(db)

	if cmd.Bool("clear") {
		n, err := repo.Clear()
		if err != nil {
			return err
		}
		return r.writePlain("✓ Removed %d entries\n", n)
	}

	records, err := repo.List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if len(records) == 0 && !cmd.Bool("json") {
		return r.writePlain("Nothing played yet.\n")
	}

	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			PlayedAt: rec.PlayedAt(),
			TrackID:  rec.TrackID(),
			URI:      rec.TrackURI(),
			Name:     rec.Name(),
			Artists:  rec.Artists(),
			Album:    rec.Album(),
		})
	}

	return r.emit(cmd, entries, func(format string) ([]byte, error) {
		return renderHistory(format, records)
	})
}

func renderHistory(format string, records []*models.PlayRecord) ([]byte, error) {
	switch format {
	case "", formatter.FormatText:
		return formatter.HistoryToText(records)
	case formatter.FormatCSV:
		return formatter.HistoryToCSV(records)
	}
	return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
}
