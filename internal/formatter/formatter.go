// package formatter renders tracks, playlists and play history as plain text, CSV and Markdown,
// and strips markup from playlist descriptions.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/shared"
)

// Format names accepted by [Render].
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Sanitize returns the text content of an HTML fragment with whitespace collapsed.
//
// Playlist descriptions arrive as markup (links, entities); only their text is ever displayed.
func Sanitize(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return strings.Join(strings.Fields(markup), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// TracksToCSV converts tracks to CSV with columns: ID, Name, Artists, Album, Duration, URI
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, []string{
			track.ID,
			track.Name,
			track.ArtistNames(),
			track.Album.Name,
			shared.FormatDuration(track.DurationMS),
			track.URI,
		})
	}
	return writeCSV([]string{"ID", "Name", "Artists", "Album", "Duration", "URI"}, rows)
}

// TracksToText renders a numbered track listing.
func TracksToText(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	for i, track := range tracks {
		explicit := ""
		if track.Explicit {
			explicit = " [E]"
		}
		fmt.Fprintf(&buf, "%2d. %s - %s%s (%s)\n", i+1, track.ArtistNames(), track.Name, explicit,
			shared.FormatDuration(track.DurationMS))
	}
	return buf.Bytes(), nil
}

// TracksToMarkdown renders tracks as a Markdown table.
func TracksToMarkdown(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	if title != "" {
		fmt.Fprintf(&buf, "# %s\n\n", title)
	}
	buf.WriteString("| # | Track | Artists | Album | Duration |\n")
	buf.WriteString("|---|-------|---------|-------|----------|\n")
	for i, track := range tracks {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n", i+1, escapeCell(track.Name), escapeCell(track.ArtistNames()),
			escapeCell(track.Album.Name), shared.FormatDuration(track.DurationMS))
	}
	return buf.Bytes(), nil
}

// PlaylistsToText renders playlists with their sanitized descriptions.
func PlaylistsToText(title string, playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	if title != "" {
		fmt.Fprintf(&buf, "%s\n\n", title)
	}
	for i, playlist := range playlists {
		fmt.Fprintf(&buf, "%2d. %s (%d tracks)\n", i+1, playlist.Name, playlist.Tracks.Total)
		if desc := Sanitize(playlist.Description); desc != "" {
			fmt.Fprintf(&buf, "    %s\n", desc)
		}
		fmt.Fprintf(&buf, "    %s\n", playlist.URI)
	}
	return buf.Bytes(), nil
}

// PlaylistsToCSV converts playlists to CSV with columns: ID, Name, Description, Tracks, URI
func PlaylistsToCSV(playlists []models.Playlist) ([]byte, error) {
	rows := make([][]string, 0, len(playlists))
	for _, playlist := range playlists {
		rows = append(rows, []string{
			playlist.ID,
			playlist.Name,
			Sanitize(playlist.Description),
			fmt.Sprint(playlist.Tracks.Total),
			playlist.URI,
		})
	}
	return writeCSV([]string{"ID", "Name", "Description", "Tracks", "URI"}, rows)
}

// HistoryToText renders play records newest first, one per line.
func HistoryToText(records []*models.PlayRecord) ([]byte, error) {
	var buf bytes.Buffer
	for _, record := range records {
		fmt.Fprintf(&buf, "%s  %s - %s\n", record.PlayedAt().Local().Format(time.DateTime), record.Artists(), record.Name())
	}
	return buf.Bytes(), nil
}

// HistoryToCSV converts play records to CSV with columns: PlayedAt, TrackID, Name, Artists, Album, URI
func HistoryToCSV(records []*models.PlayRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.PlayedAt().UTC().Format(time.RFC3339),
			record.TrackID(),
			record.Name(),
			record.Artists(),
			record.Album(),
			record.TrackURI(),
		})
	}
	return writeCSV([]string{"PlayedAt", "TrackID", "Name", "Artists", "Album", "URI"}, rows)
}

// RenderTracks renders tracks in the named format.
func RenderTracks(format, title string, tracks []models.Track) ([]byte, error) {
	switch format {
	case "", FormatText:
		return TracksToText(tracks)
	case FormatCSV:
		return TracksToCSV(tracks)
	case FormatMarkdown:
		return TracksToMarkdown(title, tracks)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteFile writes rendered output to path, creating parent directories and truncating an existing file.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
