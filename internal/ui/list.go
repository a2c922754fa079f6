package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tunedeck/internal/formatter"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/shared"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
	_ list.Item = recordItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
	category string
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.Tracks.Total)
	if i.category != "" {
		desc = fmt.Sprintf("%s • %s", i.category, desc)
	}
	if text := formatter.Sanitize(i.playlist.Description); text != "" {
		desc = fmt.Sprintf("%s • %s", desc, text)
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string {
	if i.track.Explicit {
		return i.track.Name + " [E]"
	}
	return i.track.Name
}
func (i trackItem) Description() string {
	desc := i.track.ArtistNames()
	if i.track.Album.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album.Name)
	}
	return fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.track.DurationMS))
}

// recordItem wraps [models.PlayRecord] to implement [list.Item].
type recordItem struct {
	record *models.PlayRecord
}

func (i recordItem) FilterValue() string { return i.record.Name() }
func (i recordItem) Title() string       { return i.record.Name() }
func (i recordItem) Description() string {
	return fmt.Sprintf("%s • %s", i.record.Artists(), i.record.PlayedAt().Local().Format(time.DateTime))
}

// track rebuilds enough of a [models.Track] to start playback.
func (i recordItem) track() models.Track {
	return models.Track{
		ID:      i.record.TrackID(),
		URI:     i.record.TrackURI(),
		Name:    i.record.Name(),
		Artists: []models.Artist{{Name: i.record.Artists()}},
		Album:   models.Album{Name: i.record.Album()},
	}
}

func newList(title string, items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.Styles.Title = styles.activeTab
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

func playlistItems(playlists []models.Playlist, category string) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p, category: category}
	}
	return items
}

func recordItems(records []*models.PlayRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = recordItem{record: r}
	}
	return items
}
