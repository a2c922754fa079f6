// package models defines the data model for the tunedeck player
package models

import (
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error        // Create inserts a new model into the database
	Get(id string) (T, error)    // Get retrieves a model by its ID
	Delete(id string) error      // Delete removes a model from the database by its ID
	List(limit int) ([]T, error) // List retrieves the most recent models, newest first
}

// Image represents an artwork resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist represents a credited artist on a track.
type Artist struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album represents the parent album of a track.
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
	URI    string  `json:"uri"`
}

// Track is an immutable snapshot of a catalog track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	URI        string   `json:"uri"`
	Explicit   bool     `json:"explicit"`
}

// ArtistNames joins the artist names with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Artwork returns the first album image URL, or an empty string.
func (t Track) Artwork() string {
	return firstImage(t.Album.Images)
}

// PlaylistTracks is the track reference embedded in a playlist object.
type PlaylistTracks struct {
	Href  string `json:"href"`
	Total int    `json:"total"`
}

// Playlist is an immutable snapshot of a playlist.
//
// Description may contain markup and must be sanitized before display.
type Playlist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Images      []Image        `json:"images"`
	URI         string         `json:"uri"`
	Tracks      PlaylistTracks `json:"tracks"`
}

// Artwork returns the first playlist image URL, or an empty string.
func (p Playlist) Artwork() string {
	return firstImage(p.Images)
}

// TrackWindow is the queue context around the current track.
type TrackWindow struct {
	CurrentTrack   Track   `json:"current_track"`
	PreviousTracks []Track `json:"previous_tracks"`
	NextTracks     []Track `json:"next_tracks"`
}

// PlaybackState mirrors the state pushed by the embedded player.
//
// Position and Duration are in milliseconds.
type PlaybackState struct {
	TrackWindow TrackWindow `json:"track_window"`
	Duration    int         `json:"duration"`
	Position    int         `json:"position"`
	Paused      bool        `json:"paused"`
}

// CurrentTrack returns the current track, or nil when s is nil or carries no track.
func (s *PlaybackState) CurrentTrack() *Track {
	if s == nil || s.TrackWindow.CurrentTrack.ID == "" {
		return nil
	}
	return &s.TrackWindow.CurrentTrack
}

// Playing reports whether s is non-nil and not paused.
func (s *PlaybackState) Playing() bool {
	return s != nil && !s.Paused
}

func firstImage(images []Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
