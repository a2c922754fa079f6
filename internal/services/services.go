package services

import (
	"errors"
	"fmt"
	"net/http"
	"unicode"

	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/shared"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	SearchLimit   = 20
	PlaylistLimit = 10
)

// TokenSource returns the credential as it is right now.
type TokenSource interface {
	Current() (string, bool)
}

// HTTPError is returned for any non-2xx API response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", shared.ErrAPIRequest, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", shared.ErrAPIRequest, e.Status)
}

func (e *HTTPError) Unwrap() error { return shared.ErrAPIRequest }

// Unauthorized reports whether the response indicated a rejected credential.
func (e *HTTPError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// StatusOf returns the status of an [*HTTPError] wrapped in err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// FeaturedPlaylists is the response of the featured playlists endpoint.
type FeaturedPlaylists struct {
	Message   string
	Playlists []models.Playlist
}

// PlayOptions describes what a play command starts.
//
// ContextURI takes precedence over URIs. Offset is only sent with URIs.
type PlayOptions struct {
	ContextURI string
	URIs       []string
	Offset     *int
}

// Profile is the subset of the current user's profile shown in the UI.
type Profile struct {
	ID          string
	DisplayName string
	Email       string
	Country     string
	Product     string
}

// Premium reports whether the account can use the embedded player.
func (p *Profile) Premium() bool {
	return p != nil && p.Product == "premium"
}

// Initial returns the first letter of the display name, or "?".
func (p *Profile) Initial() string {
	if p == nil {
		return "?"
	}
	for _, name := range []string{p.DisplayName, p.ID} {
		for _, r := range name {
			return string(unicode.ToUpper(r))
		}
	}
	return "?"
}
