// Spotify Web API client
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

type pagedTracks struct {
	Items []*models.Track `json:"items"`
	Total int             `json:"total"`
}

type pagedPlaylists struct {
	Items []*models.Playlist `json:"items"`
	Total int                `json:"total"`
}

type searchResponse struct {
	Tracks pagedTracks `json:"tracks"`
}

type featuredResponse struct {
	Message   string         `json:"message"`
	Playlists pagedPlaylists `json:"playlists"`
}

type categoryResponse struct {
	Playlists pagedPlaylists `json:"playlists"`
}

type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

type playOffset struct {
	Position int `json:"position"`
}

type playRequest struct {
	PositionMS int         `json:"position_ms"`
	ContextURI string      `json:"context_uri,omitempty"`
	URIs       []string    `json:"uris,omitempty"`
	Offset     *playOffset `json:"offset,omitempty"`
}

type saveTracksRequest struct {
	IDs []string `json:"ids"`
}

// Client issues authenticated requests to the Spotify Web API.
type Client struct {
	tokens     TokenSource
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a [Client] reading the credential from tokens on every request.
//
// baseURL defaults to [DefaultBaseURL] and httpClient to [http.DefaultClient].
func NewClient(tokens TokenSource, baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Client{
		tokens:     tokens,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// doRequest performs an authenticated HTTP request, encoding body and decoding into result when non-nil.
//
// No request is sent without a credential.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	token, ok := c.tokens.Current()
	if !ok {
		return shared.ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", "method", method, "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{Status: resp.StatusCode}
		var payload errorResponse
		if data, err := io.ReadAll(resp.Body); err == nil && json.Unmarshal(data, &payload) == nil {
			httpErr.Message = payload.Error.Message
		}
		c.logger.Warn("api request failed", "method", method, "endpoint", endpoint, "status", resp.StatusCode)
		return httpErr
	}

	if result == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SearchTracks searches the catalog for tracks matching query.
//
// A blank query returns no results without issuing a request.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprint(SearchLimit))

	var response searchResponse
	if err := c.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, t := range response.Tracks.Items {
		if t != nil {
			tracks = append(tracks, *t)
		}
	}
	return tracks, nil
}

// FeaturedPlaylists retrieves the editorially featured playlists.
func (c *Client) FeaturedPlaylists(ctx context.Context) (*FeaturedPlaylists, error) {
	endpoint := fmt.Sprintf("/browse/featured-playlists?limit=%d", PlaylistLimit)

	var response featuredResponse
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &FeaturedPlaylists{
		Message:   response.Message,
		Playlists: playlists(response.Playlists.Items),
	}, nil
}

// CategoryPlaylists retrieves the playlists of a browse category such as "pop".
func (c *Client) CategoryPlaylists(ctx context.Context, categoryID string) ([]models.Playlist, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, fmt.Errorf("%w: category id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/browse/categories/%s/playlists?limit=%d", url.PathEscape(categoryID), PlaylistLimit)

	var response categoryResponse
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return playlists(response.Playlists.Items), nil
}

// Play starts playback on deviceID.
//
// Success only means the command was accepted: the resulting state arrives later from the player.
func (c *Client) Play(ctx context.Context, deviceID string, opts PlayOptions) error {
	if deviceID == "" {
		return shared.ErrDeviceNotReady
	}

	body := playRequest{PositionMS: 0}
	switch {
	case opts.ContextURI != "":
		body.ContextURI = opts.ContextURI
	case len(opts.URIs) > 0:
		body.URIs = opts.URIs
		if opts.Offset != nil {
			body.Offset = &playOffset{Position: *opts.Offset}
		}
	default:
		return fmt.Errorf("%w: nothing to play", shared.ErrInvalidArgument)
	}

	endpoint := "/me/player/play?device_id=" + url.QueryEscape(deviceID)
	return c.doRequest(ctx, http.MethodPut, endpoint, body, nil)
}

// SaveTrack adds a track to the user's saved library.
func (c *Client) SaveTrack(ctx context.Context, trackID string) error {
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	return c.doRequest(ctx, http.MethodPut, "/me/tracks", saveTracksRequest{IDs: []string{trackID}}, nil)
}

// CurrentUser retrieves the profile of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*Profile, error) {
	if _, ok := c.tokens.Current(); !ok {
		return nil, shared.ErrNotAuthenticated
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	api := spotify.New(oauth2.NewClient(ctx, tokenSource{c.tokens}), spotify.WithBaseURL(c.baseURL+"/"))

	user, err := api.CurrentUser(ctx)
	if err != nil {
		var spotifyErr spotify.Error
		if errors.As(err, &spotifyErr) {
			return nil, &HTTPError{Status: spotifyErr.Status, Message: spotifyErr.Message}
		}
		var spotifyErrPtr *spotify.Error
		if errors.As(err, &spotifyErrPtr) {
			return nil, &HTTPError{Status: spotifyErrPtr.Status, Message: spotifyErrPtr.Message}
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return &Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
	}, nil
}

func playlists(items []*models.Playlist) []models.Playlist {
	result := make([]models.Playlist, 0, len(items))
	for _, p := range items {
		if p != nil && p.ID != "" {
			result = append(result, *p)
		}
	}
	return result
}

// tokenSource adapts a [TokenSource] to [oauth2.TokenSource].
type tokenSource struct {
	tokens TokenSource
}

func (t tokenSource) Token() (*oauth2.Token, error) {
	token, ok := t.tokens.Current()
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
