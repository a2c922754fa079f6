package app

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/services"
	"github.com/desertthunder/tunedeck/internal/shared"
)

// MusicCategories are the browse categories shown on the Music home view.
var MusicCategories = []Category{
	{ID: "pop", Name: "Pop"},
	{ID: "hiphop", Name: "Hip-Hop"},
	{ID: "latin", Name: "Latin"},
}

// Category is a browse category.
type Category struct {
	ID   string
	Name string
}

// Catalog is the API surface used by the controller.
type Catalog interface {
	SearchTracks(ctx context.Context, query string) ([]models.Track, error)
	FeaturedPlaylists(ctx context.Context) (*services.FeaturedPlaylists, error)
	CategoryPlaylists(ctx context.Context, categoryID string) ([]models.Playlist, error)
	Play(ctx context.Context, deviceID string, opts services.PlayOptions) error
	SaveTrack(ctx context.Context, trackID string) error
	CurrentUser(ctx context.Context) (*services.Profile, error)
}

// Coordinator is the playback surface used by the controller.
type Coordinator interface {
	Start(ctx context.Context) error
	Stop()
	DeviceID() (string, bool)
	State() *models.PlaybackState
	Status() playback.Status
	Failure() *playback.SDKError
	TogglePlay(ctx context.Context) error
	NextTrack(ctx context.Context) error
	PreviousTrack(ctx context.Context) error
	Seek(ctx context.Context, positionMS int) error
	SeekBy(ctx context.Context, deltaMS int) error
	Subscribe() <-chan playback.Notification
	Unsubscribe(ch <-chan playback.Notification)
}

// Credential is the session capability used by the controller.
type Credential interface {
	Current() (string, bool)
	Set(token string)
	Clear()
	OnChange(fn func(authenticated bool))
}

// History records and lists played tracks.
type History interface {
	Record(track models.Track) (*models.PlayRecord, error)
	List(limit int) ([]*models.PlayRecord, error)
}

// SearchResult is the outcome of a single search.
type SearchResult struct {
	Generation uint64
	Query      string
	Tracks     []models.Track
	Err        error
}

// CategoryResult is the playlists of one browse category.
type CategoryResult struct {
	Category  Category
	Playlists []models.Playlist
	Err       error
}

// Controller dispatches user intents to the API client and the playback coordinator.
type Controller struct {
	catalog     Catalog
	coordinator Coordinator
	credential  Credential
	history     History
	logger      *log.Logger

	generation atomic.Uint64

	mu      sync.Mutex
	ctx     context.Context
	watcher <-chan playback.Notification
}

// New creates a [Controller]. history may be nil, in which case nothing is recorded.
func New(catalog Catalog, coordinator Coordinator, credential Credential, history History, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Controller{
		catalog:     catalog,
		coordinator: coordinator,
		credential:  credential,
		history:     history,
		logger:      logger,
	}
}

// Start connects the player when a credential exists and keeps the connection in step with the credential.
//
// Setting a credential starts the coordinator; clearing it stops the coordinator.
// Plays observed by the coordinator are recorded to history until ctx is done.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	c.credential.OnChange(func(authenticated bool) {
		if authenticated {
			if c.coordinator.Status().Active() {
				c.logger.Info("credential changed, reconnecting player")
				c.coordinator.Stop()
			}
			if err := c.coordinator.Start(c.context()); err != nil {
				c.logger.Warn("failed to start player", "error", err)
			}
			return
		}
		c.logger.Info("credential cleared, stopping player")
		c.coordinator.Stop()
	})

	if c.history != nil {
		ch := c.coordinator.Subscribe()
		c.mu.Lock()
		c.watcher = ch
		c.mu.Unlock()
		go c.record(ctx, ch)
	}

	if !c.Authenticated() {
		return nil
	}
	return c.coordinator.Start(ctx)
}

func (c *Controller) context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// record appends a play record whenever the mirrored current track changes.
func (c *Controller) record(ctx context.Context, ch <-chan playback.Notification) {
	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			if n.Event.Type != playback.EventStateChanged {
				continue
			}
			track := n.State.CurrentTrack()
			if track == nil || track.ID == last {
				continue
			}
			last = track.ID
			if _, err := c.history.Record(*track); err != nil {
				c.logger.Warn("failed to record play", "track", track.ID, "error", err)
			}
		}
	}
}

// Close stops the player and releases the history subscription.
func (c *Controller) Close() {
	c.coordinator.Stop()

	c.mu.Lock()
	watcher := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if watcher != nil {
		c.coordinator.Unsubscribe(watcher)
	}
}

// Authenticated reports whether a credential is stored.
func (c *Controller) Authenticated() bool {
	_, ok := c.credential.Current()
	return ok
}

// Logout clears the credential, which stops the player.
func (c *Controller) Logout() {
	c.credential.Clear()
}

// BeginSearch issues the generation of a new search, superseding every earlier one.
//
// Callers take it when the search is submitted so results are ordered by submission.
func (c *Controller) BeginSearch() uint64 {
	return c.generation.Add(1)
}

// Search runs a track search under gen, as returned by [Controller.BeginSearch].
//
// A blank query issues no request. Zero matches yield [ErrEmptyResult].
func (c *Controller) Search(ctx context.Context, gen uint64, query string) SearchResult {
	query = strings.TrimSpace(query)
	result := SearchResult{Generation: gen, Query: query}

	if query == "" {
		return result
	}

	tracks, err := c.catalog.SearchTracks(ctx, query)
	if err != nil {
		c.logger.Debug("search failed", "query", query, "error", err)
		result.Err = err
		return result
	}
	if len(tracks) == 0 {
		result.Err = ErrEmptyResult
		return result
	}

	result.Tracks = tracks
	return result
}

// Accept reports whether r belongs to the most recently issued search.
func (c *Controller) Accept(r SearchResult) bool {
	return r.Generation == c.generation.Load()
}

// SelectTrack plays track with every track of list as the play context, starting at track.
//
// When track is not part of list only track is played.
func (c *Controller) SelectTrack(ctx context.Context, track models.Track, list []models.Track) error {
	deviceID, ok := c.coordinator.DeviceID()
	if !ok {
		return shared.ErrDeviceNotReady
	}

	uris := make([]string, 0, len(list))
	offset := -1
	for i, t := range list {
		uris = append(uris, t.URI)
		if offset < 0 && sameTrack(t, track) {
			offset = i
		}
	}
	if offset < 0 {
		uris = []string{track.URI}
		offset = 0
	}

	c.logger.Debug("playing track", "track", track.ID, "offset", offset, "context", len(uris))
	return c.catalog.Play(ctx, deviceID, services.PlayOptions{URIs: uris, Offset: &offset})
}

// SelectPlaylist plays playlist as a context.
func (c *Controller) SelectPlaylist(ctx context.Context, playlist models.Playlist) error {
	deviceID, ok := c.coordinator.DeviceID()
	if !ok {
		return shared.ErrDeviceNotReady
	}

	c.logger.Debug("playing playlist", "playlist", playlist.ID)
	return c.catalog.Play(ctx, deviceID, services.PlayOptions{ContextURI: playlist.URI})
}

// AddToLibrary saves a track to the user's library.
func (c *Controller) AddToLibrary(ctx context.Context, trackID string) error {
	if err := c.catalog.SaveTrack(ctx, trackID); err != nil {
		c.logger.Debug("save track failed", "track", trackID, "status", services.StatusOf(err), "error", err)
		return err
	}
	return nil
}

// Featured loads the featured playlists for the All home view.
func (c *Controller) Featured(ctx context.Context) (*services.FeaturedPlaylists, error) {
	return c.catalog.FeaturedPlaylists(ctx)
}

// Category loads the playlists of one browse category.
func (c *Controller) Category(ctx context.Context, category Category) CategoryResult {
	playlists, err := c.catalog.CategoryPlaylists(ctx, category.ID)
	return CategoryResult{Category: category, Playlists: playlists, Err: err}
}

// Music loads every music category concurrently, in [MusicCategories] order.
func (c *Controller) Music(ctx context.Context) []CategoryResult {
	results := make([]CategoryResult, len(MusicCategories))
	var wg sync.WaitGroup
	for i, category := range MusicCategories {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Category(ctx, category)
		}()
	}
	wg.Wait()
	return results
}

// Profile loads the current user's profile.
func (c *Controller) Profile(ctx context.Context) (*services.Profile, error) {
	return c.catalog.CurrentUser(ctx)
}

// History lists up to limit played tracks, newest first.
func (c *Controller) History(limit int) ([]*models.PlayRecord, error) {
	if c.history == nil {
		return nil, nil
	}
	return c.history.List(limit)
}

func (c *Controller) TogglePlay(ctx context.Context) error    { return c.coordinator.TogglePlay(ctx) }
func (c *Controller) NextTrack(ctx context.Context) error     { return c.coordinator.NextTrack(ctx) }
func (c *Controller) PreviousTrack(ctx context.Context) error { return c.coordinator.PreviousTrack(ctx) }

// SeekBy moves playback relative to the current position.
func (c *Controller) SeekBy(ctx context.Context, ms int) error {
	return c.coordinator.SeekBy(ctx, ms)
}

// Seek moves playback to an absolute position in milliseconds.
func (c *Controller) Seek(ctx context.Context, ms int) error {
	return c.coordinator.Seek(ctx, ms)
}

// State returns the mirrored playback state, or nil.
func (c *Controller) State() *models.PlaybackState { return c.coordinator.State() }

// Status returns the player connection state.
func (c *Controller) Status() playback.Status { return c.coordinator.Status() }

// Failure returns the player error that is currently shown, if any.
func (c *Controller) Failure() *playback.SDKError { return c.coordinator.Failure() }

// Subscribe returns a channel of coordinator notifications for a view.
func (c *Controller) Subscribe() <-chan playback.Notification { return c.coordinator.Subscribe() }

// Unsubscribe releases a channel obtained from [Controller.Subscribe].
func (c *Controller) Unsubscribe(ch <-chan playback.Notification) { c.coordinator.Unsubscribe(ch) }

func sameTrack(a, b models.Track) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	return a.URI == b.URI
}
