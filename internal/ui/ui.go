package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunedeck/internal/app"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/services"
	"github.com/desertthunder/tunedeck/internal/shared"
	"golang.org/x/time/rate"
)

// View is a top-level view selected from the navigation tabs.
type View int

const (
	Home View = iota
	Search
	Library
	Create
)

var views = []View{Home, Search, Library, Create}

func (v View) String() string {
	switch v {
	case Home:
		return "Home"
	case Search:
		return "Search"
	case Library:
		return "Your Library"
	case Create:
		return "Create Playlist"
	default:
		return "Unknown"
	}
}

// HomeView is the sub-view of [Home].
type HomeView int

const (
	All HomeView = iota
	Music
)

func (h HomeView) String() string {
	if h == Music {
		return "Music"
	}
	return "All"
}

const (
	requestTimeout  = 10 * time.Second
	noteTimeout     = 3 * time.Second
	defaultSeek     = 10 * time.Second
	defaultRate     = 4
	historyLimit    = 50
	chromeHeight    = 9
	featuredHeading = "Featured playlists"
)

// Controller is the application surface the views drive.
type Controller interface {
	Authenticated() bool
	Logout()
	BeginSearch() uint64
	Search(ctx context.Context, gen uint64, query string) app.SearchResult
	Accept(r app.SearchResult) bool
	SelectTrack(ctx context.Context, track models.Track, list []models.Track) error
	SelectPlaylist(ctx context.Context, playlist models.Playlist) error
	AddToLibrary(ctx context.Context, trackID string) error
	Featured(ctx context.Context) (*services.FeaturedPlaylists, error)
	Music(ctx context.Context) []app.CategoryResult
	Profile(ctx context.Context) (*services.Profile, error)
	History(limit int) ([]*models.PlayRecord, error)
	TogglePlay(ctx context.Context) error
	NextTrack(ctx context.Context) error
	PreviousTrack(ctx context.Context) error
	SeekBy(ctx context.Context, ms int) error
	State() *models.PlaybackState
	Status() playback.Status
	Failure() *playback.SDKError
	Subscribe() <-chan playback.Notification
	Unsubscribe(ch <-chan playback.Notification)
}

// Options configures a [Model].
type Options struct {
	LoginURL       string        // LoginURL is shown and opened from the login view
	Open           shared.Opener // Open launches the login page; nil only prints the URL
	SeekStep       time.Duration // SeekStep is the distance of one seek key press
	SeeksPerSecond float64       // SeeksPerSecond caps how fast held seek keys repeat
	Now            func() time.Time
}

// Model represents the TUI application state.
type Model struct {
	ctx  context.Context
	ctrl Controller
	opts Options
	keys keyMap
	help help.Model

	width  int
	height int

	authed     bool
	view       View
	home       HomeView
	fullscreen bool

	input     textinput.Model
	results   list.Model
	tracks    []models.Track
	query     string
	searching bool
	empty     bool

	featured      list.Model
	featuredTitle string
	music         list.Model
	library       list.Model
	profile       *services.Profile

	notifications <-chan playback.Notification
	status        playback.Status
	state         *models.PlaybackState
	stateAt       time.Time
	failure       *playback.SDKError

	banner  string
	note    string
	noteSeq int

	seeks *rate.Limiter
}

// NewModel creates a new TUI model driving ctrl and subscribes to its player notifications.
func NewModel(ctx context.Context, ctrl Controller, opts Options) *Model {
	if opts.SeekStep <= 0 {
		opts.SeekStep = defaultSeek
	}
	if opts.SeeksPerSecond <= 0 {
		opts.SeeksPerSecond = defaultRate
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	input := textinput.New()
	input.Placeholder = "What do you want to listen to?"
	input.Prompt = "🔍 "
	input.CharLimit = 200

	m := &Model{
		ctx:           ctx,
		ctrl:          ctrl,
		opts:          opts,
		keys:          newKeyMap(),
		help:          help.New(),
		authed:        ctrl.Authenticated(),
		input:         input,
		results:       newList("Songs", nil, 0, 0),
		featured:      newList(featuredHeading, nil, 0, 0),
		featuredTitle: featuredHeading,
		music:         newList("Music", nil, 0, 0),
		library:       newList(Library.String(), nil, 0, 0),
		notifications: ctrl.Subscribe(),
		status:        ctrl.Status(),
		state:         ctrl.State(),
		stateAt:       opts.Now(),
		seeks:         rate.NewLimiter(rate.Limit(opts.SeeksPerSecond), 1),
	}
	if failure := ctrl.Failure(); failure != nil {
		m.failure = failure
		m.banner = app.Describe(failure)
	}
	return m
}

// Init starts listening for player notifications and loads the home view when logged in.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForNotification(), tick()}
	if m.authed {
		cmds = append(cmds, m.loadHome())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tickMsg:
		return m, m.onTick()

	case notificationMsg:
		if msg.closed {
			return m, nil
		}
		m.applyNotification(msg.notification)
		return m, m.waitForNotification()

	case searchMsg:
		return m, m.applySearch(msg.result)

	case featuredMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		if msg.featured.Message != "" {
			m.featuredTitle = msg.featured.Message
		}
		m.featured = newList(m.featuredTitle, playlistItems(msg.featured.Playlists, ""), m.listWidth(), m.listHeight())
		return m, nil

	case musicMsg:
		var items []list.Item
		var err error
		for _, r := range msg.results {
			if r.Err != nil {
				err = errors.Join(err, r.Err)
				continue
			}
			items = append(items, playlistItems(r.Playlists, r.Category.Name)...)
		}
		m.music = newList(Music.String(), items, m.listWidth(), m.listHeight())
		if err != nil {
			return m, m.fail(err)
		}
		return m, nil

	case historyMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.library = newList(Library.String(), recordItems(msg.records), m.listWidth(), m.listHeight())
		return m, nil

	case profileMsg:
		if msg.err == nil {
			m.profile = msg.profile
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		if msg.note != "" {
			m.banner = ""
			return m, m.notify(msg.note)
		}
		return m, nil

	case clearNoteMsg:
		if msg.seq == m.noteSeq {
			m.note = ""
		}
		return m, nil
	}

	return m.updateActive(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if !m.authed {
		return m.renderLogin()
	}
	if m.fullscreen {
		return m.renderPlayer()
	}
	return m.renderMain()
}

// Close releases the notification subscription.
func (m *Model) Close() {
	if m.notifications != nil {
		m.ctrl.Unsubscribe(m.notifications)
		m.notifications = nil
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.input.Width = max(width-8, 10)
	for _, l := range []*list.Model{&m.results, &m.featured, &m.music, &m.library} {
		l.SetSize(m.listWidth(), m.listHeight())
	}
}

func (m *Model) listWidth() int  { return max(m.width-4, 0) }
func (m *Model) listHeight() int { return max(m.height-chromeHeight, 0) }

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	if !m.authed {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, m.quit()
		case key.Matches(msg, m.keys.login):
			return m, m.openLogin()
		}
		return m, nil
	}

	if m.input.Focused() {
		return m.handleInputKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.fullscreen = false
		return m, nil
	case key.Matches(msg, m.keys.player):
		m.fullscreen = !m.fullscreen
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.transport(m.ctrl.TogglePlay)
	case key.Matches(msg, m.keys.next):
		return m, m.transport(m.ctrl.NextTrack)
	case key.Matches(msg, m.keys.previous):
		return m, m.transport(m.ctrl.PreviousTrack)
	case key.Matches(msg, m.keys.rewind):
		return m, m.seek(-m.opts.SeekStep)
	case key.Matches(msg, m.keys.forward):
		return m, m.seek(m.opts.SeekStep)
	case key.Matches(msg, m.keys.logout):
		m.ctrl.Logout()
		m.signedOut()
		return m, nil
	}

	if m.fullscreen {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.nextView):
		return m, m.switchView(views[(int(m.view)+1)%len(views)])
	case key.Matches(msg, m.keys.prevView):
		return m, m.switchView(views[(int(m.view)+len(views)-1)%len(views)])
	case key.Matches(msg, m.keys.home):
		return m, m.switchView(Home)
	case key.Matches(msg, m.keys.find):
		return m, m.switchView(Search)
	case key.Matches(msg, m.keys.library):
		return m, m.switchView(Library)
	case key.Matches(msg, m.keys.create):
		return m, m.switchView(Create)
	case key.Matches(msg, m.keys.search):
		m.view = Search
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.enter):
		return m, m.selectItem()
	case m.view == Home && key.Matches(msg, m.keys.all):
		m.home = All
		return m, nil
	case m.view == Home && key.Matches(msg, m.keys.music):
		m.home = Music
		return m, nil
	case m.view == Search && key.Matches(msg, m.keys.save):
		return m, m.saveSelected()
	}

	return m.updateActive(msg)
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.input.Blur()
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		m.searching = true
		return m, m.runSearch(query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if l := m.activeList(); l != nil {
		*l, cmd = l.Update(msg)
	}
	return m, cmd
}

func (m *Model) activeList() *list.Model {
	switch m.view {
	case Home:
		if m.home == Music {
			return &m.music
		}
		return &m.featured
	case Search:
		return &m.results
	case Library:
		return &m.library
	default:
		return nil
	}
}

func (m *Model) switchView(v View) tea.Cmd {
	m.view = v
	if v == Library {
		return m.loadHistory()
	}
	return nil
}

func (m *Model) refresh() tea.Cmd {
	switch m.view {
	case Home:
		return m.loadHome()
	case Search:
		if m.query == "" {
			return nil
		}
		m.searching = true
		return m.runSearch(m.query)
	case Library:
		return m.loadHistory()
	}
	return nil
}

func (m *Model) selectItem() tea.Cmd {
	l := m.activeList()
	if l == nil {
		return nil
	}

	switch item := l.SelectedItem().(type) {
	case trackItem:
		return m.action("", func(ctx context.Context) error {
			return m.ctrl.SelectTrack(ctx, item.track, m.tracks)
		})
	case playlistItem:
		return m.action("", func(ctx context.Context) error {
			return m.ctrl.SelectPlaylist(ctx, item.playlist)
		})
	case recordItem:
		queue := make([]models.Track, 0, len(m.library.Items()))
		for _, it := range m.library.Items() {
			if r, ok := it.(recordItem); ok {
				queue = append(queue, r.track())
			}
		}
		return m.action("", func(ctx context.Context) error {
			return m.ctrl.SelectTrack(ctx, item.track(), queue)
		})
	}
	return nil
}

func (m *Model) saveSelected() tea.Cmd {
	item, ok := m.results.SelectedItem().(trackItem)
	if !ok {
		return nil
	}
	note := fmt.Sprintf("Added %q to your library", item.track.Name)
	return m.action(note, func(ctx context.Context) error {
		return m.ctrl.AddToLibrary(ctx, item.track.ID)
	})
}

// seek is throttled so a held key does not flood the player with commands.
func (m *Model) seek(delta time.Duration) tea.Cmd {
	if !m.seeks.Allow() {
		return nil
	}
	ms := int(delta.Milliseconds())
	return m.transport(func(ctx context.Context) error {
		return m.ctrl.SeekBy(ctx, ms)
	})
}

func (m *Model) transport(fn func(ctx context.Context) error) tea.Cmd {
	return m.action("", fn)
}

func (m *Model) applySearch(r app.SearchResult) tea.Cmd {
	if !m.ctrl.Accept(r) {
		return nil
	}
	m.searching = false
	m.query = r.Query

	switch {
	case errors.Is(r.Err, app.ErrEmptyResult):
		m.setTracks(nil)
		m.empty = true
		return nil
	case r.Err != nil:
		return m.fail(r.Err)
	}

	m.empty = false
	m.setTracks(r.Tracks)
	return nil
}

func (m *Model) setTracks(tracks []models.Track) {
	m.tracks = tracks
	m.results = newList("Songs", trackItems(tracks), m.listWidth(), m.listHeight())
}

func (m *Model) applyNotification(n playback.Notification) {
	m.status = n.Status
	m.state = n.State
	m.stateAt = m.opts.Now()

	switch {
	case n.Err != nil:
		m.failure = n.Err
		m.banner = app.Describe(n.Err)
	case n.Status == playback.Ready:
		m.failure = nil
		m.banner = ""
	}
}

func (m *Model) onTick() tea.Cmd {
	authed := m.ctrl.Authenticated()
	if authed == m.authed {
		return tick()
	}

	if !authed {
		m.signedOut()
		return tick()
	}

	m.authed = true
	m.banner = ""
	m.failure = nil
	return tea.Batch(tick(), m.loadHome())
}

func (m *Model) signedOut() {
	m.authed = false
	m.view = Home
	m.home = All
	m.fullscreen = false
	m.profile = nil
	m.state = nil
	m.query = ""
	m.input.SetValue("")
	m.setTracks(nil)
}

func (m *Model) fail(err error) tea.Cmd {
	m.banner = app.Describe(err)
	return nil
}

func (m *Model) notify(note string) tea.Cmd {
	m.noteSeq++
	m.note = note
	seq := m.noteSeq
	return tea.Tick(noteTimeout, func(time.Time) tea.Msg {
		return clearNoteMsg{seq: seq}
	})
}

func (m *Model) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

// position estimates the playback position from the last pushed state and the time since.
func (m *Model) position() int {
	if m.state == nil {
		return 0
	}
	pos := m.state.Position
	if !m.state.Paused {
		pos += int(m.opts.Now().Sub(m.stateAt).Milliseconds())
	}
	if m.state.Duration > 0 {
		pos = min(pos, m.state.Duration)
	}
	return max(pos, 0)
}

func (m *Model) connecting() bool {
	return m.authed && m.failure == nil && m.status != playback.Ready
}

func (m *Model) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, requestTimeout)
}
