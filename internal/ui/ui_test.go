package ui

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunedeck/internal/app"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/services"
	"github.com/desertthunder/tunedeck/internal/session"
	tu "github.com/desertthunder/tunedeck/internal/testing"
)

const loginURL = "https://accounts.spotify.com/authorize?client_id=abc"

type fakeHistory struct {
	mu      sync.Mutex
	records []*models.PlayRecord
}

func (h *fakeHistory) Record(track models.Track) (*models.PlayRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := models.NewPlayRecord(track)
	h.records = append([]*models.PlayRecord{r}, h.records...)
	return r, nil
}

func (h *fakeHistory) List(limit int) ([]*models.PlayRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*models.PlayRecord(nil), h.records...), nil
}

type fixture struct {
	model       *Model
	controller  *app.Controller
	credential  *session.Credential
	coordinator *playback.Coordinator
	api         *tu.APIServer
	players     *[]*tu.FakePlayer
	history     *fakeHistory
	opened      []string
	clock       time.Time
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	credential := session.NewCredential(session.NewMemoryStore())
	if token != "" {
		credential.Set(token)
	}

	api := tu.NewAPIServer(t)
	client := services.NewClient(credential, api.URL, api.Client(), nil)
	players := &[]*tu.FakePlayer{}
	coordinator := playback.NewCoordinator(tu.FakeFactory(players, nil), credential, playback.Options{}, nil)
	history := &fakeHistory{}
	controller := app.New(client, coordinator, credential, history, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := controller.Start(ctx); err != nil {
		t.Fatalf("failed to start controller: %v", err)
	}
	t.Cleanup(controller.Close)

	f := &fixture{
		controller:  controller,
		credential:  credential,
		coordinator: coordinator,
		api:         api,
		players:     players,
		history:     history,
		clock:       time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.model = NewModel(ctx, controller, Options{
		LoginURL:       loginURL,
		Open:           func(url string) error { f.opened = append(f.opened, url); return nil },
		SeekStep:       10 * time.Second,
		SeeksPerSecond: 1,
		Now:            func() time.Time { return f.clock },
	})
	t.Cleanup(f.model.Close)
	f.model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return f
}

// run executes cmd and any batched commands, skipping those still blocked after a short wait.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	_, cmd := f.model.Update(msg)
	return cmd
}

// settle sends msg and feeds back every message its commands produce.
func (f *fixture) settle(msg tea.Msg) {
	for _, out := range run(f.send(msg)) {
		if _, ok := out.(tickMsg); ok {
			continue
		}
		f.send(out)
	}
}

func (f *fixture) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = f.send(keyMsg(k))
	}
	return cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func (f *fixture) ready(t *testing.T) {
	t.Helper()
	if len(*f.players) == 0 {
		t.Fatal("expected a player to be constructed")
	}
	(*f.players)[len(*f.players)-1].Emit(playback.Event{Type: playback.EventReady, DeviceID: "device-1"})

	deadline := time.Now().Add(2 * time.Second)
	for f.coordinator.Status() != playback.Ready {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the player")
		}
		time.Sleep(5 * time.Millisecond)
	}
	f.send(notificationMsg{notification: playback.Notification{Status: playback.Ready, DeviceID: "device-1"}})
}

func assertContains(t *testing.T, view string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(view, w) {
			t.Errorf("view missing %q:\n%s", w, view)
		}
	}
}

func assertNotContains(t *testing.T, view string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(view, u) {
			t.Errorf("view should not contain %q:\n%s", u, view)
		}
	}
}

func nowPlaying(paused bool, position int) playback.Notification {
	return playback.Notification{
		Status:   playback.Ready,
		DeviceID: "device-1",
		State: &models.PlaybackState{
			TrackWindow: models.TrackWindow{CurrentTrack: models.Track{
				ID:      "t1",
				Name:    "One More Time",
				Artists: []models.Artist{{Name: "Daft Punk"}},
				Album:   models.Album{Name: "Discovery"},
			}},
			Position: position,
			Duration: 320000,
			Paused:   paused,
		},
	}
}

func TestLogin(t *testing.T) {
	t.Run("Login View Until Authenticated", func(t *testing.T) {
		f := newFixture(t, "")
		assertContains(t, f.model.View(), "Log in with Spotify", loginURL)
		assertNotContains(t, f.model.View(), "Your Library")
	})

	t.Run("Enter Opens Login Page", func(t *testing.T) {
		f := newFixture(t, "")
		f.settle(keyMsg("enter"))
		if len(f.opened) != 1 || f.opened[0] != loginURL {
			t.Errorf("opened = %v", f.opened)
		}
		assertContains(t, f.model.View(), "Opened the login page")
	})

	t.Run("Tick Notices Login", func(t *testing.T) {
		f := newFixture(t, "")
		f.api.Respond(http.MethodGet, "/browse/featured-playlists", http.StatusOK, `{"message":"Editor's picks","playlists":{"items":[]}}`)

		f.credential.Set("tok")
		f.settle(tickMsg(f.clock))

		assertContains(t, f.model.View(), "Home", "Search", "Your Library", "Create Playlist", "Editor's picks")
		if f.coordinator.Status() != playback.Connecting {
			t.Errorf("expected login to start the player, got %s", f.coordinator.Status())
		}
	})

	t.Run("Logout Returns To Login", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.press("ctrl+l")

		if f.controller.Authenticated() {
			t.Error("expected credential to be cleared")
		}
		if f.coordinator.Status() != playback.Disconnected {
			t.Errorf("expected player to stop, got %s", f.coordinator.Status())
		}
		assertContains(t, f.model.View(), "Log in with Spotify")
	})

	t.Run("Auth Failure Forces Login", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.credential.Clear()
		f.send(tickMsg(f.clock))
		assertContains(t, f.model.View(), "Log in with Spotify")
	})
}

func TestHome(t *testing.T) {
	t.Run("Featured Descriptions Are Sanitized", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.api.Respond(http.MethodGet, "/browse/featured-playlists", http.StatusOK, `{
			"message": "Monday picks",
			"playlists": {"items": [{
				"id": "p1", "name": "Mood Booster", "uri": "spotify:playlist:p1",
				"description": "Get happy with <a href=\"spotify:user:x\">Daft</a> &amp; friends",
				"tracks": {"total": 75}
			}]}
		}`)

		f.settle(f.model.loadFeatured()())

		view := f.model.View()
		assertContains(t, view, "Monday picks", "Mood Booster", "Daft & friends")
		assertNotContains(t, view, "<a", "&amp;")
	})

	t.Run("Music Lists Categories In Order", func(t *testing.T) {
		f := newFixture(t, "tok")
		for _, c := range app.MusicCategories {
			f.api.Respond(http.MethodGet, "/browse/categories/"+c.ID+"/playlists", http.StatusOK,
				`{"playlists":{"items":[{"id":"`+c.ID+`","name":"`+c.Name+` Mix","uri":"spotify:playlist:`+c.ID+`"}]}}`)
		}

		f.settle(f.model.loadMusic()())
		f.press("m")

		view := f.model.View()
		assertContains(t, view, "[Music]", "Pop Mix", "Hip-Hop Mix", "Latin Mix")
		if strings.Index(view, "Pop Mix") > strings.Index(view, "Latin Mix") {
			t.Error("expected categories in pop, hiphop, latin order")
		}
	})

	t.Run("Selecting A Playlist Plays Its Context", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.ready(t)
		f.api.Respond(http.MethodGet, "/browse/featured-playlists", http.StatusOK,
			`{"playlists":{"items":[{"id":"p1","name":"Mood Booster","uri":"spotify:playlist:p1"}]}}`)
		f.api.Respond(http.MethodPut, "/me/player/play", http.StatusNoContent, "")

		f.settle(f.model.loadFeatured()())
		f.settle(keyMsg("enter"))

		req := f.api.Last(t)
		if req.Method != http.MethodPut || !strings.Contains(req.Body, `"context_uri":"spotify:playlist:p1"`) {
			t.Errorf("unexpected request %s %s %s", req.Method, req.Path, req.Body)
		}
	})

	t.Run("Non Premium Warning", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.send(profileMsg{profile: &services.Profile{ID: "u1", DisplayName: "daft", Product: "free"}})
		assertContains(t, f.model.View(), "D", "Premium is required")
	})
}

func TestSearch(t *testing.T) {
	t.Run("Typed Query Lists Results", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.api.Respond(http.MethodGet, "/search", http.StatusOK, `{"tracks":{"items":[
			{"id":"t1","name":"One More Time","uri":"spotify:track:t1","artists":[{"name":"Daft Punk"}],"duration_ms":320000},
			{"id":"t2","name":"Aerodynamic","uri":"spotify:track:t2","artists":[{"name":"Daft Punk"}]}
		]}}`)

		f.press("/", "daft punk")
		f.settle(keyMsg("enter"))

		if q := f.api.Last(t).Query; !strings.Contains(q, "q=daft+punk") {
			t.Errorf("unexpected query %s", q)
		}
		assertContains(t, f.model.View(), "One More Time", "Aerodynamic", "5:20")
	})

	t.Run("Empty Result Shows Message", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.api.Respond(http.MethodGet, "/search", http.StatusOK, `{"tracks":{"items":[]}}`)

		f.press("/", "zzzz")
		f.settle(keyMsg("enter"))

		assertContains(t, f.model.View(), emptyResultText)
	})

	t.Run("Overlapping Submissions Keep The Latest", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.api.Respond(http.MethodGet, "/search", http.StatusOK,
			`{"tracks":{"items":[{"id":"t1","name":"One More Time","uri":"spotify:track:t1"}]}}`)

		f.press("/", "first")
		first := f.send(keyMsg("enter"))
		f.model.input.SetValue("")
		f.press("/", "second")
		second := f.send(keyMsg("enter"))

		for _, msg := range append(run(second), run(first)...) {
			f.send(msg)
		}

		if f.model.query != "second" {
			t.Errorf("expected latest submission to win, got %q", f.model.query)
		}
		if f.model.searching {
			t.Error("expected searching to finish")
		}
	})

	t.Run("Blank Submission Is Ignored", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.api.Respond(http.MethodGet, "/search", http.StatusOK,
			`{"tracks":{"items":[{"id":"t1","name":"One More Time","uri":"spotify:track:t1"}]}}`)

		f.press("/", "daft")
		f.settle(keyMsg("enter"))
		requests := f.api.Count()

		f.model.input.SetValue("")
		f.press("/", "   ")
		if cmd := f.send(keyMsg("enter")); cmd != nil {
			t.Error("expected no command for a blank query")
		}

		if len(f.model.tracks) != 1 || f.model.query != "daft" {
			t.Errorf("expected results to be kept, got %d tracks for %q", len(f.model.tracks), f.model.query)
		}
		if f.model.searching {
			t.Error("expected no search in progress")
		}
		if f.api.Count() != requests {
			t.Errorf("expected no request, got %d", f.api.Count()-requests)
		}
		assertContains(t, f.model.View(), "One More Time")
	})

	t.Run("Blank Submission Keeps An In-Flight Search", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.api.Respond(http.MethodGet, "/search", http.StatusOK,
			`{"tracks":{"items":[{"id":"t1","name":"One More Time","uri":"spotify:track:t1"}]}}`)

		f.press("/", "daft")
		pending := f.send(keyMsg("enter"))
		f.model.input.SetValue("")
		f.press("/", " ")
		f.send(keyMsg("enter"))

		for _, msg := range run(pending) {
			f.send(msg)
		}
		if f.model.query != "daft" || len(f.model.tracks) != 1 {
			t.Errorf("expected the pending search to be applied, got %q with %d tracks", f.model.query, len(f.model.tracks))
		}
	})

	t.Run("Selecting A Track Plays The Result List", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.ready(t)
		f.api.Respond(http.MethodGet, "/search", http.StatusOK, `{"tracks":{"items":[
			{"id":"t1","name":"One More Time","uri":"spotify:track:t1"},
			{"id":"t2","name":"Aerodynamic","uri":"spotify:track:t2"}
		]}}`)
		f.api.Respond(http.MethodPut, "/me/player/play", http.StatusNoContent, "")

		f.press("/", "daft")
		f.settle(keyMsg("enter"))
		f.press("j")
		f.settle(keyMsg("enter"))

		req := f.api.Last(t)
		if !strings.Contains(req.Body, `"uris":["spotify:track:t1","spotify:track:t2"]`) ||
			!strings.Contains(req.Body, `"offset":{"position":1}`) {
			t.Errorf("unexpected play body %s", req.Body)
		}
	})

	t.Run("Add To Library Failure Keeps Results", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.api.Respond(http.MethodGet, "/search", http.StatusOK,
			`{"tracks":{"items":[{"id":"t1","name":"One More Time","uri":"spotify:track:t1"}]}}`)
		f.api.Respond(http.MethodPut, "/me/tracks", http.StatusUnauthorized, `{"error":{"status":401,"message":"expired"}}`)

		f.press("/", "daft")
		f.settle(keyMsg("enter"))
		f.settle(keyMsg("s"))

		view := f.model.View()
		assertContains(t, view, "(401)", "One More Time")
		if !f.controller.Authenticated() {
			t.Error("a REST 401 should not clear the credential")
		}
	})

	t.Run("Add To Library Success Note", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.ready(t)
		f.api.Respond(http.MethodGet, "/search", http.StatusOK,
			`{"tracks":{"items":[{"id":"t1","name":"One More Time","uri":"spotify:track:t1"}]}}`)
		f.api.Respond(http.MethodPut, "/me/tracks", http.StatusOK, "")

		f.press("/", "daft")
		f.settle(keyMsg("enter"))
		f.settle(keyMsg("s"))

		assertContains(t, f.model.View(), `Added "One More Time" to your library`)
	})
}

func TestPlayer(t *testing.T) {
	t.Run("Earlier Failure Is Shown On Open", func(t *testing.T) {
		f := newFixture(t, "tok")
		(*f.players)[0].Emit(playback.Event{Type: playback.EventAccountError, Message: "premium required"})

		deadline := time.Now().Add(2 * time.Second)
		for f.coordinator.Status() != playback.Failed {
			if time.Now().After(deadline) {
				t.Fatal("timed out waiting for the failure")
			}
			time.Sleep(5 * time.Millisecond)
		}

		m := NewModel(context.Background(), f.controller, Options{Now: func() time.Time { return f.clock }})
		defer m.Close()
		m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

		view := m.View()
		assertContains(t, view, "Spotify Premium is required")
		assertNotContains(t, view, connectingText)
	})

	t.Run("Connecting Banner Until Ready", func(t *testing.T) {
		f := newFixture(t, "tok")
		assertContains(t, f.model.View(), connectingText)

		f.send(notificationMsg{notification: playback.Notification{Status: playback.Ready, DeviceID: "device-1"}})
		assertNotContains(t, f.model.View(), connectingText)
	})

	t.Run("Account Error Banner", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.send(notificationMsg{notification: playback.Notification{
			Status: playback.Failed,
			Err:    &playback.SDKError{Kind: playback.AccountError, Message: "premium only"},
		}})

		view := f.model.View()
		assertContains(t, view, "Spotify Premium is required")
		assertNotContains(t, view, connectingText)
	})

	t.Run("Now Playing Bar", func(t *testing.T) {
		f := newFixture(t, "tok")
		assertContains(t, f.model.View(), "Nothing playing")

		f.send(notificationMsg{notification: nowPlaying(true, 65000)})
		assertContains(t, f.model.View(), "One More Time", "Daft Punk", "1:05 / 5:20")
	})

	t.Run("Full Screen Player", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.send(notificationMsg{notification: nowPlaying(true, 160000)})
		f.press("f")

		view := f.model.View()
		assertContains(t, view, "One More Time", "Discovery", "2:40", "5:20", "━", "─")
		assertNotContains(t, view, "Your Library")

		f.press("esc")
		assertContains(t, f.model.View(), "Your Library")
	})

	t.Run("Progress Advances While Playing", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.send(notificationMsg{notification: nowPlaying(false, 0)})
		f.clock = f.clock.Add(3 * time.Second)
		assertContains(t, f.model.View(), "0:03 / 5:20")

		f.send(notificationMsg{notification: nowPlaying(true, 3000)})
		f.clock = f.clock.Add(time.Hour)
		assertContains(t, f.model.View(), "0:03 / 5:20")
	})

	t.Run("Null State Clears Now Playing", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.send(notificationMsg{notification: nowPlaying(false, 0)})
		f.send(notificationMsg{notification: playback.Notification{Status: playback.Ready}})
		assertContains(t, f.model.View(), "Nothing playing")
	})

	t.Run("Transport Keys Reach The Player", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.ready(t)
		player := (*f.players)[0]

		f.settle(keyMsg(" "))
		f.settle(keyMsg("n"))
		f.settle(keyMsg("b"))

		for _, method := range []string{"TogglePlay", "NextTrack", "PreviousTrack"} {
			if player.Called(method) != 1 {
				t.Errorf("expected one %s call, got %d", method, player.Called(method))
			}
		}
	})

	t.Run("Seek Key Is Throttled", func(t *testing.T) {
		f := newFixture(t, "tok")
		if cmd := f.press("right"); cmd == nil {
			t.Fatal("expected first seek to be issued")
		}
		if cmd := f.press("right"); cmd != nil {
			t.Error("expected repeated seek to be dropped")
		}
	})
}

func TestNavigation(t *testing.T) {
	t.Run("Tab Cycles Views", func(t *testing.T) {
		f := newFixture(t, "tok")
		want := []View{Search, Library, Create, Home}
		for _, v := range want {
			f.press("tab")
			if f.model.view != v {
				t.Errorf("expected %s, got %s", v, f.model.view)
			}
		}
	})

	t.Run("Create Placeholder", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.press("4")
		assertContains(t, f.model.View(), "under construction")
	})

	t.Run("Library Lists History", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.history.Record(models.Track{ID: "t9", Name: "Harder Better", Artists: []models.Artist{{Name: "Daft Punk"}}})

		f.settle(keyMsg("3"))
		assertContains(t, f.model.View(), "Harder Better", "Daft Punk")
	})

	t.Run("Empty Library", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.settle(keyMsg("3"))
		assertContains(t, f.model.View(), "Nothing played yet.")
	})

	t.Run("Quit", func(t *testing.T) {
		f := newFixture(t, "tok")
		cmd := f.press("q")
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("Typing q In Search Does Not Quit", func(t *testing.T) {
		f := newFixture(t, "tok")
		f.press("/")
		if cmd := f.press("q"); cmd != nil {
			if _, ok := cmd().(tea.QuitMsg); ok {
				t.Error("q typed into the search box should not quit")
			}
		}
		if f.model.input.Value() != "q" {
			t.Errorf("expected input to hold q, got %q", f.model.input.Value())
		}
	})
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		pos, dur int
		filled   int
	}{
		{name: "Empty", pos: 0, dur: 100, filled: 0},
		{name: "Half", pos: 50, dur: 100, filled: 5},
		{name: "Full", pos: 100, dur: 100, filled: 10},
		{name: "Overflow", pos: 150, dur: 100, filled: 10},
		{name: "No Duration", pos: 10, dur: 0, filled: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := progressBar(tt.pos, tt.dur, 10)
			if got := strings.Count(bar, "━"); got != tt.filled {
				t.Errorf("filled = %d, want %d", got, tt.filled)
			}
			if got := len([]rune(bar)); got != 10 {
				t.Errorf("width = %d, want 10", got)
			}
		})
	}
}
