package playback_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/session"
	"github.com/desertthunder/tunedeck/internal/shared"
	tu "github.com/desertthunder/tunedeck/internal/testing"
)

func setup(t *testing.T, token string) (*playback.Coordinator, *session.Credential, *[]*tu.FakePlayer) {
	t.Helper()
	credential := session.NewCredential(session.NewMemoryStore())
	if token != "" {
		credential.Set(token)
	}
	created := &[]*tu.FakePlayer{}
	c := playback.NewCoordinator(tu.FakeFactory(created, nil), credential, playback.Options{Name: "test", Volume: 0.5}, nil)
	return c, credential, created
}

// await reads notifications until match returns true.
func await(t *testing.T, ch <-chan playback.Notification, match func(playback.Notification) bool) playback.Notification {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case n := <-ch:
			if match(n) {
				return n
			}
		case <-timeout:
			t.Fatal("timed out waiting for notification")
			return playback.Notification{}
		}
	}
}

func ofType(et playback.EventType) func(playback.Notification) bool {
	return func(n playback.Notification) bool { return n.Event.Type == et }
}

func startReady(t *testing.T, c *playback.Coordinator, created *[]*tu.FakePlayer, ch <-chan playback.Notification) *tu.FakePlayer {
	t.Helper()
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	player := (*created)[len(*created)-1]
	player.Emit(playback.Event{Type: playback.EventReady, DeviceID: "device-1"})
	await(t, ch, ofType(playback.EventReady))
	return player
}

func stateWith(trackID string, position int) *models.PlaybackState {
	return &models.PlaybackState{
		TrackWindow: models.TrackWindow{CurrentTrack: models.Track{ID: trackID, Name: "Track " + trackID}},
		Position:    position,
		Duration:    200_000,
	}
}

func TestCoordinator(t *testing.T) {
	t.Run("Start", func(t *testing.T) {
		t.Run("Without Credential", func(t *testing.T) {
			c, _, created := setup(t, "")
			if err := c.Start(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if len(*created) != 0 {
				t.Error("expected no player to be constructed")
			}
			if c.Status() != playback.Uninitialized {
				t.Errorf("expected uninitialized, got %s", c.Status())
			}
		})

		t.Run("Connects With Pull Based Token", func(t *testing.T) {
			c, credential, created := setup(t, "tok-1")
			if err := c.Start(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c.Status() != playback.Connecting {
				t.Errorf("expected connecting, got %s", c.Status())
			}

			player := (*created)[0]
			if player.Called("Connect") != 1 {
				t.Error("expected connect to be issued")
			}
			if player.Name != "test" || player.Volume != 0.5 {
				t.Errorf("unexpected player options %q %v", player.Name, player.Volume)
			}

			credential.Set("tok-2")
			if token, _ := player.Token(); token != "tok-2" {
				t.Errorf("expected token callback to read the current credential, got %q", token)
			}
		})

		t.Run("Idempotent While Active", func(t *testing.T) {
			c, _, created := setup(t, "tok")
			c.Start(context.Background())
			c.Start(context.Background())
			if len(*created) != 1 {
				t.Errorf("expected one player, got %d", len(*created))
			}
		})

		t.Run("Connect Failure", func(t *testing.T) {
			credential := session.NewCredential(session.NewMemoryStore())
			credential.Set("tok")
			created := &[]*tu.FakePlayer{}
			c := playback.NewCoordinator(tu.FakeFactory(created, errors.New("sdk missing")), credential, playback.Options{}, nil)

			err := c.Start(context.Background())
			sdkErr, ok := playback.AsSDKError(err)
			if !ok || sdkErr.Kind != playback.InitializationError {
				t.Fatalf("expected initialization error, got %v", err)
			}
			if c.Status() != playback.Failed {
				t.Errorf("expected failed, got %s", c.Status())
			}
			if _, ok := credential.Current(); !ok {
				t.Error("expected credential to be kept")
			}
		})
	})

	t.Run("Ready And NotReady", func(t *testing.T) {
		c, _, created := setup(t, "tok")
		ch := c.Subscribe()
		player := startReady(t, c, created, ch)

		if id, ok := c.DeviceID(); !ok || id != "device-1" {
			t.Errorf("expected device-1, got %q", id)
		}
		if c.Status() != playback.Ready {
			t.Errorf("expected ready, got %s", c.Status())
		}

		player.Emit(playback.Event{Type: playback.EventNotReady, DeviceID: "device-1"})
		await(t, ch, ofType(playback.EventNotReady))

		if _, ok := c.DeviceID(); ok {
			t.Error("expected device id to be cleared")
		}
		if c.Status() != playback.NotReady {
			t.Errorf("expected not ready, got %s", c.Status())
		}

		player.Emit(playback.Event{Type: playback.EventReady, DeviceID: "device-2"})
		await(t, ch, ofType(playback.EventReady))
		if id, _ := c.DeviceID(); id != "device-2" {
			t.Errorf("expected device-2, got %q", id)
		}
	})

	t.Run("State Changed", func(t *testing.T) {
		t.Run("Replaces Mirror Wholesale", func(t *testing.T) {
			c, _, created := setup(t, "tok")
			ch := c.Subscribe()
			player := startReady(t, c, created, ch)

			player.Emit(playback.Event{Type: playback.EventStateChanged, State: stateWith("a", 1000)})
			await(t, ch, ofType(playback.EventStateChanged))

			next := stateWith("b", 0)
			next.Paused = true
			player.Emit(playback.Event{Type: playback.EventStateChanged, State: next})
			n := await(t, ch, ofType(playback.EventStateChanged))

			if c.State() != next || n.State != next {
				t.Error("expected state to be replaced by the pushed value")
			}
			if c.State().CurrentTrack().ID != "b" || !c.State().Paused {
				t.Errorf("unexpected state %+v", c.State())
			}
		})

		t.Run("Null Clears Mirror", func(t *testing.T) {
			priors := []*models.PlaybackState{stateWith("a", 0), {Paused: true}, nil}
			for _, prior := range priors {
				c, _, created := setup(t, "tok")
				ch := c.Subscribe()
				player := startReady(t, c, created, ch)

				player.Emit(playback.Event{Type: playback.EventStateChanged, State: prior})
				await(t, ch, ofType(playback.EventStateChanged))

				player.Emit(playback.Event{Type: playback.EventStateChanged, State: nil})
				await(t, ch, ofType(playback.EventStateChanged))

				if c.State() != nil {
					t.Errorf("expected state to be cleared, got %+v", c.State())
				}
			}
		})
	})

	t.Run("Failures", func(t *testing.T) {
		t.Run("Authentication Error Clears Credential", func(t *testing.T) {
			c, credential, created := setup(t, "tok")
			ch := c.Subscribe()
			player := startReady(t, c, created, ch)

			player.Emit(playback.Event{Type: playback.EventAuthenticationError, Message: "invalid token"})
			n := await(t, ch, ofType(playback.EventAuthenticationError))

			if n.Status != playback.Failed || n.Err == nil || n.Err.Kind != playback.AuthenticationError {
				t.Errorf("unexpected notification %+v", n)
			}
			if !errors.Is(n.Err, shared.ErrAuthFailed) {
				t.Error("expected authentication error to wrap ErrAuthFailed")
			}

			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				if _, ok := credential.Current(); !ok {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}
			if _, ok := credential.Current(); ok {
				t.Error("expected credential to be cleared")
			}
		})

		kinds := []struct {
			event playback.EventType
			kind  playback.ErrorKind
		}{
			{playback.EventInitializationError, playback.InitializationError},
			{playback.EventAccountError, playback.AccountError},
		}

		for _, tt := range kinds {
			t.Run(string(tt.event)+" Keeps Credential", func(t *testing.T) {
				c, credential, created := setup(t, "tok")
				ch := c.Subscribe()
				player := startReady(t, c, created, ch)

				player.Emit(playback.Event{Type: tt.event, Message: "premium required"})
				n := await(t, ch, ofType(tt.event))

				if n.Err == nil || n.Err.Kind != tt.kind || n.Err.Message != "premium required" {
					t.Errorf("unexpected failure %+v", n.Err)
				}
				if c.Status() != playback.Failed {
					t.Errorf("expected failed, got %s", c.Status())
				}
				if _, ok := credential.Current(); !ok {
					t.Error("expected credential to be kept")
				}
				if _, ok := c.DeviceID(); ok {
					t.Error("expected device id to be cleared")
				}
			})
		}
	})

	t.Run("Transport", func(t *testing.T) {
		t.Run("No-op Without Device", func(t *testing.T) {
			c, _, created := setup(t, "tok")
			ctx := context.Background()

			for _, op := range []func(context.Context) error{c.TogglePlay, c.NextTrack, c.PreviousTrack} {
				if err := op(ctx); err != nil {
					t.Errorf("expected nil error before start, got %v", err)
				}
			}

			c.Start(ctx)
			player := (*created)[0]

			if err := c.TogglePlay(ctx); err != nil {
				t.Errorf("expected nil error while connecting, got %v", err)
			}
			if err := c.Seek(ctx, 1000); err != nil {
				t.Errorf("expected nil error while connecting, got %v", err)
			}
			if err := c.SeekBy(ctx, 1000); err != nil {
				t.Errorf("expected nil error while connecting, got %v", err)
			}

			for _, method := range []string{"TogglePlay", "NextTrack", "PreviousTrack", "Seek"} {
				if player.Called(method) != 0 {
					t.Errorf("expected no %s call", method)
				}
			}
		})

		t.Run("Forwards When Ready", func(t *testing.T) {
			c, _, created := setup(t, "tok")
			ch := c.Subscribe()
			player := startReady(t, c, created, ch)
			ctx := context.Background()

			c.TogglePlay(ctx)
			c.NextTrack(ctx)
			c.PreviousTrack(ctx)
			c.Seek(ctx, 5000)

			want := []string{"Connect", "TogglePlay", "NextTrack", "PreviousTrack", "Seek"}
			got := player.Calls()
			if len(got) != len(want) {
				t.Fatalf("expected calls %v, got %v", want, got)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("call %d: expected %s, got %s", i, want[i], got[i])
				}
			}
			if player.LastSeek() != 5000 {
				t.Errorf("expected seek to 5000, got %d", player.LastSeek())
			}
		})

		t.Run("Seek Is Clamped", func(t *testing.T) {
			c, _, created := setup(t, "tok")
			ch := c.Subscribe()
			player := startReady(t, c, created, ch)
			ctx := context.Background()

			player.Emit(playback.Event{Type: playback.EventStateChanged, State: stateWith("a", 195_000)})
			await(t, ch, ofType(playback.EventStateChanged))

			c.SeekBy(ctx, 10_000)
			if player.LastSeek() != 200_000 {
				t.Errorf("expected clamp to duration, got %d", player.LastSeek())
			}

			c.Seek(ctx, -5)
			if player.LastSeek() != 0 {
				t.Errorf("expected clamp to zero, got %d", player.LastSeek())
			}
		})
	})

	t.Run("Stop", func(t *testing.T) {
		c, _, created := setup(t, "tok")
		ch := c.Subscribe()
		player := startReady(t, c, created, ch)

		player.Emit(playback.Event{Type: playback.EventStateChanged, State: stateWith("a", 0)})
		await(t, ch, ofType(playback.EventStateChanged))

		c.Stop()

		if c.Status() != playback.Disconnected {
			t.Errorf("expected disconnected, got %s", c.Status())
		}
		if player.Called("Disconnect") != 1 {
			t.Error("expected player to be disconnected")
		}
		if _, ok := c.DeviceID(); ok || c.State() != nil {
			t.Error("expected device and state to be cleared")
		}
		if err := c.TogglePlay(context.Background()); err != nil || player.Called("TogglePlay") != 0 {
			t.Error("expected transport to be a no-op after stop")
		}

		t.Run("Restart", func(t *testing.T) {
			if err := c.Start(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(*created) != 2 {
				t.Errorf("expected a fresh player, got %d", len(*created))
			}
		})
	})

	t.Run("Stale Player Events Are Ignored", func(t *testing.T) {
		c, _, created := setup(t, "tok")
		ch := c.Subscribe()
		old := startReady(t, c, created, ch)
		c.Stop()
		c.Start(context.Background())

		c.Apply(old, playback.Event{Type: playback.EventReady, DeviceID: "stale"})
		if _, ok := c.DeviceID(); ok {
			t.Error("expected stale ready event to be dropped")
		}
		if c.Status() != playback.Connecting {
			t.Errorf("expected connecting, got %s", c.Status())
		}
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		c, _, _ := setup(t, "tok")
		ch := c.Subscribe()
		c.Unsubscribe(ch)
		if _, ok := <-ch; ok {
			t.Error("expected channel to be closed")
		}
	})
}

func TestStatusString(t *testing.T) {
	tc := map[playback.Status]string{
		playback.Uninitialized: "uninitialized",
		playback.Connecting:    "connecting",
		playback.Ready:         "ready",
		playback.NotReady:      "not ready",
		playback.Failed:        "failed",
		playback.Disconnected:  "disconnected",
	}
	for status, want := range tc {
		if status.String() != want {
			t.Errorf("expected %q, got %q", want, status.String())
		}
	}
}

func TestSDKError(t *testing.T) {
	err := &playback.SDKError{Kind: playback.AccountError, Message: "premium required"}
	if err.Error() != "player account error: premium required" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if errors.Is(err, shared.ErrAuthFailed) {
		t.Error("account errors are not authentication failures")
	}
}
