package playback

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/shared"
)

// Status is the connection state of the embedded player.
type Status int

const (
	Uninitialized Status = iota
	Connecting
	Ready
	NotReady
	Failed
	Disconnected
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Connecting:
		return "connecting"
	case Ready:
		return "ready"
	case NotReady:
		return "not ready"
	case Failed:
		return "failed"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Active reports whether a player instance exists for this status.
func (s Status) Active() bool {
	return s == Connecting || s == Ready || s == NotReady
}

// Credential is the capability the coordinator reads the token from and clears on authentication failure.
type Credential interface {
	Current() (string, bool)
	Clear()
}

// Notification is delivered to subscribers after every applied event or status change.
type Notification struct {
	Event    Event
	Status   Status
	DeviceID string
	State    *models.PlaybackState
	Err      *SDKError
}

// Options configures the player constructed by the [Coordinator].
type Options struct {
	Name   string
	Volume float64
}

// Coordinator owns the embedded player connection and mirrors its state.
type Coordinator struct {
	factory    PlayerFactory
	credential Credential
	opts       Options
	logger     *log.Logger

	mu          sync.Mutex
	status      Status
	player      Player
	stop        chan struct{}
	deviceID    string
	state       *models.PlaybackState
	failure     *SDKError
	subscribers []chan Notification
}

// NewCoordinator creates a [Coordinator] in the Uninitialized state.
func NewCoordinator(factory PlayerFactory, credential Credential, opts Options, logger *log.Logger) *Coordinator {
	if opts.Name == "" {
		opts.Name = "tunedeck"
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Coordinator{
		factory:    factory,
		credential: credential,
		opts:       opts,
		logger:     logger,
		status:     Uninitialized,
	}
}

// Start constructs the player and issues a connect request.
//
// Start is a no-op while a player is already active and fails with [shared.ErrNotAuthenticated]
// when no credential is stored.
func (c *Coordinator) Start(ctx context.Context) error {
	if _, ok := c.credential.Current(); !ok {
		return shared.ErrNotAuthenticated
	}

	c.mu.Lock()
	if c.status.Active() {
		c.mu.Unlock()
		return nil
	}

	previous := c.player
	if c.stop != nil {
		close(c.stop)
	}

	player := c.factory(c.opts.Name, c.credential.Current, c.opts.Volume)
	stop := make(chan struct{})
	c.player = player
	c.stop = stop
	c.status = Connecting
	c.deviceID = ""
	c.failure = nil
	n := c.snapshot(Event{})
	c.mu.Unlock()

	if previous != nil {
		previous.Disconnect()
	}

	c.logger.Info("connecting player", "name", c.opts.Name)
	c.publish(n)

	go c.pump(player, stop)

	if err := player.Connect(ctx); err != nil {
		c.Apply(player, Event{Type: EventInitializationError, Message: err.Error()})
		return &SDKError{Kind: InitializationError, Message: err.Error()}
	}
	return nil
}

// Stop disconnects the player and moves to Disconnected. The mirrored state and device id are cleared.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	player := c.player
	if c.stop != nil {
		close(c.stop)
	}
	c.player = nil
	c.stop = nil
	c.deviceID = ""
	c.state = nil
	if c.status != Uninitialized || player != nil {
		c.status = Disconnected
	}
	n := c.snapshot(Event{})
	c.mu.Unlock()

	if player != nil {
		c.logger.Info("disconnecting player")
		player.Disconnect()
	}
	c.publish(n)
}

// pump forwards player events until the player closes its channel or the coordinator stops it.
func (c *Coordinator) pump(player Player, stop <-chan struct{}) {
	events := player.Events()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.Apply(player, ev)
		}
	}
}

// Apply folds an event from player into the coordinator state.
//
// Events from a player that is no longer current are ignored.
func (c *Coordinator) Apply(player Player, ev Event) {
	c.mu.Lock()
	if player != c.player {
		c.mu.Unlock()
		c.logger.Debug("dropping event from stale player", "type", ev.Type)
		return
	}

	clearCredential := false

	switch ev.Type {
	case EventReady:
		c.status = Ready
		c.deviceID = ev.DeviceID
		c.failure = nil
		c.logger.Info("player ready", "device", ev.DeviceID)
	case EventNotReady:
		c.status = NotReady
		c.deviceID = ""
		c.logger.Warn("player went offline", "device", ev.DeviceID)
	case EventStateChanged:
		c.state = ev.State
	case EventPlaybackError:
		c.logger.Warn("playback error", "message", ev.Message)
	default:
		kind, ok := errorKind(ev.Type)
		if !ok {
			c.mu.Unlock()
			c.logger.Debug("ignoring unknown player event", "type", ev.Type)
			return
		}
		c.status = Failed
		c.deviceID = ""
		c.failure = &SDKError{Kind: kind, Message: ev.Message}
		clearCredential = kind == AuthenticationError
		c.logger.Error("player failed", "kind", kind, "message", ev.Message)
	}

	n := c.snapshot(ev)
	c.mu.Unlock()

	c.publish(n)

	if clearCredential {
		c.credential.Clear()
	}
}

// TogglePlay resumes or pauses playback. No-op unless Ready.
func (c *Coordinator) TogglePlay(ctx context.Context) error {
	player, ok := c.ready()
	if !ok {
		return nil
	}
	return player.TogglePlay(ctx)
}

// NextTrack skips to the next track. No-op unless Ready.
func (c *Coordinator) NextTrack(ctx context.Context) error {
	player, ok := c.ready()
	if !ok {
		return nil
	}
	return player.NextTrack(ctx)
}

// PreviousTrack skips to the previous track. No-op unless Ready.
func (c *Coordinator) PreviousTrack(ctx context.Context) error {
	player, ok := c.ready()
	if !ok {
		return nil
	}
	return player.PreviousTrack(ctx)
}

// Seek moves playback to positionMS, clamped to the current track. No-op unless Ready.
func (c *Coordinator) Seek(ctx context.Context, positionMS int) error {
	player, ok := c.ready()
	if !ok {
		return nil
	}
	return player.Seek(ctx, c.clamp(positionMS))
}

// SeekBy moves playback relative to the mirrored position. No-op unless Ready with a known state.
func (c *Coordinator) SeekBy(ctx context.Context, deltaMS int) error {
	player, ok := c.ready()
	if !ok {
		return nil
	}

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state == nil {
		return nil
	}

	return player.Seek(ctx, c.clamp(state.Position+deltaMS))
}

func (c *Coordinator) clamp(positionMS int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if positionMS < 0 {
		return 0
	}
	if c.state != nil && c.state.Duration > 0 && positionMS > c.state.Duration {
		return c.state.Duration
	}
	return positionMS
}

func (c *Coordinator) ready() (Player, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != Ready || c.deviceID == "" || c.player == nil {
		return nil, false
	}
	return c.player, true
}

// DeviceID returns the device id registered by the player, if Ready.
func (c *Coordinator) DeviceID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID, c.deviceID != ""
}

// State returns the last mirrored playback state, or nil.
func (c *Coordinator) State() *models.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the current connection state.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Failure returns the error that moved the coordinator to Failed, if any.
func (c *Coordinator) Failure() *SDKError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// Subscribe returns a channel receiving a [Notification] after every change.
//
// Notifications are dropped for a subscriber that falls behind.
func (c *Coordinator) Subscribe() <-chan Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan Notification, 64)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a channel returned by [Coordinator.Subscribe].
func (c *Coordinator) Unsubscribe(ch <-chan Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// snapshot must be called with mu held.
func (c *Coordinator) snapshot(ev Event) Notification {
	return Notification{
		Event:    ev,
		Status:   c.status,
		DeviceID: c.deviceID,
		State:    c.state,
		Err:      c.failure,
	}
}

func (c *Coordinator) publish(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subscribers {
		select {
		case sub <- n:
		default:
			c.logger.Debug("subscriber behind, dropping notification", "status", n.Status)
		}
	}
}
