package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/shared"
)

// EventType names an event emitted by the embedded player.
type EventType string

const (
	EventReady               EventType = "ready"
	EventNotReady            EventType = "not_ready"
	EventStateChanged        EventType = "player_state_changed"
	EventInitializationError EventType = "initialization_error"
	EventAuthenticationError EventType = "authentication_error"
	EventAccountError        EventType = "account_error"
	EventPlaybackError       EventType = "playback_error"
)

// Event is a single callback from the embedded player.
//
// State is nil for a player_state_changed event that carries no state.
type Event struct {
	Type     EventType
	DeviceID string
	State    *models.PlaybackState
	Message  string
}

// TokenFunc is called by the player whenever it needs the credential.
type TokenFunc func() (string, bool)

// Player is the surface of the embedded player SDK.
type Player interface {
	Connect(ctx context.Context) error       // Connect registers the player as a playback device
	Disconnect()                             // Disconnect releases the device and closes Events
	Events() <-chan Event                    // Events delivers player callbacks in order
	TogglePlay(ctx context.Context) error    // TogglePlay resumes or pauses
	NextTrack(ctx context.Context) error     // NextTrack skips forward
	PreviousTrack(ctx context.Context) error // PreviousTrack skips back
	Seek(ctx context.Context, ms int) error  // Seek moves to a position in milliseconds
}

// PlayerFactory constructs a player. The credential is pulled through token on demand.
type PlayerFactory func(name string, token TokenFunc, volume float64) Player

// ErrorKind classifies player failures.
type ErrorKind int

const (
	InitializationError ErrorKind = iota
	AuthenticationError
	AccountError
)

func (k ErrorKind) String() string {
	switch k {
	case InitializationError:
		return "initialization error"
	case AuthenticationError:
		return "authentication error"
	case AccountError:
		return "account error"
	default:
		return "unknown error"
	}
}

// SDKError is a failure reported by the embedded player.
type SDKError struct {
	Kind    ErrorKind
	Message string
}

func (e *SDKError) Error() string {
	if e.Message == "" {
		return "player " + e.Kind.String()
	}
	return fmt.Sprintf("player %s: %s", e.Kind, e.Message)
}

// Unwrap maps authentication failures onto [shared.ErrAuthFailed].
func (e *SDKError) Unwrap() error {
	if e.Kind == AuthenticationError {
		return shared.ErrAuthFailed
	}
	return nil
}

// AsSDKError returns the [*SDKError] wrapped in err, if any.
func AsSDKError(err error) (*SDKError, bool) {
	var sdkErr *SDKError
	ok := errors.As(err, &sdkErr)
	return sdkErr, ok
}

func errorKind(t EventType) (ErrorKind, bool) {
	switch t {
	case EventInitializationError:
		return InitializationError, true
	case EventAuthenticationError:
		return AuthenticationError, true
	case EventAccountError:
		return AccountError, true
	default:
		return 0, false
	}
}
