package bridge

import (
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/playback"
)

// Message types sent from Go to the page.
const (
	TypeConnect       = "connect"
	TypeDisconnect    = "disconnect"
	TypeTogglePlay    = "toggle_play"
	TypeNextTrack     = "next_track"
	TypePreviousTrack = "previous_track"
	TypeSeek          = "seek"
	TypeToken         = "token"
)

// Message types sent from the page to Go, besides [playback.EventType] values.
const (
	TypeTokenRequest = "token_request"
	TypeLog          = "log"
)

// Message is the JSON envelope exchanged over the websocket.
type Message struct {
	Type       string                `json:"type"`
	ID         string                `json:"id,omitempty"`
	Token      string                `json:"token,omitempty"`
	DeviceID   string                `json:"device_id,omitempty"`
	State      *models.PlaybackState `json:"state,omitempty"`
	Message    string                `json:"message,omitempty"`
	Name       string                `json:"name,omitempty"`
	Volume     *float64              `json:"volume,omitempty"`
	PositionMS *int                  `json:"position_ms,omitempty"`
}

// event converts a page message into a player event.
func (m Message) event() (playback.Event, bool) {
	t := playback.EventType(m.Type)
	switch t {
	case playback.EventReady, playback.EventNotReady, playback.EventStateChanged,
		playback.EventInitializationError, playback.EventAuthenticationError,
		playback.EventAccountError, playback.EventPlaybackError:
		return playback.Event{Type: t, DeviceID: m.DeviceID, State: m.State, Message: m.Message}, true
	default:
		return playback.Event{}, false
	}
}
