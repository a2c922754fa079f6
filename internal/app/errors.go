package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/services"
	"github.com/desertthunder/tunedeck/internal/shared"
)

// ErrEmptyResult is returned for a search that matched nothing. It is an empty state, not a failure.
var ErrEmptyResult = errors.New("no results")

// Describe converts err into the message shown to the user. A nil error yields "".
func Describe(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrEmptyResult) {
		return "No results found. Try another search."
	}

	if sdkErr, ok := playback.AsSDKError(err); ok {
		switch sdkErr.Kind {
		case playback.AuthenticationError:
			return "Your session has expired. Please log in again."
		case playback.AccountError:
			return "Spotify Premium is required to play music here."
		default:
			return fmt.Sprintf("The player failed to start: %s", sdkErr.Message)
		}
	}

	var httpErr *services.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Unauthorized() {
			return "Spotify rejected the request (401). Your session may have expired."
		}
		switch httpErr.Status {
		case http.StatusForbidden:
			return "Spotify refused the request (403). This may require Spotify Premium."
		case http.StatusNotFound:
			return "Spotify could not find that (404). Is the player device active?"
		case http.StatusTooManyRequests:
			return "Too many requests. Wait a moment and try again."
		default:
			return fmt.Sprintf("Spotify request failed with status %d.", httpErr.Status)
		}
	}

	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "Please log in with Spotify."
	case errors.Is(err, shared.ErrDeviceNotReady):
		return "The player is not ready yet."
	case errors.Is(err, shared.ErrPlayerClosed):
		return "The player page is not connected."
	case errors.Is(err, shared.ErrAPIRequest):
		return "Could not reach Spotify. Check your connection and try again."
	}

	return err.Error()
}
