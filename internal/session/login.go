package session

import (
	"github.com/desertthunder/tunedeck/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Scopes are the permissions requested at login.
var Scopes = []string{
	spotifyauth.ScopeStreaming,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopePlaylistReadPrivate,
}

// LoginURL builds the authorization URL for the implicit grant flow.
//
// The provider redirects back to the configured redirect URI with the token in the URL fragment.
// state is omitted when empty.
func LoginURL(cfg shared.SpotifyConfig, state string) string {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}

	conf := &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURI,
		Scopes:      Scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: authURL},
	}

	return conf.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", "token"),
		oauth2.SetAuthURLParam("show_dialog", "true"),
	)
}
