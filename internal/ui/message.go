package ui

import (
	"time"

	"github.com/desertthunder/tunedeck/internal/app"
	"github.com/desertthunder/tunedeck/internal/models"
	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/services"
)

type searchMsg struct {
	result app.SearchResult
}

type featuredMsg struct {
	featured *services.FeaturedPlaylists
	err      error
}

type musicMsg struct {
	results []app.CategoryResult
}

type historyMsg struct {
	records []*models.PlayRecord
	err     error
}

type profileMsg struct {
	profile *services.Profile
	err     error
}

// actionMsg reports the outcome of a fire-and-forget intent (play, save, transport, open browser).
type actionMsg struct {
	note string
	err  error
}

type notificationMsg struct {
	notification playback.Notification
	closed       bool
}

type tickMsg time.Time

type clearNoteMsg struct {
	seq int
}
