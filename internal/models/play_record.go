package models

import (
	"fmt"
	"time"
)

// PlayRecord is a single entry of the local play history.
type PlayRecord struct {
	id        string
	trackID   string
	trackURI  string
	name      string
	artists   string
	album     string
	createdAt time.Time
}

var _ Model = (*PlayRecord)(nil)

// NewPlayRecord creates a [PlayRecord] for the given track, stamped with the current time.
func NewPlayRecord(track Track) *PlayRecord {
	return &PlayRecord{
		trackID:   track.ID,
		trackURI:  track.URI,
		name:      track.Name,
		artists:   track.ArtistNames(),
		album:     track.Album.Name,
		createdAt: time.Now().UTC(),
	}
}

// RestorePlayRecord rebuilds a record read from storage.
func RestorePlayRecord(id, trackID, trackURI, name, artists, album string, playedAt time.Time) *PlayRecord {
	return &PlayRecord{
		id:        id,
		trackID:   trackID,
		trackURI:  trackURI,
		name:      name,
		artists:   artists,
		album:     album,
		createdAt: playedAt,
	}
}

func (p *PlayRecord) ID() string           { return p.id }
func (p *PlayRecord) SetID(id string)      { p.id = id }
func (p *PlayRecord) CreatedAt() time.Time { return p.createdAt }
func (p *PlayRecord) PlayedAt() time.Time  { return p.createdAt }
func (p *PlayRecord) TrackID() string      { return p.trackID }
func (p *PlayRecord) TrackURI() string     { return p.trackURI }
func (p *PlayRecord) Name() string         { return p.name }
func (p *PlayRecord) Artists() string      { return p.artists }
func (p *PlayRecord) Album() string        { return p.album }

// Validate checks that the record identifies a track.
func (p *PlayRecord) Validate() error {
	if p.trackID == "" {
		return fmt.Errorf("track id is required")
	}
	if p.name == "" {
		return fmt.Errorf("track name is required")
	}
	return nil
}
