package models

import "testing"

func TestTrack(t *testing.T) {
	t.Run("ArtistNames", func(t *testing.T) {
		track := Track{Artists: []Artist{{Name: "Thomas"}, {Name: "Guy-Manuel"}}}
		if got := track.ArtistNames(); got != "Thomas, Guy-Manuel" {
			t.Errorf("expected 'Thomas, Guy-Manuel', got %q", got)
		}
	})

	t.Run("Artwork Without Images", func(t *testing.T) {
		if got := (Track{}).Artwork(); got != "" {
			t.Errorf("expected empty artwork, got %q", got)
		}
	})

	t.Run("Artwork Uses First Image", func(t *testing.T) {
		track := Track{Album: Album{Images: []Image{{URL: "a"}, {URL: "b"}}}}
		if got := track.Artwork(); got != "a" {
			t.Errorf("expected 'a', got %q", got)
		}
	})
}

func TestPlaybackState(t *testing.T) {
	t.Run("Nil State", func(t *testing.T) {
		var s *PlaybackState
		if s.CurrentTrack() != nil {
			t.Error("expected nil current track")
		}
		if s.Playing() {
			t.Error("expected nil state to not be playing")
		}
	})

	t.Run("Paused State", func(t *testing.T) {
		s := &PlaybackState{Paused: true, TrackWindow: TrackWindow{CurrentTrack: Track{ID: "1"}}}
		if s.Playing() {
			t.Error("expected paused state to not be playing")
		}
		if s.CurrentTrack() == nil || s.CurrentTrack().ID != "1" {
			t.Error("expected current track 1")
		}
	})
}

func TestPlayRecord(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		if err := (&PlayRecord{}).Validate(); err == nil {
			t.Error("expected error for empty record")
		}

		rec := NewPlayRecord(Track{ID: "1", Name: "One More Time", Artists: []Artist{{Name: "Daft Punk"}}})
		if err := rec.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if rec.Artists() != "Daft Punk" {
			t.Errorf("expected artists 'Daft Punk', got %q", rec.Artists())
		}
	})
}
