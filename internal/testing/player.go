package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/desertthunder/tunedeck/internal/playback"
)

// FakePlayer is a [playback.Player] recording every call.
//
// Tests push events with [FakePlayer.Emit].
type FakePlayer struct {
	Name       string
	Volume     float64
	Token      playback.TokenFunc
	ConnectErr error

	mu       sync.Mutex
	calls    []string
	lastSeek int
	events   chan playback.Event
	closed   bool
}

// NewFakePlayer creates a [FakePlayer] with a buffered event channel.
func NewFakePlayer(name string, token playback.TokenFunc, volume float64) *FakePlayer {
	return &FakePlayer{Name: name, Token: token, Volume: volume, events: make(chan playback.Event, 16)}
}

// FakeFactory returns a [playback.PlayerFactory] handing out [FakePlayer] instances, appending each to created.
func FakeFactory(created *[]*FakePlayer, connectErr error) playback.PlayerFactory {
	var mu sync.Mutex
	return func(name string, token playback.TokenFunc, volume float64) playback.Player {
		p := NewFakePlayer(name, token, volume)
		p.ConnectErr = connectErr
		mu.Lock()
		*created = append(*created, p)
		mu.Unlock()
		return p
	}
}

func (p *FakePlayer) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

// Calls returns the recorded method names in order.
func (p *FakePlayer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Called reports how many times method was called.
func (p *FakePlayer) Called(method string) int {
	n := 0
	for _, c := range p.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

// LastSeek returns the position passed to the most recent Seek.
func (p *FakePlayer) LastSeek() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeek
}

// Emit delivers ev as if the SDK fired it. Events after Disconnect are dropped.
func (p *FakePlayer) Emit(ev playback.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.events <- ev
}

func (p *FakePlayer) Connect(ctx context.Context) error {
	p.record("Connect")
	return p.ConnectErr
}

func (p *FakePlayer) Disconnect() {
	p.record("Disconnect")
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
}

func (p *FakePlayer) Events() <-chan playback.Event { return p.events }

func (p *FakePlayer) TogglePlay(ctx context.Context) error {
	p.record("TogglePlay")
	return p.err()
}

func (p *FakePlayer) NextTrack(ctx context.Context) error {
	p.record("NextTrack")
	return p.err()
}

func (p *FakePlayer) PreviousTrack(ctx context.Context) error {
	p.record("PreviousTrack")
	return p.err()
}

func (p *FakePlayer) Seek(ctx context.Context, ms int) error {
	p.record("Seek")
	p.mu.Lock()
	p.lastSeek = ms
	p.mu.Unlock()
	return p.err()
}

func (p *FakePlayer) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("player closed")
	}
	return nil
}
