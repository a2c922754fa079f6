package bridge

import (
	"context"
	"sync"

	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/shared"
)

// Player is a [playback.Player] whose SDK instance lives in the host page.
type Player struct {
	hub    *Hub
	name   string
	token  playback.TokenFunc
	volume float64

	mu         sync.Mutex
	events     chan playback.Event
	connecting bool
	closed     bool
}

var _ playback.Player = (*Player)(nil)

// Connect attaches the player to the hub and asks the page to connect the SDK.
//
// When no page is connected yet the request is sent as soon as one connects.
func (p *Player) Connect(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return shared.ErrPlayerClosed
	}
	p.connecting = true
	p.mu.Unlock()

	p.hub.attach(p)

	if !p.hub.Connected() {
		p.hub.logger.Info("waiting for player page", "path", PagePath)
		return nil
	}
	if err := p.hub.send(p.connectMessage()); err != nil {
		p.hub.logger.Warn("failed to send connect, waiting for page", "error", err)
	}
	return nil
}

// Disconnect asks the page to disconnect the SDK, detaches from the hub and closes Events.
func (p *Player) Disconnect() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.connecting = false
	close(p.events)
	p.mu.Unlock()

	if err := p.hub.send(Message{Type: TypeDisconnect}); err != nil {
		p.hub.logger.Debug("disconnect not sent", "error", err)
	}
	p.hub.detach(p)
}

func (p *Player) Events() <-chan playback.Event { return p.events }

func (p *Player) TogglePlay(ctx context.Context) error {
	return p.command(Message{Type: TypeTogglePlay})
}

func (p *Player) NextTrack(ctx context.Context) error {
	return p.command(Message{Type: TypeNextTrack})
}

func (p *Player) PreviousTrack(ctx context.Context) error {
	return p.command(Message{Type: TypePreviousTrack})
}

func (p *Player) Seek(ctx context.Context, ms int) error {
	return p.command(Message{Type: TypeSeek, PositionMS: &ms})
}

func (p *Player) command(msg Message) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil
	}
	return p.hub.send(msg)
}

// deliver queues ev for the coordinator. Events are dropped once closed or when the buffer is full.
func (p *Player) deliver(ev playback.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.events <- ev:
	default:
		p.hub.logger.Warn("player event buffer full, dropping event", "type", ev.Type)
	}
}

func (p *Player) wantsConnection() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connecting && !p.closed
}

func (p *Player) connectMessage() Message {
	volume := p.volume
	return Message{Type: TypeConnect, Name: p.name, Volume: &volume}
}
