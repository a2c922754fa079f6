package session

import (
	"sync"

	"github.com/desertthunder/tunedeck/internal/shared"
	"golang.org/x/oauth2"
)

// Credential is the capability handed to every component that needs the current bearer token.
//
// It wraps a [Store], satisfies [oauth2.TokenSource] and notifies listeners whenever the
// credential is set or cleared.
type Credential struct {
	store Store

	mu        sync.Mutex
	listeners []func(authenticated bool)
}

var (
	_ Store              = (*Credential)(nil)
	_ oauth2.TokenSource = (*Credential)(nil)
)

// NewCredential creates a [Credential] over store.
func NewCredential(store Store) *Credential {
	return &Credential{store: store}
}

// Current returns the credential as it is right now.
func (c *Credential) Current() (string, bool) {
	return c.store.Get()
}

// Token returns the current credential as an [oauth2.Token].
//
// Returns [shared.ErrNotAuthenticated] when no credential is stored.
func (c *Credential) Token() (*oauth2.Token, error) {
	token, ok := c.store.Get()
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func (c *Credential) Get() (string, bool) { return c.store.Get() }

// Set stores token and notifies listeners.
func (c *Credential) Set(token string) {
	c.store.Set(token)
	c.notify(token != "")
}

// Clear removes the credential and notifies listeners.
func (c *Credential) Clear() {
	_, had := c.store.Get()
	c.store.Clear()
	if had {
		c.notify(false)
	}
}

// OnChange registers fn to be called after every Set and every Clear that removed a credential.
func (c *Credential) OnChange(fn func(authenticated bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Credential) notify(authenticated bool) {
	c.mu.Lock()
	listeners := append([]func(bool){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(authenticated)
	}
}
