package session

import (
	"net/url"
	"strings"
	"sync"
)

// TokenKey is the fixed key the credential is stored under.
const TokenKey = "spotify_token"

// Store is a session-scoped slot holding a single credential.
type Store interface {
	Get() (string, bool) // Get returns the stored credential, if any
	Set(token string)    // Set replaces the stored credential
	Clear()              // Clear removes the stored credential
}

// MemoryStore is a [Store] backed by a mutex-guarded key-value map.
//
// Nothing is persisted across restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.values[TokenKey]
	return token, ok && token != ""
}

func (s *MemoryStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		delete(s.values, TokenKey)
		return
	}
	s.values[TokenKey] = token
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, TokenKey)
}

// Capture extracts an access token from the fragment of u and persists it to store.
//
// A credential already in store wins over the fragment. The returned URL is a copy of u with
// the fragment stripped, and ok reports whether store holds a credential afterwards.
func Capture(store Store, u *url.URL) (*url.URL, bool) {
	stripped := *u
	stripped.Fragment = ""
	stripped.RawFragment = ""

	if _, ok := store.Get(); ok {
		return &stripped, true
	}

	token := FragmentToken(u.Fragment)
	if token == "" {
		return &stripped, false
	}

	store.Set(token)
	return &stripped, true
}

// FragmentToken parses fragment as a query string and returns its access_token value.
func FragmentToken(fragment string) string {
	values, err := url.ParseQuery(strings.TrimPrefix(fragment, "#"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(values.Get("access_token"))
}
