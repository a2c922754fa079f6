package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/desertthunder/tunedeck/internal/session"
	"github.com/desertthunder/tunedeck/internal/shared"
)

// Callback routes served by [CallbackHandler].
const (
	CallbackPath      = "/callback"
	CallbackTokenPath = "/callback/token"
)

const maxFragmentBytes = 8 << 10

// LoginResult contains the outcome of an implicit grant login.
type LoginResult struct {
	Authenticated bool
	err           error
}

func (r LoginResult) Error() error {
	return r.err
}

// CallbackHandler captures the access token returned in the redirect fragment.
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	store      session.Store
	state      string
	resultChan chan LoginResult
	once       sync.Once
}

// NewCallbackHandler creates a handler writing captured tokens to store.
//
// When state is non-empty the fragment must echo it back.
func NewCallbackHandler(store session.Store, state string) *CallbackHandler {
	return &CallbackHandler{
		store:      store,
		state:      state,
		resultChan: make(chan LoginResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{CallbackPath, CallbackTokenPath}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == CallbackPath && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		io.WriteString(w, callbackPage)
	case r.URL.Path == CallbackTokenPath && r.Method == http.MethodPost:
		h.capture(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CallbackHandler) capture(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFragmentBytes))
	if err != nil {
		http.Error(w, "Could not read fragment", http.StatusBadRequest)
		return
	}
	fragment := strings.TrimPrefix(strings.TrimSpace(string(body)), "#")

	values, _ := url.ParseQuery(fragment)
	if msg := values.Get("error"); msg != "" {
		h.Send(LoginResult{err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	if h.state != "" && values.Get("access_token") != "" && values.Get("state") != h.state {
		h.Send(LoginResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	_, ok := session.Capture(h.store, &url.URL{Path: CallbackPath, Fragment: fragment})
	if !ok {
		h.Send(LoginResult{err: errors.Join(shared.ErrAuthFailed, shared.ErrNotAuthenticated)})
		http.Error(w, "No access token in redirect", http.StatusBadRequest)
		return
	}

	h.Send(LoginResult{Authenticated: true})
	w.WriteHeader(http.StatusNoContent)
}

// Send delivers the result through the channel (only once).
func (h *CallbackHandler) Send(result LoginResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan LoginResult {
	return h.resultChan
}

const callbackPage = `<!DOCTYPE html>
<html>
<head>
    <title>tunedeck</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        h1.failed { color: #e22134; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1 id="title">Signing in…</h1>
        <p id="detail">Completing login with Spotify.</p>
    </div>
    <script>
        const fragment = window.location.hash.substring(1);
        history.replaceState(null, "", window.location.pathname);
        const title = document.getElementById("title");
        const detail = document.getElementById("detail");
        fetch("/callback/token", { method: "POST", body: fragment })
            .then((res) => {
                if (!res.ok) throw new Error(res.statusText);
                title.textContent = "✓ Login Successful";
                detail.textContent = "You can close this window and return to the terminal.";
            })
            .catch((err) => {
                title.textContent = "Login Failed";
                title.className = "failed";
                detail.textContent = String(err);
            });
    </script>
</body>
</html>
`
