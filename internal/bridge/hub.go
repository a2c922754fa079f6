package bridge

import (
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/shared"
	"github.com/gorilla/websocket"
)

//go:embed page.html
var hostPage []byte

const (
	PagePath   = "/player"
	SocketPath = "/player/ws"

	writeWait = 5 * time.Second
)

// peer is a single page connection. Writes are serialized.
type peer struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (p *peer) write(msg Message) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(msg)
}

// Hub serves the SDK host page and relays messages between the page and the attached [Player].
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	peer   *peer
	player *Player
}

// NewHub creates a [Hub] with no page connected.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Hub{
		logger:   logger,
		upgrader: websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
	}
}

// Routes returns the paths served by the hub.
func (h *Hub) Routes() []string {
	return []string{PagePath, SocketPath}
}

// ServeHTTP serves the host page and the websocket endpoint.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case PagePath:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(hostPage)
	case SocketPath:
		h.serveSocket(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Connected reports whether a page is connected.
func (h *Hub) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.peer != nil
}

// NewPlayer is a [playback.PlayerFactory] creating a [Player] relayed through this hub.
func (h *Hub) NewPlayer(name string, token playback.TokenFunc, volume float64) playback.Player {
	return &Player{
		hub:    h,
		name:   name,
		token:  token,
		volume: volume,
		events: make(chan playback.Event, 64),
	}
}

func (h *Hub) serveSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	p := &peer{id: shared.GenerateID(), conn: conn}

	h.mu.Lock()
	previous := h.peer
	h.peer = p
	player := h.player
	h.mu.Unlock()

	if previous != nil {
		h.logger.Info("replacing player page", "previous", previous.id, "peer", p.id)
		previous.conn.Close()
	}
	h.logger.Info("player page connected", "peer", p.id)

	if player != nil && player.wantsConnection() {
		if err := p.write(player.connectMessage()); err != nil {
			h.logger.Warn("failed to send connect", "error", err)
		}
	}

	h.read(p)
}

// read handles messages from p until the connection closes.
func (h *Hub) read(p *peer) {
	defer func() {
		p.conn.Close()

		h.mu.Lock()
		current := h.peer == p
		if current {
			h.peer = nil
		}
		player := h.player
		h.mu.Unlock()

		if current {
			h.logger.Info("player page disconnected", "peer", p.id)
			if player != nil {
				player.deliver(playback.Event{Type: playback.EventNotReady})
			}
		}
	}()

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("player page read failed", "peer", p.id, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Warn("invalid message from player page", "error", err)
			continue
		}

		h.handle(p, msg)
	}
}

func (h *Hub) handle(p *peer, msg Message) {
	h.mu.Lock()
	player := h.player
	h.mu.Unlock()

	switch msg.Type {
	case TypeTokenRequest:
		reply := Message{Type: TypeToken, ID: msg.ID}
		if player != nil {
			reply.Token, _ = player.token()
		}
		if reply.Token == "" {
			h.logger.Warn("token requested without credential")
		}
		if err := p.write(reply); err != nil {
			h.logger.Warn("failed to send token", "error", err)
		}
	case TypeLog:
		h.logger.Debug("player page", "message", msg.Message)
	default:
		ev, ok := msg.event()
		if !ok {
			h.logger.Debug("ignoring message from player page", "type", msg.Type)
			return
		}
		if player == nil {
			h.logger.Debug("no player attached, dropping event", "type", msg.Type)
			return
		}
		player.deliver(ev)
	}
}

// send writes msg to the connected page.
func (h *Hub) send(msg Message) error {
	h.mu.Lock()
	p := h.peer
	h.mu.Unlock()

	if p == nil {
		return shared.ErrPlayerClosed
	}
	return p.write(msg)
}

// attach makes player the target of page events, replacing any previous one.
func (h *Hub) attach(player *Player) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.player = player
}

func (h *Hub) detach(player *Player) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == player {
		h.player = nil
	}
}

// Close closes the page connection, if any.
func (h *Hub) Close() error {
	h.mu.Lock()
	p := h.peer
	h.peer = nil
	h.mu.Unlock()

	if p == nil {
		return nil
	}
	return p.conn.Close()
}
