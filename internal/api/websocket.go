package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/sim"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/wire"
)

const (
	// MaxWSConnectionsTotal is the maximum number of spectator connections allowed.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum spectator connections per IP.
	MaxWSConnectionsPerIP = 10

	// spectatorBroadcastInterval throttles snapshot pushes well below
	// the 240Hz tick rate; spectators watch, they don't play.
	spectatorBroadcastInterval = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("spectator connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a spectator connection with its source IP.
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// spectatorSnapshot is the JSON shape pushed to spectators; it mirrors
// sim.Snapshot but with field names stable across the wire protocol's
// own binary layout changes.
type spectatorSnapshot struct {
	Tick    uint64             `json:"tick"`
	Players []wire.PlayerState `json:"players"`
	Enemies []wire.EnemyState  `json:"enemies"`
}

// WebSocketHub fans a read-only stream of simulation snapshots out to
// spectator clients, with the same per-IP and total connection caps a
// player-facing endpoint would need.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter *WebSocketRateLimiter

	lastPublish time.Time
}

// NewWebSocketHub creates a new hub with connection limiting.
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run starts the hub's event loop. Call this in its own goroutine.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()
			log.Printf("spectator connected from %s (%d total)", client.ip, h.ClientCount())
			UpdateWSConnections(h.ClientCount())

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			log.Printf("spectator disconnected (%d remaining)", h.ClientCount())
			UpdateWSConnections(h.ClientCount())

		case message := <-h.broadcast:
			h.mu.RLock()
			dead := make([]*websocket.Conn, 0)
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					dead = append(dead, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range dead {
				h.unregister <- conn
			}
			IncrementWSMessages()
		}
	}
}

// PublishSnapshot JSON-encodes a simulation snapshot and hands it to
// the broadcast channel, dropping it under backpressure rather than
// blocking the caller's tick loop. Safe to call every tick: it
// self-throttles to spectatorBroadcastInterval, since spectators watch
// at video-frame rates, not the simulation's own 240Hz.
func (h *WebSocketHub) PublishSnapshot(snap sim.Snapshot) {
	if h.ClientCount() == 0 {
		return
	}
	h.mu.Lock()
	due := time.Since(h.lastPublish) >= spectatorBroadcastInterval
	if due {
		h.lastPublish = time.Now()
	}
	h.mu.Unlock()
	if !due {
		return
	}

	msg, err := json.Marshal(spectatorSnapshot{
		Tick:    snap.Tick,
		Players: snap.Players,
		Enemies: snap.Enemies,
	})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		// channel full, skip this push
	}
}

// ClientCount returns the number of connected spectators.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades a spectator connection, enforcing the same
// connection caps a UDP listener enforces via its client table.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("spectator connection rejected: total limit reached (%d)", h.ClientCount())
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("spectator connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("spectator upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{conn: conn, ip: ip}
	h.register <- client

	// Read loop exists only to notice the peer closing the connection;
	// spectators have no commands to send.
	go func() {
		defer func() {
			h.unregister <- conn
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}
