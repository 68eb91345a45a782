// Categories game
//
// Players join a room by 5-character code and take turns under a shared
// letter and a countdown. On their turn, a player must name five things
// beginning with the drawn letter - a name, a place, an animal, a thing,
// and a movie - before time runs out. Valid submissions score a point;
// the turn then passes to the next player in join order.
//
// Features:
// - Single WebSocket endpoint: /path/ws, rooms addressed by code in-band
// - Room creator becomes host; only the host can start the game
// - Letters never repeat within a game until the alphabet is exhausted
// - Server-authoritative turn deadline, fenced by a per-room serial so a
//   stale timeout can never touch a turn it no longer owns
// - Watchdog sweep recovers stalled turns and reaps idle rooms
// - Pluggable answer validation (heuristic shape rules or word lists)
// - In-browser QR button to share a room, backed by go-qrcode

package main

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type            string  `json:"type"` // "create", "join", "start", "submit"
	Name            string  `json:"name,omitempty"`
	RoomCode        string  `json:"roomCode,omitempty"`
	RoundsPerPlayer int     `json:"roundsPerPlayer,omitempty"`
	Answers         Answers `json:"answers,omitempty"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
	inRoom   atomic.Bool

	// mu guards closed; once set, send is closed and must never be
	// written again. An evicted client can still deliver events, so
	// every outbound path goes through trySend.
	mu     sync.Mutex
	closed bool
}

// trySend queues a message without blocking. It reports false when the
// buffer is full or the channel is already closed.
func (c *Client) trySend(msg any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound channel exactly once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (c *Client) reject(message string) {
	c.trySend(ErrorMessage{Type: "error", Message: message})
}

func (c *Client) readPump(cfg *Config, reg *Registry) {
	defer func() {
		reg.disconnect(cfg, c)
		c.closeSend()
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "create":
			c.handleCreate(cfg, reg, msg)
		case "join":
			c.handleJoin(cfg, reg, msg)
		case "start":
			if room, ok := reg.get(normalizeCode(msg.RoomCode)); ok {
				room.startGame(cfg, c, msg.RoundsPerPlayer)
			} else {
				c.reject("Room not found.")
			}
		case "submit":
			if room, ok := reg.get(normalizeCode(msg.RoomCode)); ok {
				room.submitAnswers(cfg, c, msg.Answers)
			} else {
				c.reject("Room not found.")
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) handleCreate(cfg *Config, reg *Registry, msg ClientMessage) {
	name := playerName(msg.Name)
	if name == "" {
		c.reject("A name is required.")
		return
	}
	if c.inRoom.Swap(true) {
		c.reject("Already in a room.")
		return
	}

	code, room := reg.create()
	logf(cfg, "GAMES: Created room %s", code)
	room.addPlayer(cfg, c, name)
}

func (c *Client) handleJoin(cfg *Config, reg *Registry, msg ClientMessage) {
	name := playerName(msg.Name)
	if name == "" {
		c.reject("A name is required.")
		return
	}
	if c.inRoom.Swap(true) {
		c.reject("Already in a room.")
		return
	}

	room, ok := reg.get(normalizeCode(msg.RoomCode))
	if !ok {
		c.inRoom.Store(false)
		c.reject("Room not found.")
		return
	}
	if !room.addPlayer(cfg, c, name) {
		c.inRoom.Store(false)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func playerName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > 32 {
		name = name[:32]
	}
	return name
}

// WebSocket handler; rooms are addressed by code inside the messages
func serveWSForRegistry(cfg *Config, reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: upgrade failed: %v", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: uuid.NewString(),
		}

		go client.writePump()
		client.readPump(cfg, reg)
	}
}

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/game/index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write(data)
	}
}

// QR handler: generates a PNG QR code for a room's join URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../qr/:code; strip the trailing "/qr/:code" to get the
	// game page, then pass the code as a query parameter.
	path := strings.TrimSuffix(r.URL.Path, "/qr/"+code)

	url := scheme + "://" + r.Host + path + "?code=" + normalizeCode(code)

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerCategoriesGame sets up routes so that:
//   - $path           → HTML client (create or join via in-page form)
//   - $path/ws        → WebSocket shared by all rooms
//   - $path/qr/:code  → PNG QR code linking to a room
func registerCategoriesGame(cfg *Config, path string, mux *httprouter.Router) {
	reg := newRegistry(cfg)
	go reg.watchdog(cfg)

	mux.GET(cfg.prefix+path, getIndexHandler(cfg))

	mux.GET(cfg.prefix+path+"/ws", serveWSForRegistry(cfg, reg))

	mux.GET(cfg.prefix+path+"/qr/:code", qrHandler)
}
