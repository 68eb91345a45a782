package main

import (
	"crypto/rand"
	"sync"
	"time"
)

const (
	// Room codes avoid visually ambiguous characters (I/O/0/1).
	roomAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength = 5

	watchdogInterval = 2 * time.Second
	watchdogGrace    = 3 * time.Second
)

// Registry holds every live room, keyed by code. It is the single
// source of truth for room lifecycle: create-on-demand, destroy the
// moment the last player leaves.
type Registry struct {
	mu        sync.Mutex
	rooms     map[string]*Room
	validator Validator
}

func newRegistry(cfg *Config) *Registry {
	return &Registry{
		rooms:     make(map[string]*Room),
		validator: newValidator(cfg),
	}
}

// newRoomCode generates a crypto-random room code and ensures it
// doesn't collide with an existing room.
func (reg *Registry) newRoomCode() string {
	for {
		buf := make([]byte, roomCodeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomCodeLength)
		for i := range out {
			out[i] = roomAlphabet[int(buf[i])%len(roomAlphabet)]
		}
		code := string(out)

		reg.mu.Lock()
		_, exists := reg.rooms[code]
		reg.mu.Unlock()

		if !exists {
			return code
		}
	}
}

func (reg *Registry) create() (string, *Room) {
	code := reg.newRoomCode()
	room := newRoom(code, reg.validator)

	reg.mu.Lock()
	reg.rooms[code] = room
	reg.mu.Unlock()

	return code, room
}

func (reg *Registry) get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	return room, ok
}

func (reg *Registry) destroy(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.rooms, code)
}

func (reg *Registry) snapshot() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// disconnect removes the connection's player from every room it belongs
// to, tearing down any room left empty.
func (reg *Registry) disconnect(cfg *Config, c *Client) {
	for _, room := range reg.snapshot() {
		if room.removeClient(cfg, c) {
			reg.destroy(room.code)
			logf(cfg, "GAMES: Destroyed empty room %s", room.code)
		}
	}
}

// watchdog periodically reconciles room state: it forces turns forward
// when a scheduled timeout was lost, and reaps rooms idle longer than
// the configured timeout. The per-turn timer remains the primary
// mechanism; this is only a safety net.
func (reg *Registry) watchdog(cfg *Config) {
	ticker := time.NewTicker(watchdogInterval)
	for range ticker.C {
		reg.sweep(cfg, time.Now())
	}
}

func (reg *Registry) sweep(cfg *Config, now time.Time) {
	for _, room := range reg.snapshot() {
		room.mu.Lock()

		if room.state == statePlaying && room.timer == nil &&
			now.Sub(room.timerEnd) > watchdogGrace {
			logf(cfg, "GAMES: Watchdog advancing stalled turn in %s", room.code)
			room.toastLocked("Time's up!")
			room.advanceTurnLocked()
		}

		idle := cfg.roomTimeout > 0 && now.Sub(room.lastActive) > cfg.roomTimeout
		room.mu.Unlock()

		if idle {
			logf(cfg, "GAMES: Reaping idle room %s", room.code)
			room.closeAll()
			reg.destroy(room.code)
		}
	}
}
