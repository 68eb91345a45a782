package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCodes(t *testing.T) {
	t.Parallel()

	reg := newRegistry(testConfig())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, room := reg.create()

		assert.Len(t, code, roomCodeLength)
		assert.False(t, seen[code], "duplicate room code %s", code)
		seen[code] = true

		for _, r := range code {
			assert.True(t, strings.ContainsRune(roomAlphabet, r), "unexpected character %c in code %s", r, code)
		}

		got, ok := reg.get(code)
		require.True(t, ok)
		assert.Same(t, room, got)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	t.Parallel()

	reg := newRegistry(testConfig())

	code, _ := reg.create()

	_, ok := reg.get(code)
	assert.True(t, ok)

	_, ok = reg.get("ZZZZZ")
	assert.False(t, ok)

	reg.destroy(code)
	_, ok = reg.get(code)
	assert.False(t, ok)

	// Destroying twice is harmless.
	reg.destroy(code)
}

func TestWatchdogIgnoresRoomWithLiveTimer(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	reg := newRegistry(cfg)

	p1 := newTestClient("p1")
	p2 := newTestClient("p2")
	_, room := reg.create()
	room.addPlayer(cfg, p1, "One")
	room.addPlayer(cfg, p2, "Two")
	room.startGame(cfg, p1, 0)

	before := room.snapshotForTest()

	// Well past the deadline, but the scheduled timeout is still
	// pending, so the sweep must not act.
	reg.sweep(cfg, time.Now().Add(turnDuration+time.Minute))

	assert.Equal(t, before.TurnIndex, room.snapshotForTest().TurnIndex)
}

func TestWatchdogRecoversLostTimer(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	reg := newRegistry(cfg)

	p1 := newTestClient("p1")
	p2 := newTestClient("p2")
	_, room := reg.create()
	room.addPlayer(cfg, p1, "One")
	room.addPlayer(cfg, p2, "Two")
	room.startGame(cfg, p1, 0)

	before := room.snapshotForTest()
	drain(p2)

	room.mu.Lock()
	room.stopTimerLocked()
	room.mu.Unlock()

	// Not yet past the grace period: no action.
	reg.sweep(cfg, time.Now())
	assert.Equal(t, before.TurnIndex, room.snapshotForTest().TurnIndex)

	reg.sweep(cfg, time.Now().Add(turnDuration+watchdogGrace+time.Second))

	after := room.snapshotForTest()
	assert.Equal(t, before.TurnIndex+1, after.TurnIndex)
	assert.Contains(t, toastMessages(drain(p2)), "Time's up!")
}

func TestWatchdogReapsIdleRooms(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.roomTimeout = time.Minute
	reg := newRegistry(cfg)

	p1 := newTestClient("p1")
	code, room := reg.create()
	room.addPlayer(cfg, p1, "One")

	reg.sweep(cfg, time.Now())
	_, ok := reg.get(code)
	assert.True(t, ok)

	reg.sweep(cfg, time.Now().Add(2*time.Minute))
	_, ok = reg.get(code)
	assert.False(t, ok, "idle room should be reaped")
}
