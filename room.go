package main

import (
	"sort"
	"sync"
	"time"
)

const (
	turnDuration  = 60 * time.Second
	timeoutBuffer = time.Second

	minPlayers    = 2
	defaultRounds = 3
	minRounds     = 1
	maxRounds     = 10
)

type roomState int

const (
	stateLobby roomState = iota
	statePlaying
	stateEnded
)

func (s roomState) String() string {
	switch s {
	case statePlaying:
		return "playing"
	case stateEnded:
		return "ended"
	}
	return "lobby"
}

// Player is one room member. The ID is derived from the connection
// and lives exactly as long as the player's membership.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Snapshot is the complete externally visible state of a room,
// broadcast on every state change.
type Snapshot struct {
	State           string   `json:"state"`
	Players         []Player `json:"players"`
	HostID          string   `json:"hostId"`
	TurnIndex       int      `json:"turnIndex"`
	CurrentLetter   string   `json:"currentLetter"`
	RoundsPerPlayer int      `json:"roundsPerPlayer"`
	Order           []string `json:"order"`
	TimerEndTs      int64    `json:"timerEndTs"`
	UsedLetters     []string `json:"usedLetters"`
}

// Messages sent to clients
type RoomJoinedMessage struct {
	Type     string   `json:"type"` // "room_joined"
	RoomCode string   `json:"roomCode"`
	PlayerID string   `json:"playerId"`
	Snapshot Snapshot `json:"snapshot"`
}

type RoomUpdateMessage struct {
	Type     string   `json:"type"` // "room_update"
	Snapshot Snapshot `json:"snapshot"`
}

type TurnStartedMessage struct {
	Type            string   `json:"type"` // "turn_started"
	Snapshot        Snapshot `json:"snapshot"`
	CurrentPlayerID string   `json:"currentPlayerId"`
}

type ToastMessage struct {
	Type    string `json:"type"` // "toast"
	Message string `json:"message"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// Room is one game session. All mutation happens under mu; the
// scheduled turn timeout and the registry watchdog take the same lock,
// so submissions and timeouts for one room never interleave.
type Room struct {
	code    string
	clients map[*Client]bool

	mu sync.Mutex

	state           roomState
	players         []*Player
	order           []string
	hostID          string
	turnIndex       int
	roundsPerPlayer int
	currentLetter   rune
	usedLetters     map[rune]bool
	timerEnd        time.Time

	// turnSerial increments on every turn transition. A scheduled
	// timeout is only honored while its captured serial still matches,
	// which makes a timer that loses the race a silent no-op.
	turnSerial uint64
	timer      *time.Timer

	lastActive time.Time
	validator  Validator
}

func newRoom(code string, validator Validator) *Room {
	now := time.Now()
	return &Room{
		code:            code,
		clients:         make(map[*Client]bool),
		state:           stateLobby,
		roundsPerPlayer: defaultRounds,
		usedLetters:     make(map[rune]bool),
		lastActive:      now,
		validator:       validator,
	}
}

func (r *Room) snapshotLocked() Snapshot {
	players := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, *p)
	}

	order := make([]string, len(r.order))
	copy(order, r.order)

	used := make([]string, 0, len(r.usedLetters))
	for letter := range r.usedLetters {
		used = append(used, string(letter))
	}
	sort.Strings(used)

	letter := ""
	if r.currentLetter != 0 {
		letter = string(r.currentLetter)
	}

	var timerEnd int64
	if !r.timerEnd.IsZero() {
		timerEnd = r.timerEnd.UnixMilli()
	}

	return Snapshot{
		State:           r.state.String(),
		Players:         players,
		HostID:          r.hostID,
		TurnIndex:       r.turnIndex,
		CurrentLetter:   letter,
		RoundsPerPlayer: r.roundsPerPlayer,
		Order:           order,
		TimerEndTs:      timerEnd,
		UsedLetters:     used,
	}
}

func (r *Room) currentPlayerIDLocked() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[r.turnIndex%len(r.order)]
}

func (r *Room) playerByIDLocked(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) broadcastLocked(msg any) {
	for client := range r.clients {
		if !client.trySend(msg) {
			delete(r.clients, client)
			client.closeSend()
		}
	}
}

func (r *Room) sendToLocked(c *Client, msg any) {
	if !r.clients[c] {
		return
	}
	if !c.trySend(msg) {
		delete(r.clients, c)
		c.closeSend()
	}
}

func (r *Room) toastLocked(message string) {
	r.broadcastLocked(ToastMessage{Type: "toast", Message: message})
}

func (r *Room) errorToLocked(c *Client, message string) {
	r.sendToLocked(c, ErrorMessage{Type: "error", Message: message})
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// addPlayer appends a lobby member; join order doubles as turn order.
// The rejection path answers on the client's channel directly, since a
// rejected client never enters the room's client set.
func (r *Room) addPlayer(cfg *Config, c *Client, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateLobby {
		c.reject("Game already started.")
		return false
	}

	r.lastActive = time.Now()

	player := &Player{ID: c.playerID, Name: name}
	r.players = append(r.players, player)
	r.order = append(r.order, player.ID)
	if r.hostID == "" {
		r.hostID = player.ID
	}
	r.clients[c] = true

	logf(cfg, "GAMES: Player %q joined %s", name, r.code)

	r.sendToLocked(c, RoomJoinedMessage{
		Type:     "room_joined",
		RoomCode: r.code,
		PlayerID: player.ID,
		Snapshot: r.snapshotLocked(),
	})
	r.broadcastLocked(RoomUpdateMessage{Type: "room_update", Snapshot: r.snapshotLocked()})

	return true
}

// startGame moves the room from lobby to playing and begins the first turn.
func (r *Room) startGame(cfg *Config, c *Client, rounds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateLobby {
		r.errorToLocked(c, "Game already started.")
		return
	}
	if c.playerID != r.hostID {
		r.errorToLocked(c, "Only host can start.")
		return
	}
	if len(r.players) < minPlayers {
		r.errorToLocked(c, "Need at least 2 players to start.")
		return
	}

	if rounds == 0 {
		rounds = defaultRounds
	}
	if rounds < minRounds {
		rounds = minRounds
	}
	if rounds > maxRounds {
		rounds = maxRounds
	}

	r.lastActive = time.Now()
	r.roundsPerPlayer = rounds
	r.turnIndex = 0
	r.usedLetters = make(map[rune]bool)
	r.state = statePlaying
	r.stopTimerLocked()

	logf(cfg, "GAMES: Game started in %s with %d players, %d rounds each", r.code, len(r.players), rounds)

	r.startTurnLocked()
}

// startTurnLocked begins the turn at the current turnIndex, or ends the
// game once every player has had their rounds.
func (r *Room) startTurnLocked() {
	if r.turnIndex >= len(r.players)*r.roundsPerPlayer {
		r.endGameLocked()
		return
	}

	r.turnSerial++
	serial := r.turnSerial
	r.lastActive = time.Now()

	letter := drawLetter(r.usedLetters)
	r.usedLetters[letter] = true
	r.currentLetter = letter
	r.timerEnd = time.Now().Add(turnDuration)

	r.stopTimerLocked()
	r.timer = time.AfterFunc(turnDuration+timeoutBuffer, func() {
		r.onTurnTimeout(serial)
	})

	r.broadcastLocked(TurnStartedMessage{
		Type:            "turn_started",
		Snapshot:        r.snapshotLocked(),
		CurrentPlayerID: r.currentPlayerIDLocked(),
	})
}

// onTurnTimeout fires after the turn deadline plus a small buffer.
// Cancellation is best-effort only; the serial comparison is what keeps
// a stale timer from touching a turn it no longer owns.
func (r *Room) onTurnTimeout(serial uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != statePlaying || r.turnSerial != serial {
		return
	}

	r.timer = nil
	r.toastLocked("Time's up!")
	r.advanceTurnLocked()
}

func (r *Room) advanceTurnLocked() {
	r.stopTimerLocked()
	r.turnIndex++
	r.startTurnLocked()
}

func (r *Room) endGameLocked() {
	r.state = stateEnded
	r.currentLetter = 0
	r.timerEnd = time.Time{}
	r.stopTimerLocked()

	r.toastLocked("Game over!")
	r.broadcastLocked(RoomUpdateMessage{Type: "room_update", Snapshot: r.snapshotLocked()})
}

// submitAnswers handles one submission from the current player. A late
// submission skips the turn unscored; an invalid one leaves the turn
// and its deadline untouched so the player can retry.
func (r *Room) submitAnswers(cfg *Config, c *Client, answers Answers) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != statePlaying {
		r.errorToLocked(c, "Game is not in progress.")
		return
	}
	if c.playerID != r.currentPlayerIDLocked() {
		r.errorToLocked(c, "It's not your turn.")
		return
	}

	r.lastActive = time.Now()

	if time.Now().After(r.timerEnd) {
		if cfg.lateNotice {
			r.toastLocked("Too late!")
		}
		r.advanceTurnLocked()
		return
	}

	ok, reason := checkSubmission(r.validator, r.currentLetter, answers, cfg.uniqueAnswers)
	if !ok {
		r.errorToLocked(c, reason)
		return
	}

	player := r.playerByIDLocked(c.playerID)
	if player == nil {
		return
	}
	player.Score++

	logf(cfg, "GAMES: %q scored in %s (letter %c)", player.Name, r.code, r.currentLetter)

	r.toastLocked(player.Name + " scores a point!")
	r.advanceTurnLocked()
}

// removeClient drops a disconnected player from both the player
// collection and the turn order in one step. It reports whether the
// room is now empty; the caller owns registry teardown.
func (r *Room) removeClient(cfg *Config, c *Client) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The client may already have been evicted by a failed send; the
	// player entry still has to go.
	if r.clients[c] {
		delete(r.clients, c)
		c.closeSend()
	}

	removed := r.playerByIDLocked(c.playerID)
	if removed == nil {
		return false
	}

	wasCurrent := r.state == statePlaying && c.playerID == r.currentPlayerIDLocked()

	players := r.players[:0]
	for _, p := range r.players {
		if p.ID != c.playerID {
			players = append(players, p)
		}
	}
	r.players = players

	order := r.order[:0]
	for _, id := range r.order {
		if id != c.playerID {
			order = append(order, id)
		}
	}
	r.order = order

	logf(cfg, "GAMES: Player %q left %s", removed.Name, r.code)

	if len(r.players) == 0 {
		r.turnSerial++
		r.stopTimerLocked()
		return true
	}

	if r.hostID == c.playerID {
		r.hostID = r.order[0]
	}

	if wasCurrent {
		r.toastLocked(removed.Name + " left the game.")
		r.advanceTurnLocked()
		return false
	}

	// The departure shrinks the turn budget, so a game on its last
	// turns may be over even though nobody's turn just ended.
	if r.state == statePlaying && r.turnIndex >= len(r.players)*r.roundsPerPlayer {
		r.endGameLocked()
		return false
	}

	r.broadcastLocked(RoomUpdateMessage{Type: "room_update", Snapshot: r.snapshotLocked()})

	return false
}

// closeAll disconnects every client of this room (used by the watchdog
// when reaping idle rooms).
func (r *Room) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.turnSerial++
	r.stopTimerLocked()
	r.state = stateEnded

	for c := range r.clients {
		c.closeSend()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		delete(r.clients, c)
	}
	r.players = nil
	r.order = nil
}
