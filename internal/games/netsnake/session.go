// Package netsnake implements the NetSnake session state and the gameplay
// reconciler: confirmed moves mutate the board, lost moves only leave a
// ghost behind.
package netsnake

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/netsnake/internal/config"
	"github.com/vovakirdan/netsnake/internal/core"
	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/protocol"
	"github.com/vovakirdan/netsnake/internal/stats"
)

// Phase is the move-cycle state of a session.
type Phase int

const (
	PhaseIdle     Phase = iota
	PhaseAwaiting       // One move request is outstanding
	PhaseCooldown       // Forced busy window after a timeout
	PhaseOver           // Terminal; a new session is required
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaiting:
		return "awaiting"
	case PhaseCooldown:
		return "cooldown"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// EndReason explains why a session ended.
type EndReason string

const ReasonCollision EndReason = "collision"

// DefaultPlayerName is used when the player does not enter one.
const DefaultPlayerName = "Player"

// vectors maps accepted directions to grid steps.
var vectors = map[protocol.Direction]core.Vector{
	protocol.DirUp:    core.VecUp,
	protocol.DirDown:  core.VecDown,
	protocol.DirLeft:  core.VecLeft,
	protocol.DirRight: core.VecRight,
}

// Options configures a new session.
type Options struct {
	Name  string
	Mode  netsim.Mode
	Seed  int64 // 0 seeds from the current time
	Game  config.GameConfig
	Alert time.Duration // How long a degraded move keeps the alert up
	Now   func() time.Time
}

// Session is one game from start to game over. All methods are safe for
// concurrent use; the move client calls them from request goroutines while
// the UI reads snapshots.
type Session struct {
	mu sync.Mutex

	id         string
	name       string
	mode       netsim.Mode
	gridSize   int
	foodPoints int
	ghostRule  config.GhostPolicy
	alertFor   time.Duration
	now        func() time.Time
	rng        *rand.Rand
	startedAt  time.Time

	snake   []core.Point // Head at index 0
	dir     core.Vector
	desired protocol.Direction
	food    core.Point
	ghosts  []core.Point
	score   int

	phase      Phase
	reason     EndReason
	endedAt    time.Time
	seq        int64
	alertUntil time.Time
	stats      *stats.Aggregator
}

// NewSession creates a session with the snake at its starting position.
func NewSession(opts Options) *Session {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Name == "" {
		opts.Name = DefaultPlayerName
	}
	if opts.Game.GridSize <= 0 {
		opts.Game = config.DefaultConfig().Game
	}

	s := &Session{
		id:         uuid.NewString(),
		name:       opts.Name,
		mode:       opts.Mode,
		gridSize:   opts.Game.GridSize,
		foodPoints: opts.Game.FoodPoints,
		ghostRule:  config.NewGhostPolicy(opts.Game.Ghosts),
		alertFor:   opts.Alert,
		now:        opts.Now,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		stats:      stats.New(),
	}
	s.startedAt = s.now()

	// Three segments heading right, placed on the middle row
	row := s.gridSize / 2
	s.snake = []core.Point{
		{X: 5, Y: row},
		{X: 4, Y: row},
		{X: 3, Y: row},
	}
	s.dir = core.VecRight
	s.desired = protocol.DirRight
	s.spawnFood()

	return s
}

// ID returns the session UUID.
func (s *Session) ID() string {
	return s.id
}

// Name returns the player name.
func (s *Session) Name() string {
	return s.name
}

// Mode returns the network mode chosen at session start.
func (s *Session) Mode() netsim.Mode {
	return s.mode
}

// SetDesired records the latest direction input. It is replayed by the next
// automatic step; inputs are never queued.
func (s *Session) SetDesired(dir protocol.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir.Valid() {
		s.desired = dir
	}
}

// Desired returns the latest direction input.
func (s *Session) Desired() protocol.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desired
}

// Begin moves the session from Idle to AwaitingResponse and issues the next
// sequence number. It returns false, changing nothing, if the session is
// busy, cooling down or over.
func (s *Session) Begin(dir protocol.Direction) (protocol.MoveRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		return protocol.MoveRequest{}, false
	}
	s.phase = PhaseAwaiting
	s.seq++
	return protocol.MoveRequest{Direction: dir, Mode: string(s.mode), Seq: s.seq}, true
}

// Release returns an awaiting session to Idle. An ended session stays over.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseAwaiting {
		s.phase = PhaseIdle
	}
}

// Cooldown keeps the session busy after a timeout until EndCooldown.
func (s *Session) Cooldown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseAwaiting || s.phase == PhaseIdle {
		s.phase = PhaseCooldown
	}
}

// EndCooldown returns a cooling-down session to Idle.
func (s *Session) EndCooldown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseCooldown {
		s.phase = PhaseIdle
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Over reports whether the session has ended.
func (s *Session) Over() bool {
	return s.Phase() == PhaseOver
}

// Seq returns the last issued sequence number.
func (s *Session) Seq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}
