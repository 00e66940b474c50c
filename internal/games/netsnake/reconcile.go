package netsnake

import (
	"time"

	"github.com/vovakirdan/netsnake/internal/core"
	"github.com/vovakirdan/netsnake/internal/protocol"
)

// Confirm applies a move the server acknowledged and records its round-trip
// time. Ghost gating sees the samples collected before this one.
func (s *Session) Confirm(dir protocol.Direction, rtt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyMove(dir)
	s.stats.RecordSuccess(rtt)
}

// Lose records a move the server reported as lost. The board does not move.
func (s *Session) Lose(rtt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.RecordLoss(rtt)
	s.degrade()
}

// TimeOut records a move that never got an answer.
func (s *Session) TimeOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.RecordTimeout()
	s.degrade()
}

// applyMove advances the snake one cell in dir. Caller holds mu.
func (s *Session) applyMove(dir protocol.Direction) {
	if s.phase == PhaseOver {
		return
	}
	vec, ok := vectors[dir]
	if !ok {
		return
	}

	s.dir = vec
	head := s.snake[0].Add(vec).Wrap(s.gridSize)

	// Every body cell counts, the tail included, and the board is left
	// as it was before the fatal move.
	for _, p := range s.snake {
		if p == head {
			s.end(ReasonCollision)
			return
		}
	}

	grown := make([]core.Point, 0, len(s.snake)+1)
	grown = append(grown, head)
	grown = append(grown, s.snake...)

	if head == s.food {
		s.score += s.foodPoints
		s.snake = grown
		s.spawnFood()
		if vol := s.stats.Volatility(); s.ghostRule.ShouldSpawn(vol, s.rng.Float64()) {
			s.ghosts = append(s.ghosts, s.randomCell())
		}
		return
	}

	s.snake = grown[:len(grown)-1]
}

// degrade marks the current head with a ghost and raises the alert.
// Caller holds mu.
func (s *Session) degrade() {
	if s.phase == PhaseOver {
		return
	}
	s.ghosts = append(s.ghosts, s.snake[0])
	s.alertUntil = s.now().Add(s.alertFor)
}

func (s *Session) end(reason EndReason) {
	s.phase = PhaseOver
	s.reason = reason
	s.endedAt = s.now()
}

func (s *Session) spawnFood() {
	s.food = s.randomCell()
}

func (s *Session) randomCell() core.Point {
	return core.Point{X: s.rng.Intn(s.gridSize), Y: s.rng.Intn(s.gridSize)}
}
