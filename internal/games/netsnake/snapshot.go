package netsnake

import (
	"time"

	"github.com/vovakirdan/netsnake/internal/core"
	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/protocol"
	"github.com/vovakirdan/netsnake/internal/stats"
)

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	GridSize int                `json:"grid_size"`
	Snake    []core.Point       `json:"snake"`
	Food     core.Point         `json:"food"`
	Ghosts   []core.Point       `json:"ghosts"`
	Score    int                `json:"score"`
	Desired  protocol.Direction `json:"desired"`
	Phase    Phase              `json:"phase"`
	Reason   EndReason          `json:"reason,omitempty"`
	Seq      int64              `json:"seq"`
	Alerting bool               `json:"alerting"`
	Stats    stats.Summary      `json:"stats"`
}

// Busy reports whether a new move would be skipped.
func (s Snapshot) Busy() bool {
	return s.Phase == PhaseAwaiting || s.Phase == PhaseCooldown
}

// Over reports whether the session has ended.
func (s Snapshot) Over() bool {
	return s.Phase == PhaseOver
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		GridSize: s.gridSize,
		Snake:    append([]core.Point(nil), s.snake...),
		Food:     s.food,
		Ghosts:   append([]core.Point(nil), s.ghosts...),
		Score:    s.score,
		Desired:  s.desired,
		Phase:    s.phase,
		Reason:   s.reason,
		Seq:      s.seq,
		Alerting: s.now().Before(s.alertUntil),
		Stats:    s.stats.Summary(),
	}
}

// Result is the final record of a session, as stored on the leaderboard.
type Result struct {
	SessionID string
	Name      string
	Mode      netsim.Mode
	Score     int
	AvgMs     int
	JitterMs  int
	LossPct   int
	Reason    EndReason
	Duration  time.Duration
	EndedAt   time.Time
}

// Result summarizes the session. It may be called before the session ends,
// in which case EndedAt is the current time.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	ended := s.endedAt
	if ended.IsZero() {
		ended = s.now()
	}
	sum := s.stats.Summary()
	return Result{
		SessionID: s.id,
		Name:      s.name,
		Mode:      s.mode,
		Score:     s.score,
		AvgMs:     sum.AvgMs,
		JitterMs:  sum.JitterMs,
		LossPct:   sum.LossPct,
		Reason:    s.reason,
		Duration:  ended.Sub(s.startedAt),
		EndedAt:   ended,
	}
}
