package server

import (
	"sync"
	"time"

	"github.com/vovakirdan/netsnake/internal/protocol"
)

// Telemetry counts simulated outcomes per mode.
type Telemetry struct {
	mu      sync.Mutex
	started time.Time
	modes   map[string]*modeCounters
}

type modeCounters struct {
	requests   int64
	lost       int64
	totalDelay time.Duration
}

// NewTelemetry creates empty counters starting now.
func NewTelemetry() *Telemetry {
	return &Telemetry{
		started: time.Now(),
		modes:   make(map[string]*modeCounters),
	}
}

// Record adds one simulated request.
func (t *Telemetry) Record(mode string, delay time.Duration, lost bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.modes[mode]
	if !ok {
		c = &modeCounters{}
		t.modes[mode] = c
	}
	c.requests++
	c.totalDelay += delay
	if lost {
		c.lost++
	}
}

// Snapshot returns the counters as a stats payload.
func (t *Telemetry) Snapshot(activeStreams int) protocol.StatsResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := protocol.StatsResponse{
		Modes:         make(map[string]protocol.ModeStats, len(t.modes)),
		UptimeSec:     int64(time.Since(t.started) / time.Second),
		ActiveStreams: activeStreams,
	}
	for mode, c := range t.modes {
		var avg float64
		if c.requests > 0 {
			avg = float64(c.totalDelay.Milliseconds()) / float64(c.requests)
		}
		out.Modes[mode] = protocol.ModeStats{
			Requests:   c.requests,
			Lost:       c.lost,
			AvgDelayMs: avg,
		}
	}
	return out
}
