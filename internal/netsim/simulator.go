// Package netsim simulates a degraded network hop: it decides, per move
// request, how long the response is held back and whether it is "lost".
package netsim

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/netsnake/internal/config"
)

// Mode selects a network degradation profile.
type Mode string

const (
	ModePing   Mode = "ping"
	ModeJitter Mode = "jitter"
	ModeNormal Mode = "normal"
	// ModeSolo never reaches the server: the client applies moves locally.
	ModeSolo Mode = "solo"
)

// Modes lists the selectable modes in menu order.
var Modes = []Mode{ModePing, ModeJitter, ModeNormal, ModeSolo}

// ParseMode maps s case-insensitively to a Mode.
// Unrecognised values map to ModeNormal.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePing, ModeJitter, ModeSolo:
		return m
	default:
		return ModeNormal
	}
}

// Profile is the jitter amplitude and loss probability of one mode.
type Profile struct {
	JitterAmplitudeMs int
	LossRate          float64
}

// Profiles holds the profile of every mode.
type Profiles struct {
	Ping    Profile
	Jitter  Profile
	Default Profile
}

// For returns the profile for mode. Solo and unknown modes use Default.
func (p Profiles) For(mode Mode) Profile {
	switch mode {
	case ModePing:
		return p.Ping
	case ModeJitter:
		return p.Jitter
	default:
		return p.Default
	}
}

// ProfilesFromConfig converts configured mode profiles.
func ProfilesFromConfig(m config.ModesConfig) Profiles {
	conv := func(mp config.ModeProfile) Profile {
		return Profile{JitterAmplitudeMs: mp.JitterAmplitudeMs, LossRate: mp.LossRate}
	}
	return Profiles{
		Ping:    conv(m.Ping),
		Jitter:  conv(m.Jitter),
		Default: conv(m.Default),
	}
}

// Result is the simulated outcome for one move request.
type Result struct {
	Delay    time.Duration // Never negative
	JitterMs int           // Signed jitter term applied to the base latency
	LossRate float64
	Lost     bool
}

// Simulator draws simulated network outcomes. It is safe for concurrent use.
type Simulator struct {
	baseMs   int
	profiles Profiles

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a simulator with the given base latency and profiles.
// A seed of 0 seeds from the current time.
func New(baseLatency time.Duration, profiles Profiles, seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		baseMs:   int(baseLatency / time.Millisecond),
		profiles: profiles,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// NewFromConfig creates a simulator from the server and mode configuration.
func NewFromConfig(cfg config.Config, seed int64) *Simulator {
	return New(cfg.Server.BaseLatency(), ProfilesFromConfig(cfg.Modes), seed)
}

// BaseLatency returns the configured base delay.
func (s *Simulator) BaseLatency() time.Duration {
	return time.Duration(s.baseMs) * time.Millisecond
}

// MaxDelay returns the largest delay any mode can produce.
func (s *Simulator) MaxDelay() time.Duration {
	amp := max(s.profiles.Ping.JitterAmplitudeMs, s.profiles.Jitter.JitterAmplitudeMs, s.profiles.Default.JitterAmplitudeMs)
	return time.Duration(s.baseMs+amp) * time.Millisecond
}

// Simulate draws the outcome for one request in the given mode.
// mode is parsed case-insensitively.
func (s *Simulator) Simulate(mode string) Result {
	s.mu.Lock()
	r := s.rng.Float64()
	lossRoll := s.rng.Float64()
	s.mu.Unlock()

	return s.outcome(ParseMode(mode), r, lossRoll)
}

// outcome computes the result for the jitter draw r and the independent
// loss draw lossRoll, both in [0, 1).
func (s *Simulator) outcome(mode Mode, r, lossRoll float64) Result {
	p := s.profiles.For(mode)

	jitter := int(math.Floor(r * float64(p.JitterAmplitudeMs)))
	if r < 0.5 {
		jitter = -jitter
	}

	delayMs := max(0, s.baseMs+jitter)

	return Result{
		Delay:    time.Duration(delayMs) * time.Millisecond,
		JitterMs: jitter,
		LossRate: p.LossRate,
		Lost:     lossRoll < p.LossRate,
	}
}
