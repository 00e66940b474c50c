package netsim

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/netsnake/internal/config"
)

func defaultSimulator(base time.Duration, seed int64) *Simulator {
	return New(base, ProfilesFromConfig(config.DefaultConfig().Modes), seed)
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"ping":    ModePing,
		"PING":    ModePing,
		" Jitter": ModeJitter,
		"solo":    ModeSolo,
		"normal":  ModeNormal,
		"":        ModeNormal,
		"wifi":    ModeNormal,
	}
	for in, expected := range tests {
		if got := ParseMode(in); got != expected {
			t.Errorf("ParseMode(%q) = %q, expected %q", in, got, expected)
		}
	}
}

func TestProfilesForUnknownUsesDefault(t *testing.T) {
	p := ProfilesFromConfig(config.DefaultConfig().Modes)

	if p.For(ModePing) != (Profile{JitterAmplitudeMs: 15, LossRate: 0.01}) {
		t.Errorf("unexpected ping profile %+v", p.For(ModePing))
	}
	if p.For(ModeJitter) != (Profile{JitterAmplitudeMs: 140, LossRate: 0.08}) {
		t.Errorf("unexpected jitter profile %+v", p.For(ModeJitter))
	}
	if p.For(ParseMode("satellite")) != (Profile{JitterAmplitudeMs: 40, LossRate: 0.03}) {
		t.Errorf("unknown modes should use the default profile")
	}
}

func TestOutcomeJitterSign(t *testing.T) {
	s := defaultSimulator(60*time.Millisecond, 1)

	low := s.outcome(ModeJitter, 0.25, 0.99)
	if low.JitterMs != -35 {
		t.Errorf("r=0.25 amplitude 140 should give jitter -35, got %d", low.JitterMs)
	}
	if low.Delay != 25*time.Millisecond {
		t.Errorf("expected delay 25ms, got %v", low.Delay)
	}

	high := s.outcome(ModeJitter, 0.75, 0.99)
	if high.JitterMs != 105 {
		t.Errorf("r=0.75 amplitude 140 should give jitter +105, got %d", high.JitterMs)
	}
	if high.Delay != 165*time.Millisecond {
		t.Errorf("expected delay 165ms, got %v", high.Delay)
	}

	half := s.outcome(ModeJitter, 0.5, 0.99)
	if half.JitterMs != 70 {
		t.Errorf("r=0.5 should be positive jitter 70, got %d", half.JitterMs)
	}
}

func TestOutcomeLossIsIndependentDraw(t *testing.T) {
	s := defaultSimulator(60*time.Millisecond, 1)

	if !s.outcome(ModeJitter, 0.9, 0.07).Lost {
		t.Error("loss roll below 0.08 should be lost")
	}
	if s.outcome(ModeJitter, 0.01, 0.08).Lost {
		t.Error("loss roll equal to the rate should not be lost")
	}
	if got := s.outcome(ModeJitter, 0.9, 0.5).LossRate; got != 0.08 {
		t.Errorf("expected loss rate 0.08, got %v", got)
	}
}

func TestDelayNeverNegative(t *testing.T) {
	// Zero base latency makes every negative jitter draw hit the floor.
	for _, base := range []time.Duration{0, 5 * time.Millisecond, 60 * time.Millisecond} {
		s := defaultSimulator(base, 42)
		for _, mode := range Modes {
			for i := 0; i < 2000; i++ {
				res := s.Simulate(string(mode))
				if res.Delay < 0 {
					t.Fatalf("negative delay %v for mode %s base %v", res.Delay, mode, base)
				}
			}
		}
	}

	s := defaultSimulator(0, 1)
	if got := s.outcome(ModeJitter, 0.49, 0.9).Delay; got != 0 {
		t.Errorf("base 0 with negative jitter should floor at 0, got %v", got)
	}
}

func TestJitterModeDistribution(t *testing.T) {
	s := defaultSimulator(60*time.Millisecond, 2024)

	const n = 50000
	lost := 0
	for i := 0; i < n; i++ {
		res := s.Simulate("jitter")
		if res.Delay < 0 || res.Delay > 200*time.Millisecond {
			t.Fatalf("delay %v outside [0, 200ms]", res.Delay)
		}
		if res.Lost {
			lost++
		}
	}

	rate := float64(lost) / n
	if math.Abs(rate-0.08) > 0.01 {
		t.Errorf("empirical loss rate %.4f should converge to 0.08", rate)
	}
}

func TestSimulateConcurrent(t *testing.T) {
	s := defaultSimulator(60*time.Millisecond, 7)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s.Simulate("ping")
			}
		}()
	}
	wg.Wait()
}

func TestMaxDelay(t *testing.T) {
	s := defaultSimulator(60*time.Millisecond, 1)
	if s.MaxDelay() != 200*time.Millisecond {
		t.Errorf("expected max delay 200ms, got %v", s.MaxDelay())
	}
	if s.BaseLatency() != 60*time.Millisecond {
		t.Errorf("expected base 60ms, got %v", s.BaseLatency())
	}
}
