// Package stats aggregates client-observed latency and loss for one session.
//
// Every derived value is recomputed from the recorded samples on demand, so
// the live HUD, the end-of-session summary and gameplay decisions always
// agree.
package stats

import (
	"math"
	"time"
)

// Latency bands used for HUD colouring.
const (
	BandLowMaxMs = 80
	BandMidMaxMs = 200
)

// Band classifies a latency value.
type Band int

const (
	BandNone Band = iota // No data
	BandLow
	BandMid
	BandHigh
)

// String returns the band name.
func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMid:
		return "mid"
	case BandHigh:
		return "high"
	default:
		return "none"
	}
}

// BandFor classifies a latency in milliseconds.
func BandFor(ms int) Band {
	switch {
	case ms < BandLowMaxMs:
		return BandLow
	case ms < BandMidMaxMs:
		return BandMid
	default:
		return BandHigh
	}
}

// Aggregator holds the latency samples and loss counter of one session.
// It is not safe for concurrent use; the owning session serialises access.
type Aggregator struct {
	samples []int // Successful round trips, ms, in arrival order
	losses  int
	last    int
	hasLast bool
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// RecordSuccess appends a successful round trip and makes it the last latency.
func (a *Aggregator) RecordSuccess(rtt time.Duration) {
	ms := durationMs(rtt)
	a.samples = append(a.samples, ms)
	a.last = ms
	a.hasLast = true
}

// RecordLoss counts a simulated loss. The round trip still arrived, so it
// becomes the last latency, but it is not a sample.
func (a *Aggregator) RecordLoss(rtt time.Duration) {
	a.losses++
	a.last = durationMs(rtt)
	a.hasLast = true
}

// RecordTimeout counts a timed-out or failed request and clears the last latency.
func (a *Aggregator) RecordTimeout() {
	a.losses++
	a.last = 0
	a.hasLast = false
}

// Samples returns a copy of the recorded round trips in ms.
func (a *Aggregator) Samples() []int {
	out := make([]int, len(a.samples))
	copy(out, a.samples)
	return out
}

// SampleCount returns the number of successful samples.
func (a *Aggregator) SampleCount() int {
	return len(a.samples)
}

// Losses returns the loss counter.
func (a *Aggregator) Losses() int {
	return a.losses
}

// Last returns the most recent latency, if any.
func (a *Aggregator) Last() (int, bool) {
	return a.last, a.hasLast
}

// Average returns the arithmetic mean of the samples, or false when empty.
func (a *Aggregator) Average() (float64, bool) {
	return mean(a.samples)
}

// Jitter returns the population standard deviation of the samples, or false
// with fewer than two samples.
func (a *Aggregator) Jitter() (float64, bool) {
	if len(a.samples) < 2 {
		return 0, false
	}
	return stddev(a.samples), true
}

// Volatility is the jitter used for gameplay decisions: the population
// standard deviation, defined as 0 below two samples.
func (a *Aggregator) Volatility() float64 {
	j, _ := a.Jitter()
	return j
}

// LossPercent returns round(100 * losses / max(1, losses+samples)).
// A session with no requests reports 0.
func (a *Aggregator) LossPercent() int {
	total := a.losses + len(a.samples)
	if total == 0 {
		total = 1
	}
	return Round(100 * float64(a.losses) / float64(total))
}

// Summary is the rounded view of the statistics.
// Avg and Jitter are 0 when undefined; HasAvg and HasJitter tell them apart.
type Summary struct {
	LastMs    int
	HasLast   bool
	AvgMs     int
	HasAvg    bool
	JitterMs  int
	HasJitter bool
	LossPct   int
	Samples   int
	Losses    int
}

// Summary computes the rounded statistics from the recorded sequences.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		LastMs:  a.last,
		HasLast: a.hasLast,
		LossPct: a.LossPercent(),
		Samples: len(a.samples),
		Losses:  a.losses,
	}
	if avg, ok := a.Average(); ok {
		s.AvgMs = Round(avg)
		s.HasAvg = true
	}
	if j, ok := a.Jitter(); ok {
		s.JitterMs = Round(j)
		s.HasJitter = true
	}
	return s
}

// Round rounds half up, matching how the HUD has always displayed values.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func mean(xs []int) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs)), true
}

func stddev(xs []int) float64 {
	avg, ok := mean(xs)
	if !ok {
		return 0
	}
	var variance float64
	for _, x := range xs {
		d := float64(x) - avg
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(xs)))
}

func durationMs(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Millisecond)
}
