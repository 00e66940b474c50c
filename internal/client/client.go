// Package client sends moves to the NetSnake server and feeds the outcome of
// each round trip into the game session.
package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/protocol"
)

var (
	// ErrTimeout means no response arrived before the move deadline.
	ErrTimeout = errors.New("client: move timed out")
	// ErrTransport means the request failed or the response was unusable.
	ErrTransport = errors.New("client: transport failure")
)

// Transport carries one move request to the server and returns its response.
type Transport interface {
	Move(ctx context.Context, req protocol.MoveRequest) (protocol.MoveResponse, error)
	Close() error
}

// OutcomeKind classifies what happened to a move.
type OutcomeKind int

const (
	OutcomeApplied       OutcomeKind = iota // Server confirmed, board moved
	OutcomeSimulatedLoss                    // Server answered with ok=false
	OutcomeTimeoutLoss                      // No usable answer in time
	OutcomeSkipped                          // Another move was in flight
)

// String returns a short label for the outcome.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeApplied:
		return "applied"
	case OutcomeSimulatedLoss:
		return "lost"
	case OutcomeTimeoutLoss:
		return "timeout"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the result of one RequestMove call.
type Outcome struct {
	Kind      OutcomeKind
	Direction protocol.Direction
	Seq       int64
	RTT       time.Duration
	Response  *protocol.MoveResponse
	Err       error
}

// Options tunes a MoveClient. Zero values fall back to the defaults.
type Options struct {
	Timeout time.Duration
	Stutter time.Duration
	Logger  *log.Logger
}

const (
	DefaultTimeout = 2000 * time.Millisecond
	DefaultStutter = 200 * time.Millisecond
)

// MoveClient enforces one outstanding move per session.
type MoveClient struct {
	session   *netsnake.Session
	transport Transport
	timeout   time.Duration
	stutter   time.Duration
	logger    *log.Logger

	mu       sync.Mutex
	cooldown *time.Timer
}

// New creates a move client for session. transport may be nil when the
// session plays in solo mode.
func New(session *netsnake.Session, transport Transport, opts Options) *MoveClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Stutter <= 0 {
		opts.Stutter = DefaultStutter
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &MoveClient{
		session:   session,
		transport: transport,
		timeout:   opts.Timeout,
		stutter:   opts.Stutter,
		logger:    opts.Logger,
	}
}

// Session returns the session this client drives.
func (c *MoveClient) Session() *netsnake.Session {
	return c.session
}

// RequestMove sends dir to the server and reconciles the session with the
// answer. It blocks for the round trip, so callers run it off the UI loop.
// The direction is remembered as the desired one even when skipped.
func (c *MoveClient) RequestMove(ctx context.Context, dir protocol.Direction) Outcome {
	c.session.SetDesired(dir)

	req, ok := c.session.Begin(dir)
	if !ok {
		return Outcome{Kind: OutcomeSkipped, Direction: dir}
	}
	defer c.session.Release()

	if c.session.Mode() == netsim.ModeSolo || c.transport == nil {
		c.session.Confirm(dir, 0)
		return Outcome{Kind: OutcomeApplied, Direction: dir, Seq: req.Seq}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.transport.Move(ctx, req)
	rtt := time.Since(start)

	out := Outcome{Direction: dir, Seq: req.Seq, RTT: rtt}
	switch {
	case err != nil:
		out.Kind = OutcomeTimeoutLoss
		out.Err = err
		c.session.TimeOut()
		c.startCooldown()
		c.logger.Debug("move timed out", "seq", req.Seq, "err", err)
	case !resp.OK:
		out.Kind = OutcomeSimulatedLoss
		out.Response = &resp
		c.session.Lose(rtt)
		c.logger.Debug("move lost", "seq", req.Seq, "rtt", rtt)
	default:
		out.Kind = OutcomeApplied
		out.Response = &resp
		c.session.Confirm(dir, rtt)
		c.logger.Debug("move applied", "seq", req.Seq, "rtt", rtt)
	}
	return out
}

// Step replays the latest desired direction.
func (c *MoveClient) Step(ctx context.Context) Outcome {
	return c.RequestMove(ctx, c.session.Desired())
}

// Close stops a pending cooldown and closes the transport.
func (c *MoveClient) Close() error {
	c.mu.Lock()
	if c.cooldown != nil {
		c.cooldown.Stop()
		c.cooldown = nil
	}
	c.mu.Unlock()

	if c.transport == nil {
		return nil
	}
	return c.transport.Close()
}

func (c *MoveClient) startCooldown() {
	c.session.Cooldown()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cooldown != nil {
		c.cooldown.Stop()
	}
	c.cooldown = time.AfterFunc(c.stutter, c.session.EndCooldown)
}
