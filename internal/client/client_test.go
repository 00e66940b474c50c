package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/netsnake/internal/core"
	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/protocol"
)

func newSession(mode netsim.Mode) *netsnake.Session {
	return netsnake.NewSession(netsnake.Options{
		Name:  "tester",
		Mode:  mode,
		Seed:  7,
		Alert: 700 * time.Millisecond,
	})
}

// fakeTransport answers from a function and records every request.
type fakeTransport struct {
	mu     sync.Mutex
	seen   []protocol.MoveRequest
	answer func(ctx context.Context, req protocol.MoveRequest) (protocol.MoveResponse, error)
}

func (f *fakeTransport) Move(ctx context.Context, req protocol.MoveRequest) (protocol.MoveResponse, error) {
	f.mu.Lock()
	f.seen = append(f.seen, req)
	f.mu.Unlock()
	return f.answer(ctx, req)
}

func (f *fakeTransport) Close() error { return nil }

func okAnswer(ctx context.Context, req protocol.MoveRequest) (protocol.MoveResponse, error) {
	return protocol.MoveResponse{OK: true, Direction: req.Direction, Mode: req.Mode, Seq: req.Seq}, nil
}

func waitForPhase(t *testing.T, s *netsnake.Session, want netsnake.Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Phase() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("phase = %v, want %v", s.Phase(), want)
}

func TestRequestMoveApplied(t *testing.T) {
	s := newSession(netsim.ModeNormal)
	c := New(s, &fakeTransport{answer: okAnswer}, Options{})

	out := c.RequestMove(context.Background(), protocol.DirDown)
	if out.Kind != OutcomeApplied {
		t.Fatalf("kind = %v, want applied (err %v)", out.Kind, out.Err)
	}
	if out.Seq != 1 || out.Response == nil || out.Response.Seq != 1 {
		t.Errorf("seq = %d, response = %+v", out.Seq, out.Response)
	}

	snap := s.Snapshot()
	if snap.Snake[0] != (core.Point{X: 5, Y: 13}) {
		t.Errorf("head = %v, want (5,13)", snap.Snake[0])
	}
	if snap.Stats.Samples != 1 || snap.Stats.Losses != 0 {
		t.Errorf("stats = %+v", snap.Stats)
	}
	if snap.Phase != netsnake.PhaseIdle {
		t.Errorf("phase = %v, want idle after return", snap.Phase)
	}
}

func TestRequestMoveSimulatedLoss(t *testing.T) {
	s := newSession(netsim.ModeJitter)
	lost := func(ctx context.Context, req protocol.MoveRequest) (protocol.MoveResponse, error) {
		time.Sleep(20 * time.Millisecond)
		return protocol.MoveResponse{OK: false, Seq: req.Seq, Simulated: protocol.Simulated{Lost: true}}, nil
	}
	c := New(s, &fakeTransport{answer: lost}, Options{})
	before := s.Snapshot()

	out := c.RequestMove(context.Background(), protocol.DirUp)
	if out.Kind != OutcomeSimulatedLoss {
		t.Fatalf("kind = %v, want lost", out.Kind)
	}
	if out.Err != nil {
		t.Errorf("simulated loss carried error %v", out.Err)
	}

	snap := s.Snapshot()
	if snap.Snake[0] != before.Snake[0] {
		t.Error("lost move moved the snake")
	}
	if len(snap.Ghosts) != 1 || snap.Ghosts[0] != before.Snake[0] {
		t.Errorf("ghosts = %v, want one at head", snap.Ghosts)
	}
	if !snap.Stats.HasLast || snap.Stats.LastMs < 20 {
		t.Errorf("last latency = %d (has %v), want >= 20", snap.Stats.LastMs, snap.Stats.HasLast)
	}
	if snap.Stats.Losses != 1 || snap.Stats.Samples != 0 {
		t.Errorf("stats = %+v", snap.Stats)
	}
	if snap.Phase != netsnake.PhaseIdle {
		t.Errorf("phase = %v, want idle (no cooldown for simulated loss)", snap.Phase)
	}
}

func TestRequestMoveTimeout(t *testing.T) {
	s := newSession(netsim.ModeNormal)
	hang := func(ctx context.Context, req protocol.MoveRequest) (protocol.MoveResponse, error) {
		<-ctx.Done()
		return protocol.MoveResponse{}, classify(ctx, ctx.Err())
	}
	c := New(s, &fakeTransport{answer: hang}, Options{
		Timeout: 30 * time.Millisecond,
		Stutter: 80 * time.Millisecond,
	})
	defer c.Close()

	// A confirmed sample first so the timeout has a last latency to clear
	c.transport = &fakeTransport{answer: okAnswer}
	c.RequestMove(context.Background(), protocol.DirDown)
	c.transport = &fakeTransport{answer: hang}

	out := c.RequestMove(context.Background(), protocol.DirDown)
	if out.Kind != OutcomeTimeoutLoss {
		t.Fatalf("kind = %v, want timeout", out.Kind)
	}
	if !errors.Is(out.Err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", out.Err)
	}

	snap := s.Snapshot()
	if snap.Stats.HasLast {
		t.Error("timeout should clear the last latency")
	}
	if snap.Stats.Losses != 1 || len(snap.Ghosts) != 1 || !snap.Alerting {
		t.Errorf("timeout not degraded: %+v", snap)
	}
	if snap.Phase != netsnake.PhaseCooldown {
		t.Fatalf("phase = %v, want cooldown", snap.Phase)
	}

	if skip := c.RequestMove(context.Background(), protocol.DirLeft); skip.Kind != OutcomeSkipped {
		t.Errorf("move during cooldown = %v, want skipped", skip.Kind)
	}
	waitForPhase(t, s, netsnake.PhaseIdle)
}

func TestRequestMoveTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newSession(netsim.ModePing)
	c := New(s, NewHTTPTransport(srv.URL, s.ID()), Options{Stutter: 10 * time.Millisecond})
	defer c.Close()

	out := c.RequestMove(context.Background(), protocol.DirUp)
	if out.Kind != OutcomeTimeoutLoss {
		t.Fatalf("kind = %v, want timeout path", out.Kind)
	}
	if !errors.Is(out.Err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", out.Err)
	}
	if errors.Is(out.Err, ErrTimeout) {
		t.Error("transport error classified as timeout")
	}
}

func TestRequestMoveBusyIsNoop(t *testing.T) {
	s := newSession(netsim.ModeNormal)
	release := make(chan struct{})
	blocked := func(ctx context.Context, req protocol.MoveRequest) (protocol.MoveResponse, error) {
		<-release
		return okAnswer(ctx, req)
	}
	ft := &fakeTransport{answer: blocked}
	c := New(s, ft, Options{})

	done := make(chan Outcome)
	go func() { done <- c.RequestMove(context.Background(), protocol.DirDown) }()
	waitForPhase(t, s, netsnake.PhaseAwaiting)

	before := s.Snapshot()
	out := c.RequestMove(context.Background(), protocol.DirLeft)
	after := s.Snapshot()

	if out.Kind != OutcomeSkipped {
		t.Errorf("kind = %v, want skipped", out.Kind)
	}
	if after.Seq != before.Seq || after.Score != before.Score || len(after.Snake) != len(before.Snake) {
		t.Errorf("skipped move changed state: %+v -> %+v", before, after)
	}
	if after.Desired != protocol.DirLeft {
		t.Errorf("desired = %q, want left", after.Desired)
	}

	close(release)
	if first := <-done; first.Kind != OutcomeApplied {
		t.Errorf("first move = %v, want applied", first.Kind)
	}
	if n := len(ft.seen); n != 1 {
		t.Errorf("transport saw %d requests, want 1", n)
	}
}

func TestSeqIncrements(t *testing.T) {
	s := newSession(netsim.ModePing)
	ft := &fakeTransport{answer: okAnswer}
	c := New(s, ft, Options{})

	for _, d := range []protocol.Direction{protocol.DirDown, protocol.DirDown, protocol.DirRight} {
		c.RequestMove(context.Background(), d)
	}
	for i, req := range ft.seen {
		if req.Seq != int64(i+1) {
			t.Errorf("request %d seq = %d, want %d", i, req.Seq, i+1)
		}
		if req.Mode != "ping" {
			t.Errorf("request %d mode = %q, want ping", i, req.Mode)
		}
	}
}

func TestSoloBypassesTransport(t *testing.T) {
	s := newSession(netsim.ModeSolo)
	ft := &fakeTransport{answer: okAnswer}
	c := New(s, ft, Options{})

	out := c.RequestMove(context.Background(), protocol.DirDown)
	if out.Kind != OutcomeApplied || out.RTT != 0 {
		t.Errorf("solo outcome = %+v", out)
	}
	if len(ft.seen) != 0 {
		t.Errorf("solo move reached the transport")
	}
	snap := s.Snapshot()
	if snap.Stats.Samples != 1 || snap.Stats.LastMs != 0 || !snap.Stats.HasLast {
		t.Errorf("solo stats = %+v", snap.Stats)
	}
}

func TestStepUsesDesired(t *testing.T) {
	s := newSession(netsim.ModeSolo)
	c := New(s, nil, Options{})
	s.SetDesired(protocol.DirUp)

	out := c.Step(context.Background())
	if out.Direction != protocol.DirUp {
		t.Errorf("step direction = %q, want up", out.Direction)
	}
	if head := s.Snapshot().Snake[0]; head != (core.Point{X: 5, Y: 11}) {
		t.Errorf("head = %v, want (5,11)", head)
	}
}

func TestHTTPTransport(t *testing.T) {
	var gotSession string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != protocol.PathMove || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		gotSession = r.Header.Get(protocol.HeaderSessionID)
		var req protocol.MoveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(protocol.MoveResponse{OK: true, Direction: req.Direction, Mode: req.Mode, Seq: req.Seq})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL+"/", "abc-123")
	defer tr.Close()

	resp, err := tr.Move(context.Background(), protocol.MoveRequest{Direction: protocol.DirLeft, Mode: "jitter", Seq: 9})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !resp.OK || resp.Seq != 9 || resp.Direction != protocol.DirLeft || resp.Mode != "jitter" {
		t.Errorf("response = %+v", resp)
	}
	if gotSession != "abc-123" {
		t.Errorf("session header = %q, want abc-123", gotSession)
	}
}

func TestHTTPTransportMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(srv.URL, "").Move(context.Background(), protocol.MoveRequest{Seq: 1})
	if !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != protocol.PathHealth {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(protocol.HealthResponse{OK: true, TS: 1700000000000})
	}))
	defer srv.Close()

	h, err := Health(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !h.OK || h.TS != 1700000000000 {
		t.Errorf("health = %+v", h)
	}
}

func TestDialUnknownTransport(t *testing.T) {
	if _, err := Dial(context.Background(), "carrier-pigeon", "http://localhost", ""); err == nil {
		t.Error("expected error for unknown transport")
	}
}
