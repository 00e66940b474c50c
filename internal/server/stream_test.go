package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/netsnake/internal/client"
	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/protocol"
)

func dialStream(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + protocol.PathMoveStream
	hdr := http.Header{}
	hdr.Set(protocol.HeaderSessionID, "stream-test")
	conn, _, err := websocket.DefaultDialer.Dial(url, hdr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestStreamAnswersEachFrame(t *testing.T) {
	s := newTestServer(t, 10*time.Millisecond)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialStream(t, srv)
	defer conn.Close()

	for seq := int64(1); seq <= 3; seq++ {
		if err := conn.WriteJSON(protocol.MoveRequest{Direction: protocol.DirRight, Mode: "normal", Seq: seq}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	seen := map[int64]bool{}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 3; i++ {
		var resp protocol.MoveResponse
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read: %v", err)
		}
		if !resp.OK || resp.Mode != "normal" || resp.Direction != protocol.DirRight {
			t.Errorf("response = %+v", resp)
		}
		seen[resp.Seq] = true
	}
	for seq := int64(1); seq <= 3; seq++ {
		if !seen[seq] {
			t.Errorf("no response for seq %d", seq)
		}
	}

	if n := s.streams.Count(); n != 1 {
		t.Errorf("active streams = %d, want 1", n)
	}
}

func TestStreamTimestampIsSendTime(t *testing.T) {
	s := newTestServer(t, 80*time.Millisecond)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialStream(t, srv)
	defer conn.Close()

	start := time.Now()
	if err := conn.WriteJSON(protocol.MoveRequest{Direction: protocol.DirUp, Mode: "ping", Seq: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp protocol.MoveResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}

	if resp.ServerTimestamp < start.UnixMilli()+80 {
		t.Errorf("server timestamp %d is before the delay ended (start %d)", resp.ServerTimestamp, start.UnixMilli())
	}
	if resp.ServerDelayMs < 80 {
		t.Errorf("server delay = %d, want >= 80", resp.ServerDelayMs)
	}
}

func TestStreamUnregistersOnClose(t *testing.T) {
	s := newTestServer(t, time.Second)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialStream(t, srv)
	// A pending timer that must not fire into a closed stream
	_ = conn.WriteJSON(protocol.MoveRequest{Seq: 1})
	time.Sleep(20 * time.Millisecond)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.streams.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream still registered after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMoveClientAgainstServer(t *testing.T) {
	s := newTestServer(t, 5*time.Millisecond)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	for _, kind := range []string{client.TransportHTTP, client.TransportWS} {
		t.Run(kind, func(t *testing.T) {
			session := netsnake.NewSession(netsnake.Options{Mode: netsim.ModePing, Seed: 3})
			tr, err := client.Dial(context.Background(), kind, srv.URL, session.ID())
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			mc := client.New(session, tr, client.Options{})
			defer mc.Close()

			for i := 0; i < 3; i++ {
				if out := mc.RequestMove(context.Background(), protocol.DirDown); out.Kind != client.OutcomeApplied {
					t.Fatalf("move %d = %v (%v)", i, out.Kind, out.Err)
				}
			}

			lost := netsnake.NewSession(netsnake.Options{Mode: netsim.ModeJitter, Seed: 3})
			tr2, err := client.Dial(context.Background(), kind, srv.URL, lost.ID())
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			mc2 := client.New(lost, tr2, client.Options{})
			defer mc2.Close()
			if out := mc2.RequestMove(context.Background(), protocol.DirDown); out.Kind != client.OutcomeSimulatedLoss {
				t.Errorf("jitter move = %v, want simulated loss", out.Kind)
			}

			snap := session.Snapshot()
			if snap.Stats.Samples != 3 || snap.Seq != 3 {
				t.Errorf("session stats = %+v seq = %d", snap.Stats, snap.Seq)
			}
		})
	}
}
