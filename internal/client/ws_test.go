package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/netsnake/internal/protocol"
)

// staleFirstServer answers every move twice: once with a stale seq, then
// with the real one.
func staleFirstServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != protocol.PathMoveStream {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get(protocol.HeaderSessionID) == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req protocol.MoveRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			_ = conn.WriteJSON(protocol.MoveResponse{OK: false, Seq: req.Seq - 1})
			_ = conn.WriteJSON(protocol.MoveResponse{OK: true, Direction: req.Direction, Seq: req.Seq})
		}
	}))
}

func TestWSTransportDropsStaleResponses(t *testing.T) {
	srv := staleFirstServer(t)
	defer srv.Close()

	tr, err := DialWS(context.Background(), srv.URL, "session-1")
	if err != nil {
		t.Fatalf("DialWS: %v", err)
	}
	defer tr.Close()

	for seq := int64(1); seq <= 3; seq++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		resp, err := tr.Move(ctx, protocol.MoveRequest{Direction: protocol.DirUp, Seq: seq})
		cancel()
		if err != nil {
			t.Fatalf("Move %d: %v", seq, err)
		}
		if resp.Seq != seq || !resp.OK {
			t.Errorf("Move %d response = %+v", seq, resp)
		}
	}
}

func TestWSTransportTimeout(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Read and never answer
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	tr, err := DialWS(context.Background(), srv.URL, "session-2")
	if err != nil {
		t.Fatalf("DialWS: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = tr.Move(ctx, protocol.MoveRequest{Seq: 1})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestDialWSRejected(t *testing.T) {
	srv := staleFirstServer(t)
	defer srv.Close()

	if _, err := DialWS(context.Background(), srv.URL, ""); !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestStreamURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000":     "ws://localhost:3000/api/move/ws",
		"https://snake.example/":    "wss://snake.example/api/move/ws",
		"ws://127.0.0.1:8080/other": "ws://127.0.0.1:8080/api/move/ws",
	}
	for in, want := range cases {
		got, err := streamURL(in)
		if err != nil {
			t.Errorf("streamURL(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("streamURL(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := streamURL("ftp://nope"); err == nil {
		t.Error("expected error for ftp scheme")
	}
}
