package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/netsnake/internal/protocol"
)

const wsHandshakeTimeout = 5 * time.Second

// WSTransport sends moves over a single WebSocket. Responses whose seq is
// not the one being awaited belong to abandoned moves and are dropped.
type WSTransport struct {
	conn *websocket.Conn

	moveMu    sync.Mutex // One move on the wire at a time
	responses chan protocol.MoveResponse

	done      chan struct{}
	readErr   error
	closeOnce sync.Once
}

// DialWS opens the move stream of the server at baseURL.
func DialWS(ctx context.Context, baseURL, sessionID string) (*WSTransport, error) {
	wsURL, err := streamURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	hdr := http.Header{}
	if sessionID != "" {
		hdr.Set(protocol.HeaderSessionID, sessionID)
	}
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL, hdr)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%w: dial %s: %s", ErrTransport, wsURL, resp.Status)
		}
		return nil, fmt.Errorf("%w: dial %s: %w", ErrTransport, wsURL, err)
	}

	t := &WSTransport{
		conn:      conn,
		responses: make(chan protocol.MoveResponse, 16),
		done:      make(chan struct{}),
	}
	go t.reader()
	return t, nil
}

func (t *WSTransport) reader() {
	defer close(t.done)
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.readErr = err
			return
		}
		var resp protocol.MoveResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		select {
		case t.responses <- resp:
		default:
			// Nobody is waiting for this many answers; they are stale
		}
	}
}

// Move implements Transport.
func (t *WSTransport) Move(ctx context.Context, req protocol.MoveRequest) (protocol.MoveResponse, error) {
	t.moveMu.Lock()
	defer t.moveMu.Unlock()

	// Drain answers to moves that already gave up
	for drained := false; !drained; {
		select {
		case <-t.responses:
		default:
			drained = true
		}
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	}
	if err := t.conn.WriteJSON(req); err != nil {
		return protocol.MoveResponse{}, classify(ctx, err)
	}

	for {
		select {
		case resp := <-t.responses:
			if resp.Seq != req.Seq {
				continue
			}
			return resp, nil
		case <-ctx.Done():
			return protocol.MoveResponse{}, classify(ctx, ctx.Err())
		case <-t.done:
			return protocol.MoveResponse{}, fmt.Errorf("%w: stream closed: %v", ErrTransport, t.readErr)
		}
	}
}

// Close implements Transport.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = t.conn.Close()
	})
	return err
}

// streamURL turns an http(s) base URL into the ws(s) move stream URL.
func streamURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	u.Path = protocol.PathMoveStream
	return u.String(), nil
}
