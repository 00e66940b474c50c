package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/netsnake/internal/protocol"
)

const (
	streamWriteWait  = 5 * time.Second
	streamBufferSize = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// stream is one WebSocket move connection. Each request gets its own timer,
// and all frames go out through a single writer goroutine.
type stream struct {
	id   string
	conn *websocket.Conn

	outbox   chan protocol.MoveResponse
	done     chan struct{}
	doneOnce sync.Once

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

func newStream(id string, conn *websocket.Conn) *stream {
	return &stream{
		id:     id,
		conn:   conn,
		outbox: make(chan protocol.MoveResponse, streamBufferSize),
		done:   make(chan struct{}),
		timers: make(map[*time.Timer]struct{}),
	}
}

// schedule queues resp for writing after delay. The response is stamped
// when the timer fires.
func (st *stream) schedule(received time.Time, delay time.Duration, resp protocol.MoveResponse) {
	st.mu.Lock()
	defer st.mu.Unlock()

	select {
	case <-st.done:
		return
	default:
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		st.mu.Lock()
		delete(st.timers, timer)
		st.mu.Unlock()
		st.send(stamp(resp, received, time.Now()))
	})
	st.timers[timer] = struct{}{}
}

// send hands resp to the writer. If the buffer is full the oldest pending
// frame is dropped.
func (st *stream) send(resp protocol.MoveResponse) {
	select {
	case <-st.done:
		return
	default:
	}

	select {
	case st.outbox <- resp:
	default:
		select {
		case <-st.outbox:
		default:
		}
		select {
		case st.outbox <- resp:
		default:
		}
	}
}

// writePump writes queued responses until the stream closes.
func (st *stream) writePump(logger *log.Logger) {
	defer st.conn.Close()
	for {
		select {
		case resp := <-st.outbox:
			_ = st.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := st.conn.WriteJSON(resp); err != nil {
				logger.Debug("stream write failed", "session", st.id, "err", err)
				st.Close()
				return
			}
		case <-st.done:
			return
		}
	}
}

// Close stops pending timers and ends the stream. Safe to call multiple times.
func (st *stream) Close() {
	st.doneOnce.Do(func() {
		st.mu.Lock()
		close(st.done)
		for t := range st.timers {
			t.Stop()
		}
		clear(st.timers)
		st.mu.Unlock()
	})
}

// StreamRegistry tracks open move streams.
// Thread-safe for concurrent access.
type StreamRegistry struct {
	mu      sync.RWMutex
	streams map[string]*stream
}

// NewStreamRegistry creates an empty registry.
func NewStreamRegistry() *StreamRegistry {
	return &StreamRegistry{streams: make(map[string]*stream)}
}

func (r *StreamRegistry) register(st *stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[st.id] = st
}

func (r *StreamRegistry) unregister(st *stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// A reconnect may already have replaced this entry
	if r.streams[st.id] == st {
		delete(r.streams, st.id)
	}
}

// Count returns the number of open streams.
func (r *StreamRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams)
}

// CloseAll ends every open stream.
func (r *StreamRegistry) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.streams {
		st.Close()
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(protocol.HeaderSessionID)
	if id == "" {
		id = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("stream upgrade failed", "err", err)
		return
	}

	st := newStream(id, conn)
	s.streams.register(st)
	defer s.streams.unregister(st)
	defer st.Close()

	go st.writePump(s.logger)

	s.logger.Debug("stream opened", "session", id)
	conn.SetReadLimit(maxMoveBody)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("stream read failed", "session", id, "err", err)
			}
			break
		}

		var req protocol.MoveRequest
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				s.logger.Debug("malformed stream frame", "session", id, "err", err)
				continue
			}
		}
		received := time.Now()
		resp, res := s.simulate(req)
		st.schedule(received, res.Delay, resp)
	}
	s.logger.Debug("stream closed", "session", id)
}
