package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/protocol"
)

const maxMoveBody = 4 << 10

// Handler returns the HTTP API: move, health, stats and the move stream.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(protocol.PathMove, s.handleMove)
	mux.HandleFunc(protocol.PathHealth, s.handleHealth)
	mux.HandleFunc(protocol.PathStats, s.handleStats)
	mux.HandleFunc(protocol.PathMoveStream, s.handleStream)
	return mux
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	received := time.Now()
	req, err := decodeMove(r.Body)
	if err != nil {
		httpError(w, "malformed move request: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp, res := s.simulate(req)

	// Park until the simulated delay elapses or the client gives up
	timer := time.NewTimer(res.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-r.Context().Done():
		s.logger.Debug("client left before response", "seq", req.Seq, "mode", resp.Mode, "session", r.Header.Get(protocol.HeaderSessionID))
		return
	}

	writeJSON(w, http.StatusOK, stamp(resp, received, time.Now()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, protocol.HealthResponse{OK: true, TS: time.Now().UnixMilli()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.telemetry.Snapshot(s.streams.Count()))
}

// simulate draws an outcome for req and builds the response payload.
// The timing fields are filled by stamp once the delay has elapsed.
func (s *Server) simulate(req protocol.MoveRequest) (protocol.MoveResponse, netsim.Result) {
	if req.Mode == "" {
		req.Mode = protocol.DefaultMode
	}
	res := s.sim.Simulate(req.Mode)
	s.telemetry.Record(string(netsim.ParseMode(req.Mode)), res.Delay, res.Lost)

	s.logger.Debug("move", "seq", req.Seq, "mode", req.Mode, "direction", req.Direction, "delay", res.Delay, "lost", res.Lost)

	return protocol.MoveResponse{
		OK:        !res.Lost,
		Direction: req.Direction,
		Mode:      req.Mode,
		Seq:       req.Seq,
		Simulated: protocol.Simulated{
			JitterMs: res.JitterMs,
			LossRate: res.LossRate,
			Lost:     res.Lost,
		},
	}, res
}

// stamp sets the send time and the wall time spent between receipt and send.
func stamp(resp protocol.MoveResponse, received, sent time.Time) protocol.MoveResponse {
	resp.ServerTimestamp = sent.UnixMilli()
	resp.ServerDelayMs = sent.Sub(received).Milliseconds()
	return resp
}

// decodeMove reads a move request. An empty body is an empty request.
func decodeMove(body io.Reader) (protocol.MoveRequest, error) {
	var req protocol.MoveRequest
	err := json.NewDecoder(io.LimitReader(body, maxMoveBody)).Decode(&req)
	if errors.Is(err, io.EOF) {
		return req, nil
	}
	return req, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		httpError(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func httpError(w http.ResponseWriter, msg string, code int) {
	data, _ := json.Marshal(protocol.ErrorResponse{Error: msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
