// Package protocol defines the JSON wire format of the NetSnake move API.
package protocol

import "strings"

// API paths.
const (
	PathMove       = "/api/move"
	PathMoveStream = "/api/move/ws"
	PathHealth     = "/api/health"
	PathStats      = "/api/stats"
)

// HeaderSessionID carries the client session UUID on every request.
const HeaderSessionID = "X-Session-ID"

// DefaultMode is assumed when a move request omits its mode.
const DefaultMode = "ping"

// Direction is a movement command.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Directions lists the accepted directions.
var Directions = []Direction{DirUp, DirDown, DirLeft, DirRight}

// Valid reports whether d is one of the accepted directions.
func (d Direction) Valid() bool {
	switch d {
	case DirUp, DirDown, DirLeft, DirRight:
		return true
	}
	return false
}

// ParseDirection normalises s to a Direction. Unknown strings are returned
// as-is (and are not Valid) so that they can still be echoed by the server.
func ParseDirection(s string) Direction {
	return Direction(strings.ToLower(strings.TrimSpace(s)))
}

// MoveRequest is the body of POST /api/move and each WebSocket frame.
type MoveRequest struct {
	Direction Direction `json:"direction"`
	Mode      string    `json:"mode"`
	Seq       int64     `json:"seq"`
}

// Simulated describes what the network simulator decided for one move.
type Simulated struct {
	JitterMs int     `json:"jitterMs"`
	LossRate float64 `json:"lossRate"`
	Lost     bool    `json:"lost"`
}

// MoveResponse is always returned with HTTP 200. A simulated drop is
// signalled in-band with OK=false.
type MoveResponse struct {
	OK              bool      `json:"ok"`
	Direction       Direction `json:"direction"`
	Mode            string    `json:"mode"`
	Seq             int64     `json:"seq"`
	ServerTimestamp int64     `json:"serverTimestamp"` // ms since epoch
	ServerDelayMs   int64     `json:"serverDelayMs"`
	Simulated       Simulated `json:"simulated"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts"` // ms since epoch
}

// ErrorResponse is returned with non-200 statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ModeStats is the per-mode server telemetry.
type ModeStats struct {
	Requests   int64   `json:"requests"`
	Lost       int64   `json:"lost"`
	AvgDelayMs float64 `json:"avgDelayMs"`
}

// StatsResponse is returned by GET /api/stats.
type StatsResponse struct {
	Modes         map[string]ModeStats `json:"modes"`
	UptimeSec     int64                `json:"uptimeSec"`
	ActiveStreams int                  `json:"activeStreams"`
}
