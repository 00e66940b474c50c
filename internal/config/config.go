// Package config provides YAML-based configuration loading for the NetSnake
// server and client, with embedded defaults and environment overrides.
package config

import "time"

// Config is the complete NetSnake configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Modes       ModesConfig       `yaml:"modes"`
	Client      ClientConfig      `yaml:"client"`
	Game        GameConfig        `yaml:"game"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// ServerConfig defines the move API server.
type ServerConfig struct {
	Address             string `yaml:"address"`
	BaseLatencyMs       int    `yaml:"base_latency_ms"`
	ReadHeaderTimeoutMs int    `yaml:"read_header_timeout_ms"`
	SSHAddress          string `yaml:"ssh_address"` // Empty disables SSH play
	HostKeyPath         string `yaml:"host_key_path"`
	IdleTimeoutMin      int    `yaml:"idle_timeout_min"`
}

// BaseLatency returns the base simulated delay.
func (s ServerConfig) BaseLatency() time.Duration {
	return time.Duration(s.BaseLatencyMs) * time.Millisecond
}

// ReadHeaderTimeout returns the HTTP read-header timeout.
func (s ServerConfig) ReadHeaderTimeout() time.Duration {
	return time.Duration(s.ReadHeaderTimeoutMs) * time.Millisecond
}

// IdleTimeout returns the SSH idle timeout.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMin) * time.Minute
}

// ModesConfig holds the network degradation profile of every mode.
type ModesConfig struct {
	Ping    ModeProfile `yaml:"ping"`
	Jitter  ModeProfile `yaml:"jitter"`
	Default ModeProfile `yaml:"normal"` // Used for "normal" and unrecognised modes
}

// ModeProfile defines jitter amplitude and loss probability for one mode.
type ModeProfile struct {
	JitterAmplitudeMs int     `yaml:"jitter_amplitude_ms"`
	LossRate          float64 `yaml:"loss_rate"`
}

// ClientConfig defines the move client and its timers.
type ClientConfig struct {
	ServerURL string `yaml:"server_url"`
	Transport string `yaml:"transport"` // "http" or "ws"
	TimeoutMs int    `yaml:"timeout_ms"`
	StutterMs int    `yaml:"stutter_ms"` // Forced busy window after a timeout
	AlertMs   int    `yaml:"alert_ms"`   // Visual alert after a degraded move
	StepMs    int    `yaml:"step_ms"`    // Auto-step interval
}

// Timeout returns the per-move client deadline.
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Stutter returns the post-timeout busy window.
func (c ClientConfig) Stutter() time.Duration {
	return time.Duration(c.StutterMs) * time.Millisecond
}

// Alert returns the duration of the degraded-network visual alert.
func (c ClientConfig) Alert() time.Duration {
	return time.Duration(c.AlertMs) * time.Millisecond
}

// Step returns the auto-step interval.
func (c ClientConfig) Step() time.Duration {
	return time.Duration(c.StepMs) * time.Millisecond
}

// GameConfig defines board and scoring parameters.
type GameConfig struct {
	GridSize   int         `yaml:"grid_size"`
	FoodPoints int         `yaml:"food_points"`
	Ghosts     GhostConfig `yaml:"ghosts"`
}

// GhostConfig defines when eating food spawns an extra ghost obstacle.
type GhostConfig struct {
	VolatilityThresholdMs float64 `yaml:"volatility_threshold_ms"`
	SpawnProbability      float64 `yaml:"spawn_probability"`
}

// LeaderboardConfig defines the ranked result store.
type LeaderboardConfig struct {
	DBPath   string `yaml:"db_path"`
	Capacity int    `yaml:"capacity"`
}
