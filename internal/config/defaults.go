package config

import (
	_ "embed"
)

//go:embed defaults/netsnake.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
// It mirrors defaults/netsnake.yaml and is used when the embedded file cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:             ":3000",
			BaseLatencyMs:       60,
			ReadHeaderTimeoutMs: 5000,
			IdleTimeoutMin:      30,
		},
		Modes: ModesConfig{
			Ping:    ModeProfile{JitterAmplitudeMs: 15, LossRate: 0.01},
			Jitter:  ModeProfile{JitterAmplitudeMs: 140, LossRate: 0.08},
			Default: ModeProfile{JitterAmplitudeMs: 40, LossRate: 0.03},
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:3000",
			Transport: "http",
			TimeoutMs: 2000,
			StutterMs: 200,
			AlertMs:   700,
			StepMs:    260,
		},
		Game: GameConfig{
			GridSize:   24,
			FoodPoints: 10,
			Ghosts: GhostConfig{
				VolatilityThresholdMs: 80,
				SpawnProbability:      0.6,
			},
		},
		Leaderboard: LeaderboardConfig{
			DBPath:   "~/.netsnake/scores.db",
			Capacity: 20,
		},
	}
}
