package config

// GhostPolicy decides whether eating food spawns an extra ghost obstacle.
// Spawning is gated on network volatility: only a jittery link makes the
// board harder.
type GhostPolicy struct {
	cfg GhostConfig
}

// NewGhostPolicy creates a ghost policy from configuration.
func NewGhostPolicy(cfg GhostConfig) GhostPolicy {
	return GhostPolicy{cfg: cfg}
}

// Armed reports whether the volatility (ms) exceeds the threshold.
func (p GhostPolicy) Armed(volatilityMs float64) bool {
	return volatilityMs > p.cfg.VolatilityThresholdMs
}

// ShouldSpawn reports whether a ghost spawns for the given volatility and
// uniform roll in [0, 1).
func (p GhostPolicy) ShouldSpawn(volatilityMs, roll float64) bool {
	return p.Armed(volatilityMs) && roll < p.cfg.SpawnProbability
}
