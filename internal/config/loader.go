package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read once at process start.
const (
	EnvBaseLatency = "BASE_LATENCY_MS"
	EnvPort        = "PORT"
)

// Load loads the NetSnake configuration.
// Search order: customPath -> ~/.netsnake/config.yaml -> ./configs/netsnake.yaml -> embedded default.
// Files are layered over the defaults, so a file only needs the keys it changes.
func Load(customPath string) (Config, error) {
	cfg := embeddedDefault()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			layered := cfg
			if err := yaml.Unmarshal(data, &layered); err == nil {
				return layered, layered.Validate()
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/netsnake.yaml"); err == nil {
		layered := cfg
		if err := yaml.Unmarshal(data, &layered); err == nil {
			return layered, layered.Validate()
		}
	}

	return cfg, nil
}

// embeddedDefault parses the embedded YAML, falling back to DefaultConfig.
func embeddedDefault() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return DefaultConfig()
	}
	return cfg
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".netsnake", filename)
}

// ApplyEnv overrides configuration from environment variables.
// lookup is usually os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseLatency); ok && strings.TrimSpace(v) != "" {
		ms, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", EnvBaseLatency, v, err)
		}
		cfg.Server.BaseLatencyMs = ms
	}

	if v, ok := lookup(EnvPort); ok && strings.TrimSpace(v) != "" {
		port := strings.TrimSpace(v)
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", EnvPort, v, err)
		}
		host := ""
		if i := strings.LastIndex(cfg.Server.Address, ":"); i > 0 {
			host = cfg.Server.Address[:i]
		}
		cfg.Server.Address = host + ":" + port
	}

	return cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	var errs []error

	if c.Server.BaseLatencyMs < 0 {
		errs = append(errs, fmt.Errorf("server.base_latency_ms must be >= 0, got %d", c.Server.BaseLatencyMs))
	}
	for name, p := range map[string]ModeProfile{
		"ping":   c.Modes.Ping,
		"jitter": c.Modes.Jitter,
		"normal": c.Modes.Default,
	} {
		if p.JitterAmplitudeMs < 0 {
			errs = append(errs, fmt.Errorf("modes.%s.jitter_amplitude_ms must be >= 0", name))
		}
		if p.LossRate < 0 || p.LossRate > 1 {
			errs = append(errs, fmt.Errorf("modes.%s.loss_rate must be within [0, 1]", name))
		}
	}
	if c.Client.TimeoutMs <= 0 {
		errs = append(errs, errors.New("client.timeout_ms must be > 0"))
	}
	if c.Client.StepMs <= 0 {
		errs = append(errs, errors.New("client.step_ms must be > 0"))
	}
	if c.Client.Transport != "http" && c.Client.Transport != "ws" {
		errs = append(errs, fmt.Errorf("client.transport must be http or ws, got %q", c.Client.Transport))
	}
	if c.Game.GridSize < 4 {
		errs = append(errs, fmt.Errorf("game.grid_size must be >= 4, got %d", c.Game.GridSize))
	}
	if p := c.Game.Ghosts.SpawnProbability; p < 0 || p > 1 {
		errs = append(errs, errors.New("game.ghosts.spawn_probability must be within [0, 1]"))
	}
	if c.Leaderboard.Capacity <= 0 {
		errs = append(errs, errors.New("leaderboard.capacity must be > 0"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}
