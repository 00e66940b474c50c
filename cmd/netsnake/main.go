// netsnake is a snake game played over a deliberately bad network: every
// move is a round trip to a server that simulates latency, jitter and loss.
//
// Usage:
//
//	netsnake serve           - Start the move server (and optional SSH play)
//	netsnake play            - Play in the terminal
//	netsnake scores          - Show the leaderboard
//	netsnake modes           - List network modes
//	netsnake ping            - Check that the server is up
//	netsnake probe           - Play a headless session and print its stats
//
// Global flags:
//
//	--config <path>    - Config file (default: ~/.netsnake/config.yaml)
//	--db <path>        - Leaderboard database (default: ~/.netsnake/scores.db)
//	--seed <value>     - RNG seed for reproducible games
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/netsnake/internal/config"
	"github.com/vovakirdan/netsnake/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagSeed     int64
	flagLogLevel string

	// Loaded by the root command before any subcommand runs
	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "netsnake",
	Short: "NetSnake - Snake over a laggy network",
	Long: `NetSnake is a terminal snake game where every move travels to a server
that adds latency, jitter and packet loss. Your score depends on how well
you play through the lag.

Available commands:
  serve    - Start the move server
  play     - Play in the terminal
  scores   - View the leaderboard
  modes    - List network modes
  ping     - Check server health
  probe    - Measure a mode with a headless session

Examples:
  netsnake serve
  netsnake play --mode jitter --name ana
  netsnake serve --ssh :23234
  netsnake probe --mode normal --moves 50`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to leaderboard database (default from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(probeCmd)
}

func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&loaded, os.LookupEnv); err != nil {
		return err
	}
	cfg = loaded

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "netsnake",
		Level:           level,
	})
	return nil
}

// seed returns --seed, or a time-based seed when unset.
func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// openStore opens the leaderboard named by --db or the config.
func openStore() (*storage.Store, error) {
	path := flagDBPath
	if path == "" {
		path = cfg.Leaderboard.DBPath
	}
	return storage.Open(path, cfg.Leaderboard.Capacity)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
