package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/platform/tui"
)

var (
	flagServer    string
	flagMode      string
	flagName      string
	flagTransport string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Start the terminal client. Without --mode a menu asks for your name and
the network mode.

Modes:
  ping    - Low jitter, rare loss
  jitter  - Large jitter, frequent loss
  normal  - Moderate jitter and loss
  solo    - No network, moves apply instantly

Controls:
  Arrows/WASD  - Steer
  R            - New game (after game over)
  Esc/B        - Back to menu
  Q/Ctrl+C     - Quit

Examples:
  netsnake play
  netsnake play --mode jitter --name ana
  netsnake play --server http://game.example:3000 --transport ws`,
	Run: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagServer, "server", "", "Move server URL (default from config)")
	playCmd.Flags().StringVar(&flagMode, "mode", "", "Network mode: ping, jitter, normal, solo")
	playCmd.Flags().StringVar(&flagName, "name", "", "Player name")
	playCmd.Flags().StringVar(&flagTransport, "transport", "", "Move transport: http or ws (default from config)")
}

func runPlay(_ *cobra.Command, _ []string) {
	if flagServer != "" {
		cfg.Client.ServerURL = flagServer
	}
	if flagTransport != "" {
		cfg.Client.Transport = flagTransport
	}
	if err := cfg.Validate(); err != nil {
		fail("%v", err)
	}

	var mode netsim.Mode
	if flagMode != "" {
		mode = netsim.ParseMode(flagMode)
		if !strings.EqualFold(string(mode), strings.TrimSpace(flagMode)) {
			fail("unknown mode %q (run 'netsnake modes')", flagMode)
		}
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open leaderboard: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}

	runErr := tui.Run(tui.AppOptions{
		Store:    store,
		Profiles: netsim.ProfilesFromConfig(cfg.Modes),
		Client:   cfg.Client,
		Game:     cfg.Game,
		Seed:     seed(),
		Name:     flagName,
		Mode:     mode,
		Logger:   log.New(io.Discard),
		Width:    width,
		Height:   height,
	})

	if store != nil {
		store.Close()
	}
	if runErr != nil {
		fail("running game: %v", runErr)
	}
}
