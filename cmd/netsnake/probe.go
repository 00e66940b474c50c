package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/netsnake/internal/client"
	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/netsim"
)

var (
	flagProbeMode string
	flagMoves     int
	flagJSON      bool
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Measure a mode with a headless session",
	Long: `Runs a session without a terminal UI: the snake keeps heading right and
every step is sent to the server. When the moves are done (or the snake dies)
the measured latency, jitter and loss are printed.

Examples:
  netsnake probe
  netsnake probe --mode jitter --moves 100
  netsnake probe --transport ws --json`,
	Args: cobra.NoArgs,
	Run:  runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&flagServer, "server", "", "Move server URL (default from config)")
	probeCmd.Flags().StringVar(&flagProbeMode, "mode", string(netsim.ModePing), "Network mode: ping, jitter, normal, solo")
	probeCmd.Flags().StringVar(&flagTransport, "transport", "", "Move transport: http or ws (default from config)")
	probeCmd.Flags().IntVar(&flagMoves, "moves", 30, "Number of moves to send")
	probeCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the final snapshot as JSON")
}

func runProbe(_ *cobra.Command, _ []string) {
	if flagServer != "" {
		cfg.Client.ServerURL = flagServer
	}
	if flagTransport != "" {
		cfg.Client.Transport = flagTransport
	}
	if flagMoves <= 0 {
		fail("--moves must be > 0")
	}
	mode := netsim.ParseMode(flagProbeMode)
	if !strings.EqualFold(string(mode), strings.TrimSpace(flagProbeMode)) {
		fail("unknown mode %q (run 'netsnake modes')", flagProbeMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := netsnake.NewSession(netsnake.Options{
		Name:  "probe",
		Mode:  mode,
		Seed:  seed(),
		Game:  cfg.Game,
		Alert: cfg.Client.Alert(),
	})

	var tr client.Transport
	if mode != netsim.ModeSolo {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.Client.Timeout())
		var err error
		tr, err = client.Dial(dialCtx, cfg.Client.Transport, cfg.Client.ServerURL, session.ID())
		cancel()
		if err != nil {
			fail("connecting to %s: %v", cfg.Client.ServerURL, err)
		}
	}

	mc := client.New(session, tr, client.Options{
		Timeout: cfg.Client.Timeout(),
		Stutter: cfg.Client.Stutter(),
		Logger:  logger,
	})
	defer mc.Close()

	sent := 0
	for sent < flagMoves && !session.Over() && ctx.Err() == nil {
		out := mc.Step(ctx)
		if out.Kind == client.OutcomeSkipped {
			// Cooldown after a timeout
			time.Sleep(10 * time.Millisecond)
			continue
		}
		sent++
		logger.Debug("move", "seq", out.Seq, "outcome", out.Kind, "rtt", out.RTT)
	}

	snap := session.Snapshot()
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			fail("encoding snapshot: %v", err)
		}
		return
	}

	st := snap.Stats
	fmt.Printf("Probe %s via %s (%s)\n", mode, cfg.Client.Transport, cfg.Client.ServerURL)
	fmt.Println()
	fmt.Printf("  Moves     %d (%d answered, %d lost)\n", sent, st.Samples, st.Losses)
	fmt.Printf("  Average   %s\n", probeMs(st.AvgMs, st.HasAvg))
	fmt.Printf("  Jitter    %s\n", probeMs(st.JitterMs, st.HasJitter))
	fmt.Printf("  Loss      %d%%\n", st.LossPct)
	fmt.Printf("  Score     %d\n", snap.Score)
	if snap.Over() {
		fmt.Printf("  Ended     %s\n", snap.Reason)
	}
}

func probeMs(ms int, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d ms", ms)
}
