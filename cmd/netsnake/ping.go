package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/netsnake/internal/client"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check server health",
	Long: `Calls the health endpoint of the move server and prints its per-mode
counters.

Examples:
  netsnake ping
  netsnake ping --server http://game.example:3000`,
	Args: cobra.NoArgs,
	Run:  runPing,
}

func init() {
	pingCmd.Flags().StringVar(&flagServer, "server", "", "Move server URL (default from config)")
}

func runPing(_ *cobra.Command, _ []string) {
	baseURL := cfg.Client.ServerURL
	if flagServer != "" {
		baseURL = flagServer
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Client.Timeout())
	defer cancel()

	start := time.Now()
	health, err := client.Health(ctx, baseURL)
	if err != nil {
		cancel()
		fail("%s is unreachable: %v", baseURL, err)
	}
	fmt.Printf("%s ok=%v in %d ms (server time %s)\n",
		baseURL, health.OK, time.Since(start).Milliseconds(),
		time.UnixMilli(health.TS).Format(time.RFC3339))

	st, err := client.FetchStats(ctx, baseURL)
	if err != nil {
		logger.Debug("stats unavailable", "err", err)
		return
	}

	fmt.Printf("uptime %ds, %d open streams\n", st.UptimeSec, st.ActiveStreams)
	if len(st.Modes) == 0 {
		return
	}

	modes := make([]string, 0, len(st.Modes))
	for m := range st.Modes {
		modes = append(modes, m)
	}
	sort.Strings(modes)

	fmt.Println()
	fmt.Printf("  %-7s  %8s  %6s  %s\n", "Mode", "Requests", "Lost", "Avg delay")
	for _, m := range modes {
		ms := st.Modes[m]
		fmt.Printf("  %-7s  %8d  %6d  %.0f ms\n", m, ms.Requests, ms.Lost, ms.AvgDelayMs)
	}
}
