package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/netsnake/internal/netsim"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List network modes",
	Long:  `Shows every network mode with its jitter amplitude and loss rate.`,
	Args:  cobra.NoArgs,
	Run:   runModes,
}

func runModes(_ *cobra.Command, _ []string) {
	profiles := netsim.ProfilesFromConfig(cfg.Modes)

	fmt.Printf("Base latency: %d ms\n", cfg.Server.BaseLatencyMs)
	fmt.Println()
	fmt.Printf("  %-7s  %-8s  %s\n", "Mode", "Jitter", "Loss")
	fmt.Printf("  %-7s  %-8s  %s\n", "----", "------", "----")

	for _, mode := range netsim.Modes {
		if mode == netsim.ModeSolo {
			fmt.Printf("  %-7s  %-8s  %s\n", mode, "-", "- (no network)")
			continue
		}
		p := profiles.For(mode)
		fmt.Printf("  %-7s  ±%-7s  %.0f%%\n", mode, fmt.Sprintf("%dms", p.JitterAmplitudeMs), p.LossRate*100)
	}

	fmt.Println()
	fmt.Println("Run 'netsnake play --mode <mode>' to play one.")
}
