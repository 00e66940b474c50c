package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var flagClear bool

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the leaderboard, best score first. Only the top entries are kept
(leaderboard.capacity in the config, 20 by default).

Examples:
  netsnake scores
  netsnake scores --db ./scores.db
  netsnake scores --clear`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every leaderboard entry")
}

func runScores(_ *cobra.Command, _ []string) {
	store, err := openStore()
	if err != nil {
		fail("opening leaderboard: %v", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.Clear(); err != nil {
			store.Close()
			fail("clearing leaderboard: %v", err)
		}
		fmt.Println("Leaderboard cleared.")
		return
	}

	entries, err := store.TopResults(0)
	if err != nil {
		store.Close()
		fail("retrieving results: %v", err)
	}

	fmt.Println("NetSnake Leaderboard")
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No results recorded yet.")
		fmt.Println()
		fmt.Println("Play 'netsnake play' to set the first high score!")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("#", "Name", "Mode", "Score", "Avg", "Jitter", "Loss", "Date")
	for i, e := range entries {
		t.Row(
			strconv.Itoa(i+1),
			e.Name,
			string(e.Mode),
			strconv.Itoa(e.Score),
			fmt.Sprintf("%d ms", e.AvgMs),
			fmt.Sprintf("%d ms", e.JitterMs),
			fmt.Sprintf("%d%%", e.LossPct),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Println(t.String())

	if best, err := store.HighScore(); err == nil {
		fmt.Println()
		fmt.Printf("Best: %d\n", best)
	}
}
