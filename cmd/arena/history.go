package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/arena/internal/platform/tui"
	"github.com/vovakirdan/arena/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryPlain bool
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent matches",
	Long: `Display your most recent finished matches with scores and results.

Examples:
  arena history
  arena history --limit 50
  arena history --plain
  arena history --clear`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 0, "Number of matches to show (default: storage.history_limit)")
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print a plain table instead of the interactive view")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all recorded matches")
}

func runHistory(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	limit := flagHistoryLimit
	if limit <= 0 {
		limit = cfg.Storage.HistoryLimit
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagHistoryClear {
		if err := store.ClearMatches(); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing history: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Match history cleared.")
		return
	}

	if flagHistoryPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		printHistory(store, limit)
		return
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = w, h
	}
	if err := tui.RunHistory(store, limit, width, height); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHistory(store *storage.Store, limit int) {
	matches, err := store.RecentMatches(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving matches: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Match History")
	fmt.Println()

	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'arena play' to record your first match!")
		return
	}

	// Print header
	fmt.Printf("  %-12s  %-8s  %-4s  %-6s  %-20s  %s\n", "Date", "Room", "Seat", "Result", "Scores", "Reason")
	fmt.Printf("  %-12s  %-8s  %-4s  %-6s  %-20s  %s\n", "----", "----", "----", "------", "------", "------")

	for _, row := range tui.HistoryRows(matches) {
		fmt.Printf("  %-12s  %-8s  %-4s  %-6s  %-20s  %s\n", row[0], row[1], row[2], row[3], row[4], row[5])
	}

	stats, err := store.MatchStats()
	if err != nil || stats.Played == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("Played %d, won %d, drew %d, best score %d\n",
		stats.Played, stats.Wins, stats.Ties, stats.BestScore)
}
