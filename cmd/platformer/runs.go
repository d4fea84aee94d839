package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var (
	flagRunsLimit int
	flagRunsClear bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [map]",
	Short: "Show the best runs",
	Long: `Display the best runs for a map, or the most recent runs of every map.

Examples:
  platformer runs
  platformer runs meadow
  platformer runs meadow --limit 25
  platformer runs meadow --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagRunsClear, "clear", false, "Delete the runs of the given map")
}

func runRuns(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening runs database: %v", err)
	}
	defer store.Close()

	if len(args) == 0 {
		if flagRunsClear {
			fail("--clear needs a map id")
		}
		runs, err := store.RecentRuns(flagRunsLimit)
		if err != nil {
			fail("retrieving runs: %v", err)
		}
		fmt.Println("Recent runs")
		fmt.Println()
		printRuns(runs, true)
		return
	}

	mapID := args[0]
	if flagRunsClear {
		if err := store.ClearRuns(mapID); err != nil {
			fail("clearing runs: %v", err)
		}
		fmt.Printf("Cleared runs for %s\n", mapID)
		return
	}

	runs, err := store.TopRuns(mapID, flagRunsLimit)
	if err != nil {
		fail("retrieving runs: %v", err)
	}
	fmt.Printf("Best runs - %s\n", mapID)
	fmt.Println()
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'platformer play %s' to set the first one!\n", mapID)
		return
	}
	printRuns(runs, false)

	stats, err := store.GetMapStats(mapID)
	if err != nil {
		fail("retrieving stats: %v", err)
	}
	fmt.Println()
	fmt.Printf("%d runs, average score %.0f, %d fell, %d lost all health\n",
		stats.Runs, stats.AvgScore, stats.FallDeaths, stats.HealthDeaths)
}

func printRuns(runs []storage.Run, withMap bool) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	mapCol := ""
	if withMap {
		mapCol = fmt.Sprintf("%-12s  ", "Map")
	}
	fmt.Printf("  %-4s  %s%-12s  %-7s  %-6s  %-6s  %s\n", "Rank", mapCol, "Player", "Score", "Time", "Cause", "Date")
	for i, r := range runs {
		if withMap {
			mapCol = fmt.Sprintf("%-12s  ", r.MapID)
		}
		secs := r.DurationMs / 1000
		fmt.Printf("  %-4d  %s%-12s  %-7d  %2d:%02d   %-6s  %s\n",
			i+1, mapCol, r.Player, r.Score, secs/60, secs%60, r.Cause, r.CreatedAt.Format("2006-01-02 15:04"))
	}
}
