package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available maps",
	Long:  `Shows the maps found in --maps, or the built-in maps.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	maps, err := loadMaps()
	if err != nil {
		fail("%v", err)
	}

	fmt.Println("Available maps:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, m := range maps {
		maxIDLen = max(maxIDLen, len(m.ID))
	}

	// Run counts are best effort; a missing database just leaves them blank.
	var stats map[string]*storage.MapStats
	if store, err := storage.Open(flagDBPath); err == nil {
		stats, _ = store.GetAllMapStats()
		store.Close()
	}

	fmt.Printf("  %-*s  %-20s  %-14s  %-5s  %s\n", maxIDLen, "ID", "Name", "Size", "Runs", "Best")
	fmt.Printf("  %-*s  %-20s  %-14s  %-5s  %s\n", maxIDLen, "--", "----", "----", "----", "----")
	for _, m := range maps {
		runs, best := "-", "-"
		if st, ok := stats[m.ID]; ok {
			runs, best = fmt.Sprintf("%d", st.Runs), fmt.Sprintf("%d", st.BestScore)
		}
		size := fmt.Sprintf("%dx%d @%gpx", m.Width, m.Height, m.TileSize)
		fmt.Printf("  %-*s  %-20s  %-14s  %-5s  %s\n", maxIDLen, m.ID, m.Name, size, runs, best)
	}

	fmt.Println()
	fmt.Println("Run 'platformer play <id>' to play a map.")
}
