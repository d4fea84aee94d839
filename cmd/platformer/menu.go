package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/platform/tui"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a map picker menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to play a map, Tab for the runs board.
After leaving a map (B/Esc), you return to the menu.

Examples:
  platformer menu
  platformer menu --fps 30
  platformer menu --maps ./maps --db ./runs.db`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().BoolVar(&flagMute, "mute", false, "Disable sound effects")
	menuCmd.Flags().Float64Var(&flagVolume, "volume", 0.5, "Master volume (0-1)")
}

func runMenu(_ *cobra.Command, _ []string) {
	logger := newLogger("platformer")

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	cat, err := loadCatalog()
	if err != nil {
		fail("%v", err)
	}
	maps, err := loadMaps()
	if err != nil {
		fail("%v", err)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		store = nil
	}
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	sounds, closeSounds := openSounds(logger)
	defer closeSounds()

	rt := runtimeConfig()
	for {
		result, err := tui.RunMenu(maps, rt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		rt = result.Config

		if result.Quit {
			return
		}

		if result.WantsRuns {
			var source tui.RunSource
			if store != nil {
				source = store
			}
			goBack, runsErr := tui.RunRunsBoard(source, maps, rt.ScreenW, rt.ScreenH)
			if runsErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", runsErr)
			}
			if goBack {
				continue
			}
			return
		}

		for _, m := range maps {
			if m.ID != result.MapID {
				continue
			}
			if err := playMap(m, cat, cfg, rt, store, sounds, logger); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			break
		}
	}
}
