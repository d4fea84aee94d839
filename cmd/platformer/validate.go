package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/level"
)

var validateCmd = &cobra.Command{
	Use:   "validate [map...]",
	Short: "Check maps against the catalog",
	Long: `Reports unknown catalog ids, bad dimensions and missing spawns.
Without arguments every map is checked. Exits 1 if any problem is found.

Examples:
  platformer validate
  platformer validate meadow caverns --maps ./maps --catalog ./catalog.yaml`,
	Run: runValidate,
}

func runValidate(_ *cobra.Command, args []string) {
	cat, err := loadCatalog()
	if err != nil {
		fail("%v", err)
	}

	var maps []level.Map
	if len(args) == 0 {
		maps, err = loadMaps()
		if err != nil {
			fail("%v", err)
		}
	} else {
		loader := level.NewLoader(flagMapsDir)
		for _, id := range args {
			m, err := loader.LoadByID(id)
			if err != nil {
				fail("%v", err)
			}
			maps = append(maps, m)
		}
	}

	problems := 0
	for _, m := range maps {
		errs := m.Validate(cat)
		if len(errs) == 0 {
			fmt.Printf("ok    %s (%dx%d)\n", m.ID, m.Width, m.Height)
			continue
		}
		fmt.Printf("FAIL  %s (%s)\n", m.ID, m.FilePath)
		for _, err := range errs {
			fmt.Printf("        %v\n", err)
		}
		problems += len(errs)
	}

	if problems > 0 {
		fmt.Fprintf(os.Stderr, "%d problem(s) found\n", problems)
		os.Exit(1)
	}
}
