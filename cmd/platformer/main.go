// platformer is a tile-based platformer played in the terminal.
//
// Usage:
//
//	platformer list              - List available maps
//	platformer play <map>        - Play a map
//	platformer menu              - Pick maps interactively
//	platformer runs [map]        - Show the best runs
//	platformer serve             - Host SSH play, the HTTP API and spectators
//	platformer validate [map...] - Check maps against the catalog
//
// Global flags:
//
//	--fps <rate>           - Set tick rate (default: 60)
//	--config <path>        - Gameplay config YAML
//	--difficulty <preset>  - easy, normal, hard, fixed
//	--maps <dir>           - Map directory (default: built-in maps)
//	--catalog <path>       - Catalog YAML (default: built-in catalog)
//	--db <path>            - Runs database (default: ~/.platformer/runs.db)
//	--log-level <level>    - debug, info, warn, error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/level"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

var (
	// Global flags
	flagFPS        int
	flagConfig     string
	flagDifficulty string
	flagMapsDir    string
	flagCatalog    string
	flagDBPath     string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "platformer",
	Short: "TUI Platformer - run, jump and swim through tile maps in your terminal",
	Long: `TUI Platformer is a tile-based platformer for the terminal.

Available commands:
  list      - Show all available maps
  play      - Play a specific map directly
  menu      - Interactive map picker
  runs      - View the best runs
  serve     - Start the SSH server and HTTP API
  validate  - Check map files against the catalog

Examples:
  platformer list
  platformer play meadow
  platformer play caverns --difficulty hard
  platformer menu --maps ./maps
  platformer serve --ssh :2222 --http :8080`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom gameplay config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagMapsDir, "maps", "", "Directory of map files (default: built-in maps)")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Path to catalog YAML (default: built-in catalog)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.platformer/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
}

// newLogger builds the stderr logger at --log-level.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using warn", "level", flagLogLevel)
		level = log.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

// loadConfig loads the gameplay config and applies --difficulty.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDifficulty != "" {
		preset, err := config.ParsePreset(flagDifficulty)
		if err != nil {
			return cfg, err
		}
		config.ApplyPreset(&cfg, preset)
	}
	return cfg, nil
}

// loadCatalog loads --catalog or the built-in catalog.
func loadCatalog() (*registry.Catalog, error) {
	return registry.LoadOrDefault(flagCatalog)
}

// loadMaps loads every map from --maps or the built-in maps.
func loadMaps() ([]level.Map, error) {
	maps, err := level.NewLoader(flagMapsDir).LoadAll()
	if err != nil {
		return nil, err
	}
	if len(maps) == 0 {
		return nil, fmt.Errorf("no maps found in %s", mapsSource())
	}
	return maps, nil
}

func mapsSource() string {
	if flagMapsDir == "" {
		return "built-in maps"
	}
	return flagMapsDir
}

// runtimeConfig sizes the screen from the controlling terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	return cfg
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
