package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/audio"
	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/game"
	"github.com/vovakirdan/tui-platformer/internal/level"
	"github.com/vovakirdan/tui-platformer/internal/platform/tui"
	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/sim"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var (
	flagMute   bool
	flagVolume float64
)

var playCmd = &cobra.Command{
	Use:   "play <map>",
	Short: "Play a map",
	Long: `Start playing the specified map.

Controls:
  A/D, Left/Right  - Move
  Space/W/Up       - Jump
  F/X              - Shoot a fireball (needs ammo)
  P                - Pause
  ` + "`" + `                - Console (heal N, ammo N, restart, help)
  R                - Restart (after game over)
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Full health, +5 ammo, half hazard damage, slower drain
  normal - Config values as written
  hard   - 60% health, 1.5x hazard damage, faster drain, slower fireballs
  fixed  - Config values as written

Examples:
  platformer play meadow
  platformer play caverns --difficulty hard
  platformer play furnace --mute
  platformer play mymap --maps ./maps --catalog ./catalog.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagMute, "mute", false, "Disable sound effects")
	playCmd.Flags().Float64Var(&flagVolume, "volume", 0.5, "Master volume (0-1)")
}

func runPlay(cmd *cobra.Command, args []string) {
	logger := newLogger("platformer")

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	cat, err := loadCatalog()
	if err != nil {
		fail("%v", err)
	}
	m, err := level.NewLoader(flagMapsDir).LoadByID(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unknown map %q\n", args[0])
		fmt.Fprintln(os.Stderr, "Run 'platformer list' to see available maps.")
		os.Exit(1)
	}

	sounds, closeSounds := openSounds(logger)
	defer closeSounds()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		store = nil
	}

	runErr := playMap(m, cat, cfg, runtimeConfig(), store, sounds, logger)

	if store != nil {
		store.Close()
	}
	if runErr != nil {
		fail("running game: %v", runErr)
	}
}

// openSounds starts the speaker unless muted. Failure leaves the game silent.
func openSounds(logger *log.Logger) (sim.SoundPlayer, func()) {
	if flagMute {
		return audio.Nop{}, func() {}
	}
	synth := audio.NewSynth(flagVolume)
	if err := synth.Initialize(); err != nil {
		logger.Warn("sound disabled", "err", err)
		return audio.Nop{}, func() {}
	}
	return synth, synth.Close
}

// playMap runs one map in the terminal until the player leaves.
func playMap(m level.Map, cat *registry.Catalog, cfg config.Config, rt core.RuntimeConfig,
	store *storage.Store, sounds sim.SoundPlayer, logger *log.Logger,
) error {
	for _, err := range m.Validate(cat) {
		logger.Warn("map problem", "map", m.ID, "err", err)
	}

	session, err := game.NewSession(m, cat, cfg, game.WithSounds(sounds), game.WithLogger(logger))
	if err != nil {
		return err
	}
	report := session.Report()
	logger.Debug("map loaded", "map", m.ID, "player", report.PlayerID, "spawn_x", report.SpawnX, "spawn_y", report.SpawnY)

	var runs tui.RunSaver
	if store != nil {
		runs = store
	}
	return tui.Run(session, rt, tui.GameDeps{
		Runs:   runs,
		Logger: logger,
		Player: currentUser(),
		HoldMs: cfg.Input.HoldMs,
	})
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
