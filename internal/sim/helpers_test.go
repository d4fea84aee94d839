package sim

import (
	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

func testCatalog() *registry.Catalog {
	c := registry.New()
	c.MustRegister(registry.Entry{ID: "player", Kind: registry.KindPlayer, Width: 1, Height: 1})
	c.MustRegister(registry.Entry{ID: "stone", Kind: registry.KindBlock, Collision: true})
	c.MustRegister(registry.Entry{ID: "bush", Kind: registry.KindDecoration})
	c.MustRegister(registry.Entry{
		ID:     "spikes",
		Kind:   registry.KindHazard,
		Damage: registry.DamageProfile{Damage: 10, Once: true, Directions: registry.DirTop},
		Sound:  "hurt",
	})
	c.MustRegister(registry.Entry{
		ID:     "saw",
		Kind:   registry.KindHazard,
		Damage: registry.DamageProfile{Damage: 5, DamagePerSecond: 20, Directions: registry.DirAll},
	})
	c.MustRegister(registry.Entry{
		ID:     "thorns",
		Kind:   registry.KindHazard,
		Damage: registry.DamageProfile{Damage: 4, Directions: registry.DirAll},
	})
	c.MustRegister(registry.Entry{ID: "water", Kind: registry.KindLiquid, Liquid: registry.LiquidParams{Type: registry.LiquidWater}})
	c.MustRegister(registry.Entry{ID: "lava", Kind: registry.KindLiquid, Liquid: registry.LiquidParams{Type: registry.LiquidLava, DPS: 15}})
	c.MustRegister(registry.Entry{ID: "heart", Kind: registry.KindPickup, Effect: registry.Heal(20), Sound: "pickup", Volume: 1})
	c.MustRegister(registry.Entry{ID: "chest", Kind: registry.KindInteractable, Effect: registry.AddAmmo(5)})
	return c
}

// newWorld returns an empty 20x15 world with 32px tiles.
func newWorld() World {
	return newWorldSize(20, 15)
}

func newWorldSize(w, h int) World {
	return World{
		Tiles:    make([]string, w*h),
		Objects:  make([]string, w*h),
		Width:    w,
		Height:   h,
		TileSize: 32,
		Catalog:  testCatalog(),
	}
}

func setTile(w World, col, row int, id string) {
	w.Tiles[row*w.Width+col] = id
}

func setObject(w World, col, row int, id string) {
	w.Objects[row*w.Width+col] = id
}

func groundRow(w World, row int) {
	for col := 0; col < w.Width; col++ {
		setTile(w, col, row, "stone")
	}
}

type recorder struct {
	updates   []EventKind
	indices   []int
	gameOvers int
}

func (r *recorder) StateUpdate(kind EventKind, idx int) {
	r.updates = append(r.updates, kind)
	r.indices = append(r.indices, idx)
}

func (r *recorder) GameOver() {
	r.gameOvers++
}

type soundLog struct {
	played []string
}

func (s *soundLog) Play(name string, _ float64) {
	s.played = append(s.played, name)
}

func defaultCfg() config.Config {
	return config.Default()
}

// run ticks the engine n times, step ms apart, starting at start.
func run(e *Engine, n int, start, step float64, in TickInput) Snapshot {
	var snap Snapshot
	for i := 0; i < n; i++ {
		in.Timestamp = start + float64(i)*step
		snap = e.Tick(in)
	}
	return snap
}
