package sim

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

func loadEngine(t *testing.T, w World, opts ...Option) *Engine {
	t.Helper()
	return loadEngineCfg(t, w, nil, opts...)
}

func loadEngineCfg(t *testing.T, w World, mutate func(*Engine), opts ...Option) *Engine {
	t.Helper()
	cfg := defaultCfg()
	e := NewEngine(cfg, opts...)
	if mutate != nil {
		mutate(e)
	}
	if _, err := e.Load(w); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return e
}

func TestEngineLoadSpawn(t *testing.T) {
	w := newWorld()
	setObject(w, 3, 4, "player")

	e := NewEngine(defaultCfg())
	report, err := e.Load(w)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Errorf("Issues = %v, expected none", report.Issues)
	}
	if e.Status() != StatusRunning {
		t.Errorf("Status() = %v, expected running", e.Status())
	}

	p := e.Snapshot().Player
	if p.X != 96 || p.Y != 128 {
		t.Errorf("spawn = (%v, %v), expected (96, 128)", p.X, p.Y)
	}
	if p.Width != 25.6 || p.Height != 32 {
		t.Errorf("size = %vx%v, expected 25.6x32", p.Width, p.Height)
	}
	if p.Health != 100 || p.Oxygen != 100 || p.HeatResist != 100 {
		t.Errorf("stats = %+v, expected full meters", p)
	}
}

func TestEngineLoadRecovers(t *testing.T) {
	w := World{Catalog: testCatalog()}

	e := NewEngine(defaultCfg())
	report, err := e.Load(w)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(report.Issues) != 3 {
		t.Fatalf("Issues = %v, expected dimensions, tile size and spawn", report.Issues)
	}

	var cfgErr *ConfigurationError
	if !errors.As(report.Issues[2], &cfgErr) || cfgErr.Field != "spawn" {
		t.Errorf("Issues[2] = %v, expected a spawn ConfigurationError", report.Issues[2])
	}
	if report.SpawnIndex != -1 || report.SpawnX != 0 || report.SpawnY != 0 {
		t.Errorf("spawn = %+v, expected the origin fallback", report)
	}

	world := e.World()
	if world.Width != 20 || world.Height != 15 || world.TileSize != 32 {
		t.Errorf("world = %dx%d@%v, expected 20x15@32", world.Width, world.Height, world.TileSize)
	}
	if e.Status() != StatusRunning {
		t.Errorf("Status() = %v, expected running after recovery", e.Status())
	}
}

func TestEngineLoadNilCatalog(t *testing.T) {
	e := NewEngine(defaultCfg())
	if _, err := e.Load(World{Width: 4, Height: 4, TileSize: 32}); !errors.Is(err, ErrNilCatalog) {
		t.Errorf("Load() error = %v, expected ErrNilCatalog", err)
	}
	if e.Status() != StatusUninitialized {
		t.Errorf("Status() = %v, expected uninitialized", e.Status())
	}
}

func TestEngineTickBeforeLoadIsNoop(t *testing.T) {
	e := NewEngine(defaultCfg())
	snap := e.Tick(TickInput{Intent: core.Intent{Right: true}, Timestamp: 100})
	if snap.Status != StatusUninitialized || snap.Tick != 0 {
		t.Errorf("snapshot = %+v, expected untouched uninitialized engine", snap)
	}
}

// A one-shot hazard directly below the spawn damages once when the player falls onto it.
func TestScenarioOneShotHazardBelowSpawn(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setObject(w, 1, 1, "player")
	setObject(w, 1, 2, "spikes")
	sounds := &soundLog{}
	e := loadEngine(t, w, WithSounds(sounds))

	hits := 0
	sawPushback := false
	var snap Snapshot
	for i := 0; i < 120; i++ {
		snap = e.Tick(TickInput{Timestamp: float64(i) * 16})
		for _, ev := range snap.Events {
			if ev.Kind == EventHazardHit {
				hits++
				if snap.Player.VY < 0 {
					sawPushback = true
				}
				if snap.Player.VY != -4 {
					t.Errorf("pushback VY = %v, expected -4", snap.Player.VY)
				}
			}
		}
	}

	if hits != 1 {
		t.Errorf("hazard hits = %d, expected exactly 1", hits)
	}
	if !sawPushback {
		t.Error("expected a negative vy pushback on the hit")
	}
	if snap.Player.Health != 90 {
		t.Errorf("Health = %v, expected 90", snap.Player.Health)
	}
	if !snap.Player.Grounded || snap.Player.Y != 64 {
		t.Errorf("player = y:%v grounded:%v, expected resting on the ground at 64", snap.Player.Y, snap.Player.Grounded)
	}
	if len(sounds.played) == 0 || sounds.played[0] != "hurt" {
		t.Errorf("sounds = %v, expected the hazard sound", sounds.played)
	}
}

// A per-second hazard under the spawn: one tick of contact per second.
func TestScenarioContinuousHazard(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setObject(w, 1, 1, "player")
	setObject(w, 1, 2, "saw")
	e := loadEngine(t, w)

	snap := run(e, 4, 0, 1000, TickInput{})
	if snap.Player.Health != 40 {
		t.Errorf("Health = %v, expected 100 - 3*20", snap.Player.Health)
	}
	if snap.Player.HitFlashMs != defaultCfg().Player.HitFlashMs {
		t.Errorf("HitFlashMs = %v, expected the flash to restart on damage", snap.Player.HitFlashMs)
	}
}

// Standing in lava with dps 15 for 2000ms.
func TestScenarioLava(t *testing.T) {
	w := newWorld()
	groundRow(w, 6)
	for col := 3; col <= 5; col++ {
		setTile(w, col, 5, "lava")
	}
	setObject(w, 4, 5, "player")
	e := loadEngine(t, w)

	snap := run(e, 3, 0, 1000, TickInput{})
	if snap.Player.Health != 70 {
		t.Errorf("Health = %v, expected 70", snap.Player.Health)
	}
	if snap.Player.HeatResist != 50 {
		t.Errorf("HeatResist = %v, expected 50 after 2s at 25/s", snap.Player.HeatResist)
	}
	if snap.Player.Liquid.String() != "lava" {
		t.Errorf("Liquid = %v, expected lava", snap.Player.Liquid)
	}

	// Walking out of the lava resets the liquid accumulator.
	e.memory.LiquidAccumMs = 900
	e.player.X = 10 * 32
	e.Tick(TickInput{Timestamp: 2016})
	if e.memory.LiquidAccumMs != 0 {
		t.Errorf("LiquidAccumMs = %v, expected reset after leaving liquid", e.memory.LiquidAccumMs)
	}
}

func TestEngineLiquidDamping(t *testing.T) {
	cfg := defaultCfg()
	speed := cfg.Physics.MoveSpeed
	tests := []struct {
		name     string
		liquid   string
		expected float64
	}{
		{"lava", "lava", speed * cfg.Liquids.LavaDamping},
		{"water", "water", speed * cfg.Liquids.DefaultDamping},
		{"dry", "", speed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorld()
			groundRow(w, 6)
			if tc.liquid != "" {
				for col := 2; col <= 8; col++ {
					setTile(w, col, 5, tc.liquid)
				}
			}
			setObject(w, 4, 5, "player")
			e := loadEngine(t, w)

			snap := e.Tick(TickInput{Intent: core.Intent{Right: true}, Timestamp: 0})
			if snap.Player.VX != tc.expected {
				t.Errorf("VX = %v, expected %v", snap.Player.VX, tc.expected)
			}
			// Damping is applied after the move; x advanced by the full speed.
			if snap.Player.X != 4*32+speed {
				t.Errorf("X = %v, expected %v", snap.Player.X, 4*32+speed)
			}
		})
	}
}

func TestScenarioShootWithoutAmmo(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setObject(w, 1, 2, "player")
	e := loadEngine(t, w)

	snap := run(e, 10, 0, 16, TickInput{Intent: core.Intent{Shoot: true}})
	if len(snap.Projectiles) != 0 || snap.Player.Ammo != 0 {
		t.Errorf("projectiles=%d ammo=%d, expected none spawned and ammo 0", len(snap.Projectiles), snap.Player.Ammo)
	}
}

func TestEngineSidePushbackLeavesPosition(t *testing.T) {
	cat := testCatalog()
	cat.MustRegister(registry.Entry{
		ID:     "bumper",
		Kind:   registry.KindHazard,
		Damage: registry.DamageProfile{Damage: 5, Once: true, Directions: registry.DirRight},
	})
	w := newWorld()
	w.Catalog = cat
	groundRow(w, 3)
	setObject(w, 1, 2, "bumper")
	setObject(w, 10, 2, "player")
	e := loadEngine(t, w)

	// Flush with the bumper's left edge, standing on the ground.
	e.player.X, e.player.Y = 32, 64
	snap := e.Tick(TickInput{Timestamp: 0})
	if snap.Player.Health != 95 {
		t.Fatalf("Health = %v, expected 95", snap.Player.Health)
	}
	want := defaultCfg().Physics.MoveSpeed * defaultCfg().Hazards.PushbackMoveScale
	if snap.Player.VX != want || snap.Player.X != 32 {
		t.Errorf("after hit VX = %v, X = %v, expected VX %v at X 32", snap.Player.VX, snap.Player.X, want)
	}

	snap = e.Tick(TickInput{Timestamp: 16})
	if snap.Player.VX != 0 || snap.Player.X != 32 {
		t.Errorf("next tick VX = %v, X = %v, expected the move to drop the pushback", snap.Player.VX, snap.Player.X)
	}
}

func TestEngineShootCooldown(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setObject(w, 1, 2, "player")
	e := loadEngine(t, w)
	e.GrantAmmo(3)

	shoot := TickInput{Intent: core.Intent{Shoot: true}}
	shoot.Timestamp = 0
	snap := e.Tick(shoot)
	if snap.Player.Ammo != 2 || len(snap.Projectiles) != 1 {
		t.Fatalf("ammo=%d projectiles=%d, expected 2 and 1", snap.Player.Ammo, len(snap.Projectiles))
	}
	// The first tick has dt 0, so the projectile still sits at its origin.
	p := snap.Player
	if got := snap.Projectiles[0]; got.X != p.X+p.Width || got.Y != p.Y+p.Height/2 {
		t.Errorf("origin = (%v, %v), expected (%v, %v)", got.X, got.Y, p.X+p.Width, p.Y+p.Height/2)
	}
	if p.X != 32 || p.Y != 64 {
		t.Errorf("player = (%v, %v), expected to stand at (32, 64)", p.X, p.Y)
	}

	shoot.Timestamp = 100
	if snap = e.Tick(shoot); snap.Player.Ammo != 2 {
		t.Errorf("Ammo = %d, expected cooldown to block a second shot", snap.Player.Ammo)
	}

	shoot.Timestamp = 200
	if snap = e.Tick(shoot); snap.Player.Ammo != 1 {
		t.Errorf("Ammo = %d, expected a shot after the cooldown", snap.Player.Ammo)
	}
}

func TestScenarioFallOutOfWorld(t *testing.T) {
	w := newWorld()
	setObject(w, 5, 0, "player")
	rec := &recorder{}
	e := loadEngine(t, w, WithObserver(rec))

	var over Snapshot
	for i := 0; i < 300; i++ {
		snap := e.Tick(TickInput{Timestamp: float64(i) * 16})
		if snap.Status == StatusTerminated && over.Status != StatusTerminated {
			over = snap
		}
	}

	if rec.gameOvers != 1 {
		t.Errorf("GameOver() called %d times, expected 1", rec.gameOvers)
	}
	if e.Status() != StatusTerminated {
		t.Fatalf("Status() = %v, expected terminated", e.Status())
	}
	if over.Player.Y <= 15*32+100 {
		t.Errorf("terminated at y=%v, expected below %v", over.Player.Y, 15*32+100)
	}
	found := false
	for _, ev := range over.Events {
		if ev.Kind == EventGameOver && ev.Cause == CauseFell {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %v, expected a fell game-over event", over.Events)
	}

	tick := e.Snapshot().Tick
	e.Tick(TickInput{Timestamp: 99999})
	if e.Snapshot().Tick != tick {
		t.Error("a terminated engine should not advance")
	}
}

func TestEngineGameOverOnHealth(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setObject(w, 1, 1, "player")
	setObject(w, 1, 2, "saw")
	rec := &recorder{}
	e := loadEngine(t, w, WithObserver(rec))

	snap := run(e, 3, 0, 5000, TickInput{})
	if snap.Status != StatusTerminated || snap.Player.Health != 0 {
		t.Errorf("snapshot = status:%v health:%v, expected terminated at 0", snap.Status, snap.Player.Health)
	}
	if rec.gameOvers != 1 {
		t.Errorf("GameOver() called %d times, expected 1", rec.gameOvers)
	}

	if _, err := e.Load(w); err != nil {
		t.Fatal(err)
	}
	run(e, 3, 0, 5000, TickInput{})
	if rec.gameOvers != 2 {
		t.Errorf("GameOver() called %d times, expected once more after reload", rec.gameOvers)
	}
}

func TestEngineTerminalOpenPauses(t *testing.T) {
	w := newWorld()
	setObject(w, 5, 0, "player")
	e := loadEngine(t, w)

	e.Tick(TickInput{Timestamp: 0})
	before := e.Snapshot()

	paused := e.Tick(TickInput{Timestamp: 1000, TerminalOpen: true, Intent: core.Intent{Right: true}})
	if paused.Player != before.Player || paused.Tick != before.Tick {
		t.Error("an open terminal should not mutate state")
	}

	// Time spent paused is not replayed once the terminal closes.
	after := e.Tick(TickInput{Timestamp: 1016})
	if after.ElapsedMs != 16 {
		t.Errorf("ElapsedMs = %v, expected 16", after.ElapsedMs)
	}
}

func TestEngineDeltaGuards(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setObject(w, 1, 1, "player")
	setObject(w, 1, 2, "saw")
	e := loadEngine(t, w)

	e.Tick(TickInput{Timestamp: 5000})
	e.Tick(TickInput{Timestamp: 1000}) // clock went backwards
	snap := e.Tick(TickInput{Timestamp: 1500})
	if snap.ElapsedMs != 500 {
		t.Errorf("ElapsedMs = %v, expected only the forward step to count", snap.ElapsedMs)
	}
	if snap.Player.Health != 100 {
		t.Errorf("Health = %v, expected no damage from a backwards clock", snap.Player.Health)
	}
}

func TestEngineBlockedHorizontalMove(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setTile(w, 2, 2, "stone")
	setObject(w, 1, 2, "player")
	e := loadEngine(t, w)

	right := TickInput{Intent: core.Intent{Right: true}}
	snap := run(e, 5, 0, 16, right)
	if snap.Player.VX != 0 {
		t.Errorf("VX = %v, expected 0 against the wall", snap.Player.VX)
	}
	x := snap.Player.X
	right.Timestamp = 100
	if snap = e.Tick(right); snap.Player.X != x {
		t.Errorf("X = %v, expected unchanged %v", snap.Player.X, x)
	}
}

func TestEnginePickupIsIdempotent(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setObject(w, 1, 1, "player")
	setObject(w, 1, 2, "heart")
	rec := &recorder{}
	e := loadEngineCfg(t, w, func(e *Engine) { e.cfg.Player.StartHealth = 50 }, WithObserver(rec))

	snap := run(e, 60, 0, 16, TickInput{})
	if snap.Player.Health != 70 {
		t.Errorf("Health = %v, expected one heal of 20", snap.Player.Health)
	}
	if len(rec.updates) != 1 || rec.updates[0] != EventCollectItem || rec.indices[0] != 2*w.Width+1 {
		t.Errorf("updates = %v at %v, expected one collectItem at %d", rec.updates, rec.indices, 2*w.Width+1)
	}
}

func TestEngineQueuedCommands(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setObject(w, 1, 2, "player")
	e := loadEngineCfg(t, w, func(e *Engine) { e.cfg.Player.StartHealth = 40 })

	e.Heal(500)
	e.GrantAmmo(4)
	if e.Snapshot().Player.Health != 40 {
		t.Error("queued commands should wait for the next tick")
	}

	snap := e.Tick(TickInput{Timestamp: 0})
	if snap.Player.Health != 100 || snap.Player.Ammo != 4 {
		t.Errorf("stats = health:%v ammo:%v, expected 100 and 4", snap.Player.Health, snap.Player.Ammo)
	}
}

func TestEngineHealthStaysInRange(t *testing.T) {
	w := newWorld()
	groundRow(w, 10)
	setObject(w, 1, 9, "player")
	for col := 2; col < 18; col++ {
		switch col % 4 {
		case 0:
			setObject(w, col, 9, "saw")
		case 1:
			setObject(w, col, 9, "heart")
		case 2:
			setObject(w, col, 9, "spikes")
		case 3:
			setTile(w, col, 9, "lava")
		}
	}
	e := loadEngine(t, w)

	rng := rand.New(rand.NewSource(7))
	ts := 0.0
	for i := 0; i < 2000 && e.Status() == StatusRunning; i++ {
		ts += float64(rng.Intn(400))
		snap := e.Tick(TickInput{
			Timestamp: ts,
			Intent: core.Intent{
				Left:  rng.Intn(3) == 0,
				Right: rng.Intn(2) == 0,
				Jump:  rng.Intn(5) == 0,
			},
		})
		p := snap.Player
		if p.Health < 0 || p.Health > p.MaxHealth {
			t.Fatalf("tick %d: health %v out of [0, %v]", i, p.Health, p.MaxHealth)
		}
		if p.Oxygen < 0 || p.Oxygen > p.OxygenMax || p.HeatResist < 0 || p.HeatResist > p.HeatResistMax {
			t.Fatalf("tick %d: meters out of range: %+v", i, p)
		}
		if p.X < 0 || p.X > snap.WorldWidthPx-p.Width {
			t.Fatalf("tick %d: x %v outside the world", i, p.X)
		}
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	w := newWorld()
	groundRow(w, 3)
	setObject(w, 1, 2, "player")
	e := loadEngine(t, w)
	e.GrantAmmo(1)

	snap := e.Tick(TickInput{Intent: core.Intent{Shoot: true}})
	snap.Projectiles[0].X = -1
	snap.Events[0].Kind = "tampered"

	again := e.Snapshot()
	if again.Projectiles[0].X == -1 || again.Events[0].Kind == "tampered" {
		t.Error("snapshots should not alias engine state")
	}
}
