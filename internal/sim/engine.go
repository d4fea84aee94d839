package sim

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

// Option configures an Engine.
type Option func(*Engine)

// WithObserver sets the receiver of map-mutation and game-over notifications.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithSounds sets the sound effect player.
func WithSounds(s SoundPlayer) Option {
	return func(e *Engine) { e.sounds = s }
}

// WithLogger sets the logger used for recovered load problems and game over.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLiquidSampler replaces the grid liquid sampler.
func WithLiquidSampler(s LiquidSampler) Option {
	return func(e *Engine) {
		if s != nil {
			e.sampler = s
		}
	}
}

// LoadReport describes how a map was turned into a running session.
type LoadReport struct {
	SpawnX, SpawnY float64
	SpawnIndex     int // -1 when the fallback origin was used
	PlayerID       string
	Issues         []error // recovered *ConfigurationError values
}

type command struct {
	heal float64
	ammo int
}

// Engine is the frame orchestrator. It owns the player state and hazard
// memory and mutates them only inside Tick. It is not safe for concurrent use.
type Engine struct {
	cfg     config.Config
	world   World
	status  Status
	player  PlayerState
	memory  HazardMemory
	shots   *Projectiles
	pending []command

	lastTs    float64
	hasTs     bool
	tick      uint64
	elapsedMs float64
	overFired bool
	last      Snapshot

	observer Observer
	sounds   SoundPlayer
	logger   *log.Logger
	sampler  LiquidSampler
}

// NewEngine creates an uninitialized engine.
func NewEngine(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		memory:  NewHazardMemory(),
		shots:   NewProjectiles(cfg.Projectiles),
		logger:  log.New(io.Discard),
		sampler: GridLiquidSampler{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.last = Snapshot{Status: StatusUninitialized}
	return e
}

// Load starts a new session on w from any state. Malformed dimensions and a
// missing spawn are recovered with defaults and listed in the report.
func (e *Engine) Load(w World) (LoadReport, error) {
	report := LoadReport{SpawnIndex: -1}
	if w.Catalog == nil {
		return report, ErrNilCatalog
	}

	if w.Width <= 0 || w.Height <= 0 {
		report.Issues = append(report.Issues, &ConfigurationError{
			Field:  "dimensions",
			Reason: fmt.Sprintf("invalid %dx%d, using %dx%d", w.Width, w.Height, e.cfg.World.DefaultWidth, e.cfg.World.DefaultHeight),
		})
		w.Width, w.Height = e.cfg.World.DefaultWidth, e.cfg.World.DefaultHeight
		if w.Width <= 0 || w.Height <= 0 {
			w.Width, w.Height = 20, 15
		}
	}
	if !core.Finite(w.TileSize) || w.TileSize <= 0 {
		report.Issues = append(report.Issues, &ConfigurationError{
			Field:  "tile_size",
			Reason: fmt.Sprintf("invalid %v, using %v", w.TileSize, e.cfg.Physics.TileSize),
		})
		w.TileSize = e.cfg.Physics.TileSize
	}
	if w.CornerInset <= 0 {
		w.CornerInset = e.cfg.Physics.CornerInset
	}
	e.world = w

	playerID := "player"
	for i, id := range w.Objects {
		if i >= w.Width*w.Height {
			break
		}
		if strings.Contains(id, "player") {
			report.SpawnIndex = i
			playerID = id
			break
		}
	}

	entry, ok := w.Catalog.Lookup(playerID)
	if !ok {
		entry, ok = w.Catalog.Lookup("player")
	}
	tilesW, tilesH := 1, 1
	if ok {
		tilesW, tilesH = core.Max(1, entry.Width), core.Max(1, entry.Height)
	}
	report.PlayerID = playerID

	if report.SpawnIndex >= 0 {
		report.SpawnX = float64(report.SpawnIndex%w.Width) * w.TileSize
		report.SpawnY = float64(report.SpawnIndex/w.Width) * w.TileSize
	} else {
		report.Issues = append(report.Issues, &ConfigurationError{
			Field:  "spawn",
			Reason: "no object id contains \"player\", spawning at origin",
		})
	}

	pc := e.cfg.Player
	e.player = PlayerState{
		X:             report.SpawnX,
		Y:             report.SpawnY,
		Width:         float64(tilesW) * w.TileSize * pc.WidthScale,
		Height:        float64(tilesH) * w.TileSize,
		Facing:        FacingRight,
		Animation:     AnimIdle,
		Health:        core.ClampF(pc.StartHealth, 0, pc.MaxHealth),
		MaxHealth:     pc.MaxHealth,
		Ammo:          core.Max(0, pc.StartAmmo),
		Oxygen:        e.cfg.Resources.OxygenMax,
		OxygenMax:     e.cfg.Resources.OxygenMax,
		HeatResist:    e.cfg.Resources.HeatResistMax,
		HeatResistMax: e.cfg.Resources.HeatResistMax,
	}
	e.memory = NewHazardMemory()
	e.shots.Reset()
	e.pending = nil
	e.hasTs = false
	e.tick = 0
	e.elapsedMs = 0
	e.overFired = false
	e.status = StatusRunning
	e.last = e.snapshot(nil)

	for _, issue := range report.Issues {
		e.logger.Warn("recovered map problem", "err", issue)
	}
	return report, nil
}

// Reset returns the engine to Uninitialized. A new Load is required to run again.
func (e *Engine) Reset() {
	e.status = StatusUninitialized
	e.shots.Reset()
	e.pending = nil
	e.hasTs = false
	e.last = e.snapshot(nil)
}

// Status returns the orchestrator state.
func (e *Engine) Status() Status {
	return e.status
}

// Snapshot returns a copy of the last published snapshot.
func (e *Engine) Snapshot() Snapshot {
	return copySnapshot(e.last)
}

// World returns the world the engine runs against.
func (e *Engine) World() World {
	return e.world
}

// Heal queues a health change applied at the start of the next running tick.
func (e *Engine) Heal(amount float64) {
	e.pending = append(e.pending, command{heal: amount})
}

// GrantAmmo queues an ammo change applied at the start of the next running tick.
func (e *Engine) GrantAmmo(n int) {
	e.pending = append(e.pending, command{ammo: n})
}

// Tick advances the simulation by one frame.
func (e *Engine) Tick(in TickInput) Snapshot {
	if e.status != StatusRunning {
		e.last.Events = nil
		return e.Snapshot()
	}

	dt := e.delta(in.Timestamp)
	if in.TerminalOpen {
		e.last.Events = nil
		return e.Snapshot()
	}

	var events []Event
	p := &e.player
	cfg := e.cfg
	w := e.world
	healthBefore := p.Health

	e.sanitize()
	e.applyPending()

	// Horizontal movement
	h := MoveHorizontal(in.Intent, p.Box(), p.Facing, cfg.Physics.MoveSpeed, w)
	p.X, p.VX, p.Facing = h.X, h.VX, h.Facing

	// Vertical physics
	v := ApplyVerticalPhysics(VerticalInput{
		Jump:             in.Intent.Jump,
		Body:             p.Box(),
		VX:               p.VX,
		VY:               p.VY,
		Grounded:         p.Grounded,
		Animation:        p.Animation,
		PrevInWater:      p.InWater,
		Gravity:          cfg.Physics.Gravity,
		TerminalVelocity: cfg.Physics.TerminalVelocity,
		JumpForce:        cfg.Physics.JumpForce,
	}, w, e.isWater)
	p.Y, p.VY, p.Grounded, p.Animation = v.Y, v.VY, v.Grounded, v.Animation
	p.InWater, p.HeadUnderWater, p.AtSurface = v.InWater, v.HeadUnderWater, v.AtSurface
	if v.Splash {
		events = append(events, Event{Kind: EventSplash, TileIndex: -1})
		e.play("splash", 1)
	}

	// Liquid sampling, damping and damage over time
	sample := SampleBody(e.sampler, w, p.Box())
	if !sample.InLiquid {
		e.memory.LiquidAccumMs = 0
		p.Liquid = registry.LiquidNone
	} else {
		p.Liquid = sample.Type
	}
	if p.InWater || sample.InLiquid {
		p.VX *= Damping(p.Liquid, cfg.Liquids.LavaDamping, cfg.Liquids.DefaultDamping)
	}
	if sample.InLiquid && sample.Params.DPS > 0 {
		dmg, rest := accumulate(e.memory.LiquidAccumMs, dt, cfg.Liquids.DamageIntervalMs, sample.Params.DPS*damageScale(cfg))
		e.memory.LiquidAccumMs = rest
		if dmg > 0 {
			p.Health = clampHealth(p.Health-dmg, p.MaxHealth)
		}
	}

	// Resource meters
	r := TickResources(ResourceInput{
		Oxygen:         p.Oxygen,
		OxygenMax:      p.OxygenMax,
		HeatResist:     p.HeatResist,
		HeatResistMax:  p.HeatResistMax,
		InWater:        p.InWater,
		HeadUnderWater: p.HeadUnderWater,
		Liquid:         p.Liquid,
		DtMs:           dt,
		Rates:          cfg.Resources,
	})
	p.Oxygen, p.OxygenMax = r.Oxygen, r.OxygenMax
	p.HeatResist, p.HeatResistMax = r.HeatResist, r.HeatResistMax

	// Pickups and interactables
	pk := ResolvePickup(PickupInput{
		Body:      p.Box(),
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Ammo:      p.Ammo,
	}, w, &e.memory)
	p.Health, p.Ammo = pk.Health, pk.Ammo
	if pk.Consumed {
		events = append(events, Event{Kind: pk.Kind, TileIndex: pk.Index, EntryID: pk.Entry.ID, Amount: float64(pk.Entry.Effect.Amount)})
		e.play(pk.Entry.Sound, pk.Entry.Volume)
		if e.observer != nil {
			e.observer.StateUpdate(pk.Kind, pk.Index)
		}
	}

	// Hazards
	hz := ResolveHazard(HazardInput{
		Body:   p.Box(),
		DtMs:   dt,
		Health: p.Health,
		VX:     p.VX,
		VY:     p.VY,
	}, w, &e.memory, cfg)
	p.Health, p.VX, p.VY = hz.Health, hz.VX, hz.VY
	if hz.Hit {
		events = append(events, Event{Kind: EventHazardHit, TileIndex: hz.Index, EntryID: hz.Entry.ID, Amount: hz.Damage})
		e.play(hz.Entry.Sound, hz.Entry.Volume)
	}

	// Shooting and projectiles
	p.ShootCooldownMs = nonNegative(p.ShootCooldownMs - dt)
	if in.Intent.Shoot && p.ShootCooldownMs <= 0 && p.Ammo > 0 {
		ox := p.X
		if p.Facing == FacingRight {
			ox = p.X + p.Width
		}
		if e.shots.Spawn(ox, p.Y+p.Height/2, p.Facing) {
			p.Ammo--
			p.ShootCooldownMs = cfg.Projectiles.CooldownMs
			events = append(events, Event{Kind: EventShoot, TileIndex: -1})
			e.play("shoot", 1)
		}
	}
	e.shots.Advance(dt, w)

	// Transient timers
	p.HitFlashMs = nonNegative(p.HitFlashMs - dt)
	if p.Health < healthBefore {
		p.HitFlashMs = cfg.Player.HitFlashMs
	}

	e.tick++
	e.elapsedMs += dt

	// Termination
	cause := ""
	if p.Health <= 0 {
		p.Health = 0
		cause = CauseHealth
	} else if p.Y > w.HeightPx()+cfg.World.FallMargin {
		cause = CauseFell
	}

	// Horizontal world bounds
	p.X = core.ClampF(p.X, 0, maxF(0, w.WidthPx()-p.Width))

	if cause != "" {
		e.status = StatusTerminated
		events = append(events, Event{Kind: EventGameOver, TileIndex: -1, Cause: cause})
		if !e.overFired {
			e.overFired = true
			e.logger.Debug("game over", "cause", cause, "tick", e.tick, "elapsed_ms", e.elapsedMs)
			e.play("gameover", 1)
			if e.observer != nil {
				e.observer.GameOver()
			}
		}
	}

	e.last = e.snapshot(events)
	return e.Snapshot()
}

// delta derives elapsed ms from the previous timestamp. The first tick, a
// negative step or a non-finite value all yield zero.
func (e *Engine) delta(ts float64) float64 {
	if !core.Finite(ts) {
		return 0
	}
	if !e.hasTs {
		e.hasTs = true
		e.lastTs = ts
		return 0
	}
	dt := ts - e.lastTs
	e.lastTs = ts
	if !core.Finite(dt) || dt < 0 {
		return 0
	}
	return dt
}

// sanitize repairs numeric fields a bad input could have corrupted.
func (e *Engine) sanitize() {
	p := &e.player
	if !core.Finite(p.OxygenMax) || p.OxygenMax <= 0 {
		p.OxygenMax = stickyMax(0, e.cfg.Resources.OxygenMax)
	}
	if !core.Finite(p.HeatResistMax) || p.HeatResistMax <= 0 {
		p.HeatResistMax = stickyMax(0, e.cfg.Resources.HeatResistMax)
	}
	if !core.Finite(p.Oxygen) {
		p.Oxygen = p.OxygenMax
	}
	if !core.Finite(p.HeatResist) {
		p.HeatResist = p.HeatResistMax
	}
	if !core.Finite(p.Health) {
		p.Health = p.MaxHealth
	}
	if !core.Finite(p.HitFlashMs) {
		p.HitFlashMs = 0
	}
	if !core.Finite(p.ShootCooldownMs) {
		p.ShootCooldownMs = 0
	}
}

func (e *Engine) applyPending() {
	p := &e.player
	for _, c := range e.pending {
		if c.heal != 0 && core.Finite(c.heal) {
			p.Health = clampHealth(p.Health+c.heal, p.MaxHealth)
		}
		if c.ammo != 0 {
			p.Ammo = core.Max(0, p.Ammo+c.ammo)
		}
	}
	e.pending = nil
}

func (e *Engine) isWater(px, py float64) bool {
	s := e.sampler.SampleAt(e.world, px, py)
	return s.InLiquid && s.Type == registry.LiquidWater
}

func (e *Engine) play(name string, volume float64) {
	if e.sounds == nil || name == "" {
		return
	}
	e.sounds.Play(name, volume)
}

func (e *Engine) snapshot(events []Event) Snapshot {
	return Snapshot{
		Status:        e.status,
		Tick:          e.tick,
		ElapsedMs:     e.elapsedMs,
		Player:        e.player,
		Projectiles:   e.shots.Snapshot(),
		Events:        events,
		WorldWidthPx:  e.world.WidthPx(),
		WorldHeightPx: e.world.HeightPx(),
	}
}

func copySnapshot(s Snapshot) Snapshot {
	out := s
	out.Projectiles = append([]Projectile(nil), s.Projectiles...)
	out.Events = append([]Event(nil), s.Events...)
	return out
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
