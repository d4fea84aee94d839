// Package game ties a map, the catalog and the simulation engine into one
// playable session. It owns the mutable copy of the map and applies the
// changes the engine reports (consumed pickups, used interactables).
package game

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/level"
	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/sim"
)

// Stats summarizes a session for the HUD and the runs table.
type Stats struct {
	MapID        string
	Pickups      int
	Interactions int
	HazardHits   int
	Shots        int
	Splashes     int
	Ticks        uint64
	DurationMs   float64
	Health       float64
	Ammo         int
	Cause        string // empty while running
}

// Option configures a Session.
type Option func(*Session)

// WithSounds sets the sound effect player handed to the engine.
func WithSounds(p sim.SoundPlayer) Option {
	return func(s *Session) { s.sounds = p }
}

// WithObserver forwards engine notifications to o.
func WithObserver(o sim.Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithLogger sets the session and engine logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session is one play-through of a map. Not safe for concurrent use.
type Session struct {
	base   level.Map
	m      level.Map
	cat    *registry.Catalog
	engine *sim.Engine
	report sim.LoadReport
	stats  Stats
	last   sim.Snapshot

	sounds   sim.SoundPlayer
	observer sim.Observer
	logger   *log.Logger
}

// NewSession loads m into a fresh engine. The map is copied; the caller's
// value is never mutated.
func NewSession(m level.Map, cat *registry.Catalog, cfg config.Config, opts ...Option) (*Session, error) {
	if cat == nil {
		return nil, sim.ErrNilCatalog
	}
	s := &Session{
		base:   m.Clone(),
		cat:    cat,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	engineOpts := []sim.Option{sim.WithLogger(s.logger)}
	if s.sounds != nil {
		engineOpts = append(engineOpts, sim.WithSounds(s.sounds))
	}
	if s.observer != nil {
		engineOpts = append(engineOpts, sim.WithObserver(s.observer))
	}
	s.engine = sim.NewEngine(cfg, engineOpts...)

	if err := s.Restart(); err != nil {
		return nil, err
	}
	return s, nil
}

// Restart reloads the original map and starts over.
func (s *Session) Restart() error {
	s.m = s.base.Clone()
	report, err := s.engine.Load(s.m.World(s.cat))
	if err != nil {
		return fmt.Errorf("game: loading map %s: %w", s.m.ID, err)
	}
	s.report = report
	s.stats = Stats{MapID: s.m.ID}
	s.last = s.engine.Snapshot()
	s.syncStats()
	s.logger.Debug("session started", "map", s.m.ID, "spawn_x", report.SpawnX, "spawn_y", report.SpawnY)
	return nil
}

// Tick advances the engine one frame and applies the map changes it reports.
func (s *Session) Tick(intent core.Intent, nowMs float64, terminalOpen bool) sim.Snapshot {
	snap := s.engine.Tick(sim.TickInput{Intent: intent, Timestamp: nowMs, TerminalOpen: terminalOpen})
	s.apply(snap.Events)
	s.last = snap
	s.syncStats()
	return snap
}

// apply mutates the object layer between ticks. The engine world shares the
// layer slice, so the next tick sees the change.
func (s *Session) apply(events []sim.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case sim.EventCollectItem:
			s.stats.Pickups++
			s.setObject(ev.TileIndex, "")
		case sim.EventInteractable:
			s.stats.Interactions++
			next := ""
			if e, ok := s.cat.Lookup(ev.EntryID); ok {
				next = e.UsedID
			}
			s.setObject(ev.TileIndex, next)
		case sim.EventHazardHit:
			s.stats.HazardHits++
		case sim.EventShoot:
			s.stats.Shots++
		case sim.EventSplash:
			s.stats.Splashes++
		case sim.EventGameOver:
			s.stats.Cause = ev.Cause
		}
	}
}

func (s *Session) setObject(idx int, id string) {
	if idx < 0 || idx >= len(s.m.Objects) {
		return
	}
	s.m.Objects[idx] = id
}

func (s *Session) syncStats() {
	s.stats.Ticks = s.last.Tick
	s.stats.DurationMs = s.last.ElapsedMs
	s.stats.Health = s.last.Player.Health
	s.stats.Ammo = s.last.Player.Ammo
}

// Heal queues a health change for the next running tick.
func (s *Session) Heal(amount float64) {
	s.engine.Heal(amount)
}

// GrantAmmo queues an ammo change for the next running tick.
func (s *Session) GrantAmmo(n int) {
	s.engine.GrantAmmo(n)
}

// Snapshot returns the last published frame.
func (s *Session) Snapshot() sim.Snapshot {
	return s.last
}

// Stats returns the running totals.
func (s *Session) Stats() Stats {
	return s.stats
}

// Over reports whether the session has ended.
func (s *Session) Over() bool {
	return s.engine.Status() == sim.StatusTerminated
}

// Map returns the live map, including consumed and used cells.
func (s *Session) Map() *level.Map {
	return &s.m
}

// Report returns how the map was loaded.
func (s *Session) Report() sim.LoadReport {
	return s.report
}

// Score points for the runs table.
const (
	PickupPoints      = 100
	InteractionPoints = 150
	SecondPoints      = 10
)

// Score ranks a run: collected items plus survival time in whole seconds.
func (st Stats) Score() int {
	return st.Pickups*PickupPoints + st.Interactions*InteractionPoints + int(st.DurationMs/1000)*SecondPoints
}
