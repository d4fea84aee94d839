package game

import (
	"testing"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/level"
	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/sim"
)

func testCatalog(t *testing.T) *registry.Catalog {
	t.Helper()
	cat, err := registry.Default()
	if err != nil {
		t.Fatalf("registry.Default() failed: %v", err)
	}
	return cat
}

// testMap is 10x5 with a stone floor on row 4, the player at (1,3),
// a heart at (2,3) and a chest at (3,3).
func testMap() level.Map {
	m := level.Map{
		ID:       "test",
		Name:     "Test",
		Width:    10,
		Height:   5,
		TileSize: 32,
		Tiles:    make([]string, 50),
		Objects:  make([]string, 50),
	}
	for col := 0; col < m.Width; col++ {
		m.Tiles[4*m.Width+col] = "block.stone"
	}
	m.Objects[3*m.Width+1] = "player"
	m.Objects[3*m.Width+2] = "pickup.heart"
	m.Objects[3*m.Width+3] = "interactable.chest"
	return m
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Player.StartHealth = 50
	return cfg
}

type recorder struct {
	updates   []sim.EventKind
	gameOvers int
}

func (r *recorder) StateUpdate(kind sim.EventKind, _ int) { r.updates = append(r.updates, kind) }
func (r *recorder) GameOver()                             { r.gameOvers++ }

func walk(s *Session, ticks int, in core.Intent) {
	for i := 0; i < ticks; i++ {
		s.Tick(in, float64(i*16), false)
	}
}

func TestSessionConsumesPickups(t *testing.T) {
	m := testMap()
	rec := &recorder{}
	s, err := NewSession(m, testCatalog(t), testConfig(), WithObserver(rec))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	walk(s, 15, core.Intent{Right: true})

	live := s.Map()
	if live.Objects[3*10+2] != "" {
		t.Errorf("heart cell = %q, expected cleared", live.Objects[3*10+2])
	}
	if live.Objects[3*10+3] != "deco.chest_open" {
		t.Errorf("chest cell = %q, expected used id", live.Objects[3*10+3])
	}
	if m.Objects[3*10+2] != "pickup.heart" {
		t.Error("NewSession() should not mutate the caller's map")
	}

	st := s.Stats()
	if st.Pickups != 1 || st.Interactions != 1 {
		t.Errorf("Stats() pickups=%d interactions=%d, expected 1 and 1", st.Pickups, st.Interactions)
	}
	if st.Health != 70 || st.Ammo != 5 {
		t.Errorf("Stats() health=%v ammo=%d, expected 70 and 5", st.Health, st.Ammo)
	}
	if len(rec.updates) != 2 || rec.updates[0] != sim.EventCollectItem || rec.updates[1] != sim.EventInteractable {
		t.Errorf("observer updates = %v, expected collectItem then interactable", rec.updates)
	}
}

func TestSessionRestart(t *testing.T) {
	s, err := NewSession(testMap(), testCatalog(t), testConfig())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	walk(s, 15, core.Intent{Right: true})

	if err := s.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if s.Map().Objects[3*10+2] != "pickup.heart" {
		t.Error("Restart() should restore consumed cells")
	}
	st := s.Stats()
	if st.Pickups != 0 || st.Ticks != 0 || st.MapID != "test" {
		t.Errorf("Stats() after restart = %+v", st)
	}
	if s.Snapshot().Player.X != 32 {
		t.Errorf("player x = %v, expected spawn 32", s.Snapshot().Player.X)
	}
}

func TestSessionGameOverCause(t *testing.T) {
	m := testMap()
	for col := 0; col < m.Width; col++ {
		m.Tiles[4*m.Width+col] = ""
	}
	rec := &recorder{}
	s, err := NewSession(m, testCatalog(t), testConfig(), WithObserver(rec))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	for i := 0; i < 200 && !s.Over(); i++ {
		s.Tick(core.Intent{}, float64(i*16), false)
	}
	if !s.Over() {
		t.Fatal("expected the player to fall out of the world")
	}
	if s.Stats().Cause != sim.CauseFell {
		t.Errorf("Cause = %q, expected %q", s.Stats().Cause, sim.CauseFell)
	}
	if rec.gameOvers != 1 {
		t.Errorf("GameOver() called %d times, expected 1", rec.gameOvers)
	}
}

func TestSessionQueuedCommands(t *testing.T) {
	s, err := NewSession(testMap(), testCatalog(t), testConfig())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	s.Heal(10)
	s.GrantAmmo(2)
	if s.Stats().Health != 50 {
		t.Error("commands should wait for the next tick")
	}
	s.Tick(core.Intent{}, 0, false)
	if st := s.Stats(); st.Health != 60 || st.Ammo != 2 {
		t.Errorf("after tick health=%v ammo=%d, expected 60 and 2", st.Health, st.Ammo)
	}
}

func TestNewSessionNilCatalog(t *testing.T) {
	if _, err := NewSession(testMap(), nil, testConfig()); err != sim.ErrNilCatalog {
		t.Errorf("NewSession() error = %v, expected ErrNilCatalog", err)
	}
}

func TestStatsScore(t *testing.T) {
	tests := []struct {
		name     string
		stats    Stats
		expected int
	}{
		{"empty", Stats{}, 0},
		{"items", Stats{Pickups: 2, Interactions: 1}, 350},
		{"partial second", Stats{DurationMs: 2999}, 20},
		{"mixed", Stats{Pickups: 1, DurationMs: 61000}, 710},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.stats.Score(); got != tc.expected {
				t.Errorf("Score() = %d, expected %d", got, tc.expected)
			}
		})
	}
}
