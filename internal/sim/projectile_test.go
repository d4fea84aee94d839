package sim

import (
	"testing"

	"github.com/vovakirdan/tui-platformer/internal/config"
)

func TestProjectilesAdvance(t *testing.T) {
	w := newWorld()
	setTile(w, 10, 3, "stone")

	p := NewProjectiles(config.Projectiles{Speed: 8, LifetimeMs: 1000, Max: 4})
	p.Spawn(100, 100, FacingRight)
	p.Spawn(100, 10, FacingLeft)

	p.Advance(16, w)
	snap := p.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Len = %d, expected 2", len(snap))
	}
	if snap[0].X != 108 || snap[1].X != 92 {
		t.Errorf("positions = %v, %v, expected 108 and 92", snap[0].X, snap[1].X)
	}

	// The right-moving one reaches the stone at x=320 well before its lifetime.
	removed := 0
	for i := 0; i < 30; i++ {
		removed += p.Advance(16, w)
	}
	if removed != 2 || p.Len() != 0 {
		t.Errorf("removed %d, %d left, expected both gone (wall and map edge)", removed, p.Len())
	}
}

func TestProjectilesLifetimeAndCap(t *testing.T) {
	w := newWorld()
	p := NewProjectiles(config.Projectiles{Speed: 1, LifetimeMs: 100, Max: 2})

	if !p.Spawn(300, 100, FacingRight) || !p.Spawn(300, 150, FacingRight) {
		t.Fatal("Spawn() should accept up to the cap")
	}
	if p.Spawn(300, 200, FacingRight) {
		t.Error("Spawn() should refuse past the cap")
	}

	if removed := p.Advance(100, w); removed != 2 {
		t.Errorf("Advance() removed %d, expected 2 expired", removed)
	}

	p.Spawn(1, 1, FacingLeft)
	p.Reset()
	if p.Len() != 0 {
		t.Error("Reset() should clear projectiles")
	}
}

func TestProjectileSnapshotIsCopy(t *testing.T) {
	p := NewProjectiles(config.Projectiles{Speed: 8, LifetimeMs: 1000})
	p.Spawn(50, 50, FacingRight)

	snap := p.Snapshot()
	snap[0].X = 999
	if p.Snapshot()[0].X == 999 {
		t.Error("Snapshot() should not alias internal state")
	}
}
