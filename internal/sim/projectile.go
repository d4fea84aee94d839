package sim

import "github.com/vovakirdan/tui-platformer/internal/config"

// frameMs is the frame length projectile speed is expressed in.
const frameMs = 16.0

// Projectile is one fireball in flight.
type Projectile struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	VX         float64 `json:"vx"`
	Facing     Facing  `json:"facing"`
	AgeMs      float64 `json:"age_ms"`
	LifetimeMs float64 `json:"lifetime_ms"`
}

// Projectiles is the collection of live projectiles.
type Projectiles struct {
	cfg    config.Projectiles
	items  []Projectile
	nextID int
}

// NewProjectiles creates an empty collection.
func NewProjectiles(cfg config.Projectiles) *Projectiles {
	return &Projectiles{cfg: cfg}
}

// Spawn adds a projectile at the origin travelling towards facing.
// Returns false when the collection is full.
func (p *Projectiles) Spawn(x, y float64, facing Facing) bool {
	if p.cfg.Max > 0 && len(p.items) >= p.cfg.Max {
		return false
	}
	p.nextID++
	p.items = append(p.items, Projectile{
		ID:         p.nextID,
		X:          x,
		Y:          y,
		VX:         p.cfg.Speed * facing.Sign(),
		Facing:     facing,
		LifetimeMs: p.cfg.LifetimeMs,
	})
	return true
}

// Advance moves every projectile by dt and drops those that expired, left
// the world or hit a solid tile. Returns how many were removed.
func (p *Projectiles) Advance(dtMs float64, w World) int {
	dt := nonNegative(dtMs)
	kept := p.items[:0]
	removed := 0
	for _, pr := range p.items {
		pr.AgeMs += dt
		pr.X += pr.VX * dt / frameMs

		switch {
		case pr.LifetimeMs > 0 && pr.AgeMs >= pr.LifetimeMs:
			removed++
		case pr.X < 0 || pr.X >= w.WidthPx() || pr.Y < 0 || pr.Y >= w.HeightPx():
			removed++
		case w.IsSolid(pr.X, pr.Y):
			removed++
		default:
			kept = append(kept, pr)
		}
	}
	p.items = kept
	return removed
}

// Snapshot returns a copy of the live projectiles.
func (p *Projectiles) Snapshot() []Projectile {
	out := make([]Projectile, len(p.items))
	copy(out, p.items)
	return out
}

// Len returns the number of live projectiles.
func (p *Projectiles) Len() int {
	return len(p.items)
}

// Reset removes all projectiles.
func (p *Projectiles) Reset() {
	p.items = p.items[:0]
	p.nextID = 0
}
