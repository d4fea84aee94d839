package sim

import (
	"strings"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

// Contact is the set of hazard sides the player is touching.
type Contact struct {
	Top, Bottom, Left, Right bool
}

// Mask converts the contact to a direction mask.
func (c Contact) Mask() registry.DirectionMask {
	var m registry.DirectionMask
	if c.Top {
		m |= registry.DirTop
	}
	if c.Bottom {
		m |= registry.DirBottom
	}
	if c.Left {
		m |= registry.DirLeft
	}
	if c.Right {
		m |= registry.DirRight
	}
	return m
}

// touching classifies which side of the tile the player sits on,
// each within tol pixels of that edge.
func touching(p, tile core.Box, tol float64) Contact {
	return Contact{
		Top:    p.Bottom() <= tile.Y+tol && p.Bottom() >= tile.Y,
		Bottom: p.Y >= tile.Bottom()-tol && p.Y <= tile.Bottom(),
		Left:   p.Right() <= tile.Right() && p.Right() >= tile.Right()-tol,
		Right:  p.X >= tile.X && p.X <= tile.X+tol,
	}
}

// HazardInput is the state consumed by ResolveHazard.
type HazardInput struct {
	Body   core.Box
	DtMs   float64
	Health float64
	VX, VY float64
}

// HazardResult is the outcome of one hazard pass.
type HazardResult struct {
	Health float64
	VX, VY float64

	Hit     bool // damage was applied this tick
	Damage  float64
	Index   int
	Entry   registry.Entry
	Contact Contact
}

// ResolveHazard applies hazard damage for the object under the player's feet.
//
// One-shot hazards hurt once per tile index per session and push the player
// away. Continuous hazards convert each whole damage interval of contact into
// one application of their per-second damage. Losing contact, or touching
// only sides the hazard does not damage from, clears the continuous
// accumulator but never the one-shot set.
func ResolveHazard(in HazardInput, w World, mem *HazardMemory, cfg config.Config) HazardResult {
	res := HazardResult{Health: in.Health, VX: in.VX, VY: in.VY, Index: -1}

	fx, fy := in.Body.FeetCenter()
	col, row := w.Cell(fx, fy)
	idx := w.Index(col, row)
	if idx < 0 {
		mem.clearContact()
		return res
	}

	e, ok := w.lookup(w.Objects, idx)
	if !ok || e.Kind != registry.KindHazard {
		mem.clearContact()
		return res
	}

	ts := w.TileSize
	tile := core.NewBox(float64(col)*ts, float64(row)*ts, ts, ts)
	if !in.Body.Overlaps(tile) {
		mem.clearContact()
		return res
	}

	contact := touching(in.Body, tile, cfg.Hazards.ContactTolerance)
	dirs := e.Damage.Directions
	if dirs == 0 {
		dirs = registry.DirAll
	}
	if contact.Mask()&dirs == 0 {
		mem.clearContact()
		return res
	}

	res.Index = idx
	res.Entry = e
	res.Contact = contact
	scale := damageScale(cfg)

	if e.Damage.Once {
		mem.LastIndex = idx
		if _, done := mem.Triggered[idx]; done {
			return res
		}
		mem.Triggered[idx] = struct{}{}

		res.Damage = e.Damage.Damage * scale
		res.Health = clampHealth(res.Health-res.Damage, cfg.Player.MaxHealth)
		res.Hit = true

		// Side pushback only shows in the published vx: the next tick's
		// horizontal move recomputes vx from intent, so x never moves by it.
		switch {
		case contact.Top:
			res.VY = -cfg.Physics.JumpForce * cfg.Hazards.PushbackJumpScale
		case contact.Left:
			res.VX = -cfg.Physics.MoveSpeed * cfg.Hazards.PushbackMoveScale
		case contact.Right:
			res.VX = cfg.Physics.MoveSpeed * cfg.Hazards.PushbackMoveScale
		}
		return res
	}

	// A different hazard starts its own interval.
	if mem.LastIndex != idx {
		mem.AccumMs = 0
	}
	mem.LastIndex = idx

	dmg, rest := accumulate(mem.AccumMs, nonNegative(in.DtMs), cfg.Hazards.DamageIntervalMs, e.Damage.PerSecond()*scale)
	mem.AccumMs = rest
	if dmg > 0 {
		res.Damage = dmg
		res.Health = clampHealth(res.Health-dmg, cfg.Player.MaxHealth)
		res.Hit = true
	}
	return res
}

// PickupInput is the state consumed by ResolvePickup.
type PickupInput struct {
	Body      core.Box
	Health    float64
	MaxHealth float64
	Ammo      int
}

// PickupResult is the outcome of one pickup pass.
type PickupResult struct {
	Health   float64
	Ammo     int
	Consumed bool
	Kind     EventKind
	Index    int
	Entry    registry.Entry
}

// ResolvePickup applies the pickup or interactable under the player's body
// center. Each tile index is consumed at most once per session. Heal effects
// are left in place while health is full.
func ResolvePickup(in PickupInput, w World, mem *HazardMemory) PickupResult {
	res := PickupResult{Health: in.Health, Ammo: in.Ammo, Index: -1}

	cx, cy := in.Body.Center()
	idx := w.Index(w.Cell(cx, cy))
	e, ok := w.lookup(w.Objects, idx)
	if !ok || strings.Contains(e.ID, "player") {
		return res
	}

	switch e.Kind {
	case registry.KindPickup:
		res.Kind = EventCollectItem
	case registry.KindInteractable:
		res.Kind = EventInteractable
	default:
		return res
	}

	if _, used := mem.Consumed[idx]; used {
		return res
	}

	switch e.Effect.Kind {
	case registry.EffectHeal:
		if in.Health >= in.MaxHealth {
			return res
		}
		res.Health = clampHealth(in.Health+float64(e.Effect.Amount), in.MaxHealth)
	case registry.EffectAddAmmo:
		res.Ammo = core.Max(0, in.Ammo+e.Effect.Amount)
	default:
		return res
	}

	mem.Consumed[idx] = struct{}{}
	res.Consumed = true
	res.Index = idx
	res.Entry = e
	return res
}

func clampHealth(h, max float64) float64 {
	if !core.Finite(h) {
		return 0
	}
	return core.ClampF(h, 0, max)
}

func damageScale(cfg config.Config) float64 {
	if s := cfg.Hazards.DamageScale; core.Finite(s) && s > 0 {
		return s
	}
	return 1
}

func nonNegative(v float64) float64 {
	if !core.Finite(v) || v < 0 {
		return 0
	}
	return v
}
