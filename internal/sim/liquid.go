package sim

import (
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

// LiquidSample describes the liquid found at a position.
type LiquidSample struct {
	InLiquid  bool
	Type      registry.LiquidType
	Params    registry.LiquidParams
	EntryID   string
	TileIndex int
}

// LiquidSampler finds liquid at a pixel position.
// Implementations must not panic; the zero LiquidSample means no liquid.
type LiquidSampler interface {
	SampleAt(w World, px, py float64) LiquidSample
}

// GridLiquidSampler reads liquid entries from the map layers,
// object layer first, then tile layer.
type GridLiquidSampler struct{}

// SampleAt implements LiquidSampler.
func (GridLiquidSampler) SampleAt(w World, px, py float64) LiquidSample {
	if idx, e, ok := w.ObjectAt(px, py); ok && e.IsLiquid() {
		return sampleOf(idx, e)
	}
	if idx, e, ok := w.TileAt(px, py); ok && e.IsLiquid() {
		return sampleOf(idx, e)
	}
	return LiquidSample{TileIndex: -1}
}

func sampleOf(idx int, e registry.Entry) LiquidSample {
	return LiquidSample{
		InLiquid:  true,
		Type:      e.Liquid.Type,
		Params:    e.Liquid,
		EntryID:   e.ID,
		TileIndex: idx,
	}
}

// SampleBody samples the body center, then the feet center.
func SampleBody(s LiquidSampler, w World, body core.Box) LiquidSample {
	if s == nil {
		return LiquidSample{TileIndex: -1}
	}
	cx, cy := body.Center()
	if sample := s.SampleAt(w, cx, cy); sample.InLiquid {
		return sample
	}
	fx, fy := body.FeetCenter()
	return s.SampleAt(w, fx, fy)
}

// Damping returns the horizontal damping factor for a liquid.
func Damping(t registry.LiquidType, lava, other float64) float64 {
	if t == registry.LiquidLava {
		return lava
	}
	return other
}

// accumulate adds dt to acc and converts every whole interval into one unit
// of damage. Large dt values produce several units at once.
func accumulate(acc, dt, interval, perInterval float64) (damage, rest float64) {
	acc += dt
	for acc >= interval {
		acc -= interval
		damage += perInterval
	}
	return damage, acc
}
