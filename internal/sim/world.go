package sim

import (
	"math"

	"github.com/vovakirdan/tui-platformer/internal/registry"
)

const defaultCornerInset = 0.01

// Catalog resolves ids to entries. A miss means "no effect".
type Catalog interface {
	Lookup(id string) (registry.Entry, bool)
}

// World is the read-only view of a decoded map the simulation runs against.
// Tiles and Objects are row-major, Width*Height long; empty string means no id.
type World struct {
	Tiles    []string
	Objects  []string
	Width    int
	Height   int
	TileSize float64
	Catalog  Catalog

	// CornerInset pulls the far edges of a probed rectangle inward. Zero uses 0.01.
	CornerInset float64
}

// WidthPx returns the map width in pixels.
func (w World) WidthPx() float64 {
	return float64(w.Width) * w.TileSize
}

// HeightPx returns the map height in pixels.
func (w World) HeightPx() float64 {
	return float64(w.Height) * w.TileSize
}

// Cell converts a pixel position to tile coordinates.
func (w World) Cell(px, py float64) (col, row int) {
	return int(math.Floor(px / w.TileSize)), int(math.Floor(py / w.TileSize))
}

// InBounds reports whether the tile coordinate is inside the map.
func (w World) InBounds(col, row int) bool {
	return col >= 0 && col < w.Width && row >= 0 && row < w.Height
}

// Index returns the row-major index of a tile coordinate, or -1 outside the map.
func (w World) Index(col, row int) int {
	if !w.InBounds(col, row) {
		return -1
	}
	return row*w.Width + col
}

func (w World) lookup(layer []string, idx int) (registry.Entry, bool) {
	if idx < 0 || idx >= len(layer) || layer[idx] == "" || w.Catalog == nil {
		return registry.Entry{}, false
	}
	return w.Catalog.Lookup(layer[idx])
}

// TileAt returns the tile-layer entry at a pixel position.
func (w World) TileAt(px, py float64) (int, registry.Entry, bool) {
	idx := w.Index(w.Cell(px, py))
	e, ok := w.lookup(w.Tiles, idx)
	return idx, e, ok
}

// ObjectAt returns the object-layer entry at a pixel position.
func (w World) ObjectAt(px, py float64) (int, registry.Entry, bool) {
	idx := w.Index(w.Cell(px, py))
	e, ok := w.lookup(w.Objects, idx)
	return idx, e, ok
}

// IsSolid probes one pixel against the tile layer. Outside the map
// horizontally or above it is solid; below the map is open so the player
// can fall out of the world.
func (w World) IsSolid(px, py float64) bool {
	col, row := w.Cell(px, py)
	if col < 0 || col >= w.Width || row < 0 {
		return true
	}
	if row >= w.Height {
		return false
	}
	e, ok := w.lookup(w.Tiles, row*w.Width+col)
	return ok && e.Collision
}

// RectCollides reports whether any corner of the rectangle is solid.
func (w World) RectCollides(x, y, width, height float64) bool {
	inset := w.CornerInset
	if inset <= 0 {
		inset = defaultCornerInset
	}
	right := x + width - inset
	bottom := y + height - inset

	return w.IsSolid(x, y) ||
		w.IsSolid(right, y) ||
		w.IsSolid(x, bottom) ||
		w.IsSolid(right, bottom)
}
