package game

import (
	"math"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

// Rendering constants
const (
	CellsPerTile    = 2 // terminal cells are roughly twice as tall as wide
	PlayerGlyph     = '@'
	ProjectileGlyph = '•'
)

// Camera is the top-left tile of the visible window.
type Camera struct {
	Col, Row int
}

// CameraFor centres the player in a view of viewW x viewH terminal cells,
// clamped to the map edges.
func (s *Session) CameraFor(viewW, viewH int) Camera {
	ts := s.m.TileSize
	p := s.last.Player
	tilesW := viewW / CellsPerTile
	tilesH := viewH

	col := int(math.Floor((p.X+p.Width/2)/ts)) - tilesW/2
	row := int(math.Floor((p.Y+p.Height/2)/ts)) - tilesH/2

	return Camera{
		Col: core.Clamp(col, 0, core.Max(0, s.m.Width-tilesW)),
		Row: core.Clamp(row, 0, core.Max(0, s.m.Height-tilesH)),
	}
}

// Render draws the visible part of the map, projectiles and player into dst.
func (s *Session) Render(dst *core.Screen) {
	dst.Clear()
	cam := s.CameraFor(dst.Width(), dst.Height())
	tilesW := dst.Width()/CellsPerTile + 1

	for y := 0; y < dst.Height(); y++ {
		row := cam.Row + y
		if row >= s.m.Height {
			break
		}
		for tx := 0; tx < tilesW; tx++ {
			col := cam.Col + tx
			if col >= s.m.Width {
				break
			}
			idx := row*s.m.Width + col
			sx := tx * CellsPerTile

			if e, ok := s.entryAt(s.m.Tiles, idx); ok {
				for i := 0; i < CellsPerTile; i++ {
					dst.SetColored(sx+i, y, e.Glyph, e.Color)
				}
			}
			if e, ok := s.entryAt(s.m.Objects, idx); ok && e.Kind != registry.KindPlayer {
				dst.SetColored(sx, y, e.Glyph, e.Color)
			}
		}
	}

	s.drawProjectiles(dst, cam)
	s.drawPlayer(dst, cam)
}

func (s *Session) entryAt(layer []string, idx int) (registry.Entry, bool) {
	if idx < 0 || idx >= len(layer) || layer[idx] == "" {
		return registry.Entry{}, false
	}
	return s.cat.Lookup(layer[idx])
}

// toScreen maps a pixel position to a terminal cell.
func (s *Session) toScreen(cam Camera, px, py float64) (int, int) {
	ts := s.m.TileSize
	x := int(math.Floor(px/(ts/CellsPerTile))) - cam.Col*CellsPerTile
	y := int(math.Floor(py/ts)) - cam.Row
	return x, y
}

func (s *Session) drawProjectiles(dst *core.Screen, cam Camera) {
	for _, p := range s.last.Projectiles {
		x, y := s.toScreen(cam, p.X, p.Y)
		dst.SetColored(x, y, ProjectileGlyph, core.ColorOrange)
	}
}

func (s *Session) drawPlayer(dst *core.Screen, cam Camera) {
	p := s.last.Player
	color := core.ColorBrightWhite
	if p.HitFlashMs > 0 {
		color = core.ColorBrightRed
	}
	x0, y0 := s.toScreen(cam, p.X, p.Y)
	x1, y1 := s.toScreen(cam, p.X+p.Width-1, p.Y+p.Height-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dst.SetColored(x, y, PlayerGlyph, color)
		}
	}
}
