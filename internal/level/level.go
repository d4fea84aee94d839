// Package level provides map loading for the platformer.
// This package depends on sim but sim does not depend on level.
package level

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/sim"
)

// Map is a complete map definition with two row-major layers of catalog ids.
type Map struct {
	ID       string
	Name     string
	Width    int
	Height   int
	TileSize float64
	Tiles    []string
	Objects  []string
	Metadata map[string]string
	FilePath string
}

// World returns the simulation view of the map. The layers are shared,
// so edits to m.Objects between ticks are seen by the engine.
func (m *Map) World(cat sim.Catalog) sim.World {
	return sim.World{
		Tiles:    m.Tiles,
		Objects:  m.Objects,
		Width:    m.Width,
		Height:   m.Height,
		TileSize: m.TileSize,
		Catalog:  cat,
	}
}

// Clone returns a deep copy whose layers can be mutated independently.
func (m Map) Clone() Map {
	out := m
	out.Tiles = append([]string(nil), m.Tiles...)
	out.Objects = append([]string(nil), m.Objects...)
	if m.Metadata != nil {
		out.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// SpawnIndex returns the index of the first object id containing "player", or -1.
func (m *Map) SpawnIndex() int {
	for i, id := range m.Objects {
		if strings.Contains(id, "player") {
			return i
		}
	}
	return -1
}

// Cell returns the tile coordinate of a row-major index.
func (m *Map) Cell(idx int) (col, row int) {
	return idx % m.Width, idx / m.Width
}

// Validate reports every problem that would degrade a session on this map.
// Unknown ids wrap registry.ErrLookupMiss; a missing spawn is a *sim.ConfigurationError.
func (m *Map) Validate(cat *registry.Catalog) []error {
	var errs []error

	if m.Width <= 0 || m.Height <= 0 {
		errs = append(errs, &sim.ConfigurationError{Field: "dimensions", Reason: fmt.Sprintf("invalid %dx%d", m.Width, m.Height)})
		return errs
	}
	if len(m.Tiles) != m.Width*m.Height || len(m.Objects) != m.Width*m.Height {
		errs = append(errs, &sim.ConfigurationError{Field: "layers", Reason: "layer length does not match dimensions"})
	}
	if m.TileSize < 0 {
		errs = append(errs, &sim.ConfigurationError{Field: "tile_size", Reason: fmt.Sprintf("invalid %v", m.TileSize)})
	}

	check := func(layer string, ids []string) {
		for i, id := range ids {
			if id == "" {
				continue
			}
			if _, ok := cat.Lookup(id); !ok {
				col, row := m.Cell(i)
				errs = append(errs, fmt.Errorf("%s (%d,%d): %w: %q", layer, col, row, registry.ErrLookupMiss, id))
			}
		}
	}
	check("tiles", m.Tiles)
	check("objects", m.Objects)

	if m.SpawnIndex() < 0 {
		errs = append(errs, &sim.ConfigurationError{Field: "spawn", Reason: "no object id contains \"player\""})
	}
	if _, ok := cat.FindPlayer(); !ok {
		errs = append(errs, &sim.ConfigurationError{Field: "catalog", Reason: "no entry of kind player"})
	}
	return errs
}
