// Package formats provides pluggable map file format parsers.
package formats

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// YAMLMap represents the YAML structure for a map file.
// Layers are drawn as text blocks; each rune is resolved through the legend.
type YAMLMap struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	TileSize float64           `yaml:"tile_size,omitempty"`
	Size     *YAMLSize         `yaml:"size,omitempty"`
	Legend   map[string]string `yaml:"legend"`
	Tiles    string            `yaml:"tiles"`
	Objects  string            `yaml:"objects,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// YAMLSize optionally fixes map dimensions in tiles.
type YAMLSize struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Map represents a parsed map ready for use.
type Map struct {
	ID       string
	Name     string
	Width    int
	Height   int
	TileSize float64
	Tiles    []string
	Objects  []string
	Metadata map[string]string
}

// Empty cell runes in layer blocks.
const (
	EmptyDot   = '.'
	EmptySpace = ' '
)

// ParseYAML parses a YAML map file.
func ParseYAML(data []byte) (Map, error) {
	var ym YAMLMap
	if err := yaml.Unmarshal(data, &ym); err != nil {
		return Map{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if strings.TrimSpace(ym.ID) == "" {
		return Map{}, fmt.Errorf("map id is required")
	}

	legend := make(map[rune]string, len(ym.Legend))
	for key, id := range ym.Legend {
		if utf8.RuneCountInString(key) != 1 {
			return Map{}, fmt.Errorf("legend key %q must be a single character", key)
		}
		r, _ := utf8.DecodeRuneInString(key)
		if r == EmptyDot || r == EmptySpace {
			return Map{}, fmt.Errorf("legend key %q is reserved for empty cells", key)
		}
		legend[r] = id
	}

	tileRows := splitRows(ym.Tiles)
	objRows := splitRows(ym.Objects)

	w, h := 0, len(tileRows)
	for _, row := range tileRows {
		w = max(w, utf8.RuneCountInString(row))
	}
	if ym.Size != nil {
		w, h = ym.Size.W, ym.Size.H
	}
	if w <= 0 || h <= 0 {
		return Map{}, fmt.Errorf("map %q has no tiles", ym.ID)
	}

	tiles, err := decodeLayer("tiles", tileRows, w, h, legend)
	if err != nil {
		return Map{}, err
	}
	objects, err := decodeLayer("objects", objRows, w, h, legend)
	if err != nil {
		return Map{}, err
	}

	name := ym.Name
	if name == "" {
		name = ym.ID
	}

	return Map{
		ID:       ym.ID,
		Name:     name,
		Width:    w,
		Height:   h,
		TileSize: ym.TileSize,
		Tiles:    tiles,
		Objects:  objects,
		Metadata: ym.Metadata,
	}, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}

func splitRows(block string) []string {
	block = strings.TrimRight(block, "\n")
	if block == "" {
		return nil
	}
	return strings.Split(block, "\n")
}

// decodeLayer resolves a text block into a row-major id slice.
// Short rows and missing rows are padded with empty cells.
func decodeLayer(layer string, rows []string, w, h int, legend map[rune]string) ([]string, error) {
	if len(rows) > h {
		return nil, fmt.Errorf("%s: %d rows exceed map height %d", layer, len(rows), h)
	}
	out := make([]string, w*h)
	for y, row := range rows {
		x := 0
		for _, r := range row {
			if x >= w {
				return nil, fmt.Errorf("%s: row %d is wider than %d", layer, y, w)
			}
			if r != EmptyDot && r != EmptySpace {
				id, ok := legend[r]
				if !ok {
					return nil, fmt.Errorf("%s: row %d col %d: %q is not in the legend", layer, y, x, r)
				}
				out[y*w+x] = id
			}
			x++
		}
	}
	return out, nil
}
