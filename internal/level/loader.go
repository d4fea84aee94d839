package level

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/tui-platformer/internal/level/formats"
)

//go:embed maps/*.yaml
var embeddedMaps embed.FS

// DefaultTileSize is used when a map file does not set tile_size.
const DefaultTileSize = 32

// Loader handles loading maps from a directory tree.
type Loader struct {
	Root string
	fsys fs.FS
}

// NewLoader creates a loader over a directory on disk.
// An empty root loads the built-in maps.
func NewLoader(root string) *Loader {
	if root == "" {
		return Embedded()
	}
	return &Loader{Root: root, fsys: os.DirFS(root)}
}

// Embedded returns a loader over the maps compiled into the binary.
func Embedded() *Loader {
	sub, err := fs.Sub(embeddedMaps, "maps")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return &Loader{Root: "builtin", fsys: sub}
}

// LoadAll recursively scans and loads all map files.
// Invalid files are skipped. Maps are sorted by their "order" metadata, then ID.
func (l *Loader) LoadAll() ([]Map, error) {
	var maps []Map

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}

		m, err := l.LoadFile(p)
		if err != nil {
			// Skip invalid files
			return nil
		}
		maps = append(maps, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("level: walking %s: %w", l.Root, err)
	}

	sort.SliceStable(maps, func(i, j int) bool {
		oi, oj := maps[i].Metadata["order"], maps[j].Metadata["order"]
		if oi != oj {
			return oi < oj
		}
		return maps[i].ID < maps[j].ID
	})

	return maps, nil
}

// LoadFile loads a single map file, relative to the loader root.
func (l *Loader) LoadFile(p string) (Map, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Map{}, fmt.Errorf("level: reading file %s: %w", p, err)
	}

	parsed, err := parseByExtension(data, strings.ToLower(path.Ext(p)))
	if err != nil {
		return Map{}, fmt.Errorf("level: parsing file %s: %w", p, err)
	}

	tileSize := parsed.TileSize
	if tileSize == 0 {
		tileSize = DefaultTileSize
	}

	return Map{
		ID:       parsed.ID,
		Name:     parsed.Name,
		Width:    parsed.Width,
		Height:   parsed.Height,
		TileSize: tileSize,
		Tiles:    parsed.Tiles,
		Objects:  parsed.Objects,
		Metadata: parsed.Metadata,
		FilePath: path.Join(l.Root, p),
	}, nil
}

// LoadByID loads a specific map by ID.
func (l *Loader) LoadByID(id string) (Map, error) {
	maps, err := l.LoadAll()
	if err != nil {
		return Map{}, err
	}

	for _, m := range maps {
		if m.ID == id {
			return m, nil
		}
	}

	return Map{}, fmt.Errorf("level: map not found: %s", id)
}

// ListIDs returns all map IDs in load order.
func (l *Loader) ListIDs() ([]string, error) {
	maps, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(maps))
	for i, m := range maps {
		ids[i] = m.ID
	}
	return ids, nil
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.Map, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	default:
		return formats.Map{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
