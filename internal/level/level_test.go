package level

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/sim"
)

// getTestdataPath returns path to testdata/maps.
func getTestdataPath() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "testdata", "maps")
}

func mustCatalog(t *testing.T) *registry.Catalog {
	t.Helper()
	cat, err := registry.Default()
	if err != nil {
		t.Fatalf("registry.Default() failed: %v", err)
	}
	return cat
}

func TestLoaderLoadAll(t *testing.T) {
	loader := NewLoader(getTestdataPath())

	maps, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	// broken.yaml is skipped, notes.txt is ignored.
	if len(maps) != 2 {
		t.Fatalf("expected 2 maps, got %d", len(maps))
	}
	if maps[0].ID != "alpha" || maps[1].ID != "tiny" {
		t.Errorf("order = %s, %s, expected alpha, tiny", maps[0].ID, maps[1].ID)
	}
}

func TestLoaderLoadTiny(t *testing.T) {
	loader := NewLoader(getTestdataPath())

	m, err := loader.LoadByID("tiny")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}

	if m.Width != 5 || m.Height != 3 {
		t.Errorf("expected 5x3, got %dx%d", m.Width, m.Height)
	}
	if m.TileSize != 16 {
		t.Errorf("TileSize = %v, expected 16", m.TileSize)
	}
	if m.Tiles[10] != "block.stone" || m.Tiles[0] != "" {
		t.Errorf("unexpected tile layer: %q", m.Tiles)
	}
	if m.Objects[1] != "player" || m.Objects[3] != "pickup.heart" || m.Objects[4] != "" {
		t.Errorf("unexpected object layer: %q", m.Objects)
	}
	if m.SpawnIndex() != 1 {
		t.Errorf("SpawnIndex() = %d, expected 1", m.SpawnIndex())
	}
}

func TestLoaderDefaultTileSize(t *testing.T) {
	m, err := NewLoader(getTestdataPath()).LoadByID("alpha")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}
	if m.TileSize != DefaultTileSize {
		t.Errorf("TileSize = %v, expected %v", m.TileSize, DefaultTileSize)
	}
	if m.Name != "alpha" {
		t.Errorf("Name = %q, expected id fallback", m.Name)
	}
}

func TestLoaderNotFound(t *testing.T) {
	if _, err := NewLoader(getTestdataPath()).LoadByID("missing"); err == nil {
		t.Error("expected error for unknown map id")
	}
}

func TestEmbeddedMapsValidate(t *testing.T) {
	maps, err := Embedded().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	expected := []string{"meadow", "caverns", "furnace"}
	if len(maps) != len(expected) {
		t.Fatalf("expected %d built-in maps, got %d", len(expected), len(maps))
	}

	cat := mustCatalog(t)
	for i, m := range maps {
		if m.ID != expected[i] {
			t.Errorf("map %d = %q, expected %q", i, m.ID, expected[i])
		}
		if m.Width != 40 || m.Height != 15 {
			t.Errorf("%s: expected 40x15, got %dx%d", m.ID, m.Width, m.Height)
		}
		for _, err := range m.Validate(cat) {
			t.Errorf("%s: %v", m.ID, err)
		}
	}
}

func TestValidateReportsProblems(t *testing.T) {
	m := Map{
		ID:       "bad",
		Width:    2,
		Height:   1,
		TileSize: 32,
		Tiles:    []string{"block.dirt", "block.nope"},
		Objects:  []string{"", ""},
	}

	errs := m.Validate(mustCatalog(t))
	if len(errs) != 2 {
		t.Fatalf("Validate() returned %d errors, expected 2: %v", len(errs), errs)
	}
	if !errors.Is(errs[0], registry.ErrLookupMiss) {
		t.Errorf("first error = %v, expected lookup miss", errs[0])
	}
	var cfgErr *sim.ConfigurationError
	if !errors.As(errs[1], &cfgErr) || cfgErr.Field != "spawn" {
		t.Errorf("second error = %v, expected spawn configuration error", errs[1])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := Map{Width: 1, Height: 1, Tiles: []string{"a"}, Objects: []string{"b"}, Metadata: map[string]string{"k": "v"}}
	c := m.Clone()
	c.Objects[0] = ""
	c.Metadata["k"] = "x"

	if m.Objects[0] != "b" || m.Metadata["k"] != "v" {
		t.Error("Clone() should not share layers or metadata")
	}
}

func TestWorldSharesLayers(t *testing.T) {
	m := Map{Width: 2, Height: 1, TileSize: 32, Tiles: []string{"", ""}, Objects: []string{"pickup.heart", ""}}
	w := m.World(mustCatalog(t))

	m.Objects[0] = ""
	if _, _, ok := w.ObjectAt(1, 1); ok {
		t.Error("World() should see object edits made through the map")
	}
}
