package registry

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// YAMLCatalog is the on-disk catalog document.
type YAMLCatalog struct {
	Entries []YAMLEntry `yaml:"entries"`
}

// YAMLEntry is one catalog entry as written in YAML.
type YAMLEntry struct {
	ID        string      `yaml:"id"`
	Name      string      `yaml:"name,omitempty"`
	Kind      string      `yaml:"kind"`
	Collision bool        `yaml:"collision,omitempty"`
	Damage    *YAMLDamage `yaml:"damage,omitempty"`
	Effect    *YAMLEffect `yaml:"effect,omitempty"`
	Liquid    *YAMLLiquid `yaml:"liquid,omitempty"`
	Width     int         `yaml:"width,omitempty"`
	Height    int         `yaml:"height,omitempty"`
	Glyph     string      `yaml:"glyph,omitempty"`
	Color     string      `yaml:"color,omitempty"`
	UsedID    string      `yaml:"used_id,omitempty"`
	Sound     string      `yaml:"sfx,omitempty"`
	Volume    *float64    `yaml:"sfx_volume,omitempty"`
}

// YAMLDamage is the damage block of a hazard.
type YAMLDamage struct {
	Amount     float64  `yaml:"amount"`
	PerSecond  float64  `yaml:"per_second,omitempty"`
	Once       bool     `yaml:"once,omitempty"`
	Directions []string `yaml:"directions,omitempty"`
}

// YAMLEffect is the bonus block of a pickup or interactable.
// "fireball" is an alias of "ammo".
type YAMLEffect struct {
	Health   int `yaml:"health,omitempty"`
	Ammo     int `yaml:"ammo,omitempty"`
	Fireball int `yaml:"fireball,omitempty"`
}

// YAMLLiquid is the liquid block of a liquid cell.
type YAMLLiquid struct {
	Type string  `yaml:"type"`
	DPS  float64 `yaml:"dps,omitempty"`
}

// Parse decodes a YAML catalog into a new Catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc YAMLCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry: yaml unmarshal: %w", err)
	}

	c := New()
	for i, ye := range doc.Entries {
		e, err := ye.resolve()
		if err != nil {
			return nil, fmt.Errorf("registry: entry %d: %w", i, err)
		}
		if err := c.Register(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load reads a YAML catalog from r.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("registry: read catalog: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultCatalogYAML)
	})
	return defaultCatalog, defaultErr
}

// LoadOrDefault loads path when set, otherwise the embedded catalog.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func (ye YAMLEntry) resolve() (Entry, error) {
	id := strings.TrimSpace(ye.ID)
	if id == "" {
		return Entry{}, fmt.Errorf("missing id")
	}

	e := Entry{
		ID:        id,
		Name:      ye.Name,
		Collision: ye.Collision,
		Width:     ye.Width,
		Height:    ye.Height,
		UsedID:    ye.UsedID,
		Sound:     ye.Sound,
		Volume:    1,
	}
	if e.Name == "" {
		e.Name = id
	}
	if e.Width <= 0 {
		e.Width = 1
	}
	if e.Height <= 0 {
		e.Height = 1
	}
	if ye.Volume != nil {
		e.Volume = core.ClampF(*ye.Volume, 0, 1)
	}

	kind, ok := ParseKind(ye.Kind)
	if !ok && ye.Kind != "" {
		return Entry{}, fmt.Errorf("entry %q: unknown kind %q", id, ye.Kind)
	}
	// Interactables may be namespaced by name instead of kind.
	if ye.Kind == "" && (strings.HasPrefix(e.Name, "interactable.") || strings.HasPrefix(id, "interactable.")) {
		kind = KindInteractable
	}
	e.Kind = kind

	if ye.Damage != nil {
		e.Damage = DamageProfile{
			Damage:          ye.Damage.Amount,
			DamagePerSecond: ye.Damage.PerSecond,
			Once:            ye.Damage.Once,
			Directions:      DirAll,
		}
		if len(ye.Damage.Directions) > 0 {
			mask, err := parseDirections(ye.Damage.Directions)
			if err != nil {
				return Entry{}, fmt.Errorf("entry %q: %w", id, err)
			}
			e.Damage.Directions = mask
		}
	}

	if ye.Effect != nil {
		switch {
		case ye.Effect.Health != 0:
			e.Effect = Heal(ye.Effect.Health)
		case ye.Effect.Ammo != 0:
			e.Effect = AddAmmo(ye.Effect.Ammo)
		case ye.Effect.Fireball != 0:
			e.Effect = AddAmmo(ye.Effect.Fireball)
		}
	}

	if ye.Liquid != nil {
		lt := ParseLiquid(ye.Liquid.Type)
		if lt == LiquidNone {
			return Entry{}, fmt.Errorf("entry %q: unknown liquid %q", id, ye.Liquid.Type)
		}
		e.Liquid = LiquidParams{Type: lt, DPS: ye.Liquid.DPS}
	}

	e.Glyph = defaultGlyph(e)
	if ye.Glyph != "" {
		r, _ := utf8.DecodeRuneInString(ye.Glyph)
		e.Glyph = r
	}
	if ye.Color != "" {
		c, ok := core.ParseColor(ye.Color)
		if !ok {
			return Entry{}, fmt.Errorf("entry %q: unknown color %q", id, ye.Color)
		}
		e.Color = c
	}

	return e, nil
}

func parseDirections(names []string) (DirectionMask, error) {
	var mask DirectionMask
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "top":
			mask |= DirTop
		case "bottom":
			mask |= DirBottom
		case "left":
			mask |= DirLeft
		case "right":
			mask |= DirRight
		case "all":
			mask |= DirAll
		default:
			return 0, fmt.Errorf("unknown damage direction %q", n)
		}
	}
	return mask, nil
}

func defaultGlyph(e Entry) rune {
	switch e.Kind {
	case KindBlock:
		return '█'
	case KindHazard:
		return '^'
	case KindPickup:
		return '*'
	case KindInteractable:
		return '+'
	case KindLiquid:
		return '~'
	case KindPlayer:
		return '@'
	default:
		return '.'
	}
}
