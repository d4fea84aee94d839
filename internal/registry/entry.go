package registry

import (
	"strings"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// Kind classifies a catalog entry.
type Kind int

const (
	KindDecoration Kind = iota
	KindBlock
	KindHazard
	KindPickup
	KindInteractable
	KindLiquid
	KindPlayer
)

var kindNames = map[Kind]string{
	KindDecoration:   "decoration",
	KindBlock:        "block",
	KindHazard:       "hazard",
	KindPickup:       "pickup",
	KindInteractable: "interactable",
	KindLiquid:       "liquid",
	KindPlayer:       "player",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind resolves a kind name from a catalog file.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindDecoration, false
}

// DirectionMask selects the sides of a hazard that deal damage on contact.
type DirectionMask uint8

const (
	DirTop DirectionMask = 1 << iota
	DirBottom
	DirLeft
	DirRight

	DirAll = DirTop | DirBottom | DirLeft | DirRight
)

// Has reports whether every side in d is active.
func (m DirectionMask) Has(d DirectionMask) bool {
	return m&d == d
}

func (m DirectionMask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, side := range []struct {
		bit  DirectionMask
		name string
	}{{DirTop, "top"}, {DirBottom, "bottom"}, {DirLeft, "left"}, {DirRight, "right"}} {
		if m.Has(side.bit) {
			parts = append(parts, side.name)
		}
	}
	return strings.Join(parts, "|")
}

// DamageProfile describes how a hazard hurts the player.
type DamageProfile struct {
	Damage          float64
	DamagePerSecond float64 // 0 means unset: continuous hazards fall back to Damage
	Once            bool
	Directions      DirectionMask
}

// PerSecond returns the damage applied for each whole second of contact.
func (d DamageProfile) PerSecond() float64 {
	if d.DamagePerSecond > 0 {
		return d.DamagePerSecond
	}
	return d.Damage
}

// EffectKind tags the variant held by an Effect.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectHeal
	EffectAddAmmo
)

// Effect is the one-shot bonus granted by a pickup or interactable.
type Effect struct {
	Kind   EffectKind
	Amount int
}

// Heal builds a health effect.
func Heal(amount int) Effect { return Effect{Kind: EffectHeal, Amount: amount} }

// AddAmmo builds an ammo effect.
func AddAmmo(amount int) Effect { return Effect{Kind: EffectAddAmmo, Amount: amount} }

// LiquidType identifies a liquid medium.
type LiquidType int

const (
	LiquidNone LiquidType = iota
	LiquidWater
	LiquidLava
	LiquidAcid
)

func (l LiquidType) String() string {
	switch l {
	case LiquidWater:
		return "water"
	case LiquidLava:
		return "lava"
	case LiquidAcid:
		return "acid"
	default:
		return "none"
	}
}

// ParseLiquid resolves a liquid name. Unknown names map to LiquidNone.
func ParseLiquid(s string) LiquidType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "water":
		return LiquidWater
	case "lava":
		return LiquidLava
	case "acid":
		return LiquidAcid
	default:
		return LiquidNone
	}
}

// LiquidParams is set on entries that fill a cell with liquid.
type LiquidParams struct {
	Type LiquidType
	DPS  float64
}

// Entry is the resolved, read-only definition of a tile or object id.
type Entry struct {
	ID        string
	Name      string
	Kind      Kind
	Collision bool
	Damage    DamageProfile
	Effect    Effect
	Liquid    LiquidParams
	Width     int // in tiles
	Height    int // in tiles
	Glyph     rune
	Color     core.Color
	UsedID    string // replacement id once an interactable is used
	Sound     string
	Volume    float64
}

// IsLiquid reports whether the entry carries a liquid.
func (e Entry) IsLiquid() bool {
	return e.Liquid.Type != LiquidNone
}
