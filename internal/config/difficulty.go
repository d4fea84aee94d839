package config

import (
	"fmt"
	"strings"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// Presets lists the presets in menu order.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed}
}

// ParsePreset resolves a preset name; an empty name is normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want one of %v)", s, Presets())
	}
}

// IsFixedPreset returns true if the preset leaves the loaded config untouched.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplyPreset modifies the config based on a difficulty preset.
// Presets only touch the starting loadout and meter drain; hazard damage and
// the shot cooldown always come from the catalog and config as given.
// Normal and fixed keep the configured values.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Player.StartHealth = cfg.Player.MaxHealth
		cfg.Player.StartAmmo += 5
		cfg.Resources.OxygenDrainPerSec *= 0.75
		cfg.Resources.HeatDrainPerSec *= 0.75
	case DifficultyHard:
		cfg.Player.StartHealth = clampF(cfg.Player.MaxHealth*0.6, 1, cfg.Player.MaxHealth)
		cfg.Resources.OxygenDrainPerSec *= 1.25
		cfg.Resources.HeatDrainPerSec *= 1.25
	}
}

func clampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
