package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name searched for in the config directories.
const FileName = "platformer.yaml"

// Load loads the gameplay configuration.
// Search order: customPath -> ~/.platformer/configs/platformer.yaml -> ./configs/platformer.yaml -> embedded default.
// Fields missing from a file keep their default values.
func Load(customPath string) (Config, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Default(), fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return Default(), fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(FileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", FileName)); err == nil {
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := Parse(defaultPlatformerYAML)
	if err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Physics.TileSize <= 0:
		return fmt.Errorf("physics.tile_size must be positive, got %v", c.Physics.TileSize)
	case c.Physics.TerminalVelocity <= 0:
		return fmt.Errorf("physics.terminal_velocity must be positive, got %v", c.Physics.TerminalVelocity)
	case c.Player.MaxHealth <= 0:
		return fmt.Errorf("player.max_health must be positive, got %v", c.Player.MaxHealth)
	case c.Player.StartHealth <= 0 || c.Player.StartHealth > c.Player.MaxHealth:
		return fmt.Errorf("player.start_health must be in (0, %v], got %v", c.Player.MaxHealth, c.Player.StartHealth)
	case c.Player.WidthScale <= 0 || c.Player.WidthScale > 1:
		return fmt.Errorf("player.width_scale must be in (0, 1], got %v", c.Player.WidthScale)
	case c.Hazards.DamageIntervalMs <= 0 || c.Liquids.DamageIntervalMs <= 0:
		return fmt.Errorf("damage_interval_ms must be positive")
	case c.Projectiles.CooldownMs < 0:
		return fmt.Errorf("projectiles.cooldown_ms must not be negative, got %v", c.Projectiles.CooldownMs)
	}
	return nil
}

// userConfigPath returns the path to a config file in the user's config directory.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".platformer", "configs", filename)
}
