package config

import (
	_ "embed"
)

//go:embed defaults/platformer.yaml
var defaultPlatformerYAML []byte

// Default returns the hardcoded configuration.
func Default() Config {
	return Config{
		Physics: Physics{
			TileSize:         32,
			Gravity:          0.6,
			TerminalVelocity: 12,
			MoveSpeed:        4,
			JumpForce:        10,
			CornerInset:      0.01,
		},
		Player: Player{
			MaxHealth:   100,
			StartHealth: 100,
			StartAmmo:   0,
			WidthScale:  0.8,
			HitFlashMs:  200,
		},
		Resources: Resources{
			OxygenMax:          100,
			HeatResistMax:      100,
			OxygenDrainPerSec:  20,
			OxygenRefillPerSec: 35,
			HeatDrainPerSec:    25,
			HeatRefillPerSec:   40,
		},
		Hazards: Hazards{
			ContactTolerance:  4,
			DamageIntervalMs:  1000,
			PushbackJumpScale: 0.4,
			PushbackMoveScale: 1.5,
			DamageScale:       1,
		},
		Liquids: Liquids{
			LavaDamping:      0.78,
			DefaultDamping:   0.82,
			DamageIntervalMs: 1000,
		},
		Projectiles: Projectiles{
			CooldownMs: 160,
			Speed:      8,
			LifetimeMs: 1200,
			Max:        16,
		},
		World: World{
			DefaultWidth:  20,
			DefaultHeight: 15,
			FallMargin:    100,
		},
		Input: Input{
			HoldMs: 150,
		},
	}
}
