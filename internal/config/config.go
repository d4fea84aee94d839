// Package config provides YAML-based gameplay configuration loading and
// difficulty presets for the platformer.
package config

// Config contains every tunable of the simulation and session.
type Config struct {
	Physics     Physics     `yaml:"physics"`
	Player      Player      `yaml:"player"`
	Resources   Resources   `yaml:"resources"`
	Hazards     Hazards     `yaml:"hazards"`
	Liquids     Liquids     `yaml:"liquids"`
	Projectiles Projectiles `yaml:"projectiles"`
	World       World       `yaml:"world"`
	Input       Input       `yaml:"input"`
}

// Physics defines movement parameters in pixels per tick.
type Physics struct {
	TileSize         float64 `yaml:"tile_size"`
	Gravity          float64 `yaml:"gravity"`
	TerminalVelocity float64 `yaml:"terminal_velocity"`
	MoveSpeed        float64 `yaml:"move_speed"`
	JumpForce        float64 `yaml:"jump_force"`
	CornerInset      float64 `yaml:"corner_inset"` // sub-pixel inset of the far rectangle edges
}

// Player defines the player's starting stats.
type Player struct {
	MaxHealth   float64 `yaml:"max_health"`
	StartHealth float64 `yaml:"start_health"`
	StartAmmo   int     `yaml:"start_ammo"`
	WidthScale  float64 `yaml:"width_scale"` // fraction of the catalog width actually used for collision
	HitFlashMs  float64 `yaml:"hit_flash_ms"`
}

// Resources defines oxygen and heat-resist meters, rates per second.
type Resources struct {
	OxygenMax          float64 `yaml:"oxygen_max"`
	HeatResistMax      float64 `yaml:"heat_resist_max"`
	OxygenDrainPerSec  float64 `yaml:"oxygen_drain_per_sec"`
	OxygenRefillPerSec float64 `yaml:"oxygen_refill_per_sec"`
	HeatDrainPerSec    float64 `yaml:"heat_drain_per_sec"`
	HeatRefillPerSec   float64 `yaml:"heat_refill_per_sec"`
}

// Hazards defines contact detection and damage handling for hazard objects.
type Hazards struct {
	ContactTolerance  float64 `yaml:"contact_tolerance"` // px
	DamageIntervalMs  float64 `yaml:"damage_interval_ms"`
	PushbackJumpScale float64 `yaml:"pushback_jump_scale"`
	PushbackMoveScale float64 `yaml:"pushback_move_scale"`
	DamageScale       float64 `yaml:"damage_scale"` // multiplier on catalog damage, set by presets
}

// Liquids defines damping and damage-over-time for liquid cells.
type Liquids struct {
	LavaDamping      float64 `yaml:"lava_damping"`
	DefaultDamping   float64 `yaml:"default_damping"`
	DamageIntervalMs float64 `yaml:"damage_interval_ms"`
}

// Projectiles defines fireball behavior.
type Projectiles struct {
	CooldownMs float64 `yaml:"cooldown_ms"`
	Speed      float64 `yaml:"speed"` // px per 16ms
	LifetimeMs float64 `yaml:"lifetime_ms"`
	Max        int     `yaml:"max"`
}

// World defines fallbacks used when a map is malformed.
type World struct {
	DefaultWidth  int     `yaml:"default_width"`
	DefaultHeight int     `yaml:"default_height"`
	FallMargin    float64 `yaml:"fall_margin"` // px below the map before the run ends
}

// Input defines how terminal key presses become held intents.
type Input struct {
	HoldMs int `yaml:"hold_ms"` // how long a horizontal key counts as held after a press
}
