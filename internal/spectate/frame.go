package spectate

import (
	"github.com/vovakirdan/tui-platformer/internal/sim"
)

// PlayerView is the spectator-facing subset of the player state.
type PlayerView struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	VX         float64 `json:"vx"`
	VY         float64 `json:"vy"`
	Width      float64 `json:"w"`
	Height     float64 `json:"h"`
	Facing     string  `json:"facing"`
	Animation  string  `json:"animation"`
	Grounded   bool    `json:"grounded"`
	Health     float64 `json:"health"`
	MaxHealth  float64 `json:"max_health"`
	Ammo       int     `json:"ammo"`
	Oxygen     float64 `json:"oxygen"`
	HeatResist float64 `json:"heat_resist"`
	InWater    bool    `json:"in_water"`
	Liquid     string  `json:"liquid"`
}

// Frame is one published snapshot as sent to spectators.
type Frame struct {
	Session     SessionID        `json:"session"`
	MapID       string           `json:"map_id"`
	Status      string           `json:"status"`
	Tick        uint64           `json:"tick"`
	ElapsedMs   float64          `json:"elapsed_ms"`
	Player      PlayerView       `json:"player"`
	Projectiles []sim.Projectile `json:"projectiles"`
	Events      []sim.Event      `json:"events"`
}

// NewFrame converts an engine snapshot.
func NewFrame(id SessionID, mapID string, s sim.Snapshot) Frame {
	p := s.Player
	return Frame{
		Session:   id,
		MapID:     mapID,
		Status:    s.Status.String(),
		Tick:      s.Tick,
		ElapsedMs: s.ElapsedMs,
		Player: PlayerView{
			X:          p.X,
			Y:          p.Y,
			VX:         p.VX,
			VY:         p.VY,
			Width:      p.Width,
			Height:     p.Height,
			Facing:     p.Facing.String(),
			Animation:  p.Animation.String(),
			Grounded:   p.Grounded,
			Health:     p.Health,
			MaxHealth:  p.MaxHealth,
			Ammo:       p.Ammo,
			Oxygen:     p.Oxygen,
			HeatResist: p.HeatResist,
			InWater:    p.InWater,
			Liquid:     p.Liquid.String(),
		},
		Projectiles: s.Projectiles,
		Events:      s.Events,
	}
}
