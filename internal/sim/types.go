// Package sim is the per-frame simulation of the platformer.
//
// An Engine owns the authoritative player state and advances it one tick at
// a time: horizontal movement, vertical physics, liquid sampling, resource
// meters, pickups, hazards, projectiles and termination, always in that
// order. The package only reads the map and catalog; map mutations caused by
// pickups are reported as events for the caller to apply between ticks.
package sim

import (
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

// Facing is the horizontal direction the player looks at.
type Facing int

const (
	FacingRight Facing = iota
	FacingLeft
)

func (f Facing) String() string {
	if f == FacingLeft {
		return "left"
	}
	return "right"
}

// Sign returns -1 for left and +1 for right.
func (f Facing) Sign() float64 {
	if f == FacingLeft {
		return -1
	}
	return 1
}

// Animation is the animation tag published for rendering.
type Animation int

const (
	AnimIdle Animation = iota
	AnimRun
	AnimJump
	AnimFall
)

func (a Animation) String() string {
	switch a {
	case AnimRun:
		return "run"
	case AnimJump:
		return "jump"
	case AnimFall:
		return "fall"
	default:
		return "idle"
	}
}

// Status is the state of the frame orchestrator.
type Status int

const (
	StatusUninitialized Status = iota
	StatusRunning
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusTerminated:
		return "terminated"
	default:
		return "uninitialized"
	}
}

// PlayerState is the full mutable player record. Width and Height are fixed at spawn.
type PlayerState struct {
	X, Y   float64
	VX, VY float64
	Width  float64
	Height float64

	Grounded  bool
	Facing    Facing
	Animation Animation

	Health    float64
	MaxHealth float64
	Ammo      int

	Oxygen        float64
	OxygenMax     float64
	HeatResist    float64
	HeatResistMax float64

	InWater        bool
	HeadUnderWater bool
	AtSurface      bool
	Liquid         registry.LiquidType

	HitFlashMs      float64
	ShootCooldownMs float64
}

// Box returns the player's collision rectangle.
func (p PlayerState) Box() core.Box {
	return core.NewBox(p.X, p.Y, p.Width, p.Height)
}

// HazardMemory carries damage timing and one-shot bookkeeping across ticks.
// It lives for one play session and is reset by every map load.
type HazardMemory struct {
	AccumMs       float64 // per-second hazard accumulator
	LastIndex     int     // -1 when no hazard is active
	LiquidAccumMs float64 // liquid damage-over-time accumulator
	Triggered     map[int]struct{}
	Consumed      map[int]struct{}
}

// NewHazardMemory returns an empty memory.
func NewHazardMemory() HazardMemory {
	return HazardMemory{
		LastIndex: -1,
		Triggered: make(map[int]struct{}),
		Consumed:  make(map[int]struct{}),
	}
}

func (m *HazardMemory) clearContact() {
	m.AccumMs = 0
	m.LastIndex = -1
}

// EventKind names a notification produced by a tick.
type EventKind string

const (
	EventCollectItem  EventKind = "collectItem"
	EventInteractable EventKind = "interactable"
	EventHazardHit    EventKind = "hazardHit"
	EventShoot        EventKind = "shoot"
	EventSplash       EventKind = "splash"
	EventGameOver     EventKind = "gameOver"
)

// Event is one notification from a tick. TileIndex is -1 when not tied to a cell.
type Event struct {
	Kind      EventKind `json:"kind"`
	TileIndex int       `json:"tile_index"`
	EntryID   string    `json:"entry_id,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Cause     string    `json:"cause,omitempty"`
}

// Game-over causes.
const (
	CauseHealth = "health"
	CauseFell   = "fell"
)

// Snapshot is the immutable per-tick output for rendering and UI.
// All slices are copies owned by the receiver.
type Snapshot struct {
	Status        Status
	Tick          uint64
	ElapsedMs     float64
	Player        PlayerState
	Projectiles   []Projectile
	Events        []Event
	WorldWidthPx  float64
	WorldHeightPx float64
}

// Observer receives notifications for map mutation and session end.
type Observer interface {
	// StateUpdate is called for every consumed pickup or interactable.
	StateUpdate(kind EventKind, tileIndex int)
	// GameOver is called exactly once per session.
	GameOver()
}

// SoundPlayer plays named sound effects.
type SoundPlayer interface {
	Play(name string, volume float64)
}

// TickInput is everything the host supplies for one tick.
type TickInput struct {
	Intent       core.Intent
	Timestamp    float64 // monotonic ms
	TerminalOpen bool
}
