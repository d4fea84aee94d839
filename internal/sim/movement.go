package sim

import (
	"math"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// HorizontalResult is the output of MoveHorizontal.
type HorizontalResult struct {
	X       float64
	VX      float64
	Facing  Facing
	Blocked bool
}

// MoveHorizontal applies the left/right intent as a full step or none.
// Left wins when both are held. Facing follows the intended direction even
// when the step is blocked.
func MoveHorizontal(in core.Intent, body core.Box, facing Facing, speed float64, w World) HorizontalResult {
	vx := 0.0
	switch {
	case in.Left:
		vx = -speed
	case in.Right:
		vx = speed
	}

	if vx < 0 {
		facing = FacingLeft
	} else if vx > 0 {
		facing = FacingRight
	}

	res := HorizontalResult{X: body.X, Facing: facing}
	if vx == 0 {
		return res
	}
	if w.RectCollides(body.X+vx, body.Y, body.W, body.H) {
		res.Blocked = true
		return res
	}
	res.X = body.X + vx
	res.VX = vx
	return res
}

// VerticalInput is the state consumed by ApplyVerticalPhysics.
type VerticalInput struct {
	Jump        bool
	Body        core.Box
	VX, VY      float64
	Grounded    bool
	Animation   Animation
	PrevInWater bool

	Gravity          float64
	TerminalVelocity float64
	JumpForce        float64
}

// VerticalResult is the output of ApplyVerticalPhysics.
type VerticalResult struct {
	Y         float64
	VY        float64
	Grounded  bool
	Animation Animation

	InWater        bool
	HeadUnderWater bool
	AtSurface      bool
	Splash         bool // entered water this tick
}

// WaterProbe reports whether a pixel is inside water.
type WaterProbe func(px, py float64) bool

// ApplyVerticalPhysics runs jump, gravity and ground/ceiling resolution.
// The water flags are computed afterwards from the resolved position and
// never alter the vertical resolution.
func ApplyVerticalPhysics(in VerticalInput, w World, water WaterProbe) VerticalResult {
	b := in.Body
	res := VerticalResult{
		Y:         b.Y,
		VY:        in.VY,
		Grounded:  in.Grounded,
		Animation: in.Animation,
	}

	if in.Jump && res.Grounded {
		res.VY = -in.JumpForce
		res.Grounded = false
		res.Animation = AnimJump
	}

	res.VY += in.Gravity
	if res.VY > in.TerminalVelocity {
		res.VY = in.TerminalVelocity
	}

	ts := w.TileSize
	if w.RectCollides(b.X, b.Y+res.VY, b.W, b.H) {
		switch {
		case res.VY > 0:
			res.Grounded = true
			res.Y = math.Floor((b.Y+res.VY+b.H)/ts)*ts - b.H
			if in.VX != 0 {
				res.Animation = AnimRun
			} else {
				res.Animation = AnimIdle
			}
		case res.VY < 0:
			res.Y = math.Ceil((b.Y+res.VY)/ts) * ts
		}
		res.VY = 0
	} else {
		res.Grounded = false
		res.Y = b.Y + res.VY
		if res.VY > 0 {
			res.Animation = AnimFall
		}
	}

	if water != nil {
		cx := b.X + b.W/2
		res.InWater = water(cx, res.Y+b.H-1)
		res.HeadUnderWater = water(cx, res.Y+1)
		res.AtSurface = res.InWater && !res.HeadUnderWater
		res.Splash = res.InWater && !in.PrevInWater
	}

	return res
}
