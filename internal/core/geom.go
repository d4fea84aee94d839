// Package core provides fundamental types and utilities shared by the
// platformer packages. It has no external dependencies (especially no Bubble
// Tea) so the simulation and its helpers stay pure and testable.
package core

import "math"

// Rect is an integer axis-aligned rectangle in screen cells.
type Rect struct {
	X, Y int // Top-left corner
	W, H int
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate one past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate one past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the cell (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Box is an axis-aligned rectangle in world pixels.
// X/Y is the top-left corner; W/H are the full extents.
type Box struct {
	X, Y float64
	W, H float64
}

// NewBox creates a pixel-space box.
func NewBox(x, y, w, h float64) Box {
	return Box{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (b Box) Right() float64 {
	return b.X + b.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (b Box) Bottom() float64 {
	return b.Y + b.H
}

// Center returns the center point of the box.
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// FeetCenter returns the point one pixel above the bottom edge, horizontally centered.
// This is the point that "stands on" whatever is under the box.
func (b Box) FeetCenter() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H - 1
}

// Overlaps reports whether two boxes share a region of positive area.
// Touching edges do not overlap.
func (b Box) Overlaps(o Box) bool {
	if b.Right() <= o.X || o.Right() <= b.X {
		return false
	}
	if b.Bottom() <= o.Y || o.Bottom() <= b.Y {
		return false
	}
	return true
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
