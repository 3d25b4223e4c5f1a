// Package core provides fundamental types and utilities for the arena client.
// It contains no external dependencies (especially no Bubble Tea) so that the
// protocol and reconciliation packages stay pure and testable.
package core

// Vec is a point or velocity in world space.
type Vec struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world space.
// X, Y is the top-left corner; the world's vertical axis grows downwards.
type Rect struct {
	X, Y float64 // Top-left corner position
	W, H float64 // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
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
