// Package perspective re-orients the shared arena for one seat's point of view.
//
// The server simulates a single square world whose y axis grows downwards.
// Every client rotates its view around the world center so that the local
// paddle is always drawn at the bottom edge. World coordinates are never
// mutated; only projected copies are produced.
package perspective

import (
	"math"

	"github.com/vovakirdan/arena/internal/core"
)

// Rotation returns the counter-clockwise view rotation in degrees for a seat:
// seat 3 → 0, seat 2 → 90, seat 1 → 180, seat 0 → 270. An unassigned seat
// is not rotated.
func Rotation(seat core.Seat) float64 {
	if !seat.Valid() {
		return 0
	}
	deg := ((3 - int(seat)) * 90) % 360
	if deg < 0 {
		deg += 360
	}
	return float64(deg)
}

// Centered converts an absolute world point into centered space: origin at
// the world center, y axis pointing up.
func Centered(p, size core.Vec) core.Vec {
	return core.Vec{
		X: p.X - size.X/2,
		Y: -(p.Y - size.Y/2),
	}
}

// Uncentered is the inverse of Centered.
func Uncentered(c, size core.Vec) core.Vec {
	return core.Vec{
		X: c.X + size.X/2,
		Y: size.Y/2 - c.Y,
	}
}

// Rotate turns v counter-clockwise by deg degrees around the origin.
// Quarter turns are exact.
func Rotate(v core.Vec, deg float64) core.Vec {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return v
	case 90:
		return core.Vec{X: -v.Y, Y: v.X}
	case 180:
		return core.Vec{X: -v.X, Y: -v.Y}
	case 270:
		return core.Vec{X: v.Y, Y: -v.X}
	}
	rad := d * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return core.Vec{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// View projects world coordinates for one seat.
type View struct {
	Seat core.Seat
	Size core.Vec // world width and height
}

// NewView creates a view of a square world of the given side length.
func NewView(seat core.Seat, canvas float64) View {
	return View{Seat: seat, Size: core.Vec{X: canvas, Y: canvas}}
}

// Rotation returns the view's rotation in degrees.
func (v View) Rotation() float64 {
	return Rotation(v.Seat)
}

// Project maps a world point into rotated centered space.
func (v View) Project(p core.Vec) core.Vec {
	return Rotate(Centered(p, v.Size), v.Rotation())
}

// Screen maps a world point into the rotated view with the world's own
// top-left origin and downward y, ready for rasterizing.
func (v View) Screen(p core.Vec) core.Vec {
	return Uncentered(v.Project(p), v.Size)
}

// ScreenRect maps a world rectangle into the rotated view. Quarter-turn
// rotations keep rectangles axis-aligned, so the result is the bounding box
// of the projected corners.
func (v View) ScreenRect(r core.Rect) core.Rect {
	a := v.Screen(core.Vec{X: r.X, Y: r.Y})
	b := v.Screen(core.Vec{X: r.Right(), Y: r.Bottom()})
	return core.NewRect(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))
}

// Axis is the world axis a seat's paddle slides along.
type Axis int

const (
	AxisVertical   Axis = iota // seats 0 and 2, on the right and left walls
	AxisHorizontal             // seats 1 and 3, on the top and bottom walls
)

// PaddleAxis returns the axis along which the seat's paddle moves.
func PaddleAxis(seat core.Seat) Axis {
	if seat%2 == 0 {
		return AxisVertical
	}
	return AxisHorizontal
}

// LogicalDirection converts a screen-relative press into the direction the
// server understands for this seat. Logical left means decreasing world
// coordinate along the paddle axis. Seats 0 and 1 see their axis mirrored
// on screen, so their left and right swap; seats 2 and 3 do not. Without a
// seat the press passes through unchanged.
func LogicalDirection(seat core.Seat, screen core.Direction) core.Direction {
	if screen == core.DirStop || !seat.Valid() {
		return screen
	}

	unit := core.Vec{X: 1}
	if screen == core.DirLeft {
		unit.X = -1
	}
	// back into centered world space, then flip y to world orientation
	c := Rotate(unit, -Rotation(seat))
	delta := core.Vec{X: c.X, Y: -c.Y}

	along := delta.X
	if PaddleAxis(seat) == AxisVertical {
		along = delta.Y
	}
	if along < 0 {
		return core.DirLeft
	}
	return core.DirRight
}
