package core

// Direction is a paddle movement intent.
// The same type is used for screen-relative presses and for the logical
// direction sent to the server; the perspective package converts between them.
type Direction int

const (
	DirStop Direction = iota
	DirLeft
	DirRight
)

// String returns the wire name of the direction.
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "stop"
	}
}

// Opposite returns the mirrored direction; stop stays stop.
func (d Direction) Opposite() Direction {
	switch d {
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return DirStop
	}
}

// ParseDirection converts a wire name back into a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	case "stop":
		return DirStop, true
	default:
		return DirStop, false
	}
}
