package core

import "fmt"

// MaxSeats is the number of fixed player slots in a match.
const MaxSeats = 4

// Seat identifies one of the four player slots (0-3).
// Seats are assigned by the server and never reassigned within a match.
type Seat int

// NoSeat marks "no seat": an unassigned local player or an unowned ball.
const NoSeat Seat = -1

// Valid reports whether s is inside [0, MaxSeats).
func (s Seat) Valid() bool {
	return s >= 0 && s < MaxSeats
}

// String returns a short label such as "P2", or "-" for NoSeat.
func (s Seat) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("P%d", int(s)+1)
}

// SeatFromIndex converts a nullable wire index into a Seat.
// A nil index maps to NoSeat.
func SeatFromIndex(idx *int) Seat {
	if idx == nil {
		return NoSeat
	}
	return Seat(*idx)
}
