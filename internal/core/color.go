package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for arena elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorOrange
	ColorGray
)

// seatColors gives every seat a stable colour across all clients.
var seatColors = [MaxSeats]Color{ColorBrightRed, ColorBrightBlue, ColorBrightGreen, ColorBrightYellow}

// SeatColor returns the colour used for a seat's paddle and owned balls.
// Unowned entities are drawn white.
func SeatColor(s Seat) Color {
	if !s.Valid() {
		return ColorWhite
	}
	return seatColors[s]
}
