package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/arena/internal/client"
	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/perspective"
	"github.com/vovakirdan/arena/internal/state"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:      lipgloss.NewStyle(),
	core.ColorRed:          lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:      lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:         lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:        lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorOrange:       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// Field maps the rotated world square onto a block of terminal cells.
// Terminal cells are about twice as tall as wide, so the field is twice as
// many columns as rows.
type Field struct {
	X, Y   int // top-left cell of the interior
	W, H   int // interior size in cells
	Canvas float64
}

// FitField centres the largest field that fits in a screen of w×h cells,
// leaving one row at the top and bottom for status lines and a border.
func FitField(w, h int, canvas float64) Field {
	rows := h - 4 // status + border top + border bottom + footer
	cols := w - 2
	if rows < 1 || cols < 1 {
		return Field{Canvas: canvas}
	}
	if cols > rows*2 {
		cols = rows * 2
	} else {
		rows = cols / 2
	}
	if rows < 1 {
		rows = 1
	}
	return Field{
		X:      (w - cols) / 2,
		Y:      2,
		W:      cols,
		H:      rows,
		Canvas: canvas,
	}
}

// Empty reports whether the field has no room to draw.
func (f Field) Empty() bool {
	return f.W < 1 || f.H < 1 || f.Canvas <= 0
}

// Cell maps a rotated world point to a cell. Points on the far edges land
// on the last row or column.
func (f Field) Cell(p core.Vec) (x, y int) {
	cx := int(math.Floor(p.X / f.Canvas * float64(f.W)))
	cy := int(math.Floor(p.Y / f.Canvas * float64(f.H)))
	return f.X + core.Clamp(cx, 0, f.W-1), f.Y + core.Clamp(cy, 0, f.H-1)
}

// CenterX returns the column of the field's vertical centre line.
func (f Field) CenterX() int {
	return f.X + f.W/2
}

// fillRect fills every cell a rotated world rectangle touches.
func (f Field) fillRect(s *core.Screen, r core.Rect, ch rune, c core.Color) {
	x0, y0 := f.Cell(core.Vec{X: r.X, Y: r.Y})
	// shrink by a hair so a rectangle ending on a cell boundary does not
	// spill into the next cell
	x1, y1 := f.Cell(core.Vec{X: r.Right() - 1e-9, Y: r.Bottom() - 1e-9})
	x1, y1 = max(x0, x1), max(y0, y1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			s.SetColored(x, y, ch, c)
		}
	}
}

// DrawArena draws the field border, bricks, paddles and balls as the local
// seat sees them.
func DrawArena(s *core.Screen, f Field, v client.View) {
	if f.Empty() {
		return
	}
	s.DrawBox(f.X-1, f.Y-1, f.W+2, f.H+2, core.ColorGray)

	view := v.Perspective
	drawGrid(s, f, view, v.State.Grid)

	for _, p := range v.State.Paddles {
		if p == nil {
			continue
		}
		ch := '█'
		if p.Collided {
			ch = '▓'
		}
		f.fillRect(s, view.ScreenRect(p.Bounds), ch, core.SeatColor(p.Seat))
	}

	for _, b := range v.State.Balls {
		ch := '●'
		if b.Phasing {
			ch = '○'
		}
		x, y := f.Cell(view.Screen(b.Pos))
		s.SetColored(x, y, ch, core.SeatColor(b.Owner))
	}
}

func drawGrid(s *core.Screen, f Field, view perspective.View, g state.Grid) {
	if g.CellSize <= 0 {
		return
	}
	for _, c := range g.Cells {
		ch, color := cellStyle(c)
		if ch == 0 {
			continue
		}
		world := core.NewRect(float64(c.X)*g.CellSize, float64(c.Y)*g.CellSize, g.CellSize, g.CellSize)
		f.fillRect(s, view.ScreenRect(world), ch, color)
	}
}

// cellStyle picks the glyph for a grid cell; zero for empty cells.
func cellStyle(c state.Cell) (rune, core.Color) {
	switch c.Type {
	case state.CellBlock:
		return '▒', core.ColorGray
	case state.CellBrick:
		switch {
		case c.Life >= 3:
			return '▓', core.ColorRed
		case c.Life == 2:
			return '▓', core.ColorOrange
		default:
			return '░', core.ColorYellow
		}
	}
	return 0, core.ColorDefault
}

// DrawScores writes one coloured score entry per occupied seat on row y,
// marking the local seat.
func DrawScores(s *core.Screen, y int, v client.View) {
	x := 1
	if v.RoomCode != "" {
		label := "ROOM " + v.RoomCode + "  "
		s.DrawText(x, y, label, core.ColorGray)
		x += len(label)
	}
	for i, p := range v.State.Players {
		if p == nil {
			continue
		}
		seat := core.Seat(i)
		label := fmt.Sprintf("%s %d", seat, p.Score)
		if seat == v.LocalSeat {
			label += " (you)"
		}
		label += "  "
		s.DrawText(x, y, label, core.SeatColor(seat))
		x += len([]rune(label))
	}
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	padding := (width - n) / 2
	return strings.Repeat(" ", padding) + text
}
