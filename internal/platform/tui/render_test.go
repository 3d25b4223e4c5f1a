package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/arena/internal/client"
	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/perspective"
	"github.com/vovakirdan/arena/internal/protocol"
	"github.com/vovakirdan/arena/internal/state"
)

func TestFitField(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want Field
	}{
		{"wide terminal", 80, 24, Field{X: 20, Y: 2, W: 40, H: 20, Canvas: 576}},
		{"narrow terminal", 30, 24, Field{X: 1, Y: 2, W: 28, H: 14, Canvas: 576}},
		{"too small", 2, 3, Field{Canvas: 576}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitField(tt.w, tt.h, protocol.CanvasSize)
			if got != tt.want {
				t.Errorf("FitField(%d, %d) = %+v, want %+v", tt.w, tt.h, got, tt.want)
			}
		})
	}

	if !FitField(2, 3, protocol.CanvasSize).Empty() {
		t.Error("expected tiny field to be empty")
	}
}

func TestFieldCell(t *testing.T) {
	f := Field{X: 3, Y: 1, W: 10, H: 10, Canvas: 100}

	tests := []struct {
		p      core.Vec
		wx, wy int
	}{
		{core.Vec{X: 0, Y: 0}, 3, 1},
		{core.Vec{X: 55, Y: 5}, 8, 1},
		{core.Vec{X: 100, Y: 100}, 12, 10},
		{core.Vec{X: -5, Y: 200}, 3, 10},
	}

	for _, tt := range tests {
		x, y := f.Cell(tt.p)
		if x != tt.wx || y != tt.wy {
			t.Errorf("Cell(%v) = (%d, %d), want (%d, %d)", tt.p, x, y, tt.wx, tt.wy)
		}
	}
}

// leftWallView is a match seen from seat 2, whose paddle sits on the
// world's left wall.
func leftWallView() client.View {
	var snap state.Snapshot
	snap.LocalSeat = 2
	snap.Paddles[2] = &state.Paddle{Seat: 2, Bounds: core.NewRect(0, 238, 10, 100)}
	snap.Balls = []state.Ball{{ID: 1, Pos: core.Vec{X: 288, Y: 288}, Owner: core.NoSeat, Phasing: true}}
	return client.View{
		LocalSeat:   2,
		State:       snap,
		Perspective: perspective.NewView(2, protocol.CanvasSize),
	}
}

func TestDrawArenaLocalPaddleAtBottom(t *testing.T) {
	s := core.NewScreen(80, 24)
	f := FitField(80, 24, protocol.CanvasSize)
	DrawArena(s, f, leftWallView())

	bottom := f.Y + f.H - 1
	if !strings.Contains(screenRow(s, bottom), "█") {
		t.Fatalf("expected local paddle on bottom row %d, got %q", bottom, screenRow(s, bottom))
	}
	for y := f.Y; y < bottom; y++ {
		if strings.Contains(screenRow(s, y), "█") {
			t.Errorf("paddle drawn on row %d: %q", y, screenRow(s, y))
		}
	}

	x, y := f.Cell(core.Vec{X: 288, Y: 288})
	for i := f.X; i < f.X+f.W; i++ {
		if s.GetCell(i, bottom).Rune == '█' && s.GetCell(i, bottom).Color != core.SeatColor(2) {
			t.Errorf("paddle cell %d has color %v, want %v", i, s.GetCell(i, bottom).Color, core.SeatColor(2))
		}
	}
	if got := s.GetCell(x, y).Rune; got != '○' {
		t.Errorf("ball at (%d, %d) = %q, want phasing glyph", x, y, got)
	}
	if got := s.GetCell(f.X-1, f.Y-1).Rune; got != '┌' {
		t.Errorf("border corner = %q, want ┌", got)
	}
}

func TestDrawArenaEmptyField(t *testing.T) {
	s := core.NewScreen(4, 4)
	DrawArena(s, Field{}, leftWallView())
	if strings.TrimSpace(s.String()) != "" {
		t.Errorf("expected nothing drawn, got %q", s.String())
	}
}

func TestCellStyle(t *testing.T) {
	tests := []struct {
		name  string
		cell  state.Cell
		rune  rune
		color core.Color
	}{
		{"empty", state.Cell{Type: state.CellEmpty}, 0, core.ColorDefault},
		{"block", state.Cell{Type: state.CellBlock}, '▒', core.ColorGray},
		{"weak brick", state.Cell{Type: state.CellBrick, Life: 1}, '░', core.ColorYellow},
		{"brick", state.Cell{Type: state.CellBrick, Life: 2}, '▓', core.ColorOrange},
		{"strong brick", state.Cell{Type: state.CellBrick, Life: 5}, '▓', core.ColorRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := cellStyle(tt.cell)
			if r != tt.rune || c != tt.color {
				t.Errorf("cellStyle = (%q, %v), want (%q, %v)", r, c, tt.rune, tt.color)
			}
		})
	}
}

func TestDrawScores(t *testing.T) {
	var snap state.Snapshot
	snap.Players[0] = &state.Player{Seat: 0, Score: 3}
	snap.Players[2] = &state.Player{Seat: 2, Score: 7}

	s := core.NewScreen(80, 2)
	DrawScores(s, 0, client.View{RoomCode: "AB12", LocalSeat: 2, State: snap})

	row := screenRow(s, 0)
	for _, want := range []string{"ROOM AB12", "P1 3", "P3 7 (you)"} {
		if !strings.Contains(row, want) {
			t.Errorf("score row %q missing %q", row, want)
		}
	}
	if strings.Contains(row, "P2") {
		t.Errorf("empty seat listed in %q", row)
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText = %q, want %q", got, "  ab")
	}
	if got := centerText("abcdef", 4); got != "abcdef" {
		t.Errorf("centerText = %q, want unchanged", got)
	}
}

func screenRow(s *core.Screen, y int) string {
	return strings.Split(s.String(), "\n")[y]
}
