package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Fatalf("New screen should be filled with spaces, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, 'X')
	if s.Get(5, 5) != 'X' {
		t.Errorf("Get(5, 5) = %q, expected 'X'", s.Get(5, 5))
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 100, 'A')

	if s.Get(-1, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
	if s.Get(100, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
}

func TestScreenColoredCell(t *testing.T) {
	s := NewScreen(4, 4)
	s.SetColored(1, 2, '#', ColorBrightBlue)

	c := s.GetCell(1, 2)
	if c.Rune != '#' || c.Color != ColorBrightBlue {
		t.Errorf("GetCell(1, 2) = %+v", c)
	}
	if s.GetCell(0, 0).Color != ColorDefault {
		t.Error("untouched cell should have default colour")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			s.SetColored(x, y, 'X', ColorRed)
		}
	}

	s.Clear()

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if c := s.GetCell(x, y); c.Rune != ' ' || c.Color != ColorDefault {
				t.Fatalf("After Clear(), expected blank at (%d, %d), got %+v", x, y, c)
			}
		}
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 5)
	s.Set(2, 2, 'X')
	s.Resize(20, 8)

	if s.Width() != 20 || s.Height() != 8 {
		t.Errorf("Resize: got %dx%d", s.Width(), s.Height())
	}
	if s.Get(2, 2) != ' ' {
		t.Error("Resize should discard content")
	}
	s.Set(19, 7, 'Y')
	if s.Get(19, 7) != 'Y' {
		t.Error("resized buffer should accept writes at the new corner")
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawText(2, 1, "Hello", ColorDefault)

	if got := screenRow(s, 1); !strings.HasPrefix(got, "  Hello") {
		t.Errorf("row 1 = %q", got)
	}

	// Text is clipped at the right edge
	s.DrawText(17, 2, "World", ColorDefault)
	if got := screenRow(s, 2); !strings.HasSuffix(got, "Wor") {
		t.Errorf("row 2 = %q, expected clipping", got)
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(11, 1)
	s.DrawTextCentered(0, "abc", ColorDefault)
	if got := screenRow(s, 0); got != "    abc    " {
		t.Errorf("row 0 = %q", got)
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawBox(0, 0, 5, 3, ColorGray)

	expected := "┌───┐\n│   │\n└───┘"
	if got := s.String(); got != expected {
		t.Errorf("String() =\n%s\nexpected\n%s", got, expected)
	}
	if s.GetCell(0, 0).Color != ColorGray {
		t.Error("box corner should carry the box colour")
	}
}

func screenRow(s *Screen, y int) string {
	return strings.Split(s.String(), "\n")[y]
}
