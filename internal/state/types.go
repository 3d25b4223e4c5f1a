// Package state holds the canonical, server-authoritative model of a match.
//
// Players and paddles live in fixed arrays indexed by seat; balls are keyed
// by their server-issued ID; the brick grid is replaced wholesale. The Engine
// is the only writer. Readers get deep copies through Snapshot.
package state

import (
	"sort"

	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/protocol"
)

// Player occupies a seat.
type Player struct {
	Seat  core.Seat
	ID    string
	Score int
}

// Paddle is the paddle of an occupied seat.
type Paddle struct {
	Seat     core.Seat
	Bounds   core.Rect
	Velocity core.Vec
	Moving   bool
	Collided bool
}

// Ball is one live ball. Owner is core.NoSeat while unowned.
type Ball struct {
	ID        int
	Pos       core.Vec
	Velocity  core.Vec
	Radius    float64
	Mass      float64
	Owner     core.Seat
	Phasing   bool
	Permanent bool
	Collided  bool
}

// CellType tags a grid cell.
type CellType string

const (
	CellEmpty CellType = protocol.CellEmpty
	CellBrick CellType = protocol.CellBrick
	CellBlock CellType = protocol.CellBlock
)

// Cell is one brick grid cell. Score is awarded when a brick is destroyed.
type Cell struct {
	X, Y  int
	Type  CellType
	Life  int
	Score int
}

// Grid is the brick grid.
type Grid struct {
	CellSize float64
	Cells    []Cell
}

type cellKey struct{ x, y int }

// Snapshot is a deep copy of the canonical state for readers.
// Nil slots in Players and Paddles are empty seats.
type Snapshot struct {
	LocalSeat core.Seat
	Players   [core.MaxSeats]*Player
	Paddles   [core.MaxSeats]*Paddle
	Balls     []Ball // sorted by ID
	Grid      Grid
}

// Occupied returns the seats that currently have a player, in seat order.
func (s Snapshot) Occupied() []core.Seat {
	var out []core.Seat
	for i, p := range s.Players {
		if p != nil {
			out = append(out, core.Seat(i))
		}
	}
	return out
}

// Ball looks up a ball by ID.
func (s Snapshot) Ball(id int) (Ball, bool) {
	i := sort.Search(len(s.Balls), func(i int) bool { return s.Balls[i].ID >= id })
	if i < len(s.Balls) && s.Balls[i].ID == id {
		return s.Balls[i], true
	}
	return Ball{}, false
}

// Cell looks up a grid cell by coordinates.
func (s Snapshot) Cell(x, y int) (Cell, bool) {
	for _, c := range s.Grid.Cells {
		if c.X == x && c.Y == y {
			return c, true
		}
	}
	return Cell{}, false
}

// LocalPlayer returns the local player, if seated and present.
func (s Snapshot) LocalPlayer() (Player, bool) {
	if !s.LocalSeat.Valid() || s.Players[s.LocalSeat] == nil {
		return Player{}, false
	}
	return *s.Players[s.LocalSeat], true
}

func playerFromWire(p protocol.PlayerInfo) *Player {
	return &Player{Seat: p.Seat(), ID: p.ID, Score: p.Score}
}

func paddleFromWire(p protocol.PaddleInfo) *Paddle {
	return &Paddle{
		Seat:     p.Seat(),
		Bounds:   core.NewRect(p.X, p.Y, p.Width, p.Height),
		Velocity: core.Vec{X: p.Vx, Y: p.Vy},
		Moving:   p.IsMoving,
		Collided: p.Collided,
	}
}

func ballFromWire(b protocol.BallInfo) *Ball {
	return &Ball{
		ID:        b.ID,
		Pos:       core.Vec{X: b.X, Y: b.Y},
		Velocity:  core.Vec{X: b.Vx, Y: b.Vy},
		Radius:    b.Radius,
		Mass:      b.Mass,
		Owner:     b.Owner(),
		Phasing:   b.Phasing,
		Permanent: b.IsPermanent,
		Collided:  b.Collided,
	}
}

func cellsFromWire(cells []protocol.CellInfo) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{X: c.X, Y: c.Y, Type: CellType(c.Type), Life: c.Life, Score: c.Level}
	}
	return out
}
