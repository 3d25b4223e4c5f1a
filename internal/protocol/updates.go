package protocol

import "github.com/vovakirdan/arena/internal/core"

// Update is one atomic delta inside a GameUpdates batch.
type Update interface {
	update()
}

// PlayerJoined upserts a player and, when present, its paddle.
type PlayerJoined struct {
	Index  int         `json:"index"`
	ID     string      `json:"id"`
	Score  int         `json:"score"`
	Paddle *PaddleInfo `json:"paddle,omitempty"`
}

func (PlayerJoined) update() {}

// Seat returns the joining seat.
func (u PlayerJoined) Seat() core.Seat { return core.Seat(u.Index) }

// PlayerLeft empties a seat.
type PlayerLeft struct {
	Index int `json:"index"`
}

func (PlayerLeft) update() {}

// ScoreChanged sets a player's score.
type ScoreChanged struct {
	Index int `json:"index"`
	Score int `json:"score"`
}

func (ScoreChanged) update() {}

// PaddleMoved replaces a paddle's mutable fields.
type PaddleMoved struct {
	PaddleInfo
}

func (PaddleMoved) update() {}

// BallSpawned adds a ball.
type BallSpawned struct {
	Ball BallInfo `json:"ball"`
}

func (BallSpawned) update() {}

// BallRemoved removes a ball.
type BallRemoved struct {
	ID int `json:"id"`
}

func (BallRemoved) update() {}

// BallMoved replaces a ball's mutable fields.
type BallMoved struct {
	ID       int     `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Vx       float64 `json:"vx"`
	Vy       float64 `json:"vy"`
	Collided bool    `json:"collided"`
	Phasing  bool    `json:"phasing"`
}

func (BallMoved) update() {}

// BallOwnershipChanged replaces a ball's owner. A null OwnerIndex means unowned.
type BallOwnershipChanged struct {
	ID         int  `json:"id"`
	OwnerIndex *int `json:"ownerIndex"`
}

func (BallOwnershipChanged) update() {}

// Owner returns the new owner, or core.NoSeat.
func (u BallOwnershipChanged) Owner() core.Seat { return core.SeatFromIndex(u.OwnerIndex) }

// GridReplaced replaces the whole brick grid.
type GridReplaced struct {
	GridInfo
}

func (GridReplaced) update() {}
