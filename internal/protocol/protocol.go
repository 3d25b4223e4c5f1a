// Package protocol defines the JSON wire format spoken with the arena server.
//
// Every message is a flat JSON object carrying a "type" discriminator.
// Inbound messages, the atomic updates inside a batch, and outbound intents
// are each modelled as a closed set of variants (sealed interfaces with an
// unexported marker method), so consumers dispatch with a type switch
// instead of probing for field presence.
package protocol

import "github.com/vovakirdan/arena/internal/core"

// Inbound message discriminants.
const (
	TypePlayerAssignment = "playerAssignment"
	TypeInitialState     = "initialState"
	TypeGameUpdates      = "gameUpdates"
	TypeGameOver         = "gameOver"
	TypeLobbyState       = "lobbyState"
	TypeCountdown        = "countdown"
	TypeGameStart        = "gameStart"
	TypeRoomCreated      = "roomCreated"
	TypeRoomJoined       = "roomJoined"
)

// Atomic update discriminants (inside gameUpdates.updates).
const (
	TypePlayerJoined         = "playerJoined"
	TypePlayerLeft           = "playerLeft"
	TypeScoreUpdate          = "scoreUpdate"
	TypePaddlePositionUpdate = "paddlePositionUpdate"
	TypeBallSpawned          = "ballSpawned"
	TypeBallRemoved          = "ballRemoved"
	TypeBallPositionUpdate   = "ballPositionUpdate"
	TypeBallOwnershipChange  = "ballOwnershipChange"
	TypeFullGridUpdate       = "fullGridUpdate"
)

// Outbound message discriminants.
const (
	TypeCreateRoom  = "createRoom"
	TypeJoinRoom    = "joinRoom"
	TypeQuickMatch  = "quickMatch"
	TypePlayerReady = "playerReady"
	TypeDirection   = "direction"
)

// Grid cell type tags.
const (
	CellEmpty = "Empty"
	CellBrick = "Brick"
	CellBlock = "Block"
)

// NoWinner is the winnerIndex the server sends for a tie.
const NoWinner = -1

// CanvasSize is the side of the square world the server simulates, in world
// units. Positions on the wire are in [0, CanvasSize].
const CanvasSize = 576

// PlayerInfo describes an occupied seat.
type PlayerInfo struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// Seat returns the seat the player occupies.
func (p PlayerInfo) Seat() core.Seat { return core.Seat(p.Index) }

// PaddleInfo is the full server view of one paddle.
type PaddleInfo struct {
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Vx       float64 `json:"vx"`
	Vy       float64 `json:"vy"`
	IsMoving bool    `json:"isMoving"`
	Collided bool    `json:"collided"`
}

// Seat returns the seat owning the paddle.
func (p PaddleInfo) Seat() core.Seat { return core.Seat(p.Index) }

// BallInfo is the full server view of one ball.
// OwnerIndex is null for an unowned ball.
type BallInfo struct {
	ID          int     `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Vx          float64 `json:"vx"`
	Vy          float64 `json:"vy"`
	Radius      float64 `json:"radius"`
	Mass        float64 `json:"mass"`
	OwnerIndex  *int    `json:"ownerIndex"`
	Phasing     bool    `json:"phasing"`
	IsPermanent bool    `json:"isPermanent"`
	Collided    bool    `json:"collided"`
}

// Owner returns the owning seat, or core.NoSeat.
func (b BallInfo) Owner() core.Seat { return core.SeatFromIndex(b.OwnerIndex) }

// CellInfo is one brick grid cell. Level is the score awarded on destruction.
type CellInfo struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Type  string `json:"type"`
	Life  int    `json:"life"`
	Level int    `json:"level"`
}

// GridInfo is the whole brick grid.
type GridInfo struct {
	CellSize float64    `json:"cellSize"`
	Cells    []CellInfo `json:"cells"`
}

// LobbyPlayer is one roster entry.
type LobbyPlayer struct {
	Index int  `json:"index"`
	Ready bool `json:"ready"`
}
