package protocol

import "github.com/vovakirdan/arena/internal/core"

// ServerMessage is a message received from the server.
type ServerMessage interface {
	serverMessage()
}

// PlayerAssignment tells the client which seat it plays.
// A null index means the client has no seat.
type PlayerAssignment struct {
	PlayerIndex *int `json:"playerIndex"`
}

func (PlayerAssignment) serverMessage() {}

// Seat returns the assigned seat, or core.NoSeat.
func (m PlayerAssignment) Seat() core.Seat { return core.SeatFromIndex(m.PlayerIndex) }

// InitialState carries the full entity state. Player and paddle slots may be
// null for empty seats; Grid is optional.
type InitialState struct {
	Players []*PlayerInfo `json:"players"`
	Paddles []*PaddleInfo `json:"paddles"`
	Balls   []BallInfo    `json:"balls"`
	Grid    *GridInfo     `json:"grid,omitempty"`
}

func (InitialState) serverMessage() {}

// GameUpdates is an ordered batch of atomic updates.
type GameUpdates struct {
	Updates []Update
}

func (GameUpdates) serverMessage() {}

// GameOver ends the match. WinnerIndex is NoWinner, or absent, for a tie.
type GameOver struct {
	WinnerIndex *int   `json:"winnerIndex"`
	FinalScores []int  `json:"finalScores"`
	Reason      string `json:"reason"`
}

func (GameOver) serverMessage() {}

// Winner returns the winning seat, or core.NoSeat for a tie.
func (m GameOver) Winner() core.Seat {
	s := core.SeatFromIndex(m.WinnerIndex)
	if !s.Valid() {
		return core.NoSeat
	}
	return s
}

// Scores returns the final scores as a fixed per-seat array.
// Missing entries are zero.
func (m GameOver) Scores() [core.MaxSeats]int {
	var out [core.MaxSeats]int
	copy(out[:], m.FinalScores)
	return out
}

// LobbyState replaces the lobby roster.
type LobbyState struct {
	Players []LobbyPlayer `json:"players"`
}

func (LobbyState) serverMessage() {}

// Countdown reports the remaining seconds before play starts.
type Countdown struct {
	Seconds int `json:"seconds"`
}

func (Countdown) serverMessage() {}

// GameStart signals the end of the countdown.
type GameStart struct{}

func (GameStart) serverMessage() {}

// RoomCreated acknowledges a create-room or quick-match request.
type RoomCreated struct {
	Code string `json:"code"`
}

func (RoomCreated) serverMessage() {}

// RoomJoined acknowledges a join-room request.
type RoomJoined struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func (RoomJoined) serverMessage() {}
