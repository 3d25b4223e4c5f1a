package protocol

import "github.com/vovakirdan/arena/internal/core"

// ClientMessage is a message sent to the server.
// The marker method also reports the wire discriminant.
type ClientMessage interface {
	clientMessage() string
}

// CreateRoom asks the server for a new room.
type CreateRoom struct {
	Public    bool   `json:"public"`
	SessionID string `json:"sessionId"`
}

func (CreateRoom) clientMessage() string { return TypeCreateRoom }

// JoinRoom asks to join an existing room by code.
type JoinRoom struct {
	Code      string `json:"code"`
	SessionID string `json:"sessionId"`
}

func (JoinRoom) clientMessage() string { return TypeJoinRoom }

// QuickMatch asks to be placed into any open public room.
type QuickMatch struct {
	SessionID string `json:"sessionId"`
}

func (QuickMatch) clientMessage() string { return TypeQuickMatch }

// PlayerReady toggles the ready flag in the lobby.
type PlayerReady struct {
	Ready bool `json:"ready"`
}

func (PlayerReady) clientMessage() string { return TypePlayerReady }

// DirectionIntent is the paddle movement intent.
type DirectionIntent struct {
	Direction string `json:"direction"`
}

func (DirectionIntent) clientMessage() string { return TypeDirection }

// NewDirection builds a DirectionIntent from a logical direction.
func NewDirection(d core.Direction) DirectionIntent {
	return DirectionIntent{Direction: d.String()}
}

// TypeOf returns the wire discriminant of an outbound message.
func TypeOf(m ClientMessage) string {
	return m.clientMessage()
}
