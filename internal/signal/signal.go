// Package signal derives named feedback events from entity transitions.
//
// Signals carry no state of their own. They are produced inline while the
// reconciliation engine applies a batch and handed to a Sink, which may play
// a sound, flash the status bar, or log. Derivation never waits on a sink.
package signal

import (
	"fmt"

	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/protocol"
)

// Kind names a feedback event.
type Kind int

const (
	PaddleCollision Kind = iota
	BallCollision
	BrickBreak
	BallOwnershipChanged
	BallGainedByLocal
	BallLostByLocal
)

// String returns the event name used in logs and by sound layers.
func (k Kind) String() string {
	switch k {
	case PaddleCollision:
		return "paddle-collision"
	case BallCollision:
		return "ball-collision"
	case BrickBreak:
		return "brick-break"
	case BallOwnershipChanged:
		return "ball-ownership-changed"
	case BallGainedByLocal:
		return "ball-gained-by-local-player"
	case BallLostByLocal:
		return "ball-lost-by-local-player"
	default:
		return "unknown"
	}
}

// Signal is one derived event. Unused fields hold their zero value; BallID is
// meaningful for ball signals, Seat for paddle and ownership signals, and
// X, Y for brick cells.
type Signal struct {
	Kind   Kind
	Seat   core.Seat
	BallID int
	X, Y   int
}

func (s Signal) String() string {
	switch s.Kind {
	case PaddleCollision:
		return fmt.Sprintf("%s %s", s.Kind, s.Seat)
	case BrickBreak:
		return fmt.Sprintf("%s (%d,%d)", s.Kind, s.X, s.Y)
	default:
		return fmt.Sprintf("%s ball=%d", s.Kind, s.BallID)
	}
}

// Rising reports a false → true edge.
func Rising(was, now bool) bool {
	return !was && now
}

// BrickBroken reports whether a cell took damage between two grid updates.
// The cell must have been a destructible brick and its life must strictly
// decrease. A brick destroyed outright (life 0, or now empty) counts too.
func BrickBroken(prevType string, prevLife int, newType string, newLife int) bool {
	if prevType != protocol.CellBrick {
		return false
	}
	if newType != protocol.CellBrick && newType != protocol.CellEmpty {
		return false
	}
	if newType == protocol.CellEmpty {
		newLife = 0
	}
	return newLife < prevLife
}

// Ownership classifies an ownership transition relative to the local seat.
// Without a local seat the generic signal is always produced.
func Ownership(ballID int, from, to, local core.Seat) Signal {
	sig := Signal{Kind: BallOwnershipChanged, BallID: ballID, Seat: to}
	if !local.Valid() {
		return sig
	}
	switch {
	case from == local && to != local:
		sig.Kind = BallLostByLocal
		sig.Seat = local
	case from != local && to == local:
		sig.Kind = BallGainedByLocal
	}
	return sig
}
