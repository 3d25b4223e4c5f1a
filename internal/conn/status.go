// Package conn owns the single duplex connection to the game server.
//
// A Manager dials, reads and writes on its own goroutines and reconnects at
// a fixed interval when the connection drops. Everything it observes is
// published as Events on one channel, in order: status changes and inbound
// frames. Nothing outside the Manager touches the socket.
package conn

// Status is the observable connection state.
type Status int

const (
	StatusConnecting Status = iota
	StatusOpen
	StatusClosing
	StatusClosed
	StatusError
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosing:
		return "closing"
	case StatusClosed:
		return "closed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is something the Manager observed.
type Event interface {
	connEvent()
}

// StatusChanged reports a status transition. Err is set for StatusError and
// for a StatusClosed caused by a read or write failure.
type StatusChanged struct {
	Status Status
	Err    error
}

func (StatusChanged) connEvent() {}

// Frame is one inbound text frame that passed the plausibility check.
type Frame struct {
	Data []byte
}

func (Frame) connEvent() {}
