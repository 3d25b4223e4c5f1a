// Package input turns raw press, release and pointer reports into the
// minimal stream of direction intents the server needs.
package input

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/perspective"
	"github.com/vovakirdan/arena/internal/protocol"
)

// Source is an independent input device. Each source is debounced against
// its own last sent value.
type Source int

const (
	Keyboard Source = iota
	Pointer         // mouse, touch or joystick
	numSources
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case Keyboard:
		return "keyboard"
	case Pointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// Sender is the outbound half of the connection.
type Sender interface {
	SendMessage(protocol.ClientMessage) error
}

// Debouncer tracks the held screen directions and sends a direction intent
// only when the effective logical direction changes. Not safe for
// concurrent use; the client session calls it from its event loop.
type Debouncer struct {
	sender Sender
	logger *log.Logger

	seat   core.Seat
	active bool

	// held keys, most recent last; at most left and right
	held    []core.Direction
	pointer core.Direction
	last    [numSources]core.Direction
}

// NewDebouncer creates an inactive debouncer with no seat.
func NewDebouncer(sender Sender, logger *log.Logger) *Debouncer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Debouncer{
		sender: sender,
		logger: logger,
		seat:   core.NoSeat,
		held:   make([]core.Direction, 0, 2),
	}
}

// Press records a held screen direction. The newest press wins.
// Presses are ignored while gameplay is inactive.
func (d *Debouncer) Press(dir core.Direction) bool {
	if !d.active || dir == core.DirStop {
		return false
	}
	d.remove(dir)
	d.held = append(d.held, dir)
	return d.flush(Keyboard)
}

// Release forgets a held screen direction. Releasing a key that is not the
// newest press leaves the effective direction unchanged.
func (d *Debouncer) Release(dir core.Direction) bool {
	d.remove(dir)
	if !d.active {
		return false
	}
	return d.flush(Keyboard)
}

// Point sets the pointer's absolute screen direction; DirStop on release.
func (d *Debouncer) Point(dir core.Direction) bool {
	if !d.active {
		return false
	}
	d.pointer = dir
	return d.flush(Pointer)
}

// Effective returns the screen direction currently requested by a source.
func (d *Debouncer) Effective(src Source) core.Direction {
	if src == Pointer {
		return d.pointer
	}
	if len(d.held) == 0 {
		return core.DirStop
	}
	return d.held[len(d.held)-1]
}

// LastSent returns the last logical direction a source sent.
func (d *Debouncer) LastSent(src Source) core.Direction {
	return d.last[src]
}

// Active reports whether intents are currently forwarded.
func (d *Debouncer) Active() bool {
	return d.active
}

// SetActive gates all intents. On losing activity a single trailing stop
// is sent if any source last sent a movement, and all held state is
// forgotten.
func (d *Debouncer) SetActive(active bool) {
	if d.active == active {
		return
	}
	d.active = active
	if active {
		return
	}

	d.held = d.held[:0]
	d.pointer = core.DirStop
	moving := false
	for src := Source(0); src < numSources; src++ {
		if d.last[src] != core.DirStop {
			moving = true
		}
		d.last[src] = core.DirStop
	}
	if !moving {
		return
	}
	if err := d.sender.SendMessage(protocol.NewDirection(core.DirStop)); err != nil {
		d.logger.Debug("trailing stop not sent", "error", err)
	}
}

// SetSeat changes the seat used to remap screen directions. Held
// directions are re-evaluated under the new mapping.
func (d *Debouncer) SetSeat(seat core.Seat) {
	if d.seat == seat {
		return
	}
	d.seat = seat
	if d.active {
		d.flush(Keyboard)
		d.flush(Pointer)
	}
}

func (d *Debouncer) remove(dir core.Direction) {
	for i, h := range d.held {
		if h == dir {
			d.held = append(d.held[:i], d.held[i+1:]...)
			return
		}
	}
}

// flush sends the source's effective logical direction if it changed.
func (d *Debouncer) flush(src Source) bool {
	logical := perspective.LogicalDirection(d.seat, d.Effective(src))
	if logical == d.last[src] {
		return false
	}
	if err := d.sender.SendMessage(protocol.NewDirection(logical)); err != nil {
		d.logger.Warn("direction not sent", "source", src, "direction", logical, "error", err)
		return false
	}
	d.last[src] = logical
	return true
}
