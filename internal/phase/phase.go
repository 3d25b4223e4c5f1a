// Package phase tracks the coarse lifecycle of a match.
//
// The machine is driven only by server messages. Phases move forward
// (lobby, counting down, playing, game over) and never back; the only way
// to return to the lobby is Reset, which the session calls when the local
// seat changes or the connection drops.
package phase

import (
	"sort"

	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/protocol"
)

// Phase is a match lifecycle stage.
type Phase int

const (
	Lobby Phase = iota
	CountingDown
	Playing
	GameOver
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case Lobby:
		return "Lobby"
	case CountingDown:
		return "Countdown"
	case Playing:
		return "Playing"
	case GameOver:
		return "Game Over"
	default:
		return "Unknown"
	}
}

// RosterEntry is one lobby seat and its ready flag as confirmed by the server.
type RosterEntry struct {
	Seat  core.Seat
	Ready bool
}

// Summary is the terminal result of a match, captured verbatim.
type Summary struct {
	Winner core.Seat // core.NoSeat for a tie
	Scores [core.MaxSeats]int
	Reason string
}

// Tie reports whether the match ended without a winner.
func (s Summary) Tie() bool {
	return !s.Winner.Valid()
}

// SummaryFromWire converts a game-over message.
func SummaryFromWire(m protocol.GameOver) Summary {
	return Summary{Winner: m.Winner(), Scores: m.Scores(), Reason: m.Reason}
}

// Machine is the phase state machine. The zero value is a machine in the
// lobby.
type Machine struct {
	phase   Phase
	seconds int
	roster  []RosterEntry
	summary *Summary
}

// New creates a machine in the lobby.
func New() *Machine {
	return &Machine{}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Countdown returns the remaining seconds. ok is false outside CountingDown.
func (m *Machine) Countdown() (seconds int, ok bool) {
	if m.phase != CountingDown {
		return 0, false
	}
	return m.seconds, true
}

// Roster returns a copy of the lobby roster sorted by seat.
func (m *Machine) Roster() []RosterEntry {
	out := make([]RosterEntry, len(m.roster))
	copy(out, m.roster)
	return out
}

// Summary returns the game-over summary, if the match has ended.
func (m *Machine) Summary() (Summary, bool) {
	if m.summary == nil {
		return Summary{}, false
	}
	return *m.summary, true
}

// Over reports whether the match reached its terminal phase.
func (m *Machine) Over() bool {
	return m.phase == GameOver
}

func (m *Machine) advance(to Phase) bool {
	if to < m.phase {
		return false
	}
	m.phase = to
	return true
}

// HandleRoster replaces the roster. It is accepted only in the lobby.
func (m *Machine) HandleRoster(entries []RosterEntry) bool {
	if m.phase != Lobby {
		return false
	}
	roster := make([]RosterEntry, 0, len(entries))
	for _, e := range entries {
		if e.Seat.Valid() {
			roster = append(roster, e)
		}
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].Seat < roster[j].Seat })
	m.roster = roster
	return true
}

// HandleCountdown enters CountingDown or updates the remaining seconds.
func (m *Machine) HandleCountdown(seconds int) bool {
	if !m.advance(CountingDown) {
		return false
	}
	if seconds < 0 {
		seconds = 0
	}
	m.seconds = seconds
	return true
}

// HandlePlaying enters Playing. Coming straight from the lobby is allowed,
// which happens when reconnecting into a running match.
func (m *Machine) HandlePlaying() bool {
	if m.phase == Playing {
		return true
	}
	if !m.advance(Playing) {
		return false
	}
	m.seconds = 0
	return true
}

// HandleGameOver enters the terminal phase and records the summary. A second
// game-over is ignored.
func (m *Machine) HandleGameOver(s Summary) bool {
	if m.phase == GameOver {
		return false
	}
	m.phase = GameOver
	m.seconds = 0
	m.summary = &s
	return true
}

// LocalReady reports the server-confirmed ready flag of a seat.
func (m *Machine) LocalReady(seat core.Seat) bool {
	for _, e := range m.roster {
		if e.Seat == seat {
			return e.Ready
		}
	}
	return false
}

// ReadyIntent builds the toggle message for the local seat. The local flag
// is not changed; it follows the next roster from the server.
func (m *Machine) ReadyIntent(seat core.Seat) protocol.PlayerReady {
	return protocol.PlayerReady{Ready: !m.LocalReady(seat)}
}

// Reset returns to the lobby and forgets roster, countdown and summary.
func (m *Machine) Reset() {
	*m = Machine{}
}

// RosterFromWire converts a lobby-state message.
func RosterFromWire(m protocol.LobbyState) []RosterEntry {
	out := make([]RosterEntry, len(m.Players))
	for i, p := range m.Players {
		out[i] = RosterEntry{Seat: core.Seat(p.Index), Ready: p.Ready}
	}
	return out
}
