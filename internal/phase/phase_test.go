package phase

import (
	"testing"

	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/protocol"
)

func TestForwardFlow(t *testing.T) {
	m := New()
	if m.Phase() != Lobby {
		t.Fatalf("initial phase = %v", m.Phase())
	}

	if !m.HandleRoster([]RosterEntry{{Seat: 1, Ready: true}, {Seat: 0, Ready: false}}) {
		t.Error("roster should be accepted in lobby")
	}
	if m.Phase() != Lobby {
		t.Errorf("roster moved phase to %v", m.Phase())
	}
	if r := m.Roster(); len(r) != 2 || r[0].Seat != 0 {
		t.Errorf("Roster() = %v, expected sorted by seat", r)
	}

	m.HandleCountdown(3)
	if s, ok := m.Countdown(); !ok || s != 3 || m.Phase() != CountingDown {
		t.Errorf("after countdown(3): phase=%v seconds=%d ok=%v", m.Phase(), s, ok)
	}
	m.HandleCountdown(2)
	if s, _ := m.Countdown(); s != 2 {
		t.Errorf("countdown tick not applied: %d", s)
	}

	m.HandlePlaying()
	if m.Phase() != Playing {
		t.Errorf("phase = %v, expected Playing", m.Phase())
	}
	if _, ok := m.Countdown(); ok {
		t.Error("countdown should be meaningless while playing")
	}

	m.HandleGameOver(Summary{Winner: 2, Scores: [4]int{1, 2, 9, 0}, Reason: "score limit"})
	sum, ok := m.Summary()
	if !ok || m.Phase() != GameOver || !m.Over() {
		t.Fatal("expected game over with summary")
	}
	if sum.Winner != 2 || sum.Scores[2] != 9 || sum.Reason != "score limit" || sum.Tie() {
		t.Errorf("summary = %+v", sum)
	}
}

func TestZeroValueMachine(t *testing.T) {
	var m Machine
	if m.Phase() != Lobby || len(m.Roster()) != 0 {
		t.Fatalf("zero machine: phase=%v roster=%v", m.Phase(), m.Roster())
	}
	if _, ok := m.Summary(); ok {
		t.Error("zero machine should have no summary")
	}

	m.HandleCountdown(2)
	m.HandlePlaying()
	if m.Phase() != Playing {
		t.Errorf("phase = %v, expected Playing", m.Phase())
	}
}

func TestBackwardMessagesIgnored(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Machine)
		act   func(m *Machine) bool
		want  Phase
	}{
		{
			name:  "countdown while playing",
			setup: func(m *Machine) { m.HandlePlaying() },
			act:   func(m *Machine) bool { return m.HandleCountdown(3) },
			want:  Playing,
		},
		{
			name:  "roster while counting down",
			setup: func(m *Machine) { m.HandleCountdown(3) },
			act:   func(m *Machine) bool { return m.HandleRoster([]RosterEntry{{Seat: 0}}) },
			want:  CountingDown,
		},
		{
			name:  "playing after game over",
			setup: func(m *Machine) { m.HandleGameOver(Summary{Winner: core.NoSeat}) },
			act:   func(m *Machine) bool { return m.HandlePlaying() },
			want:  GameOver,
		},
		{
			name:  "second game over",
			setup: func(m *Machine) { m.HandleGameOver(Summary{Winner: 1}) },
			act:   func(m *Machine) bool { return m.HandleGameOver(Summary{Winner: 3}) },
			want:  GameOver,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New()
			tc.setup(m)
			if tc.act(m) {
				t.Error("backward message should be rejected")
			}
			if m.Phase() != tc.want {
				t.Errorf("phase = %v, expected %v", m.Phase(), tc.want)
			}
		})
	}

	t.Run("first summary kept", func(t *testing.T) {
		m := New()
		m.HandleGameOver(Summary{Winner: 1})
		m.HandleGameOver(Summary{Winner: 3})
		if s, _ := m.Summary(); s.Winner != 1 {
			t.Errorf("summary winner = %v, expected 1", s.Winner)
		}
	})
}

func TestLobbyStraightToPlaying(t *testing.T) {
	m := New()
	if !m.HandlePlaying() || m.Phase() != Playing {
		t.Error("reconnecting into a running match should reach Playing from the lobby")
	}
}

func TestReadyIsServerConfirmed(t *testing.T) {
	m := New()
	m.HandleRoster([]RosterEntry{{Seat: 2, Ready: false}})

	intent := m.ReadyIntent(2)
	if !intent.Ready {
		t.Error("toggle from not-ready should request ready")
	}
	if m.LocalReady(2) {
		t.Error("local ready flag must not change before the server confirms")
	}

	m.HandleRoster([]RosterEntry{{Seat: 2, Ready: true}})
	if !m.LocalReady(2) {
		t.Error("ready flag should follow the confirmed roster")
	}
	if m.ReadyIntent(2).Ready {
		t.Error("toggle from ready should request not-ready")
	}
}

func TestRosterDropsInvalidSeats(t *testing.T) {
	m := New()
	m.HandleRoster([]RosterEntry{{Seat: 0}, {Seat: 7}, {Seat: -1}})
	if len(m.Roster()) != 1 {
		t.Errorf("Roster() = %v", m.Roster())
	}
}

func TestReset(t *testing.T) {
	m := New()
	m.HandleRoster([]RosterEntry{{Seat: 0, Ready: true}})
	m.HandleCountdown(1)
	m.HandleGameOver(Summary{Winner: 0})
	m.Reset()

	if m.Phase() != Lobby || len(m.Roster()) != 0 {
		t.Errorf("after Reset: phase=%v roster=%v", m.Phase(), m.Roster())
	}
	if _, ok := m.Summary(); ok {
		t.Error("summary should be cleared")
	}
}

func TestFromWire(t *testing.T) {
	noWinner := protocol.NoWinner
	sum := SummaryFromWire(protocol.GameOver{WinnerIndex: &noWinner, FinalScores: []int{4, 4}, Reason: "draw"})
	if !sum.Tie() || sum.Scores != [4]int{4, 4, 0, 0} {
		t.Errorf("SummaryFromWire() = %+v", sum)
	}

	sum = SummaryFromWire(protocol.GameOver{FinalScores: []int{0, 2}})
	if !sum.Tie() {
		t.Errorf("omitted winner should be a tie, got winner %v", sum.Winner)
	}

	first := 0
	sum = SummaryFromWire(protocol.GameOver{WinnerIndex: &first, FinalScores: []int{6, 2}})
	if sum.Tie() || sum.Winner != 0 {
		t.Errorf("winner = %v, want seat 0", sum.Winner)
	}

	roster := RosterFromWire(protocol.LobbyState{Players: []protocol.LobbyPlayer{{Index: 3, Ready: true}}})
	if len(roster) != 1 || roster[0].Seat != 3 || !roster[0].Ready {
		t.Errorf("RosterFromWire() = %v", roster)
	}
}
