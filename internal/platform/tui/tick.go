// Package tui provides the Bubble Tea front end for the arena client.
// It renders session snapshots and feeds keyboard and mouse input back into
// the session.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arena/internal/client"
	"github.com/vovakirdan/arena/internal/signal"
)

// TickMsg is sent to trigger a frame.
type TickMsg time.Time

// viewChangedMsg reports a new session snapshot.
type viewChangedMsg struct{}

// sessionDoneMsg reports that the session was left.
type sessionDoneMsg struct{}

// signalMsg carries one gameplay signal.
type signalMsg signal.Signal

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 30
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForChange blocks until the session publishes a new view.
func waitForChange(s *client.Session) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.Changed():
			return viewChangedMsg{}
		case <-s.Done():
			return sessionDoneMsg{}
		}
	}
}

// waitForSignal blocks until the next signal arrives or the session is
// left. waitForChange reports the latter, so this returns nil for it.
func waitForSignal(s *client.Session, ch <-chan signal.Signal) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			return signalMsg(sig)
		case <-s.Done():
			return nil
		}
	}
}
