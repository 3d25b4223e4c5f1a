package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/arena/internal/client"
	"github.com/vovakirdan/arena/internal/conn"
	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/input"
	"github.com/vovakirdan/arena/internal/phase"
	"github.com/vovakirdan/arena/internal/signal"
	"github.com/vovakirdan/arena/internal/state"
)

// ModelOptions configures a game Model.
type ModelOptions struct {
	Session *client.Session
	Signals <-chan signal.Signal // may be nil

	// Bell receives the terminal bell on brick breaks and lost balls.
	// Nil disables it.
	Bell io.Writer

	TickRate int
	KeyHold  time.Duration
	Flash    time.Duration
	Width    int
	Height   int
}

// Model is the Bubble Tea model for one arena session. It only reads
// session snapshots and queues input; the session owns all match state.
type Model struct {
	session *client.Session
	signals <-chan signal.Signal
	bell    io.Writer

	view   client.View
	screen *core.Screen
	keys   *KeyMapper
	hold   *input.KeyHold
	help   help.Model

	tickRate   int
	flashFor   time.Duration
	flash      string
	flashColor core.Color
	flashUntil time.Time

	width    int
	height   int
	quitting bool
}

// NewModel creates a model bound to a running session.
func NewModel(opts ModelOptions) Model {
	flash := opts.Flash
	if flash <= 0 {
		flash = 600 * time.Millisecond
	}
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		cfg := core.DefaultConfig()
		w, h = cfg.ScreenW, cfg.ScreenH
	}
	return Model{
		session:  opts.Session,
		signals:  opts.Signals,
		bell:     opts.Bell,
		view:     opts.Session.Snapshot(),
		screen:   core.NewScreen(w, h-1),
		keys:     NewKeyMapper(),
		hold:     input.NewKeyHold(opts.KeyHold),
		help:     help.New(),
		tickRate: opts.TickRate,
		flashFor: flash,
		width:    w,
		height:   h,
	}
}

// Init starts the frame ticker and the session watchers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.tickRate),
		waitForChange(m.session),
		waitForSignal(m.session, m.signals),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		field := FitField(m.screen.Width(), m.screen.Height(), m.view.Perspective.Size.X)
		if dir, ok := m.keys.MapMouse(msg, field.CenterX()); ok {
			m.session.Input(client.PointerMoved{Dir: dir})
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-1, 1))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))

	case viewChangedMsg:
		m.view = m.session.Snapshot()
		return m, waitForChange(m.session)

	case signalMsg:
		m.handleSignal(signal.Signal(msg))
		return m, waitForSignal(m.session, m.signals)

	case sessionDoneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.MapKey(msg)

	if dir, ok := action.Direction(); ok {
		// terminals repeat presses instead of reporting key-up
		if m.hold.Press(dir, time.Now()) {
			m.session.Input(client.KeyPressed{Dir: dir})
		}
		return m, nil
	}

	switch action {
	case core.ActionQuit, core.ActionBack:
		m.quitting = true
		m.session.Leave()
		return m, tea.Quit
	case core.ActionReady:
		m.session.Input(client.ReadyToggled{})
	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleTick synthesizes key releases and expires the flash line.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	for _, dir := range m.hold.Expire(now) {
		m.session.Input(client.KeyReleased{Dir: dir})
	}
	if m.flash != "" && now.After(m.flashUntil) {
		m.flash = ""
	}
	return m, tickCmd(m.tickRate)
}

func (m *Model) handleSignal(sig signal.Signal) {
	text, color, ring := describeSignal(sig, m.session.Snapshot().State)
	if text == "" {
		return
	}
	m.flash = text
	m.flashColor = color
	m.flashUntil = time.Now().Add(m.flashFor)
	if ring && m.bell != nil {
		//nolint:errcheck // Best-effort bell
		m.bell.Write([]byte("\a"))
	}
}

// describeSignal turns a signal into a status line message. Frequent
// collision signals stay silent. snap names the new owner of a lost ball
// when it already holds it.
func describeSignal(sig signal.Signal, snap state.Snapshot) (text string, color core.Color, ring bool) {
	switch sig.Kind {
	case signal.BrickBreak:
		return "Brick broken!", core.ColorOrange, true
	case signal.BallLostByLocal:
		if b, ok := snap.Ball(sig.BallID); ok && b.Owner.Valid() && b.Owner != sig.Seat {
			return fmt.Sprintf("%s took your ball", b.Owner), core.ColorRed, true
		}
		return "You lost a ball", core.ColorRed, true
	case signal.BallGainedByLocal:
		return "Ball captured", core.ColorGreen, false
	case signal.BallOwnershipChanged:
		return fmt.Sprintf("%s took ball %d", sig.Seat, sig.BallID), core.SeatColor(sig.Seat), false
	}
	return "", core.ColorDefault, false
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.screen
	s.Clear()
	v := m.view

	switch {
	case v.Rejected:
		m.drawMessage(s, "JOIN REJECTED", v.Rejection, "Q: Quit")
	case v.Status != conn.StatusOpen && v.Phase == phase.Lobby:
		m.drawConnecting(s, v)
	case v.Phase == phase.Lobby:
		m.drawLobby(s, v)
	default:
		m.drawMatch(s, v)
	}

	return RenderScreen(s) + "\n" + lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(m.help.View(m.keys.Keys))
}

func (m Model) drawMessage(s *core.Screen, title, body, hint string) {
	y := s.Height()/2 - 2
	s.DrawTextCentered(y, title, core.ColorBrightYellow)
	s.DrawTextCentered(y+2, body, core.ColorWhite)
	s.DrawTextCentered(y+4, hint, core.ColorGray)
}

func (m Model) drawConnecting(s *core.Screen, v client.View) {
	detail := fmt.Sprintf("status: %s", v.Status)
	if v.StatusErr != nil {
		detail = fmt.Sprintf("status: %s (%v)", v.Status, v.StatusErr)
	}
	m.drawMessage(s, "CONNECTING", detail, "Retrying automatically  |  Q: Quit")
}

func (m Model) drawLobby(s *core.Screen, v client.View) {
	y := 1
	s.DrawTextCentered(y, "LOBBY", core.ColorBrightYellow)
	y += 2

	switch {
	case v.RoomCode != "":
		s.DrawTextCentered(y, fmt.Sprintf("Room code: [ %s ]", v.RoomCode), core.ColorWhite)
	default:
		s.DrawTextCentered(y, fmt.Sprintf("Waiting for a room (%s)...", v.Route), core.ColorGray)
	}
	y += 2

	if v.LocalSeat.Valid() {
		s.DrawTextCentered(y, fmt.Sprintf("You are %s", v.LocalSeat), core.SeatColor(v.LocalSeat))
		y += 2
	}

	roster := v.Roster
	if len(roster) == 0 {
		s.DrawTextCentered(y, "No players yet", core.ColorGray)
		y++
	}
	for _, e := range roster {
		mark := "waiting"
		if e.Ready {
			mark = "ready"
		}
		line := fmt.Sprintf("%s  %-7s", e.Seat, mark)
		if e.Seat == v.LocalSeat {
			line += " (you)"
		}
		s.DrawTextCentered(y, line, core.SeatColor(e.Seat))
		y++
	}

	y++
	hint := "Space: ready up"
	if v.Ready {
		hint = "Space: not ready"
	}
	s.DrawTextCentered(y, hint, core.ColorGray)
}

func (m Model) drawMatch(s *core.Screen, v client.View) {
	DrawScores(s, 0, v)

	field := FitField(s.Width(), s.Height(), v.Perspective.Size.X)
	DrawArena(s, field, v)

	mid := field.Y + field.H/2
	switch v.Phase {
	case phase.CountingDown:
		s.DrawTextCentered(mid, fmt.Sprintf("  %d  ", v.Countdown), core.ColorBrightYellow)
	case phase.GameOver:
		m.drawSummary(s, mid-2, v)
	}

	if v.Status != conn.StatusOpen && !v.Over {
		s.DrawTextCentered(mid+3, fmt.Sprintf(" connection %s ", v.Status), core.ColorRed)
	}

	if m.flash != "" {
		s.DrawText(1, s.Height()-1, m.flash, m.flashColor)
	}
}

func (m Model) drawSummary(s *core.Screen, y int, v client.View) {
	sum := v.Summary
	title := "DRAW"
	color := core.ColorWhite
	switch {
	case sum.Tie():
	case sum.Winner == v.LocalSeat:
		title, color = "YOU WIN!", core.ColorBrightGreen
	default:
		title, color = fmt.Sprintf("%s WINS", sum.Winner), core.SeatColor(sum.Winner)
	}
	s.DrawTextCentered(y, " "+title+" ", color)

	parts := make([]string, 0, core.MaxSeats)
	for i, score := range sum.Scores {
		parts = append(parts, fmt.Sprintf("%s %d", core.Seat(i), score))
	}
	s.DrawTextCentered(y+2, " "+strings.Join(parts, "   ")+" ", core.ColorWhite)
	if sum.Reason != "" {
		s.DrawTextCentered(y+3, " "+sum.Reason+" ", core.ColorGray)
	}
	if p, ok := v.State.LocalPlayer(); ok {
		s.DrawTextCentered(y+4, fmt.Sprintf(" Your score: %d ", p.Score), core.SeatColor(p.Seat))
	}
	s.DrawTextCentered(y+5, " Q: Quit ", core.ColorGray)
}
