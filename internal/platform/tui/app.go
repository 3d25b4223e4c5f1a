package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arena/internal/client"
	"github.com/vovakirdan/arena/internal/handshake"
	"github.com/vovakirdan/arena/internal/signal"
)

// Starter creates and starts a session for the chosen intent. The caller
// owns the session's lifetime; the model only calls Leave.
type Starter func(intent handshake.Intent) (*client.Session, <-chan signal.Signal, error)

// AppModel manages the full client flow: route picker -> game.
// This is the top-level model for both local play and SSH sessions.
type AppModel struct {
	start    Starter
	opts     ModelOptions
	route    RouteModel
	game     *Model
	err      error
	quitting bool
}

// NewAppModel creates the app. With a preset intent the picker is skipped
// and the session starts immediately.
func NewAppModel(start Starter, opts ModelOptions, preset *handshake.Intent) (AppModel, error) {
	m := AppModel{
		start: start,
		opts:  opts,
		route: NewRouteModel(opts.Width, opts.Height),
	}
	if preset != nil {
		game, err := m.startGame(*preset)
		if err != nil {
			return m, err
		}
		m.game = game
	}
	return m, nil
}

func (m AppModel) startGame(intent handshake.Intent) (*Model, error) {
	session, signals, err := m.start(intent)
	if err != nil {
		return nil, fmt.Errorf("cannot start session: %w", err)
	}
	opts := m.opts
	opts.Session = session
	opts.Signals = signals
	game := NewModel(opts)
	return &game, nil
}

// Init initializes the app.
func (m AppModel) Init() tea.Cmd {
	if m.game != nil {
		return m.game.Init()
	}
	return m.route.Init()
}

// Update handles messages for the app.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Track size globally so a game started later opens at the right size
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Width = wsm.Width
		m.opts.Height = wsm.Height
	}

	if m.game != nil {
		next, cmd := m.game.Update(msg)
		if g, ok := next.(Model); ok {
			m.game = &g
		}
		return m, cmd
	}

	if m.err != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	next, cmd := m.route.Update(msg)
	if r, ok := next.(RouteModel); ok {
		m.route = r
	}
	if m.route.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if intent, ok := m.route.Intent(); ok {
		game, err := m.startGame(intent)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.game = game
		return m, m.game.Init()
	}
	return m, cmd
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	if m.game != nil {
		return m.game.View()
	}
	if m.err != nil {
		return "\n" + centerText(fmt.Sprintf("Error: %v", m.err), m.opts.Width) +
			"\n\n" + centerText("Press any key to quit", m.opts.Width)
	}
	return m.route.View()
}

// Leave tears down the running session, if any.
func (m AppModel) Leave() {
	if m.game != nil {
		m.game.session.Leave()
	}
}

// RunApp runs the client flow in the current terminal.
func RunApp(start Starter, opts ModelOptions, preset *handshake.Intent) error {
	model, err := NewAppModel(start, opts, preset)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if app, ok := final.(AppModel); ok {
		app.Leave()
	}
	return err
}
