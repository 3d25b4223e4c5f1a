package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arena/internal/handshake"
)

// RouteState is the step of the route picker.
type RouteState int

const (
	RouteStateChoose    RouteState = iota // choose create, quick match or join
	RouteStateEnterCode                   // entering a join code
	RouteStateDone                        // intent chosen
)

// maxCodeLen bounds room code input.
const maxCodeLen = 8

var routeOptions = []struct {
	label  string
	route  handshake.Route
	public bool
}{
	{"Quick match", handshake.RouteQuickMatch, false},
	{"Create public room", handshake.RouteCreate, true},
	{"Create private room", handshake.RouteCreate, false},
	{"Join with code", handshake.RouteJoin, false},
}

// RouteModel lets the user pick how to enter a room.
type RouteModel struct {
	state     RouteState
	cursor    int
	width     int
	height    int
	codeInput string
	err       string
	intent    handshake.Intent
	quitting  bool
}

// NewRouteModel creates a route picker.
func NewRouteModel(width, height int) RouteModel {
	return RouteModel{width: width, height: height}
}

// Init initializes the model.
func (m RouteModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m RouteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.state {
		case RouteStateChoose:
			return m.handleChooseKey(msg)
		case RouteStateEnterCode:
			return m.handleCodeKey(msg)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m RouteModel) handleChooseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "w", "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "s", "down", "j":
		if m.cursor < len(routeOptions)-1 {
			m.cursor++
		}
	case "enter", " ":
		opt := routeOptions[m.cursor]
		if opt.route == handshake.RouteJoin {
			m.state = RouteStateEnterCode
			m.codeInput = ""
			m.err = ""
			return m, nil
		}
		m.intent, _ = handshake.ParseIntent(opt.route, opt.public, "")
		m.state = RouteStateDone
	}
	return m, nil
}

func (m RouteModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		m.state = RouteStateChoose
		return m, nil
	case "enter":
		intent, err := handshake.ParseIntent(handshake.RouteJoin, false, m.codeInput)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.intent = intent
		m.state = RouteStateDone
	case "backspace":
		if m.codeInput != "" {
			m.codeInput = m.codeInput[:len(m.codeInput)-1]
		}
	default:
		// Accept alphanumeric input for code
		if len(key) == 1 && len(m.codeInput) < maxCodeLen {
			c := strings.ToUpper(key)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
				m.codeInput += c
			}
		}
	}
	return m, nil
}

// View renders the current state.
func (m RouteModel) View() string {
	if m.quitting || m.state == RouteStateDone {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText("ARENA", m.width))
	b.WriteString("\n\n")

	switch m.state {
	case RouteStateChoose:
		b.WriteString(centerText("How do you want to play?", m.width))
		b.WriteString("\n\n")
		for i, opt := range routeOptions {
			cursor := "  "
			if i == m.cursor {
				cursor = "> "
			}
			b.WriteString(centerText(fmt.Sprintf("%s%-20s", cursor, opt.label), m.width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(centerText("Enter: Select  |  Q: Quit", m.width))

	case RouteStateEnterCode:
		b.WriteString(centerText("Enter the room code:", m.width))
		b.WriteString("\n\n")

		codeDisplay := m.codeInput
		if len(codeDisplay) < maxCodeLen {
			codeDisplay += "_" + strings.Repeat(" ", maxCodeLen-1-len(m.codeInput))
		}
		b.WriteString(centerText(fmt.Sprintf("[ %s ]", codeDisplay), m.width))
		b.WriteString("\n")
		if m.err != "" {
			b.WriteString("\n")
			b.WriteString(centerText(fmt.Sprintf("Error: %s", m.err), m.width))
		}
		b.WriteString("\n\n")
		b.WriteString(centerText("Enter: Join  |  Esc: Back", m.width))
	}

	return b.String()
}

// State returns the picker step.
func (m RouteModel) State() RouteState {
	return m.state
}

// Intent returns the chosen intent. ok is false until one was chosen.
func (m RouteModel) Intent() (handshake.Intent, bool) {
	return m.intent, m.state == RouteStateDone
}

// IsQuitting returns true if user wants to quit entirely.
func (m RouteModel) IsQuitting() bool {
	return m.quitting
}
