package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arena/internal/core"
)

// GameKeyMap defines the in-game key bindings.
type GameKeyMap struct {
	Left  key.Binding
	Right key.Binding
	Ready key.Binding
	Back  key.Binding
	Quit  key.Binding
	Help  key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Ready, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right},
		{k.Ready, k.Back},
		{k.Help, k.Quit},
	}
}

// DefaultGameKeyMap returns default key bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a", "h"),
			key.WithHelp("←/a", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→/d", "move right"),
		),
		Ready: key.NewBinding(
			key.WithKeys(" ", "space", "enter", "r"),
			key.WithHelp("space", "toggle ready"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "leave"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// KeyMapper translates Bubble Tea input messages to arena actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	Keys GameKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{Keys: DefaultGameKeyMap()}
}

// MapKey translates a key message to an action (may be ActionNone).
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, km.Keys.Quit):
		return core.ActionQuit
	case key.Matches(msg, km.Keys.Left):
		return core.ActionLeft
	case key.Matches(msg, km.Keys.Right):
		return core.ActionRight
	case key.Matches(msg, km.Keys.Ready):
		return core.ActionReady
	case key.Matches(msg, km.Keys.Back):
		return core.ActionBack
	case key.Matches(msg, km.Keys.Help):
		return core.ActionHelp
	}
	return core.ActionNone
}

// MapMouse turns a mouse message into a pointer direction relative to the
// horizontal centre of the field. ok is false for messages that do not
// concern the pointer.
func (km *KeyMapper) MapMouse(msg tea.MouseMsg, centerX int) (dir core.Direction, ok bool) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return core.DirStop, false
	}
	switch msg.Action {
	case tea.MouseActionRelease:
		return core.DirStop, true
	case tea.MouseActionPress, tea.MouseActionMotion:
		switch {
		case msg.X < centerX:
			return core.DirLeft, true
		case msg.X > centerX:
			return core.DirRight, true
		default:
			return core.DirStop, true
		}
	}
	return core.DirStop, false
}
