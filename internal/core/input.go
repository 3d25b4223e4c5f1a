package core

// Action represents a semantic client action, abstracted from physical key presses.
// The platform maps keys to actions; the session maps actions to intents.
type Action int

const (
	ActionNone  Action = iota
	ActionLeft         // A, Left arrow - move paddle screen-left
	ActionRight        // D, Right arrow - move paddle screen-right
	ActionReady        // R, Space - toggle ready in the lobby
	ActionBack         // B, Escape - leave the match
	ActionQuit         // Q, Ctrl+C - exit the client
	ActionHelp         // ? - toggle help
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionReady:
		return "Ready"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	case ActionHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// Direction returns the screen-relative direction for movement actions.
// The second result is false for every non-movement action.
func (a Action) Direction() (Direction, bool) {
	switch a {
	case ActionLeft:
		return DirLeft, true
	case ActionRight:
		return DirRight, true
	default:
		return DirStop, false
	}
}
