package client

import "github.com/vovakirdan/arena/internal/core"

// InputEvent is a user action delivered to the session loop.
type InputEvent interface {
	inputEvent()
}

// KeyPressed is a fresh key press of a screen direction.
type KeyPressed struct {
	Dir core.Direction
}

func (KeyPressed) inputEvent() {}

// KeyReleased is a key release, real or synthesized from a hold timeout.
type KeyReleased struct {
	Dir core.Direction
}

func (KeyReleased) inputEvent() {}

// PointerMoved sets the pointer's screen direction; DirStop when released.
type PointerMoved struct {
	Dir core.Direction
}

func (PointerMoved) inputEvent() {}

// ReadyToggled asks to flip the local ready flag in the lobby.
type ReadyToggled struct{}

func (ReadyToggled) inputEvent() {}
