package input

import (
	"time"

	"github.com/vovakirdan/arena/internal/core"
)

// DefaultKeyHold covers the gap before a terminal's key repeat kicks in.
const DefaultKeyHold = 250 * time.Millisecond

// KeyHold emulates key-up events for terminals, which only report presses
// and repeats. A key counts as held until Window has passed since its last
// report.
type KeyHold struct {
	Window time.Duration
	seen   map[core.Direction]time.Time
}

// NewKeyHold creates a tracker with the given window.
func NewKeyHold(window time.Duration) *KeyHold {
	if window <= 0 {
		window = DefaultKeyHold
	}
	return &KeyHold{Window: window, seen: make(map[core.Direction]time.Time)}
}

// Press records a press or repeat at now. It reports whether the key was
// not already held, i.e. whether this is a fresh press.
func (k *KeyHold) Press(dir core.Direction, now time.Time) bool {
	_, held := k.seen[dir]
	k.seen[dir] = now
	return !held
}

// Expire returns the keys whose window elapsed at now and forgets them.
func (k *KeyHold) Expire(now time.Time) []core.Direction {
	var out []core.Direction
	// fixed order keeps releases deterministic
	for _, dir := range []core.Direction{core.DirLeft, core.DirRight} {
		t, ok := k.seen[dir]
		if ok && now.Sub(t) >= k.Window {
			delete(k.seen, dir)
			out = append(out, dir)
		}
	}
	return out
}

// Held reports whether dir is currently considered held.
func (k *KeyHold) Held(dir core.Direction) bool {
	_, ok := k.seen[dir]
	return ok
}

// Clear forgets every key.
func (k *KeyHold) Clear() {
	clear(k.seen)
}
