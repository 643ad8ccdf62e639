package tui

import (
	"sync"
	"time"

	"github.com/vovakirdan/desksnake/internal/games/snake"
)

// DefaultHold is how long a key press counts as held.
const DefaultHold = 120 * time.Millisecond

// KeyState turns terminal key presses into held controls. Terminals only
// report presses, so a press latches until the next sample and keeps
// counting as held for the hold duration, bridging auto-repeat gaps.
type KeyState struct {
	mu      sync.Mutex
	hold    time.Duration
	pressed map[snake.Control]time.Time
	latched snake.Controls
	now     func() time.Time
}

// NewKeyState creates a key state with the given hold duration.
func NewKeyState(hold time.Duration) *KeyState {
	if hold < 0 {
		hold = 0
	}
	return &KeyState{
		hold:    hold,
		pressed: make(map[snake.Control]time.Time),
		now:     time.Now,
	}
}

// Press records a press of c.
func (k *KeyState) Press(c snake.Control) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pressed[c] = k.now()
	k.latched = k.latched.With(c)
}

// Release forgets every press.
func (k *KeyState) Release() {
	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.pressed)
	k.latched = 0
}

// Sample implements session.Sampler. It never blocks on anything but the
// internal lock.
func (k *KeyState) Sample() snake.Controls {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	held := k.latched
	for c, at := range k.pressed {
		if now.Sub(at) < k.hold {
			held = held.With(c)
		} else {
			delete(k.pressed, c)
		}
	}
	k.latched = 0
	return held
}
