package headless

import (
	"github.com/vovakirdan/desksnake/internal/games/snake"
	"github.com/vovakirdan/desksnake/internal/session"
)

// Tracker is a session.Observer that keeps the state to draw once a session
// is over. A session that ends before its first tick still gets a snapshot
// built from its result.
type Tracker struct {
	dir  snake.Direction
	last snake.Snapshot
	seen bool
}

// NewTracker returns a tracker for a session starting in direction dir.
func NewTracker(dir snake.Direction) *Tracker {
	return &Tracker{dir: dir}
}

func (t *Tracker) SessionStarted(session.Info) error { return nil }

func (t *Tracker) TickCompleted(snap snake.Snapshot) error {
	t.last = snap
	t.seen = true
	return nil
}

func (t *Tracker) SessionEnded(res session.Result) error {
	if t.seen {
		return nil
	}
	state := snake.StateRunning
	switch res.Outcome {
	case session.OutcomeWon:
		state = snake.StateWon
	case session.OutcomeLost:
		state = snake.StateLost
	}
	t.last = snake.Snapshot{
		Length: res.Length,
		Dir:    t.dir,
		// A snake that wins on spawn leaves no room for food.
		FoodEaten: res.Outcome == session.OutcomeWon,
		State:     state,
	}
	return nil
}

// Last returns the latest snapshot.
func (t *Tracker) Last() snake.Snapshot {
	return t.last
}
