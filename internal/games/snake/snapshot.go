package snake

// State is the lifecycle state of a snake session.
type State string

const (
	StateRunning State = "running"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Snapshot captures the simulation state after a tick for determinism
// testing and session journals.
type Snapshot struct {
	Tick      uint64
	Length    int
	HeadX     int
	HeadY     int
	Dir       Direction
	FoodX     int
	FoodY     int
	FoodEaten bool
	State     State
}

// Capture returns the snapshot of s and f at the given tick.
func Capture(tick uint64, s *Snake, f *Food) Snapshot {
	state := StateRunning
	switch {
	case s.Won():
		state = StateWon
	case !s.Alive():
		state = StateLost
	}

	head := s.Head()
	return Snapshot{
		Tick:      tick,
		Length:    s.Len(),
		HeadX:     head.X,
		HeadY:     head.Y,
		Dir:       s.Direction(),
		FoodX:     f.X,
		FoodY:     f.Y,
		FoodEaten: f.Eaten,
		State:     state,
	}
}
