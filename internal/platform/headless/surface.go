// Package headless provides an in-memory desktop for scripted runs and
// tests: a session.Surface that only records positions, a Sampler that
// replays a YAML key script, and an ASCII renderer.
package headless

import (
	"fmt"
	"sync"

	"github.com/vovakirdan/desksnake/internal/session"
)

// Options describes the in-memory desktop. Pitch is reported as given,
// without any fallback.
type Options struct {
	Width  int
	Height int
	PitchX int
	PitchY int
	Icons  int
}

// Position is where an icon was last placed.
type Position struct {
	X, Y   int
	Placed bool
}

// Surface is an in-memory session.Surface. It is safe for concurrent use so
// a renderer may read it while a session writes.
type Surface struct {
	mu        sync.Mutex
	opts      Options
	positions []Position
	calls     int
	prepared  int
	restored  int
	failures  map[int]error
	loseAfter int
	closed    bool
}

var _ session.Surface = (*Surface)(nil)

// New creates an in-memory desktop.
func New(opts Options) *Surface {
	icons := max(opts.Icons, 0)
	return &Surface{
		opts:      opts,
		positions: make([]Position, icons),
		failures:  make(map[int]error),
	}
}

// TotalAddressableCells implements session.Surface.
func (s *Surface) TotalAddressableCells() int {
	return len(s.positions)
}

// ScreenDimensions implements session.Surface.
func (s *Surface) ScreenDimensions() (int, int) {
	return s.opts.Width, s.opts.Height
}

// CellPitch implements session.Surface.
func (s *Surface) CellPitch() (int, int) {
	return s.opts.PitchX, s.opts.PitchY
}

// SetElementPosition implements session.Surface.
func (s *Surface) SetElementPosition(token, x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.closed || (s.loseAfter > 0 && s.calls > s.loseAfter) {
		return fmt.Errorf("headless: %w", session.ErrSurfaceUnavailable)
	}
	if err, ok := s.failures[token]; ok {
		return err
	}
	if token < 0 || token >= len(s.positions) {
		return fmt.Errorf("headless: token %d out of range [0, %d)", token, len(s.positions))
	}

	s.positions[token] = Position{X: x, Y: y, Placed: true}
	return nil
}

// PrepareSurface implements session.Surface.
func (s *Surface) PrepareSurface() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepared++
	return nil
}

// RestoreSurface implements session.Surface.
func (s *Surface) RestoreSurface() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restored++
	return nil
}

// FailToken makes every placement of token fail with err.
func (s *Surface) FailToken(token int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[token] = err
}

// LoseAfter makes the surface unavailable once n placements have succeeded
// or failed. Zero disables it.
func (s *Surface) LoseAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loseAfter = n
}

// Close makes every further placement fail as unavailable.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Position returns where token was last placed.
func (s *Surface) Position(token int) Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token < 0 || token >= len(s.positions) {
		return Position{}
	}
	return s.positions[token]
}

// Positions returns a copy of every icon position, indexed by token.
func (s *Surface) Positions() []Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Position, len(s.positions))
	copy(out, s.positions)
	return out
}

// Calls returns the number of SetElementPosition calls.
func (s *Surface) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Prepared returns how often PrepareSurface was called.
func (s *Surface) Prepared() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prepared
}

// Restored returns how often RestoreSurface was called.
func (s *Surface) Restored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}
