package session

import (
	"errors"

	"github.com/vovakirdan/desksnake/internal/games/snake"
)

// ParkedX and ParkedY are where icons not taking part in the game are kept.
const (
	ParkedX = -20000
	ParkedY = -20000
)

var (
	// ErrInvalidGeometry is returned when the surface pitch or size cannot
	// form a grid, even after the surface applied its fallback.
	ErrInvalidGeometry = snake.ErrInvalidGeometry

	// ErrNoPlayfield is returned when the surface has no addressable elements.
	ErrNoPlayfield = errors.New("session: surface has no addressable elements")

	// ErrRenderSurfaceLost is returned when the surface became unusable
	// while a session was running.
	ErrRenderSurfaceLost = errors.New("session: render surface lost")

	// ErrSurfaceUnavailable is wrapped by surfaces to mark a failure as
	// systemic. Any other SetElementPosition error is treated as transient.
	ErrSurfaceUnavailable = errors.New("surface unavailable")
)

// Surface is the display the snake is drawn on. Every segment and the food
// item is an element addressed by an identity token in [0, TotalAddressableCells).
//
// Calls are made synchronously from the tick loop, so a slow surface
// lengthens every tick.
type Surface interface {
	// TotalAddressableCells returns how many elements the surface can move.
	TotalAddressableCells() int

	// ScreenDimensions returns the surface size in pixels.
	ScreenDimensions() (width, height int)

	// CellPitch returns the grid pitch in pixels. Surfaces substitute a
	// sane default when the host reports a non-positive value.
	CellPitch() (pitchX, pitchY int)

	// SetElementPosition moves element token to (x, y). It must be idempotent.
	SetElementPosition(token, x, y int) error

	// PrepareSurface enters game mode, e.g. disables auto-arrangement.
	PrepareSurface() error

	// RestoreSurface returns the surface to the mode it had before
	// PrepareSurface was called.
	RestoreSurface() error
}

// Sampler reports the controls held right now. It must never block.
type Sampler interface {
	Sample() snake.Controls
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func() snake.Controls

// Sample calls f.
func (f SamplerFunc) Sample() snake.Controls {
	return f()
}

// Observer receives session progress. Implementations must be quick; they
// run on the tick goroutine.
type Observer interface {
	SessionStarted(info Info) error
	TickCompleted(snap snake.Snapshot) error
	SessionEnded(res Result) error
}

// Observers fans events out to several observers in order. Every observer
// is called; their errors are joined.
type Observers []Observer

// SessionStarted implements Observer.
func (obs Observers) SessionStarted(info Info) error {
	return obs.each(func(o Observer) error { return o.SessionStarted(info) })
}

// TickCompleted implements Observer.
func (obs Observers) TickCompleted(snap snake.Snapshot) error {
	return obs.each(func(o Observer) error { return o.TickCompleted(snap) })
}

// SessionEnded implements Observer.
func (obs Observers) SessionEnded(res Result) error {
	return obs.each(func(o Observer) error { return o.SessionEnded(res) })
}

func (obs Observers) each(fn func(Observer) error) error {
	var errs []error
	for _, o := range obs {
		if o == nil {
			continue
		}
		if err := fn(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
