package tui

import (
	"fmt"
	"sync"

	"github.com/vovakirdan/desksnake/internal/core"
	"github.com/vovakirdan/desksnake/internal/session"
)

// DefaultPitch is the icon spacing used when a non-positive pitch is
// configured, before clamping to the desktop size.
const DefaultPitch = 75

// Icon is one desktop icon. Positions are in terminal cells.
type Icon struct {
	X, Y  int
	Label rune
}

// Desktop is a virtual icon desktop living in the terminal. It implements
// session.Surface; the view reads it while the session goroutine moves
// icons, so every method locks.
type Desktop struct {
	mu       sync.Mutex
	width    int
	height   int
	pitchX   int
	pitchY   int
	icons    []Icon
	snap     bool
	prepared bool
	wasSnap  bool
	closed   bool
}

var _ session.Surface = (*Desktop)(nil)

// NewDesktop creates a width x height desktop with n icons arranged in
// columns and snap-to-grid enabled.
func NewDesktop(width, height, pitchX, pitchY, n int) *Desktop {
	d := &Desktop{
		width:  max(width, 0),
		height: max(height, 0),
		pitchX: fallbackPitch(pitchX, width),
		pitchY: fallbackPitch(pitchY, height),
		icons:  make([]Icon, max(n, 0)),
		snap:   true,
	}
	for i := range d.icons {
		d.icons[i].Label = iconLabel(i)
	}
	d.arrange()
	return d
}

func fallbackPitch(pitch, size int) int {
	if pitch <= 0 {
		pitch = DefaultPitch
	}
	if size > 0 {
		return core.Clamp(pitch, 1, size)
	}
	return max(pitch, 1)
}

// iconLabel cycles through letters so neighbouring icons are told apart.
func iconLabel(i int) rune {
	return rune('A' + i%26)
}

// TotalAddressableCells implements session.Surface.
func (d *Desktop) TotalAddressableCells() int {
	return len(d.icons)
}

// ScreenDimensions implements session.Surface.
func (d *Desktop) ScreenDimensions() (int, int) {
	return d.width, d.height
}

// CellPitch implements session.Surface.
func (d *Desktop) CellPitch() (int, int) {
	return d.pitchX, d.pitchY
}

// SetElementPosition implements session.Surface. With snap-to-grid on,
// the icon lands on the nearest grid slot instead of (x, y).
func (d *Desktop) SetElementPosition(token, x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("desktop: %w", session.ErrSurfaceUnavailable)
	}
	if token < 0 || token >= len(d.icons) {
		return fmt.Errorf("desktop: icon %d out of range [0, %d)", token, len(d.icons))
	}

	if d.snap {
		x = roundTo(x, d.pitchX)
		y = roundTo(y, d.pitchY)
	}
	d.icons[token].X = x
	d.icons[token].Y = y
	return nil
}

// PrepareSurface turns snap-to-grid off so icons stay where the game puts them.
func (d *Desktop) PrepareSurface() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("desktop: %w", session.ErrSurfaceUnavailable)
	}
	d.wasSnap = d.snap
	d.snap = false
	d.prepared = true
	return nil
}

// RestoreSurface puts snap-to-grid back and re-arranges the icons.
func (d *Desktop) RestoreSurface() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.prepared {
		d.snap = d.wasSnap
		d.prepared = false
	}
	d.arrange()
	return nil
}

// Close marks the desktop as gone. Further moves fail as unavailable.
func (d *Desktop) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// Icons returns a copy of all icons, indexed by token.
func (d *Desktop) Icons() []Icon {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Icon, len(d.icons))
	copy(out, d.icons)
	return out
}

// Snapping reports whether snap-to-grid is on.
func (d *Desktop) Snapping() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snap
}

// arrange lays icons out top to bottom, then left to right, on grid slots.
// Must be called with d.mu held.
func (d *Desktop) arrange() {
	rows := max(d.height/d.pitchY, 1)
	cols := max(d.width/d.pitchX, 1)
	for i := range d.icons {
		slot := i % (rows * cols)
		d.icons[i].X = (slot / rows) * d.pitchX
		d.icons[i].Y = (slot % rows) * d.pitchY
	}
}

func roundTo(v, pitch int) int {
	if pitch <= 1 {
		return v
	}
	half := pitch / 2
	if v < 0 {
		return -roundTo(-v, pitch)
	}
	return (v + half) / pitch * pitch
}
