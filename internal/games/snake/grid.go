package snake

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/vovakirdan/desksnake/internal/core"
)

// ErrInvalidGeometry is returned when the cell pitch or the screen size
// cannot describe at least one playfield cell.
var ErrInvalidGeometry = errors.New("snake: invalid geometry")

// Cell is a playfield position in surface pixels.
// Both coordinates are multiples of the geometry's pitch.
type Cell struct {
	X, Y int
}

// Geometry maps a pixel surface onto a grid of equally sized cells.
// It is immutable once created.
type Geometry struct {
	width, height  int
	pitchX, pitchY int
	cols, rows     int
}

// NewGeometry builds the grid for a screenW x screenH surface with the given
// cell pitch. Callers are expected to apply any host fallback pitch first.
func NewGeometry(screenW, screenH, pitchX, pitchY int) (Geometry, error) {
	if pitchX <= 0 || pitchY <= 0 {
		return Geometry{}, fmt.Errorf("%w: pitch %dx%d must be positive", ErrInvalidGeometry, pitchX, pitchY)
	}

	cols := screenW / pitchX
	rows := screenH / pitchY
	if cols <= 0 || rows <= 0 {
		return Geometry{}, fmt.Errorf("%w: %dx%d screen holds no %dx%d cell",
			ErrInvalidGeometry, screenW, screenH, pitchX, pitchY)
	}

	return Geometry{
		width:  screenW,
		height: screenH,
		pitchX: pitchX,
		pitchY: pitchY,
		cols:   cols,
		rows:   rows,
	}, nil
}

// Width returns the surface width in pixels.
func (g Geometry) Width() int { return g.width }

// Height returns the surface height in pixels.
func (g Geometry) Height() int { return g.height }

// Pitch returns the horizontal and vertical cell pitch.
func (g Geometry) Pitch() (int, int) { return g.pitchX, g.pitchY }

// Cols returns the number of grid columns.
func (g Geometry) Cols() int { return g.cols }

// Rows returns the number of grid rows.
func (g Geometry) Rows() int { return g.rows }

// CellCount returns the number of distinct cells on the grid.
func (g Geometry) CellCount() int { return g.cols * g.rows }

// Bounds returns the pixel rectangle covered by whole cells.
// A partial column or row at the right or bottom edge is not part of it.
func (g Geometry) Bounds() core.Rect {
	return core.NewRect(0, 0, g.cols*g.pitchX, g.rows*g.pitchY)
}

// InBounds reports whether c lies on the grid.
func (g Geometry) InBounds(c Cell) bool {
	return g.Bounds().Contains(c.X, c.Y)
}

// CellAt returns the cell at the given column and row.
func (g Geometry) CellAt(col, row int) Cell {
	return Cell{X: col * g.pitchX, Y: row * g.pitchY}
}

// Index returns the column and row of c.
func (g Geometry) Index(c Cell) (col, row int) {
	return floorDiv(c.X, g.pitchX), floorDiv(c.Y, g.pitchY)
}

// RandomCell samples a cell uniformly over the grid.
func (g Geometry) RandomCell(rng *rand.Rand) Cell {
	return g.CellAt(rng.Intn(g.cols), rng.Intn(g.rows))
}

// Step returns the cell one pitch away from c in direction d.
// The result may be out of bounds.
func (g Geometry) Step(c Cell, d Direction) Cell {
	dx, dy := d.Delta()
	return Cell{X: c.X + dx*g.pitchX, Y: c.Y + dy*g.pitchY}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
