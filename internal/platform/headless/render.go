package headless

import (
	"fmt"

	"github.com/vovakirdan/desksnake/internal/core"
	"github.com/vovakirdan/desksnake/internal/games/snake"
)

// Board glyphs.
const (
	GlyphEmpty = '.'
	GlyphHead  = '@'
	GlyphBody  = 'o'
	GlyphFood  = '*'
)

// BoardSize returns the screen size Render needs: one character per cell
// inside a one-character frame, plus a status line.
func (s *Surface) BoardSize() (int, int) {
	cols, rows := s.grid()
	return cols + 2, rows + 3
}

func (s *Surface) grid() (cols, rows int) {
	if s.opts.PitchX <= 0 || s.opts.PitchY <= 0 {
		return 0, 0
	}
	return s.opts.Width / s.opts.PitchX, s.opts.Height / s.opts.PitchY
}

// Render draws the desktop as seen after snap. Tokens below snap.Length are
// the snake, token snap.Length is the food unless it was eaten.
func Render(scr *core.Screen, s *Surface, snap snake.Snapshot) {
	scr.Clear()
	cols, rows := s.grid()
	board := core.NewRect(0, 0, cols+2, rows+2)
	scr.DrawBox(board, core.ColorGray)
	scr.FillRect(core.NewRect(1, 1, cols, rows), core.Cell{Rune: GlyphEmpty, Color: core.ColorGray})

	status := fmt.Sprintf("tick %d  length %d  %s  %s", snap.Tick, snap.Length, snap.Dir, snap.State)
	scr.DrawText(0, rows+2, status, core.ColorWhite)
	if cols == 0 || rows == 0 {
		return
	}

	positions := s.Positions()
	cellAt := func(p Position) (int, int, bool) {
		if !p.Placed || p.X < 0 || p.Y < 0 {
			return 0, 0, false
		}
		col, row := p.X/s.opts.PitchX, p.Y/s.opts.PitchY
		return col, row, col < cols && row < rows
	}

	if !snap.FoodEaten && snap.Length < len(positions) {
		if col, row, ok := cellAt(positions[snap.Length]); ok {
			scr.SetCell(col+1, row+1, core.Cell{Rune: GlyphFood, Color: core.ColorRed})
		}
	}
	for token := min(snap.Length, len(positions)) - 1; token >= 0; token-- {
		col, row, ok := cellAt(positions[token])
		if !ok {
			continue
		}
		glyph, color := GlyphBody, core.ColorGreen
		if token == 0 {
			glyph, color = GlyphHead, core.ColorBrightGreen
		}
		scr.SetCell(col+1, row+1, core.Cell{Rune: glyph, Color: color})
	}
}
