package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/vovakirdan/desksnake/internal/core"
	"github.com/vovakirdan/desksnake/internal/games/snake"
	"github.com/vovakirdan/desksnake/internal/session"
)

// Desktop glyphs.
const (
	glyphIcon = '▪'
	glyphHead = '◉'
	glyphBody = '■'
	glyphFood = '◆'
)

// drawDesktop draws every visible icon. While playing, tokens below
// snap.Length are the snake and token snap.Length is the food; otherwise all
// icons are drawn as plain labelled icons.
func drawDesktop(scr *core.Screen, d *Desktop, snap snake.Snapshot, playing bool) {
	scr.Clear()
	for token, icon := range d.Icons() {
		cell := core.Cell{Rune: icon.Label, Color: core.ColorCyan}
		switch {
		case !playing:
		case token == 0:
			cell = core.Cell{Rune: glyphHead, Color: core.ColorBrightGreen}
		case token < snap.Length:
			cell = core.Cell{Rune: glyphBody, Color: core.ColorGreen}
		case token == snap.Length && !snap.FoodEaten:
			cell = core.Cell{Rune: glyphFood, Color: core.ColorRed}
		default:
			cell = core.Cell{Rune: glyphIcon, Color: core.ColorGray}
		}
		scr.SetCell(icon.X, icon.Y, cell)
	}
}

func formatStatus(info session.Info, snap snake.Snapshot) string {
	return fmt.Sprintf("length %d/%d  tick %d  heading %s  %dx%d grid",
		snap.Length, info.Total, snap.Tick, snap.Dir, info.Cols, info.Rows)
}

func formatResult(res session.Result) string {
	return fmt.Sprintf("length %d/%d after %d ticks (%s)",
		res.Length, res.Total, res.Ticks, res.Duration.Round(time.Second))
}

// drawOverlay draws a centered message box with a dismiss hint.
func drawOverlay(scr *core.Screen, title, detail string, color core.Color) {
	const hint = "press any key"
	lines := []string{title}
	if detail != "" {
		lines = append(lines, detail)
	}
	lines = append(lines, "", hint)

	w := 0
	for _, l := range lines {
		w = max(w, len([]rune(l)))
	}
	box := scr.Bounds().Centered(w+4, len(lines)+2)
	scr.FillRect(box, core.Cell{Rune: ' '})
	scr.DrawBox(box, color)
	for i, l := range lines {
		x := box.X + (box.W-len([]rune(l)))/2
		c := core.ColorWhite
		if i == 0 {
			c = color
		}
		if l == hint {
			c = core.ColorGray
		}
		scr.DrawText(x, box.Y+1+i, l, c)
	}
}

// helpLine renders bindings as plain "key desc" pairs.
func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
