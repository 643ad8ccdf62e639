package headless

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/desksnake/internal/core"
	"github.com/vovakirdan/desksnake/internal/games/snake"
	"github.com/vovakirdan/desksnake/internal/session"
)

func TestSurfacePlacement(t *testing.T) {
	s := New(Options{Width: 40, Height: 30, PitchX: 10, PitchY: 10, Icons: 3})

	if s.TotalAddressableCells() != 3 {
		t.Errorf("Expected 3 icons, got %d", s.TotalAddressableCells())
	}
	if err := s.SetElementPosition(1, 20, 10); err != nil {
		t.Fatalf("SetElementPosition failed: %v", err)
	}
	if p := s.Position(1); p != (Position{X: 20, Y: 10, Placed: true}) {
		t.Errorf("Expected (20,10) placed, got %+v", p)
	}
	if p := s.Position(0); p.Placed {
		t.Error("Expected untouched icon to be unplaced")
	}

	err := s.SetElementPosition(3, 0, 0)
	if err == nil {
		t.Fatal("Expected out-of-range token to fail")
	}
	if errors.Is(err, session.ErrSurfaceUnavailable) {
		t.Error("Expected out-of-range token to be a transient error")
	}
	if s.Calls() != 2 {
		t.Errorf("Expected 2 calls, got %d", s.Calls())
	}
}

func TestSurfaceFaults(t *testing.T) {
	s := New(Options{Width: 40, Height: 30, PitchX: 10, PitchY: 10, Icons: 3})
	boom := errors.New("boom")
	s.FailToken(2, boom)

	if err := s.SetElementPosition(2, 0, 0); !errors.Is(err, boom) {
		t.Errorf("Expected injected error, got %v", err)
	}

	s.LoseAfter(1)
	if err := s.SetElementPosition(0, 0, 0); !errors.Is(err, session.ErrSurfaceUnavailable) {
		t.Errorf("Expected surface to be lost after 1 call, got %v", err)
	}

	c := New(Options{Icons: 1})
	c.Close()
	if err := c.SetElementPosition(0, 0, 0); !errors.Is(err, session.ErrSurfaceUnavailable) {
		t.Errorf("Expected closed surface to be unavailable, got %v", err)
	}
}

func TestScript(t *testing.T) {
	script, err := ParseScript([]byte(`
steps:
  - tick: 2
    keys: [up]
  - tick: 4
    keys: [left, w]
    hold: 2
`))
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}

	want := []snake.Controls{
		0,
		snake.ControlsOf(snake.ArrowUp),
		0,
		snake.ControlsOf(snake.ArrowLeft, snake.KeyW),
		snake.ControlsOf(snake.ArrowLeft, snake.KeyW),
		0,
	}
	if script.Len() != 5 {
		t.Errorf("Expected last scripted tick 5, got %d", script.Len())
	}
	for i, w := range want {
		if got := script.Sample(); got != w {
			t.Errorf("Tick %d: expected %v, got %v", i+1, w, got)
		}
	}
	if !script.Done() {
		t.Error("Expected script to be done")
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "steps: [\n"},
		{"unknown key", "steps:\n  - tick: 1\n    keys: [jump]\n"},
		{"tick zero", "steps:\n  - tick: 0\n    keys: [up]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScript([]byte(tt.yaml)); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func boardRow(scr *core.Screen, y int) string {
	return string([]rune(scr.Row(y))[:6])
}

func TestRender(t *testing.T) {
	s := New(Options{Width: 40, Height: 20, PitchX: 10, PitchY: 10, Icons: 4})
	s.SetElementPosition(0, 20, 0)
	s.SetElementPosition(1, 10, 0)
	s.SetElementPosition(2, 0, 10)
	s.SetElementPosition(3, session.ParkedX, session.ParkedY)

	w, h := s.BoardSize()
	if w != 6 || h != 5 {
		t.Fatalf("Expected 6x5 board, got %dx%d", w, h)
	}
	scr := core.NewScreen(max(w, 40), h)
	Render(scr, s, snake.Snapshot{Tick: 5, Length: 2, Dir: snake.DirRight, State: snake.StateRunning})

	if got := boardRow(scr, 1); got != "│.o@.│" {
		t.Errorf("Expected row 1 %q, got %q", "│.o@.│", got)
	}
	if got := boardRow(scr, 2); got != "│*...│" {
		t.Errorf("Expected row 2 %q, got %q", "│*...│", got)
	}
	if !strings.HasPrefix(scr.Row(4), "tick 5  length 2  right  running") {
		t.Errorf("Unexpected status line %q", scr.Row(4))
	}
	if c := scr.GetCell(3, 1); c.Color != core.ColorBrightGreen {
		t.Errorf("Expected head to be bright green, got %v", c.Color)
	}

	Render(scr, s, snake.Snapshot{Length: 2, FoodEaten: true})
	if got := boardRow(scr, 2); got != "│....│" {
		t.Errorf("Expected eaten food to be hidden, got %q", got)
	}
}

func TestScriptedSession(t *testing.T) {
	// Pressing s on the first tick turns the snake down; it then runs into
	// the bottom wall.
	surface := New(Options{Width: 30, Height: 30, PitchX: 10, PitchY: 10, Icons: 9})
	script, err := NewScript([]Step{{Tick: 1, Keys: []string{"s"}}})
	if err != nil {
		t.Fatalf("NewScript failed: %v", err)
	}

	res, err := session.New(surface, script, session.Config{Seed: 11, Interval: time.Microsecond}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Outcome == session.OutcomeCancelled {
		t.Errorf("Expected the session to end on its own, got %s", res.Outcome)
	}
	if surface.Prepared() != 1 || surface.Restored() != 1 {
		t.Errorf("Expected one prepare and one restore, got %d/%d", surface.Prepared(), surface.Restored())
	}
	if !script.Done() {
		t.Error("Expected the script to have been replayed")
	}
	for token := res.Length + 1; token < 9; token++ {
		if p := surface.Position(token); p.X != session.ParkedX || p.Y != session.ParkedY {
			t.Errorf("Expected unused token %d to stay parked, got %+v", token, p)
		}
	}
}

func TestTrackerWinBeforeFirstTick(t *testing.T) {
	surface := New(Options{Width: 30, Height: 20, PitchX: 10, PitchY: 10, Icons: 1})
	tracker := NewTracker(snake.DirDown)

	res, err := session.New(surface, nil, session.Config{
		Seed:      3,
		Direction: snake.DirDown,
		Interval:  time.Microsecond,
		Observer:  tracker,
	}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Outcome != session.OutcomeWon || res.Ticks != 0 {
		t.Fatalf("Expected a win with no ticks, got %s after %d", res.Outcome, res.Ticks)
	}

	snap := tracker.Last()
	if snap.Length != 1 || snap.State != snake.StateWon || snap.Dir != snake.DirDown {
		t.Errorf("Expected length 1 won heading down, got %+v", snap)
	}

	w, h := surface.BoardSize()
	scr := core.NewScreen(max(w, 40), h)
	Render(scr, surface, snap)
	if !strings.ContainsRune(scr.Row(1)+scr.Row(2), GlyphHead) {
		t.Errorf("Expected the head on the board, got %q / %q", scr.Row(1), scr.Row(2))
	}
	if !strings.HasPrefix(scr.Row(4), "tick 0  length 1  down  won") {
		t.Errorf("Unexpected status line %q", scr.Row(4))
	}
}

func TestTrackerKeepsLastTick(t *testing.T) {
	tracker := NewTracker(snake.DirRight)
	tracker.TickCompleted(snake.Snapshot{Tick: 4, Length: 3, State: snake.StateLost})
	tracker.SessionEnded(session.Result{Outcome: session.OutcomeLost, Length: 3, Ticks: 4})

	if snap := tracker.Last(); snap.Tick != 4 || snap.State != snake.StateLost {
		t.Errorf("Expected the tick 4 snapshot to be kept, got %+v", snap)
	}
}
