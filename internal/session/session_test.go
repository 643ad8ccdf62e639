package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/desksnake/internal/games/snake"
)

type fakeSurface struct {
	total          int
	width, height  int
	pitchX, pitchY int

	positions  map[int]snake.Cell
	calls      int
	prepared   int
	restored   int
	prepareErr error

	// failToken makes every move of that token fail with a transient error.
	failToken int
	// lostAfter makes every call after the given count fail systemically.
	lostAfter int
}

func newFakeSurface(cols, rows, total int) *fakeSurface {
	return &fakeSurface{
		total:     total,
		width:     cols * 10,
		height:    rows * 10,
		pitchX:    10,
		pitchY:    10,
		positions: make(map[int]snake.Cell),
		failToken: -1,
	}
}

func (f *fakeSurface) TotalAddressableCells() int { return f.total }
func (f *fakeSurface) ScreenDimensions() (int, int) { return f.width, f.height }
func (f *fakeSurface) CellPitch() (int, int) { return f.pitchX, f.pitchY }

func (f *fakeSurface) SetElementPosition(token, x, y int) error {
	f.calls++
	if f.lostAfter > 0 && f.calls > f.lostAfter {
		return errors.Join(ErrSurfaceUnavailable, errors.New("list view destroyed"))
	}
	if token == f.failToken {
		return errors.New("item busy")
	}
	f.positions[token] = snake.Cell{X: x, Y: y}
	return nil
}

func (f *fakeSurface) PrepareSurface() error {
	f.prepared++
	return f.prepareErr
}

func (f *fakeSurface) RestoreSurface() error {
	f.restored++
	return nil
}

type recordingObserver struct {
	started []Info
	ticks   []snake.Snapshot
	ended   []Result
	onTick  func(snake.Snapshot)
}

func (o *recordingObserver) SessionStarted(info Info) error {
	o.started = append(o.started, info)
	return nil
}

func (o *recordingObserver) TickCompleted(snap snake.Snapshot) error {
	o.ticks = append(o.ticks, snap)
	if o.onTick != nil {
		o.onTick(snap)
	}
	return nil
}

func (o *recordingObserver) SessionEnded(res Result) error {
	o.ended = append(o.ended, res)
	return nil
}

func idle() Sampler {
	return SamplerFunc(func() snake.Controls { return 0 })
}

// seedWhere finds a seed whose starting head satisfies ok. The session
// draws the head as the first sample of its rng.
func seedWhere(t *testing.T, s *fakeSurface, ok func(snake.Cell) bool) int64 {
	t.Helper()
	g, err := snake.NewGeometry(s.width, s.height, s.pitchX, s.pitchY)
	if err != nil {
		t.Fatalf("NewGeometry() failed: %v", err)
	}
	for seed := int64(1); seed < 10000; seed++ {
		if ok(g.RandomCell(rand.New(rand.NewSource(seed)))) {
			return seed
		}
	}
	t.Fatal("No seed found")
	return 0
}

func TestNoPlayfield(t *testing.T) {
	surface := newFakeSurface(4, 4, 0)

	_, err := New(surface, idle(), Config{}).Run(context.Background())
	if !errors.Is(err, ErrNoPlayfield) {
		t.Fatalf("Expected ErrNoPlayfield, got %v", err)
	}
	if surface.prepared != 0 || surface.restored != 0 {
		t.Errorf("Surface should be untouched, prepared=%d restored=%d", surface.prepared, surface.restored)
	}
}

func TestInvalidGeometry(t *testing.T) {
	surface := newFakeSurface(4, 4, 10)
	surface.pitchX = 0

	_, err := New(surface, idle(), Config{}).Run(context.Background())
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("Expected ErrInvalidGeometry, got %v", err)
	}
	if surface.prepared != 0 {
		t.Error("Surface should not be prepared for an invalid geometry")
	}
}

func TestImmediateWin(t *testing.T) {
	surface := newFakeSurface(4, 4, 1)
	obs := &recordingObserver{}

	res, err := New(surface, idle(), Config{Seed: 9, Observer: obs}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Outcome != OutcomeWon {
		t.Fatalf("Expected won, got %s", res.Outcome)
	}
	if res.Ticks != 0 || res.Length != 1 {
		t.Errorf("Expected win before the first tick at length 1, got ticks=%d length=%d", res.Ticks, res.Length)
	}
	if surface.restored != 1 {
		t.Errorf("Expected one restore, got %d", surface.restored)
	}
	if len(obs.ended) != 1 || obs.ended[0].Outcome != OutcomeWon {
		t.Errorf("Expected exactly one won report, got %+v", obs.ended)
	}
	if p := surface.positions[0]; p.X < 0 || p.Y < 0 {
		t.Errorf("Head should be on screen, got %v", p)
	}
}

func TestWallCollisionEndsSession(t *testing.T) {
	tests := []struct {
		name       string
		cols, rows int
		dir        snake.Direction
	}{
		{"single row heading up", 4, 1, snake.DirUp},
		{"single column heading left", 1, 4, snake.DirLeft},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			surface := newFakeSurface(tc.cols, tc.rows, 50)
			cfg := Config{Direction: tc.dir, Interval: time.Microsecond, Seed: 3}

			res, err := New(surface, idle(), cfg).Run(context.Background())
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			if res.Outcome != OutcomeLost {
				t.Fatalf("Expected lost, got %s", res.Outcome)
			}
			if res.Ticks != 1 {
				t.Errorf("Expected collision on tick 1, got %d", res.Ticks)
			}
			if surface.restored != 1 {
				t.Errorf("Expected one restore, got %d", surface.restored)
			}
		})
	}
}

func TestCancelledBeforeFirstTick(t *testing.T) {
	surface := newFakeSurface(10, 10, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(surface, idle(), Config{Seed: 1}).Run(ctx)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Outcome != OutcomeCancelled || res.Ticks != 0 {
		t.Errorf("Expected cancelled at tick 0, got %s at %d", res.Outcome, res.Ticks)
	}
	if surface.restored != 1 {
		t.Errorf("Expected one restore, got %d", surface.restored)
	}
}

func TestCancelInterruptsDelay(t *testing.T) {
	surface := newFakeSurface(20, 20, 40)
	seed := seedWhere(t, surface, func(c snake.Cell) bool { return c.X < 190 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	input := SamplerFunc(func() snake.Controls {
		cancel()
		return 0
	})

	start := time.Now()
	res, err := New(surface, input, Config{Seed: seed, Interval: time.Hour}).Run(ctx)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Outcome != OutcomeCancelled {
		t.Fatalf("Expected cancelled, got %s", res.Outcome)
	}
	if res.Ticks != 1 {
		t.Errorf("Expected the tick in flight to complete, got %d ticks", res.Ticks)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Cancellation should interrupt the tick delay")
	}
	if surface.restored != 1 {
		t.Errorf("Expected one restore, got %d", surface.restored)
	}
}

func TestTransientErrorsAreSkipped(t *testing.T) {
	surface := newFakeSurface(4, 1, 10)
	surface.failToken = 0

	res, err := New(surface, idle(), Config{Direction: snake.DirUp, Seed: 2}).Run(context.Background())
	if err != nil {
		t.Fatalf("Transient errors should not fail the session: %v", err)
	}
	if res.Outcome != OutcomeLost {
		t.Errorf("Expected lost, got %s", res.Outcome)
	}
	if _, ok := surface.positions[0]; ok {
		t.Error("Token 0 should never have been placed")
	}
}

func TestSurfaceLost(t *testing.T) {
	surface := newFakeSurface(10, 10, 20)
	// Parking uses 20 calls; fail while drawing the first frame.
	surface.lostAfter = 21

	res, err := New(surface, idle(), Config{Seed: 4}).Run(context.Background())
	if !errors.Is(err, ErrRenderSurfaceLost) {
		t.Fatalf("Expected ErrRenderSurfaceLost, got %v", err)
	}
	if res.Outcome != OutcomeLost {
		t.Errorf("Expected lost, got %s", res.Outcome)
	}
	if surface.restored != 1 {
		t.Errorf("Expected one restore, got %d", surface.restored)
	}
}

func TestPrepareFailureStillRestores(t *testing.T) {
	surface := newFakeSurface(4, 4, 4)
	surface.prepareErr = errors.New("access denied")

	_, err := New(surface, idle(), Config{}).Run(context.Background())
	if err == nil {
		t.Fatal("Expected prepare error")
	}
	if surface.restored != 1 {
		t.Errorf("Expected one restore, got %d", surface.restored)
	}
}

func TestRestoreOnPanic(t *testing.T) {
	surface := newFakeSurface(10, 10, 20)
	input := SamplerFunc(func() snake.Controls { panic("keyboard unplugged") })

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Expected panic to propagate")
			}
		}()
		//nolint:errcheck // panics
		New(surface, input, Config{Seed: 1}).Run(context.Background())
	}()

	if surface.restored != 1 {
		t.Errorf("Expected one restore, got %d", surface.restored)
	}
}

func TestRunOnlyOnce(t *testing.T) {
	surface := newFakeSurface(4, 4, 1)
	s := New(surface, idle(), Config{})
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if _, err := s.Run(context.Background()); err == nil {
		t.Error("Expected error on second Run")
	}
}

func TestSurfaceInvariantsDuringPlay(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		surface := newFakeSurface(3, 3, 9)
		rng := rand.New(rand.NewSource(seed * 31))
		input := SamplerFunc(func() snake.Controls {
			return snake.ControlsOf(snake.Control(rng.Intn(8)))
		})

		prevLen := 1
		obs := &recordingObserver{}
		obs.onTick = func(snap snake.Snapshot) {
			if snap.State == snake.StateLost {
				return
			}
			if snap.Length < prevLen {
				t.Fatalf("seed %d: length decreased from %d to %d", seed, prevLen, snap.Length)
			}
			prevLen = snap.Length

			seen := make(map[snake.Cell]bool)
			for token, n := 0, snap.Length; token < n; token++ {
				p := surface.positions[token]
				if seen[p] {
					t.Fatalf("seed %d tick %d: two segments at %v", seed, snap.Tick, p)
				}
				seen[p] = true
			}
			if !snap.FoodEaten && seen[surface.positions[snap.Length]] {
				t.Fatalf("seed %d tick %d: food overlaps the snake", seed, snap.Tick)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		res, err := New(surface, input, Config{Seed: seed, Interval: time.Microsecond, Observer: obs}).Run(ctx)
		cancel()
		if err != nil {
			t.Fatalf("seed %d: Run() failed: %v", seed, err)
		}
		if len(obs.ended) != 1 {
			t.Fatalf("seed %d: expected one end report, got %d", seed, len(obs.ended))
		}
		if res.Outcome == OutcomeWon && res.Length != 9 {
			t.Errorf("seed %d: won at length %d", seed, res.Length)
		}
		for token := res.Length + 1; token < 9; token++ {
			if surface.positions[token] != (snake.Cell{X: ParkedX, Y: ParkedY}) {
				t.Errorf("seed %d: unused token %d not parked", seed, token)
			}
		}
	}
}

type failingObserver struct {
	recordingObserver
}

func (o *failingObserver) TickCompleted(snap snake.Snapshot) error {
	o.recordingObserver.TickCompleted(snap)
	return errors.New("disk full")
}

func TestObserversFanOut(t *testing.T) {
	first := &failingObserver{}
	second := &recordingObserver{}
	obs := Observers{first, nil, second}

	if err := obs.SessionStarted(Info{Seed: 1}); err != nil {
		t.Errorf("Expected no error from SessionStarted, got %v", err)
	}
	if err := obs.TickCompleted(snake.Snapshot{Tick: 1}); err == nil {
		t.Error("Expected the failing observer's error")
	}
	if err := obs.SessionEnded(Result{Outcome: OutcomeLost}); err != nil {
		t.Errorf("Expected no error from SessionEnded, got %v", err)
	}

	if len(second.ticks) != 1 {
		t.Errorf("Expected later observers to run after a failure, got %d ticks", len(second.ticks))
	}
	if len(first.started) != 1 || len(second.ended) != 1 {
		t.Error("Expected every observer to see every event")
	}
}

func TestObserverErrorsDoNotStopSession(t *testing.T) {
	surface := newFakeSurface(4, 1, 4)
	obs := &failingObserver{}

	res, err := New(surface, idle(), Config{Seed: 3, Interval: time.Microsecond, Observer: obs}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Outcome == OutcomeCancelled {
		t.Errorf("Expected the session to play to its end, got %s", res.Outcome)
	}
	if uint64(len(obs.ticks)) != res.Ticks {
		t.Errorf("Expected %d observed ticks, got %d", res.Ticks, len(obs.ticks))
	}
}
