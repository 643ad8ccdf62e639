// Package session runs one snake game on a Surface: it owns the geometry,
// the snake and the food for the lifetime of the game and sequences
// input, simulation, spawning and rendering once per tick.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/desksnake/internal/games/snake"
)

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeWon       Outcome = "won"
	OutcomeLost      Outcome = "lost"
	OutcomeCancelled Outcome = "cancelled"
)

// Config holds the per-session settings. The zero value is usable.
type Config struct {
	// Interval is the delay between ticks. Defaults to snake.DefaultInterval.
	Interval time.Duration
	// Capacity bounds the snake length. Defaults to snake.DefaultCapacity.
	Capacity int
	// Direction is the initial heading. The zero value is right.
	Direction snake.Direction
	// Seed drives head placement and food spawning; 0 picks one from the clock.
	Seed int64
	// Logger receives session events. Defaults to a discarding logger.
	Logger *log.Logger
	// Observer is notified of progress, e.g. a session journal. Optional.
	Observer Observer
}

// Info describes a session that is about to start its first tick.
type Info struct {
	Seed     int64
	Total    int
	Cols     int
	Rows     int
	PitchX   int
	PitchY   int
	Interval time.Duration
	Started  time.Time
}

// Result summarizes a finished session.
type Result struct {
	Outcome  Outcome
	Length   int
	Total    int
	Ticks    uint64
	Seed     int64
	Duration time.Duration
}

// Session is a single game. It is not safe for concurrent use and Run may
// only be called once.
type Session struct {
	surface Surface
	input   Sampler
	cfg     Config
	logger  *log.Logger

	geom    snake.Geometry
	snake   *snake.Snake
	food    *snake.Food
	spawner *snake.Spawner
	tick    uint64
	started time.Time
	ran     bool
}

// New creates a session drawing on surface and reading controls from input.
func New(surface Surface, input Sampler, cfg Config) *Session {
	if cfg.Interval <= 0 {
		cfg.Interval = snake.DefaultInterval
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = snake.DefaultCapacity
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if input == nil {
		input = SamplerFunc(func() snake.Controls { return 0 })
	}

	return &Session{
		surface: surface,
		input:   input,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run plays the session until the snake wins, dies, the surface is lost
// or ctx is cancelled. Cancellation is checked at tick boundaries and ends
// the session with OutcomeCancelled and a nil error.
//
// RestoreSurface is called exactly once whenever PrepareSurface was reached,
// including on errors and panics.
func (s *Session) Run(ctx context.Context) (res Result, err error) {
	if s.ran {
		return Result{}, errors.New("session: already run")
	}
	s.ran = true
	s.started = time.Now()

	total := s.surface.TotalAddressableCells()
	if total < 1 {
		return Result{}, ErrNoPlayfield
	}

	width, height := s.surface.ScreenDimensions()
	pitchX, pitchY := s.surface.CellPitch()
	geom, err := snake.NewGeometry(width, height, pitchX, pitchY)
	if err != nil {
		return Result{}, fmt.Errorf("session: %w", err)
	}
	s.geom = geom

	defer func() {
		if restoreErr := s.surface.RestoreSurface(); restoreErr != nil {
			s.logger.Error("restore surface failed", "error", restoreErr)
			err = errors.Join(err, fmt.Errorf("session: restore surface: %w", restoreErr))
		}
	}()

	if err := s.surface.PrepareSurface(); err != nil {
		return Result{}, fmt.Errorf("session: prepare surface: %w", err)
	}

	if err := s.park(total); err != nil {
		return s.finish(OutcomeLost), err
	}

	rng := rand.New(rand.NewSource(s.cfg.Seed))
	s.snake = snake.NewSnake(geom.RandomCell(rng), snake.Config{
		Capacity:  s.cfg.Capacity,
		Limit:     total,
		Direction: s.cfg.Direction,
		Interval:  s.cfg.Interval,
	})
	s.food = snake.NewFood()
	s.spawner = snake.NewSpawner(geom, rng, total)

	s.logger.Info("session started",
		"seed", s.cfg.Seed,
		"grid", fmt.Sprintf("%dx%d", geom.Cols(), geom.Rows()),
		"icons", total,
		"goal", s.spawner.Total(),
		"interval", s.cfg.Interval,
	)
	s.notify("session started", func(o Observer) error {
		return o.SessionStarted(Info{
			Seed:     s.cfg.Seed,
			Total:    s.spawner.Total(),
			Cols:     geom.Cols(),
			Rows:     geom.Rows(),
			PitchX:   pitchX,
			PitchY:   pitchY,
			Interval: s.cfg.Interval,
			Started:  s.started,
		})
	})

	won := s.spawn()
	if err := s.sync(); err != nil {
		return s.finish(OutcomeLost), err
	}
	if won {
		return s.finish(OutcomeWon), nil
	}

	for {
		if ctx.Err() != nil {
			return s.finish(OutcomeCancelled), nil
		}

		outcome, err := s.step()
		if err != nil {
			return s.finish(OutcomeLost), err
		}
		switch outcome {
		case snake.OutcomeCollided:
			return s.finish(OutcomeLost), nil
		case snake.OutcomeWon:
			return s.finish(OutcomeWon), nil
		}

		if err := sleep(ctx, s.snake.Interval()); err != nil {
			return s.finish(OutcomeCancelled), nil
		}
	}
}

// step runs one tick: sample, resolve, advance, respawn and sync.
func (s *Session) step() (snake.Outcome, error) {
	pressed := s.input.Sample()
	dir := snake.Resolve(s.snake.Direction(), pressed)

	s.tick++
	outcome := s.snake.Advance(dir, s.geom, s.food)
	if outcome == snake.OutcomeCollided {
		s.logger.Debug("collision", "tick", s.tick, "head", s.snake.Head())
		s.observeTick()
		return outcome, nil
	}

	if s.food.Eaten && s.spawn() {
		outcome = snake.OutcomeWon
	}

	if err := s.sync(); err != nil {
		return outcome, err
	}
	s.observeTick()
	return outcome, nil
}

// spawn replaces eaten food and reports whether the snake has won.
func (s *Session) spawn() bool {
	res := s.spawner.TrySpawn(s.snake, s.food)
	if res.Won {
		return true
	}
	s.logger.Debug("food spawned", "tick", s.tick, "x", res.Cell.X, "y", res.Cell.Y, "length", s.snake.Len())
	return false
}

// foodToken is the element that shows the food: the first icon the snake
// does not use yet. It becomes the new tail when the food is eaten.
func (s *Session) foodToken() int {
	return s.snake.Len()
}

// sync pushes every live segment and the food to the surface.
func (s *Session) sync() error {
	for _, seg := range s.snake.Segments() {
		if err := s.place(seg.Order, seg.X, seg.Y); err != nil {
			return err
		}
	}
	if s.food.Eaten {
		return nil
	}
	return s.place(s.foodToken(), s.food.X, s.food.Y)
}

// park moves every element off-screen before the first frame.
func (s *Session) park(total int) error {
	for token := 0; token < total; token++ {
		if err := s.place(token, ParkedX, ParkedY); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) place(token, x, y int) error {
	err := s.surface.SetElementPosition(token, x, y)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSurfaceUnavailable) {
		s.logger.Error("surface lost", "token", token, "error", err)
		return fmt.Errorf("%w: %w", ErrRenderSurfaceLost, err)
	}
	s.logger.Warn("set element position failed", "token", token, "x", x, "y", y, "error", err)
	return nil
}

func (s *Session) observeTick() {
	s.notify("tick", func(o Observer) error {
		return o.TickCompleted(snake.Capture(s.tick, s.snake, s.food))
	})
}

func (s *Session) notify(event string, fn func(Observer) error) {
	if s.cfg.Observer == nil {
		return
	}
	if err := fn(s.cfg.Observer); err != nil {
		s.logger.Warn("observer failed", "event", event, "error", err)
	}
}

func (s *Session) finish(outcome Outcome) Result {
	res := Result{
		Outcome:  outcome,
		Ticks:    s.tick,
		Seed:     s.cfg.Seed,
		Duration: time.Since(s.started),
	}
	if s.snake != nil {
		res.Length = s.snake.Len()
		res.Total = s.spawner.Total()
	}

	s.logger.Info("session ended",
		"outcome", res.Outcome,
		"length", res.Length,
		"ticks", res.Ticks,
		"duration", res.Duration.Round(time.Millisecond),
	)
	s.notify("session ended", func(o Observer) error {
		return o.SessionEnded(res)
	})
	return res
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
