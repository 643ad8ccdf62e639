// Package snake implements the grid snake simulation: geometry, direction
// resolution, the body state machine and food spawning. It has no platform
// dependencies; surfaces receive positions through the session package.
package snake

import (
	"time"
)

// DefaultCapacity is the structural upper bound on snake length.
const DefaultCapacity = 1024

// DefaultInterval is the delay between two ticks.
const DefaultInterval = 200 * time.Millisecond

// Outcome is the result of a simulation step.
type Outcome int

const (
	OutcomeAlive Outcome = iota
	OutcomeCollided
	OutcomeWon
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlive:
		return "alive"
	case OutcomeCollided:
		return "collided"
	case OutcomeWon:
		return "won"
	default:
		return "unknown"
	}
}

// Segment is one body cell plus the identity token of the display element
// that represents it. Tokens are assigned at creation and never reused.
type Segment struct {
	Cell
	Order int
}

// Config describes a new snake.
type Config struct {
	// Capacity is the structural length bound. Defaults to DefaultCapacity.
	Capacity int
	// Limit is the number of addressable display elements. Growth never
	// exceeds it. Zero means no limit beyond Capacity.
	Limit int
	// Direction is the initial heading.
	Direction Direction
	// Interval is the tick delay. Defaults to DefaultInterval.
	Interval time.Duration
}

// Snake owns the ordered body segments. Head is index 0.
type Snake struct {
	// body is a fixed arena: len is the live length, cap the growth bound.
	body     []Segment
	alive    bool
	won      bool
	dir      Direction
	interval time.Duration
}

// NewSnake creates a length-1 snake whose head sits on start.
func NewSnake(start Cell, cfg Config) *Snake {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if cfg.Limit > 0 && cfg.Limit < capacity {
		capacity = cfg.Limit
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	body := make([]Segment, 1, capacity)
	body[0] = Segment{Cell: start, Order: 0}

	return &Snake{
		body:     body,
		alive:    true,
		dir:      cfg.Direction,
		interval: interval,
	}
}

// Advance moves the snake one cell in dir and resolves collisions and feeding.
// Every segment takes its predecessor's cell, then the head steps. On a wall
// or body hit the snake dies and OutcomeCollided is returned. When the head
// lands on uneaten food the food is marked eaten and, if there is room, a new
// tail segment appears on the cell the old tail vacated.
func (s *Snake) Advance(dir Direction, g Geometry, food *Food) Outcome {
	switch {
	case !s.alive:
		return OutcomeCollided
	case s.won:
		return OutcomeWon
	}

	s.dir = dir
	last := len(s.body) - 1
	tail := s.body[last].Cell

	for i := last; i > 0; i-- {
		s.body[i].Cell = s.body[i-1].Cell
	}

	head := g.Step(s.body[0].Cell, dir)
	s.body[0].Cell = head

	if !g.InBounds(head) {
		s.alive = false
		return OutcomeCollided
	}

	for _, seg := range s.body[1:] {
		if seg.Cell == head {
			s.alive = false
			return OutcomeCollided
		}
	}

	if food != nil && !food.Eaten && food.Cell == head {
		s.grow(tail)
		food.Eaten = true
	}

	return OutcomeAlive
}

// grow appends a tail segment on c if the arena has room.
func (s *Snake) grow(c Cell) {
	n := len(s.body)
	if n == cap(s.body) {
		return
	}
	s.body = s.body[:n+1]
	s.body[n] = Segment{Cell: c, Order: n}
}

// Occupies reports whether any live segment sits on c.
func (s *Snake) Occupies(c Cell) bool {
	for _, seg := range s.body {
		if seg.Cell == c {
			return true
		}
	}
	return false
}

// Segments returns the live body, head first. The slice aliases the
// snake's storage and must not be modified.
func (s *Snake) Segments() []Segment {
	return s.body
}

// Head returns the head cell.
func (s *Snake) Head() Cell {
	return s.body[0].Cell
}

// Len returns the number of live segments.
func (s *Snake) Len() int {
	return len(s.body)
}

// MaxLen returns the largest length the snake can reach.
func (s *Snake) MaxLen() int {
	return cap(s.body)
}

// Alive reports whether the snake has not collided.
func (s *Snake) Alive() bool { return s.alive }

// Won reports whether the snake has filled every addressable cell.
func (s *Snake) Won() bool { return s.won }

// Direction returns the heading applied on the last advance.
func (s *Snake) Direction() Direction { return s.dir }

// Interval returns the tick delay chosen at creation.
func (s *Snake) Interval() time.Duration { return s.interval }
