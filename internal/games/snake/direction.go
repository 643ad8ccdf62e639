package snake

import (
	"fmt"
	"strings"
)

// Direction represents the snake's movement direction.
type Direction int

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

var opposites = [...]Direction{
	DirRight: DirLeft,
	DirDown:  DirUp,
	DirLeft:  DirRight,
	DirUp:    DirDown,
}

var deltas = [...][2]int{
	DirRight: {1, 0},
	DirDown:  {0, 1},
	DirLeft:  {-1, 0},
	DirUp:    {0, -1},
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return opposites[d]
}

// Delta returns the unit cell offset for one move in d.
func (d Direction) Delta() (dx, dy int) {
	v := deltas[d]
	return v[0], v[1]
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection parses "up", "down", "left" or "right".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return 0, fmt.Errorf("snake: unknown direction %q", s)
}

// Control is a physical input bound to one logical direction.
// Arrow keys and the WASD letters are synonyms.
type Control uint8

const (
	ArrowUp Control = iota
	ArrowDown
	ArrowLeft
	ArrowRight
	KeyW
	KeyA
	KeyS
	KeyD

	controlCount
)

var controlDirections = [controlCount]Direction{
	ArrowUp:    DirUp,
	ArrowDown:  DirDown,
	ArrowLeft:  DirLeft,
	ArrowRight: DirRight,
	KeyW:       DirUp,
	KeyA:       DirLeft,
	KeyS:       DirDown,
	KeyD:       DirRight,
}

var controlNames = [controlCount]string{
	ArrowUp:    "up",
	ArrowDown:  "down",
	ArrowLeft:  "left",
	ArrowRight: "right",
	KeyW:       "w",
	KeyA:       "a",
	KeyS:       "s",
	KeyD:       "d",
}

// priority is the tie-break among controls held during the same tick:
// arrows before letters, then up, down, left, right (w, a, s, d for letters).
var priority = [controlCount]Control{
	ArrowUp, ArrowDown, ArrowLeft, ArrowRight,
	KeyW, KeyA, KeyS, KeyD,
}

// Direction returns the logical direction the control is bound to.
func (c Control) Direction() Direction {
	return controlDirections[c]
}

// String returns the key name of the control.
func (c Control) String() string {
	if c >= controlCount {
		return "unknown"
	}
	return controlNames[c]
}

// ParseControl maps a key name ("up", "w", ...) to its control.
func ParseControl(name string) (Control, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range controlNames {
		if n == name {
			return Control(i), true
		}
	}
	return 0, false
}

// Controls is the set of controls held at the moment input was sampled.
type Controls uint8

// ControlsOf builds a set from individual controls.
func ControlsOf(cs ...Control) Controls {
	var set Controls
	for _, c := range cs {
		set = set.With(c)
	}
	return set
}

// With returns the set with c added.
func (s Controls) With(c Control) Controls {
	return s | 1<<c
}

// Has reports whether c is held.
func (s Controls) Has(c Control) bool {
	return s&(1<<c) != 0
}

// Empty reports whether nothing is held.
func (s Controls) Empty() bool {
	return s == 0
}

func (s Controls) String() string {
	var names []string
	for c := Control(0); c < controlCount; c++ {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}

// Resolve picks the direction to apply this tick.
// The first held control in priority order whose direction does not reverse
// current wins. Holding the current direction counts as a winner, so a lower
// priority turn is ignored in that tick. With nothing eligible, current is kept.
func Resolve(current Direction, pressed Controls) Direction {
	if pressed.Empty() {
		return current
	}
	for _, c := range priority {
		if !pressed.Has(c) {
			continue
		}
		d := c.Direction()
		if d.Opposite() != current {
			return d
		}
	}
	return current
}
