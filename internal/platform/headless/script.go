package headless

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/desksnake/internal/games/snake"
	"github.com/vovakirdan/desksnake/internal/session"
)

// Step holds keys down during a run of ticks.
type Step struct {
	Tick int      `yaml:"tick"` // first tick, counting from 1
	Keys []string `yaml:"keys"` // control names: up, down, left, right, w, a, s, d
	Hold int      `yaml:"hold"` // number of ticks; 0 means 1
}

// Script replays key presses by tick number. Each Sample call is one tick.
type Script struct {
	mu    sync.Mutex
	held  map[int]snake.Controls
	last  int
	ticks int
}

var _ session.Sampler = (*Script)(nil)

type scriptFile struct {
	Steps []Step `yaml:"steps"`
}

// LoadScript reads a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("headless: failed to read script %s: %w", path, err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML script:
//
//	steps:
//	  - tick: 3
//	    keys: [up]
//	  - tick: 6
//	    keys: [left, w]
//	    hold: 2
func ParseScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("headless: failed to parse script: %w", err)
	}
	return NewScript(f.Steps)
}

// NewScript builds a script from steps.
func NewScript(steps []Step) (*Script, error) {
	s := &Script{held: make(map[int]snake.Controls)}
	for i, st := range steps {
		if st.Tick < 1 {
			return nil, fmt.Errorf("headless: step %d: tick must be at least 1, got %d", i, st.Tick)
		}
		var pressed snake.Controls
		for _, name := range st.Keys {
			c, ok := snake.ParseControl(name)
			if !ok {
				return nil, fmt.Errorf("headless: step %d: unknown key %q", i, name)
			}
			pressed = pressed.With(c)
		}
		hold := max(st.Hold, 1)
		for t := st.Tick; t < st.Tick+hold; t++ {
			s.held[t] |= pressed
		}
		s.last = max(s.last, st.Tick+hold-1)
	}
	return s, nil
}

// Sample implements session.Sampler.
func (s *Script) Sample() snake.Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	return s.held[s.ticks]
}

// Done reports whether every scripted press has been replayed.
func (s *Script) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks >= s.last
}

// Len returns the last tick the script presses a key on.
func (s *Script) Len() int {
	return s.last
}
