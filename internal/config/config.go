// Package config provides YAML-based configuration loading and speed
// presets for desksnake.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/desksnake/internal/games/snake"
)

// Config is the complete desksnake configuration.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Desktop DesktopConfig `yaml:"desktop"`
	Input   InputConfig   `yaml:"input"`
}

// GameConfig controls the simulation.
type GameConfig struct {
	TickMS    int    `yaml:"tick_ms"`
	Capacity  int    `yaml:"capacity"`
	Direction string `yaml:"direction"`
	Speed     string `yaml:"speed"`
}

// DesktopConfig describes the virtual icon desktop.
type DesktopConfig struct {
	Icons  int `yaml:"icons"`
	PitchX int `yaml:"pitch_x"`
	PitchY int `yaml:"pitch_y"`
	Width  int `yaml:"width"`  // 0 = terminal width
	Height int `yaml:"height"` // 0 = terminal height
	FPS    int `yaml:"fps"`
}

// InputConfig controls keyboard sampling.
type InputConfig struct {
	HoldMS int `yaml:"hold_ms"`
}

// TickInterval returns the delay between ticks.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Game.TickMS) * time.Millisecond
}

// HoldDuration returns how long a key press counts as held.
func (c Config) HoldDuration() time.Duration {
	return time.Duration(c.Input.HoldMS) * time.Millisecond
}

// StartDirection returns the configured initial heading.
func (c Config) StartDirection() (snake.Direction, error) {
	if c.Game.Direction == "" {
		return snake.DirRight, nil
	}
	return snake.ParseDirection(c.Game.Direction)
}

// Validate reports every setting that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if c.Game.TickMS <= 0 {
		errs = append(errs, fmt.Errorf("game.tick_ms must be positive, got %d", c.Game.TickMS))
	}
	if c.Game.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("game.capacity must be positive, got %d", c.Game.Capacity))
	}
	if _, err := c.StartDirection(); err != nil {
		errs = append(errs, fmt.Errorf("game.direction: %w", err))
	}
	if c.Game.Speed != "" {
		if _, ok := ParseSpeedPreset(c.Game.Speed); !ok {
			errs = append(errs, fmt.Errorf("game.speed: unknown preset %q", c.Game.Speed))
		}
	}
	if c.Desktop.Icons <= 0 {
		errs = append(errs, fmt.Errorf("desktop.icons must be positive, got %d", c.Desktop.Icons))
	}
	if c.Desktop.Width < 0 || c.Desktop.Height < 0 {
		errs = append(errs, fmt.Errorf("desktop size must not be negative, got %dx%d", c.Desktop.Width, c.Desktop.Height))
	}
	if c.Desktop.FPS <= 0 {
		errs = append(errs, fmt.Errorf("desktop.fps must be positive, got %d", c.Desktop.FPS))
	}
	if c.Input.HoldMS < 0 {
		errs = append(errs, fmt.Errorf("input.hold_ms must not be negative, got %d", c.Input.HoldMS))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
