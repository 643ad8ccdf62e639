package config

import (
	_ "embed"
)

//go:embed defaults/desksnake.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Game: GameConfig{
			TickMS:    200,
			Capacity:  1024,
			Direction: "right",
			Speed:     string(SpeedNormal),
		},
		Desktop: DesktopConfig{
			Icons:  48,
			PitchX: 4,
			PitchY: 2,
			FPS:    30,
		},
		Input: InputConfig{
			HoldMS: 120,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
