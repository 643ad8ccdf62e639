package config

import "strings"

// SpeedPreset is a named tick rate.
type SpeedPreset string

const (
	SpeedSlow   SpeedPreset = "slow"
	SpeedNormal SpeedPreset = "normal"
	SpeedFast   SpeedPreset = "fast"
	SpeedFixed  SpeedPreset = "fixed" // keeps game.tick_ms
)

// ParseSpeedPreset parses a preset name.
func ParseSpeedPreset(s string) (SpeedPreset, bool) {
	switch p := SpeedPreset(strings.ToLower(strings.TrimSpace(s))); p {
	case SpeedSlow, SpeedNormal, SpeedFast, SpeedFixed:
		return p, true
	}
	return "", false
}

// TickMSForPreset returns the tick delay of a preset in milliseconds.
func TickMSForPreset(preset SpeedPreset) int {
	switch preset {
	case SpeedSlow:
		return 300
	case SpeedFast:
		return 120
	default:
		return 200
	}
}

// ApplySpeedPreset overrides the tick delay with a preset.
// SpeedFixed and the empty preset leave game.tick_ms alone.
func ApplySpeedPreset(cfg *Config, preset SpeedPreset) {
	if preset == "" {
		return
	}
	cfg.Game.Speed = string(preset)
	if preset == SpeedFixed {
		return
	}
	cfg.Game.TickMS = TickMSForPreset(preset)
}
