package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the desksnake configuration and validates it.
// Search order: customPath -> ~/.desksnake/config.yaml -> ./configs/desksnake.yaml -> embedded default.
// Files only need to name the settings they change.
func Load(customPath string) (Config, error) {
	cfg := Default()

	switch {
	case customPath != "":
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
	case loadFile(userConfigPath(), &cfg):
	case loadFile(filepath.Join("configs", "desksnake.yaml"), &cfg):
	default:
		if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
			cfg = Default() // Fallback to hardcoded if embed fails
		}
	}

	if preset, ok := ParseSpeedPreset(cfg.Game.Speed); ok {
		ApplySpeedPreset(&cfg, preset)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFile decodes path into cfg, reporting false when the file is missing
// or unreadable so the next location can be tried.
func loadFile(path string, cfg *Config) bool {
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	next := *cfg
	if err := yaml.Unmarshal(data, &next); err != nil {
		return false
	}
	*cfg = next
	return true
}

// userConfigPath returns the per-user config file, or empty if home is unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".desksnake", "config.yaml")
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return data, nil
}
