// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Guard    GuardConfig    `toml:"guard"`
	Scoring  ScoringConfig  `toml:"scoring"`
	Keyboard KeyboardConfig `toml:"keyboard"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Sentences  *string  `toml:"sentences"`
	Count      *int     `toml:"count"`
	MinLines   *int     `toml:"min-lines"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// GuardConfig maps input guard thresholds. Windows are in seconds.
type GuardConfig struct {
	SweepRequired    *int     `toml:"sweep-required"`
	SweepWindow      *float64 `toml:"sweep-window"`
	WrongStreakLimit *int     `toml:"wrong-streak-limit"`
	StreakWindow     *float64 `toml:"streak-window"`
	EscalateAfter    *int     `toml:"escalate-after"`
}

// ScoringConfig maps points per keystroke outcome.
type ScoringConfig struct {
	Correct *int `toml:"correct"`
	Wrong   *int `toml:"wrong"`
}

// KeyboardConfig maps on-screen keyboard settings.
type KeyboardConfig struct {
	Model *string `toml:"model"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
