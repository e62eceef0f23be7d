// Package exercise runs a multi-sentence typing session on top of the engine.
package exercise

import (
	"log/slog"

	"github.com/verte-zerg/klava/internal/engine"
	"github.com/verte-zerg/klava/internal/model"
)

// Defaults for Config.
const (
	DefaultMinLines      = 2
	DefaultEscalateAfter = 3
	DefaultCorrectPoints = 1
	DefaultWrongPenalty  = 3
)

// Scoring assigns points to keystroke outcomes.
type Scoring struct {
	Correct int
	Wrong   int
}

// Config controls an Exercise.
type Config struct {
	Guard engine.GuardConfig
	// EscalateAfter is the lock count within one sentence at which that lock escalates to BUG. Zero disables escalation.
	EscalateAfter int
	MinLines      int
	Scoring       Scoring
	SentencesPath string
	RunID         string

	// OnGuard is called for every guard state change.
	OnGuard func(model.GuardEvent)
	Logger  *slog.Logger
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		Guard:         engine.DefaultGuardConfig(),
		EscalateAfter: DefaultEscalateAfter,
		MinLines:      DefaultMinLines,
		Scoring:       Scoring{Correct: DefaultCorrectPoints, Wrong: DefaultWrongPenalty},
	}
}

// ConfigFrom maps practice settings onto an exercise config.
func ConfigFrom(cfg model.Config) Config {
	out := DefaultConfig()
	out.Guard = engine.GuardConfig{
		SweepRequired:    cfg.Guard.SweepRequired,
		SweepWindow:      cfg.Guard.SweepWindow,
		WrongStreakLimit: cfg.Guard.WrongStreakLimit,
		StreakWindow:     cfg.Guard.StreakWindow,
	}
	out.EscalateAfter = cfg.Guard.EscalateAfter
	out.MinLines = cfg.MinLines
	out.Scoring = Scoring{Correct: cfg.Scoring.Correct, Wrong: cfg.Scoring.Wrong}
	out.SentencesPath = cfg.SentencesPath
	return out
}
