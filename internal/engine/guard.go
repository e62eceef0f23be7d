// Package engine implements the typing logic: matching, progress, and the input guard.
package engine

import (
	"strings"
	"time"
)

// GuardState is the lock state of the behavioral guard.
type GuardState int

const (
	StateNormal  GuardState = iota // Input accepted
	StateDimming                   // Tripped by a streak or sweep
	StateBug                       // Escalated by the controller
	StateRestore                   // Recovery in progress
)

func (s GuardState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateDimming:
		return "dimming"
	case StateBug:
		return "bug"
	case StateRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// Cause records which detector tripped the guard.
type Cause uint8

const (
	CauseStreak Cause = 1 << iota
	CauseSweep
)

// CauseNone means the guard has not been tripped.
const CauseNone Cause = 0

// Has reports whether c includes flag.
func (c Cause) Has(flag Cause) bool {
	return c&flag != 0
}

func (c Cause) String() string {
	if c == CauseNone {
		return "none"
	}
	parts := make([]string, 0, 2)
	if c.Has(CauseStreak) {
		parts = append(parts, "streak")
	}
	if c.Has(CauseSweep) {
		parts = append(parts, "sweep")
	}
	return strings.Join(parts, "+")
}

// GuardConfig tunes the anomaly detectors.
type GuardConfig struct {
	// SweepRequired is the number of wrong keystrokes inside SweepWindow that trips the guard.
	SweepRequired int
	SweepWindow   time.Duration

	// WrongStreakLimit is the number of consecutive wrong keystrokes that trips the guard.
	// Consecutive means each within StreakWindow of the previous wrong one.
	WrongStreakLimit int
	StreakWindow     time.Duration
}

// Defaults for GuardConfig.
const (
	DefaultSweepRequired    = 8
	DefaultSweepWindow      = 700 * time.Millisecond
	DefaultWrongStreakLimit = 3
	DefaultStreakWindow     = time.Second
)

// DefaultGuardConfig returns the canonical thresholds.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		SweepRequired:    DefaultSweepRequired,
		SweepWindow:      DefaultSweepWindow,
		WrongStreakLimit: DefaultWrongStreakLimit,
		StreakWindow:     DefaultStreakWindow,
	}
}

// Validate reports the first non-positive threshold.
func (c GuardConfig) Validate() error {
	switch {
	case c.SweepRequired <= 0:
		return invalidArgf("sweep required must be > 0, got %d", c.SweepRequired)
	case c.SweepWindow <= 0:
		return invalidArgf("sweep window must be > 0, got %s", c.SweepWindow)
	case c.WrongStreakLimit <= 0:
		return invalidArgf("wrong streak limit must be > 0, got %d", c.WrongStreakLimit)
	case c.StreakWindow <= 0:
		return invalidArgf("streak window must be > 0, got %s", c.StreakWindow)
	}
	return nil
}

// retention is how far back any detector looks.
func (c GuardConfig) retention() time.Duration {
	if c.SweepWindow > c.StreakWindow {
		return c.SweepWindow
	}
	return c.StreakWindow
}

type guard struct {
	cfg   GuardConfig
	state GuardState
	cause Cause

	streak    int
	lastWrong time.Time
	history   history
}

func newGuard(cfg GuardConfig) guard {
	return guard{cfg: cfg}
}

// observe records a keystroke and, for a wrong one, runs both detectors.
func (g *guard) observe(r rune, now time.Time, correct bool) {
	g.history.push(Keystroke{Char: r, At: now, Correct: correct})
	g.history.evictBefore(now.Add(-g.cfg.retention()))

	if correct {
		g.streak = 0
		return
	}

	if !g.lastWrong.IsZero() && now.Sub(g.lastWrong) <= g.cfg.StreakWindow {
		g.streak++
	} else {
		g.streak = 1
	}
	g.lastWrong = now

	var tripped Cause
	if g.streak >= g.cfg.WrongStreakLimit {
		tripped |= CauseStreak
	}
	if g.history.wrongSince(now.Add(-g.cfg.SweepWindow)) >= g.cfg.SweepRequired {
		tripped |= CauseSweep
	}
	if tripped != CauseNone {
		g.enterErrorState(tripped)
	}
}

// enterErrorState is a no-op unless the guard is NORMAL.
func (g *guard) enterErrorState(cause Cause) {
	if g.state != StateNormal {
		return
	}
	g.state = StateDimming
	g.cause = cause
}

func (g *guard) escalate() bool {
	if g.state != StateDimming {
		return false
	}
	g.state = StateBug
	return true
}

func (g *guard) beginRestore() bool {
	if g.state != StateDimming && g.state != StateBug {
		return false
	}
	g.state = StateRestore
	return true
}

func (g *guard) reset() {
	g.state = StateNormal
	g.cause = CauseNone
	g.streak = 0
	g.lastWrong = time.Time{}
	g.history.clear()
}
