// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	SentencesPath string
	Count         int
	MinLines      int
	FocusWeak     bool
	WeakTop       int
	WeakFactor    float64
	WeakWindow    int
	KeyboardModel string
	Guard         GuardSettings
	Scoring       ScoringSettings
}

// GuardSettings holds the input guard thresholds.
type GuardSettings struct {
	SweepRequired    int
	SweepWindow      time.Duration
	WrongStreakLimit int
	StreakWindow     time.Duration
	// EscalateAfter is the number of locks within one sentence after which a lock escalates.
	EscalateAfter int
}

// ScoringSettings holds points per keystroke outcome.
type ScoringSettings struct {
	Correct int
	Wrong   int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
	Top         int
}

// SessionStats captures one completed sentence.
type SessionStats struct {
	RunID         string
	StartedAt     time.Time
	EndedAt       time.Time
	SentenceIndex int
	Sentence      string
	SentencesPath string
	Correct       int
	Incorrect     int
	Score         int
	Locks         int
	DurationMs    int64
}

// CharStats stores per-key stats for a session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// Aggregated per-char stats for selection or reporting.

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	RunID      string
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	Score      int
	Locks      int
	DurationMs int64
}

// GuardEvent records a guard state change during practice.
type GuardEvent struct {
	RunID         string
	At            time.Time
	SentenceIndex int
	State         string
	Cause         string
}
