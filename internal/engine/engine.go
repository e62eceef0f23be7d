// Package engine implements the typing logic: matching, progress, and the input guard.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrInvalidArgument is returned for a blank target or a bad guard threshold.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Outcome is the result of submitting one key.
type Outcome int

const (
	Rejected  Outcome = iota // Not evaluated: bad input, finished, or locked
	Correct                  // Matched the target, cursor advanced
	Incorrect                // Evaluated and judged wrong
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithGuardConfig replaces all guard thresholds.
func WithGuardConfig(cfg GuardConfig) Option {
	return func(e *Engine) { e.guard.cfg = cfg }
}

// WithSweepRequired sets the wrong-key count that counts as a sweep.
func WithSweepRequired(n int) Option {
	return func(e *Engine) { e.guard.cfg.SweepRequired = n }
}

// WithSweepWindow sets the time span a sweep must fit in.
func WithSweepWindow(d time.Duration) Option {
	return func(e *Engine) { e.guard.cfg.SweepWindow = d }
}

// WithWrongStreakLimit sets the streak length that locks input.
func WithWrongStreakLimit(n int) Option {
	return func(e *Engine) { e.guard.cfg.WrongStreakLimit = n }
}

// WithStreakWindow sets the maximum gap between two wrong keys of one streak.
func WithStreakWindow(d time.Duration) Option {
	return func(e *Engine) { e.guard.cfg.StreakWindow = d }
}

// WithClock overrides the time source used by Submit.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine matches keystrokes against a target sequence.
//
// Callers must pass keys already normalized: uppercase, with the space key as " ".
// An Engine is not safe for concurrent use.
type Engine struct {
	target []rune
	pos    int
	now    func() time.Time
	guard  guard
}

// New builds an engine for target, uppercased. A blank target is an error.
func New(target string, opts ...Option) (*Engine, error) {
	if strings.TrimSpace(target) == "" {
		return nil, invalidArgf("target sequence is blank")
	}
	e := &Engine{
		target: []rune(strings.ToUpper(target)),
		now:    time.Now,
		guard:  newGuard(DefaultGuardConfig()),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.now == nil {
		return nil, invalidArgf("clock is nil")
	}
	if err := e.guard.cfg.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// AcceptableInput reports whether s is a single character.
func AcceptableInput(s string) bool {
	return utf8.RuneCountInString(s) == 1
}

// AcceptableInput reports whether s is a single character.
func (e *Engine) AcceptableInput(s string) bool {
	return AcceptableInput(s)
}

// CurrentTarget returns the next expected character, or false once finished.
func (e *Engine) CurrentTarget() (rune, bool) {
	if e.Finished() {
		return 0, false
	}
	return e.target[e.pos], true
}

// Submit evaluates one key at the current time.
func (e *Engine) Submit(s string) Outcome {
	return e.SubmitAt(s, e.now())
}

// SubmitAt evaluates one key observed at now.
func (e *Engine) SubmitAt(s string, now time.Time) Outcome {
	if e.Finished() || e.guard.state != StateNormal || !AcceptableInput(s) {
		return Rejected
	}
	r, _ := utf8.DecodeRuneInString(s)
	correct := r == e.target[e.pos]
	e.guard.observe(r, now, correct)
	if correct {
		e.pos++
		return Correct
	}
	return Incorrect
}

// Finished reports whether the whole sequence has been typed.
func (e *Engine) Finished() bool {
	return e.pos >= len(e.target)
}

// Pos returns the cursor index.
func (e *Engine) Pos() int {
	return e.pos
}

// Len returns the number of characters in the target.
func (e *Engine) Len() int {
	return len(e.target)
}

// Target returns the normalized target text.
func (e *Engine) Target() string {
	return string(e.target)
}

// Config returns the guard thresholds in effect.
func (e *Engine) Config() GuardConfig {
	return e.guard.cfg
}

// IsLocked reports whether the guard is blocking input.
func (e *Engine) IsLocked() bool {
	return e.guard.state != StateNormal
}

// State returns the guard state.
func (e *Engine) State() GuardState {
	return e.guard.state
}

// LockCause returns which detectors tripped the current lock.
func (e *Engine) LockCause() Cause {
	return e.guard.cause
}

// WrongStreak returns the current run of consecutive wrong keys.
func (e *Engine) WrongStreak() int {
	return e.guard.streak
}

// History returns the retained keystrokes, oldest first.
func (e *Engine) History() []Keystroke {
	return e.guard.history.snapshot()
}

// Escalate moves a dimmed lock to BUG. It reports whether the state changed.
func (e *Engine) Escalate() bool {
	return e.guard.escalate()
}

// BeginRestore moves a DIMMING or BUG lock to RESTORE. Input stays locked.
func (e *Engine) BeginRestore() bool {
	return e.guard.beginRestore()
}

// ResetErrorState unlocks input and forgets the streak and keystroke history.
func (e *Engine) ResetErrorState() {
	e.guard.reset()
}
