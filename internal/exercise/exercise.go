// Package exercise runs a multi-sentence typing session on top of the engine.
package exercise

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/klava/internal/engine"
	"github.com/verte-zerg/klava/internal/model"
	"github.com/verte-zerg/klava/internal/sentences"
)

// ErrTooFewLines is returned when the sentence list is shorter than MinLines.
var ErrTooFewLines = errors.New("too few sentences")

type charStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Event describes what one key press did.
type Event struct {
	Outcome engine.Outcome
	// Locked is set when this press tripped the guard.
	Locked    bool
	Cause     engine.Cause
	Escalated bool
	// SentenceDone is set when this press finished the current sentence.
	SentenceDone bool
	// Done is set when this press finished the last sentence.
	Done bool
}

// Result summarizes one finished sentence.
type Result struct {
	RunID     string
	Index     int
	Sentence  string
	StartedAt time.Time
	EndedAt   time.Time
	Correct   int
	Incorrect int
	Score     int
	Locks     int
	Chars     []model.CharStats
}

// Duration returns the time from the first correct key to the last one.
func (r Result) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SessionStats converts the result into the stored session row.
func (r Result) SessionStats(sentencesPath string) model.SessionStats {
	return model.SessionStats{
		RunID:         r.RunID,
		StartedAt:     r.StartedAt,
		EndedAt:       r.EndedAt,
		SentenceIndex: r.Index,
		Sentence:      r.Sentence,
		SentencesPath: sentencesPath,
		Correct:       r.Correct,
		Incorrect:     r.Incorrect,
		Score:         r.Score,
		Locks:         r.Locks,
		DurationMs:    r.Duration().Milliseconds(),
	}
}

// Exercise owns one engine and progress tracker per sentence and advances through the list.
// It is driven from a single event loop and is not safe for concurrent use.
type Exercise struct {
	cfg    Config
	runID  string
	lines  []string
	logger *slog.Logger

	idx  int
	eng  *engine.Engine
	prog *engine.Progress

	score   int
	done    bool
	aborted bool
	results []Result

	started       bool
	startedAt     time.Time
	endedAt       time.Time
	prevCorrectAt time.Time
	correct       int
	incorrect     int
	sentenceScore int
	locks         int
	charStats     map[rune]*charStat
}

// New validates the sentence list and loads the first sentence.
func New(lines []string, cfg Config) (*Exercise, error) {
	minLines := cfg.MinLines
	if minLines < 1 {
		minLines = 1
	}
	if len(lines) < minLines {
		return nil, fmt.Errorf("%w: need at least %d, got %d", ErrTooFewLines, minLines, len(lines))
	}
	if err := cfg.Guard.Validate(); err != nil {
		return nil, err
	}
	if cfg.EscalateAfter < 0 {
		return nil, fmt.Errorf("%w: escalate-after must be >= 0", engine.ErrInvalidArgument)
	}
	x := &Exercise{
		cfg:    cfg,
		runID:  cfg.RunID,
		lines:  append([]string(nil), lines...),
		logger: cfg.Logger,
	}
	if x.runID == "" {
		x.runID = uuid.NewString()
	}
	if x.logger == nil {
		x.logger = slog.New(slog.DiscardHandler)
	}
	x.load()
	return x, nil
}

func (x *Exercise) load() {
	line := x.lines[x.idx]
	eng, err := engine.New(line, engine.WithGuardConfig(x.cfg.Guard))
	if err != nil {
		x.logger.Warn("unusable sentence, using default", "index", x.idx, "err", err)
		eng, err = engine.New(sentences.DefaultSentence, engine.WithGuardConfig(x.cfg.Guard))
		if err != nil {
			// Guard config was validated in New.
			panic(err)
		}
	}
	x.eng = eng
	x.prog = engine.NewProgress(eng.Len())

	x.started = false
	x.startedAt = time.Time{}
	x.endedAt = time.Time{}
	x.prevCorrectAt = time.Time{}
	x.correct = 0
	x.incorrect = 0
	x.sentenceScore = 0
	x.locks = 0
	x.charStats = map[rune]*charStat{}
}

// Press routes one normalized key into the current engine.
func (x *Exercise) Press(key string, now time.Time) Event {
	if x.done || x.aborted {
		return Event{Outcome: engine.Rejected}
	}
	wasLocked := x.eng.IsLocked()
	expected, _ := x.eng.CurrentTarget()
	ev := Event{Outcome: x.eng.SubmitAt(key, now)}

	switch ev.Outcome {
	case engine.Correct:
		x.prog.Step()
		if !x.started {
			x.started = true
			x.startedAt = now
		}
		x.addScore(x.cfg.Scoring.Correct)
		x.correct++
		entry := x.charEntry(expected)
		entry.correct++
		if !x.prevCorrectAt.IsZero() {
			entry.latencySumMs += now.Sub(x.prevCorrectAt).Milliseconds()
			entry.latencyCount++
		}
		x.prevCorrectAt = now
	case engine.Incorrect:
		x.addScore(-x.cfg.Scoring.Wrong)
		x.incorrect++
		x.charEntry(expected).incorrect++
	}

	if !wasLocked && x.eng.IsLocked() {
		x.locks++
		ev.Locked = true
		ev.Cause = x.eng.LockCause()
		x.emit(now)
		if x.cfg.EscalateAfter > 0 && x.locks >= x.cfg.EscalateAfter && x.eng.Escalate() {
			ev.Escalated = true
			x.emit(now)
		}
	}

	if ev.Outcome == engine.Correct && x.eng.Finished() {
		x.finishSentence(now)
		ev.SentenceDone = true
		if x.idx == len(x.lines)-1 {
			x.done = true
			ev.Done = true
		}
	}
	return ev
}

func (x *Exercise) addScore(points int) {
	x.score += points
	x.sentenceScore += points
}

func (x *Exercise) charEntry(expected rune) *charStat {
	entry, ok := x.charStats[expected]
	if !ok {
		entry = &charStat{}
		x.charStats[expected] = entry
	}
	return entry
}

func (x *Exercise) finishSentence(now time.Time) {
	x.endedAt = now
	chars := make([]model.CharStats, 0, len(x.charStats))
	for ch, entry := range x.charStats {
		chars = append(chars, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	x.results = append(x.results, Result{
		RunID:     x.runID,
		Index:     x.idx,
		Sentence:  x.eng.Target(),
		StartedAt: x.startedAt,
		EndedAt:   now,
		Correct:   x.correct,
		Incorrect: x.incorrect,
		Score:     x.sentenceScore,
		Locks:     x.locks,
		Chars:     chars,
	})
}

func (x *Exercise) emit(now time.Time) {
	ev := model.GuardEvent{
		RunID:         x.runID,
		At:            now,
		SentenceIndex: x.idx,
		State:         x.eng.State().String(),
		Cause:         x.eng.LockCause().String(),
	}
	x.logger.Info("guard state changed", "run", ev.RunID, "sentence", ev.SentenceIndex, "state", ev.State, "cause", ev.Cause)
	if x.cfg.OnGuard != nil {
		x.cfg.OnGuard(ev)
	}
}

// Recover starts recovery from a lock. Input stays locked until FinishRecovery.
func (x *Exercise) Recover(now time.Time) bool {
	if !x.eng.BeginRestore() {
		return false
	}
	x.emit(now)
	return true
}

// FinishRecovery unlocks input after Recover.
func (x *Exercise) FinishRecovery(now time.Time) bool {
	if x.eng.State() != engine.StateRestore {
		return false
	}
	x.eng.ResetErrorState()
	x.emit(now)
	return true
}

// Advance moves to the next sentence once the current one is finished.
// It returns false on the last sentence.
func (x *Exercise) Advance() bool {
	if x.aborted || !x.eng.Finished() || x.idx+1 >= len(x.lines) {
		return false
	}
	x.idx++
	x.load()
	return true
}

// Abort stops the session; further keys are ignored.
func (x *Exercise) Abort() {
	x.aborted = true
}

// Done reports whether the last sentence has been finished.
func (x *Exercise) Done() bool {
	return x.done
}

// Aborted reports whether Abort was called.
func (x *Exercise) Aborted() bool {
	return x.aborted
}

// Engine returns the engine of the current sentence.
func (x *Exercise) Engine() *engine.Engine {
	return x.eng
}

// Progress returns the tracker of the current sentence.
func (x *Exercise) Progress() *engine.Progress {
	return x.prog
}

// Score returns the running score across sentences.
func (x *Exercise) Score() int {
	return x.score
}

// Index returns the zero-based index of the current sentence.
func (x *Exercise) Index() int {
	return x.idx
}

// Count returns the number of sentences in the session.
func (x *Exercise) Count() int {
	return len(x.lines)
}

// RunID identifies this session in storage.
func (x *Exercise) RunID() string {
	return x.runID
}

// Started reports whether the current sentence has had a correct key.
func (x *Exercise) Started() bool {
	return x.started
}

// Elapsed returns the time since the first correct key of the current sentence.
func (x *Exercise) Elapsed(now time.Time) time.Duration {
	if !x.started {
		return 0
	}
	if !x.endedAt.IsZero() {
		return x.endedAt.Sub(x.startedAt)
	}
	return now.Sub(x.startedAt)
}

// Results returns the finished sentences so far.
func (x *Exercise) Results() []Result {
	return append([]Result(nil), x.results...)
}

// LastResult returns the most recent finished sentence.
func (x *Exercise) LastResult() (Result, bool) {
	if len(x.results) == 0 {
		return Result{}, false
	}
	return x.results[len(x.results)-1], true
}

// SentencesPath returns the source file of the sentences, if any.
func (x *Exercise) SentencesPath() string {
	return x.cfg.SentencesPath
}
