package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/klava/internal/engine"
	"github.com/verte-zerg/klava/internal/exercise"
	"github.com/verte-zerg/klava/internal/model"
	"github.com/verte-zerg/klava/internal/store"
)

type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestModel(t *testing.T, lines []string, st *store.Store) *Model {
	return newSteppedModel(t, lines, st, 2*time.Second)
}

func newSteppedModel(t *testing.T, lines []string, st *store.Store, step time.Duration) *Model {
	t.Helper()
	cfg := exercise.DefaultConfig()
	cfg.RunID = "run"
	ex, err := exercise.New(lines, cfg)
	if err != nil {
		t.Fatalf("new exercise: %v", err)
	}
	clock := &fakeClock{t: time.Unix(0, 0), step: step}
	return NewModel(Options{Exercise: ex, Store: st, Now: clock.now})
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		if r == ' ' {
			m.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m.Update(runeKey(r))
	}
}

func TestNormalizeKeys(t *testing.T) {
	if keys := normalizeKeys(runeKey('a')); len(keys) != 1 || keys[0] != "A" {
		t.Fatalf("expected uppercase rune, got %q", keys)
	}
	if keys := normalizeKeys(tea.KeyMsg{Type: tea.KeySpace}); len(keys) != 1 || keys[0] != " " {
		t.Fatalf("expected space, got %q", keys)
	}
	if keys := normalizeKeys(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("he l")}); strings.Join(keys, "|") != "H|E| |L" {
		t.Fatalf("expected one key per rune, got %q", keys)
	}
	if keys := normalizeKeys(tea.KeyMsg{Type: tea.KeyTab}); len(keys) != 0 {
		t.Fatalf("tab should not be forwarded")
	}
	if keys := normalizeKeys(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab"), Paste: true}); len(keys) != 0 {
		t.Fatalf("paste should not be forwarded")
	}
}

func TestMultiRuneMessageTypesEachKey(t *testing.T) {
	m := newTestModel(t, []string{"hello", "world"}, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("he")})
	if got := m.ex.Engine().Pos(); got != 2 {
		t.Fatalf("expected both keys accepted, got pos %d", got)
	}
	if m.ex.Score() != 2 {
		t.Fatalf("expected score 2, got %d", m.ex.Score())
	}
}

func TestMultiRuneSweepLocks(t *testing.T) {
	m := newSteppedModel(t, []string{"hello", "world"}, nil, 10*time.Millisecond)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("qwertyuiop")})
	eng := m.ex.Engine()
	if !eng.IsLocked() {
		t.Fatalf("expected a burst of wrong keys to lock input")
	}
	if got := len(eng.History()); got != 3 {
		t.Fatalf("expected keys after the lock to be dropped, got history %d", got)
	}
	if m.ex.Score() != -9 {
		t.Fatalf("expected -9 score, got %d", m.ex.Score())
	}
}

func TestMultiRuneMessageStopsAtSentenceEnd(t *testing.T) {
	m := newTestModel(t, []string{"ab", "cd"}, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abcd")})
	if !m.sentenceDone || m.ex.Index() != 0 {
		t.Fatalf("expected first sentence done and not advanced")
	}
	res, ok := m.ex.LastResult()
	if !ok || res.Incorrect != 0 {
		t.Fatalf("keys past the sentence end must not count: %+v", res)
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m := newTestModel(t, []string{"abcd", "ef"}, nil)
	typeText(m, "ab")
	m.allCorrect, m.allIncorrect, m.allDuration, m.hasAll = 50, 0, 60000, true

	out := m.renderFooter()
	for _, want := range []string{"Sentence 1/2", "Progress 50%", "Score 2", "Time 00:", "All-time 10.0 WPM", "100.0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}

func TestWrongKeyFlashes(t *testing.T) {
	m := newTestModel(t, []string{"ab", "cd"}, nil)
	_, cmd := m.Update(runeKey('x'))
	if cmd == nil {
		t.Fatalf("expected flash tick")
	}
	if !m.flashing || m.flashKey != 'X' {
		t.Fatalf("expected X flashed, got %q %v", m.flashKey, m.flashing)
	}
	m.Update(flashDoneMsg{seq: m.flashSeq - 1})
	if !m.flashing {
		t.Fatalf("stale flash message cleared the flash")
	}
	m.Update(flashDoneMsg{seq: m.flashSeq})
	if m.flashing {
		t.Fatalf("expected flash cleared")
	}
	if m.ex.Score() != -3 {
		t.Fatalf("expected -3 score, got %d", m.ex.Score())
	}
}

func TestLockAndRecover(t *testing.T) {
	m := newSteppedModel(t, []string{"ab", "cd"}, nil, 100*time.Millisecond)

	typeText(m, "xxx")
	if !m.ex.Engine().IsLocked() {
		t.Fatalf("expected lock after wrong streak")
	}
	if !strings.Contains(m.View(), "Too many wrong keys") {
		t.Fatalf("expected lock message")
	}
	typeText(m, "a")
	if m.ex.Engine().Pos() != 0 {
		t.Fatalf("locked input must be ignored")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.ex.Engine().State() != engine.StateRestore {
		t.Fatalf("expected restore after enter, got %v", m.ex.Engine().State())
	}
	m.Update(recoveredMsg{})
	if m.ex.Engine().IsLocked() {
		t.Fatalf("expected unlocked after recovery")
	}
	typeText(m, "a")
	if m.ex.Engine().Pos() != 1 {
		t.Fatalf("expected input accepted after recovery")
	}
}

func TestSentenceDoneSavesAndAdvances(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "klava.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	m := newTestModel(t, []string{"a b", "c"}, st)

	typeText(m, "a b")
	if !m.sentenceDone {
		t.Fatalf("expected sentence done")
	}
	if !strings.Contains(m.View(), "Done in") {
		t.Fatalf("expected completion message")
	}
	typeText(m, "c")
	if m.ex.Index() != 0 {
		t.Fatalf("input during the pause must not advance")
	}
	m.Update(advanceMsg{})
	if m.ex.Index() != 1 || m.sentenceDone {
		t.Fatalf("expected second sentence, got index %d", m.ex.Index())
	}
	typeText(m, "c")
	if !m.ex.Done() {
		t.Fatalf("expected exercise done")
	}
	if !strings.Contains(m.View(), "All sentences done!") {
		t.Fatalf("expected final summary")
	}

	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 stored sentences, got %d", len(sessions))
	}

	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestAbortQuits(t *testing.T) {
	m := newTestModel(t, []string{"ab", "cd"}, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	if cmd == nil || !m.ex.Aborted() {
		t.Fatalf("expected abort and quit")
	}
}
