// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/verte-zerg/klava/internal/engine"
	"github.com/verte-zerg/klava/internal/exercise"
	"github.com/verte-zerg/klava/internal/keyboard"
	"github.com/verte-zerg/klava/internal/model"
	statsPkg "github.com/verte-zerg/klava/internal/stats"
	"github.com/verte-zerg/klava/internal/store"
)

const (
	flashDuration = 250 * time.Millisecond
	recoverDelay  = 600 * time.Millisecond
	advanceDelay  = 1200 * time.Millisecond
)

type (
	flashDoneMsg struct{ seq int }
	recoveredMsg struct{}
	advanceMsg   struct{}
)

type keyMap struct {
	Recover key.Binding
	Abort   key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Recover: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		Abort:   key.NewBinding(key.WithKeys("ctrl+x", "ctrl+c"), key.WithHelp("ctrl+x", "stop")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "enter"), key.WithHelp("q", "quit")),
	}
}

// Options wires the model to its collaborators. Store and Logger may be nil.
type Options struct {
	Exercise *exercise.Exercise
	Keyboard *keyboard.Model
	Store    *store.Store
	Logger   *slog.Logger
	Now      func() time.Time
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	ex     *exercise.Exercise
	kb     *keyboard.Model
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time

	keys  keyMap
	help  help.Model
	clock stopwatch.Model

	width  int
	height int

	flashKey rune
	flashing bool
	flashSeq int

	sentenceDone bool

	allCorrect   int
	allIncorrect int
	allDuration  int64
	hasAll       bool
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color(dimTextColor)).Faint(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	lockStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	doneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)

	normalSentence = sentenceStyles{typed: correctStyle, word: currentWordStyle, pending: pendingStyle, wrong: incorrectStyle}
	dimSentence    = sentenceStyles{typed: dimStyle, word: dimStyle, pending: dimStyle, wrong: dimStyle}
)

// NewModel constructs a typing TUI model.
func NewModel(opts Options) *Model {
	m := &Model{
		ex:     opts.Exercise,
		kb:     opts.Keyboard,
		store:  opts.Store,
		logger: opts.Logger,
		now:    opts.Now,
		keys:   defaultKeyMap(),
		help:   help.New(),
		clock:  stopwatch.NewWithInterval(100 * time.Millisecond),
	}
	if m.kb == nil {
		m.kb = keyboard.DefaultModel()
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.loadFooterStats()
	return m
}

// Exercise returns the session driven by the model.
func (m *Model) Exercise() *exercise.Exercise {
	return m.ex
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flashing = false
		}
		return m, nil
	case recoveredMsg:
		m.ex.FinishRecovery(m.now())
		return m, nil
	case advanceMsg:
		m.sentenceDone = false
		if m.ex.Advance() {
			return m, m.clock.Reset()
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.clock, cmd = m.clock.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Abort) {
		m.ex.Abort()
		m.logger.Info("session stopped", "run", m.ex.RunID(), "sentence", m.ex.Index())
		return tea.Quit
	}
	if m.ex.Done() {
		if key.Matches(msg, m.keys.Quit) {
			return tea.Quit
		}
		return nil
	}
	eng := m.ex.Engine()
	if eng.IsLocked() {
		if eng.State() != engine.StateRestore && key.Matches(msg, m.keys.Recover) && m.ex.Recover(m.now()) {
			return tea.Tick(recoverDelay, func(time.Time) tea.Msg { return recoveredMsg{} })
		}
		return nil
	}
	if m.sentenceDone {
		return nil
	}
	var cmds []tea.Cmd
	for _, k := range normalizeKeys(msg) {
		cmds = append(cmds, m.press(k))
		if m.sentenceDone || m.ex.Engine().IsLocked() {
			break
		}
	}
	return tea.Batch(cmds...)
}

// normalizeKeys maps a key message to the keys the engine compares against.
// A single read can carry several runes; each one is a separate key.
func normalizeKeys(msg tea.KeyMsg) []string {
	switch msg.Type {
	case tea.KeySpace:
		return []string{" "}
	case tea.KeyRunes:
		if msg.Paste {
			return nil
		}
		keys := make([]string, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			keys = append(keys, strings.ToUpper(string(r)))
		}
		return keys
	default:
		return nil
	}
}

func (m *Model) press(k string) tea.Cmd {
	wasStarted := m.ex.Started()
	ev := m.ex.Press(k, m.now())

	var cmds []tea.Cmd
	switch ev.Outcome {
	case engine.Correct:
		m.flashing = false
		if !wasStarted {
			cmds = append(cmds, m.clock.Start())
		}
	case engine.Incorrect:
		m.flashKey = []rune(k)[0]
		m.flashing = true
		m.flashSeq++
		seq := m.flashSeq
		cmds = append(cmds, tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} }))
	}
	if ev.SentenceDone {
		m.sentenceDone = true
		cmds = append(cmds, m.clock.Stop())
		m.saveSentence()
		if !ev.Done {
			cmds = append(cmds, tea.Tick(advanceDelay, func(time.Time) tea.Msg { return advanceMsg{} }))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) saveSentence() {
	res, ok := m.ex.LastResult()
	if !ok {
		return
	}
	stats := res.SessionStats(m.ex.SentencesPath())
	m.allCorrect += stats.Correct
	m.allIncorrect += stats.Incorrect
	m.allDuration += stats.DurationMs
	m.hasAll = true
	if m.store == nil {
		return
	}
	if _, err := m.store.InsertSession(context.Background(), stats, res.Chars); err != nil {
		m.logger.Error("failed to save sentence", "run", res.RunID, "sentence", res.Index, "err", err)
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		m.logger.Warn("failed to load session stats", "err", err)
		return
	}
	for _, s := range sessions {
		m.allCorrect += s.Correct
		m.allIncorrect += s.Incorrect
		m.allDuration += s.DurationMs
	}
	m.hasAll = len(sessions) > 0
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.ex.Done() {
		content = m.renderSummary()
	} else {
		content = m.renderPractice()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderPractice() string {
	eng := m.ex.Engine()
	locked := eng.IsLocked()

	styles := normalSentence
	if locked {
		styles = dimSentence
	}
	runes := buildStyledRunes([]rune(eng.Target()), eng.Pos(), m.flashing, styles)
	contentWidth := int(float64(m.width) * 0.70)
	sentence := renderStyledRunes(runes)
	if contentWidth > 0 {
		sentence = lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Center).Render(wrapStyledRunes(runes, contentWidth))
	}

	view := keyboardView{dim: locked}
	if !m.sentenceDone {
		view.target, view.hasTarget = eng.CurrentTarget()
	}
	if m.flashing {
		view.wrong, view.hasWrong = m.flashKey, true
	}

	parts := []string{sentence, "", renderKeyboard(m.kb, view), ""}
	if status := m.statusLine(); status != "" {
		parts = append(parts, status)
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) statusLine() string {
	eng := m.ex.Engine()
	switch eng.State() {
	case engine.StateDimming:
		return lockStyle.Render("Too many wrong keys. Look at the keyboard.") + "\n" + m.help.ShortHelpView([]key.Binding{m.keys.Recover})
	case engine.StateBug:
		return lockStyle.Render("Slow down! You keep hitting random keys.") + "\n" + m.help.ShortHelpView([]key.Binding{m.keys.Recover})
	case engine.StateRestore:
		return footerStyle.Render("Restoring...")
	}
	if m.sentenceDone {
		if res, ok := m.ex.LastResult(); ok {
			return doneStyle.Render(fmt.Sprintf("Done in %s · score %+d", formatElapsed(res.Duration()), res.Score))
		}
	}
	return ""
}

func (m *Model) renderFooter() string {
	if m.ex.Done() {
		return footerStyle.Render(m.help.ShortHelpView([]key.Binding{m.keys.Quit}))
	}
	segments := []string{
		fmt.Sprintf("Sentence %d/%d", m.ex.Index()+1, m.ex.Count()),
		fmt.Sprintf("Progress %d%%", m.ex.Progress().Percent()),
		fmt.Sprintf("Score %d", m.ex.Score()),
		fmt.Sprintf("Time %s", formatElapsed(m.clock.Elapsed())),
	}
	if m.hasAll {
		wpm, _, acc := statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, m.allDuration)
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", wpm, acc*100))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderSummary() string {
	results := m.ex.Results()
	rows := make([][]string, 0, len(results))
	var total time.Duration
	for _, res := range results {
		total += res.Duration()
		wpm, _, acc := statsPkg.SessionMetrics(res.Correct, res.Incorrect, res.Duration().Milliseconds())
		rows = append(rows, []string{
			fmt.Sprintf("%d", res.Index+1),
			formatElapsed(res.Duration()),
			fmt.Sprintf("%.1f", wpm),
			fmt.Sprintf("%.1f%%", acc*100),
			fmt.Sprintf("%d", res.Locks),
			fmt.Sprintf("%d", res.Score),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Time", "WPM", "Accuracy", "Locks", "Score").
		Rows(rows...)
	title := doneStyle.Render("All sentences done!")
	totals := fmt.Sprintf("Total score %d in %s", m.ex.Score(), formatElapsed(total))
	return lipgloss.JoinVertical(lipgloss.Center, title, "", t.String(), "", totals)
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := (d % time.Minute).Seconds()
	return fmt.Sprintf("%02d:%04.1f", minutes, seconds)
}
