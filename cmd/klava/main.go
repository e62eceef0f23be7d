// Package main provides the CLI entrypoint for klava.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/klava/internal/config"
	"github.com/verte-zerg/klava/internal/engine"
	"github.com/verte-zerg/klava/internal/exercise"
	"github.com/verte-zerg/klava/internal/generator"
	"github.com/verte-zerg/klava/internal/keyboard"
	"github.com/verte-zerg/klava/internal/logging"
	"github.com/verte-zerg/klava/internal/model"
	"github.com/verte-zerg/klava/internal/sentences"
	"github.com/verte-zerg/klava/internal/stats"
	"github.com/verte-zerg/klava/internal/store"
	"github.com/verte-zerg/klava/internal/tui"
)

const (
	defaultCount       = 5
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
	defaultStatsTop    = 15
	defaultStatsWidth  = 80
)

var (
	practiceSentences  string
	practiceCount      int
	practiceMinLines   int
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int
	practiceKeyboard   string
	practiceLogLevel   string

	guardSweepRequired    int
	guardSweepWindow      float64
	guardWrongStreakLimit int
	guardStreakWindow     float64
	guardEscalateAfter    int

	scoreCorrect int
	scoreWrong   int

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
	statsRun         string

	sentencesPath  string
	sentencesInit  bool
	sentencesForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "klava",
		Short:         "Keyboard typing trainer with an input guard",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&practiceSentences, "sentences", config.DefaultSentencesPath(), "sentence list, one sentence per line")
	flags.IntVar(&practiceCount, "count", defaultCount, "sentences per session (0 = all)")
	flags.IntVar(&practiceMinLines, "min-lines", exercise.DefaultMinLines, "minimum number of sentences required")
	flags.BoolVar(&practiceFocusWeak, "focus-weak", false, "bias sentence choice toward weak keys")
	flags.IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak keys to focus on")
	flags.Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak keys")
	flags.IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sentences to compute weak keys")
	flags.StringVar(&practiceKeyboard, "keyboard-model", "", "finger model file (JSON or YAML)")
	flags.StringVar(&practiceLogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	flags.IntVar(&guardSweepRequired, "sweep-required", engine.DefaultSweepRequired, "wrong keys within the sweep window that lock input")
	flags.Float64Var(&guardSweepWindow, "sweep-window", engine.DefaultSweepWindow.Seconds(), "sweep window in seconds")
	flags.IntVar(&guardWrongStreakLimit, "wrong-streak-limit", engine.DefaultWrongStreakLimit, "consecutive wrong keys that lock input")
	flags.Float64Var(&guardStreakWindow, "streak-window", engine.DefaultStreakWindow.Seconds(), "max seconds between wrong keys of a streak")
	flags.IntVar(&guardEscalateAfter, "escalate-after", exercise.DefaultEscalateAfter, "locks per sentence before escalating (0 = never)")

	flags.IntVar(&scoreCorrect, "score-correct", exercise.DefaultCorrectPoints, "points for a correct key")
	flags.IntVar(&scoreWrong, "score-wrong", exercise.DefaultWrongPenalty, "penalty for a wrong key")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSentencesCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "sentences", &practiceSentences, fileCfg.Practice.Sentences)
	applyConfig(cmd, "count", &practiceCount, fileCfg.Practice.Count)
	applyConfig(cmd, "min-lines", &practiceMinLines, fileCfg.Practice.MinLines)
	applyConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)
	applyConfig(cmd, "sweep-required", &guardSweepRequired, fileCfg.Guard.SweepRequired)
	applyConfig(cmd, "sweep-window", &guardSweepWindow, fileCfg.Guard.SweepWindow)
	applyConfig(cmd, "wrong-streak-limit", &guardWrongStreakLimit, fileCfg.Guard.WrongStreakLimit)
	applyConfig(cmd, "streak-window", &guardStreakWindow, fileCfg.Guard.StreakWindow)
	applyConfig(cmd, "escalate-after", &guardEscalateAfter, fileCfg.Guard.EscalateAfter)
	applyConfig(cmd, "score-correct", &scoreCorrect, fileCfg.Scoring.Correct)
	applyConfig(cmd, "score-wrong", &scoreWrong, fileCfg.Scoring.Wrong)
	applyConfig(cmd, "keyboard-model", &practiceKeyboard, fileCfg.Keyboard.Model)

	cfg := model.Config{
		SentencesPath: practiceSentences,
		Count:         practiceCount,
		MinLines:      practiceMinLines,
		FocusWeak:     practiceFocusWeak,
		WeakTop:       practiceWeakTop,
		WeakFactor:    practiceWeakFactor,
		WeakWindow:    practiceWeakWindow,
		KeyboardModel: practiceKeyboard,
		Guard: model.GuardSettings{
			SweepRequired:    guardSweepRequired,
			SweepWindow:      seconds(guardSweepWindow),
			WrongStreakLimit: guardWrongStreakLimit,
			StreakWindow:     seconds(guardStreakWindow),
			EscalateAfter:    guardEscalateAfter,
		},
		Scoring: model.ScoringSettings{Correct: scoreCorrect, Wrong: scoreWrong},
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	level, err := logging.ParseLevel(practiceLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger, logCloser, err := logging.New(logging.Config{Path: config.DefaultLogPath(), Level: level})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closeQuietly(logCloser, "log file")

	kb, err := loadKeyboard(cfg.KeyboardModel)
	if err != nil {
		return err
	}
	lines, err := loadSentences(cfg.SentencesPath, kb)
	if err != nil {
		return err
	}
	if err := checkMinLines(lines, cfg); err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly(st, "db")

	gen := generator.New()
	picked := gen.Pick(lines, cfg.Count)
	if cfg.FocusWeak {
		if weakSet := loadWeakSet(st, cfg); len(weakSet) > 0 {
			picked = gen.PickWeighted(lines, cfg.Count, weakSet, cfg.WeakFactor)
		}
	}

	exCfg := exercise.ConfigFrom(cfg)
	exCfg.Logger = logger
	exCfg.OnGuard = func(ev model.GuardEvent) {
		if err := st.InsertGuardEvent(context.Background(), ev); err != nil {
			logger.Error("failed to save guard event", "err", err)
		}
	}
	ex, err := exercise.New(picked, exCfg)
	if err != nil {
		return err
	}
	logger.Info("session started", "run", ex.RunID(), "sentences", ex.Count(), "path", cfg.SentencesPath)

	ui := tui.NewModel(tui.Options{Exercise: ex, Keyboard: kb, Store: st, Logger: logger})
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	logger.Info("session ended", "run", ex.RunID(), "finished", len(ex.Results()), "aborted", ex.Aborted(), "score", ex.Score())
	if !ex.Done() {
		logErrf("Session stopped after %d of %d sentences. Score: %d\n", len(ex.Results()), ex.Count(), ex.Score())
	}
	return nil
}

func loadKeyboard(path string) (*keyboard.Model, error) {
	if path == "" {
		return keyboard.DefaultModel(), nil
	}
	kb, err := keyboard.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyboard model %s: %w", path, err)
	}
	return kb, nil
}

func loadSentences(path string, kb *keyboard.Model) ([]string, error) {
	lines, err := sentences.Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load sentences: %w", err)
		}
		logErrf("No sentence list at %s; using the built-in sentences. Create one with: klava sentences --init\n", path)
		lines = sentences.Starter()
	}
	kept, rejected := sentences.FilterForKeyboard(lines, kb)
	for _, line := range rejected {
		logErrf("Skipping sentence with keys missing from the keyboard: %q\n", line)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no sentence in %s can be typed on the keyboard model", path)
	}
	return kept, nil
}

// checkMinLines requires the usable sentence list, before picking, to hold MinLines sentences.
func checkMinLines(lines []string, cfg model.Config) error {
	if len(lines) >= cfg.MinLines {
		return nil
	}
	return fmt.Errorf("%w: need at least %d, got %d\nAdd sentences to %s or run: klava sentences --init",
		exercise.ErrTooFewLines, cfg.MinLines, len(lines), cfg.SentencesPath)
}

func loadWeakSet(st *store.Store, cfg model.Config) map[rune]struct{} {
	aggs, err := st.GetWeakChars(context.Background(), cfg.WeakWindow)
	if err != nil {
		logErrf("failed to load weak keys: %v\n", err)
		return nil
	}
	weakSet := stats.SelectWeakChars(aggs, cfg.WeakTop)
	if len(weakSet) == 0 {
		logErrln("no stats available for weak-key focus yet; using normal selection")
	}
	return weakSet
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sentences")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of most frequent keys in the per-key table (0 = all)")
	cmd.Flags().StringVar(&statsRun, "run", "", "list guard events of a run id")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 || statsCurveWindow < 0 || statsTop < 0 {
		return fmt.Errorf("--last, --curve-window and --top must be >= 0")
	}

	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Top:         statsTop,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly(st, "db")

	ctx := context.Background()
	out := cmd.OutOrStdout()
	if statsRun != "" {
		return printGuardEvents(ctx, out, st, statsRun)
	}

	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build stats: %w", err)
	}
	return report.Render(out, cfg, terminalWidth())
}

func printGuardEvents(ctx context.Context, w io.Writer, st *store.Store, runID string) error {
	events, err := st.ListGuardEvents(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list guard events: %w", err)
	}
	if len(events) == 0 {
		_, err := fmt.Fprintf(w, "No guard events for run %s.\n", runID)
		return err
	}
	for _, ev := range events {
		if _, err := fmt.Fprintf(w, "%s  sentence %d  %-8s %s\n",
			ev.At.Local().Format("2006-01-02 15:04:05.000"), ev.SentenceIndex+1, ev.State, ev.Cause); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultStatsWidth
	}
	return width
}

func newSentencesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentences",
		Short: "Check or create the sentence list",
		Args:  cobra.NoArgs,
		RunE:  runSentencesCmd,
	}
	cmd.Flags().StringVar(&sentencesPath, "path", "", "sentence list (default from config)")
	cmd.Flags().BoolVar(&sentencesInit, "init", false, "write a starter sentence list")
	cmd.Flags().BoolVar(&sentencesForce, "force", false, "overwrite an existing list with --init")
	cmd.Flags().StringVar(&practiceKeyboard, "keyboard-model", "", "finger model file (JSON or YAML)")
	return cmd
}

func runSentencesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path := sentencesPath
	if path == "" {
		path = config.DefaultSentencesPath()
		if fileCfg.Practice.Sentences != nil {
			path = *fileCfg.Practice.Sentences
		}
	}

	if sentencesInit {
		if !sentencesForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("sentence list already exists: %s (use --force to overwrite)", path)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to stat sentence list: %w", err)
			}
		}
		if err := sentences.WriteFile(path, sentences.Starter()); err != nil {
			return err
		}
		logErrf("Wrote %s\n", path)
		return nil
	}

	applyConfig(cmd, "keyboard-model", &practiceKeyboard, fileCfg.Keyboard.Model)
	kb, err := loadKeyboard(practiceKeyboard)
	if err != nil {
		return err
	}
	lines, err := sentences.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load sentences from %s: %w", path, err)
	}
	kept, rejected := sentences.FilterForKeyboard(lines, kb)
	out := cmd.OutOrStdout()
	for _, line := range kept {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	for _, line := range rejected {
		logErrf("not typeable on the keyboard: %q\n", line)
	}
	logErrf("%d usable sentences, %d skipped\n", len(kept), len(rejected))
	return nil
}

// applyConfig copies a config file value into target unless the flag was set.
func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# klava configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# sentences = %q
# count = %d              # Sentences per session (0 = all)
# min-lines = %d          # Minimum number of sentences required
# focus-weak = false      # Bias sentence choice toward weak keys
# weak-top = %d           # Number of weak keys to focus on
# weak-factor = %.1f      # Weight factor for weak keys
# weak-window = %d        # Number of recent sentences to compute weak keys

[guard]
# sweep-required = %d     # Wrong keys within sweep-window that lock input
# sweep-window = %.1f     # Seconds
# wrong-streak-limit = %d # Consecutive wrong keys that lock input
# streak-window = %.1f    # Max seconds between wrong keys of a streak
# escalate-after = %d     # Locks per sentence before escalating (0 = never)

[scoring]
# correct = %d
# wrong = %d

[keyboard]
# model = "/path/to/fingers.yaml"
`,
		config.DefaultSentencesPath(),
		defaultCount,
		exercise.DefaultMinLines,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		engine.DefaultSweepRequired,
		engine.DefaultSweepWindow.Seconds(),
		engine.DefaultWrongStreakLimit,
		engine.DefaultStreakWindow.Seconds(),
		exercise.DefaultEscalateAfter,
		exercise.DefaultCorrectPoints,
		exercise.DefaultWrongPenalty,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Count < 0 {
		return fmt.Errorf("--count must be >= 0")
	}
	if cfg.MinLines < 1 {
		return fmt.Errorf("--min-lines must be >= 1")
	}
	if cfg.Count > 0 && cfg.Count < cfg.MinLines {
		return fmt.Errorf("--count must be 0 or >= --min-lines (%d)", cfg.MinLines)
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	if cfg.Guard.SweepRequired <= 0 {
		return fmt.Errorf("--sweep-required must be > 0")
	}
	if cfg.Guard.SweepWindow <= 0 {
		return fmt.Errorf("--sweep-window must be > 0")
	}
	if cfg.Guard.WrongStreakLimit <= 0 {
		return fmt.Errorf("--wrong-streak-limit must be > 0")
	}
	if cfg.Guard.StreakWindow <= 0 {
		return fmt.Errorf("--streak-window must be > 0")
	}
	if cfg.Guard.EscalateAfter < 0 {
		return fmt.Errorf("--escalate-after must be >= 0")
	}
	if cfg.Scoring.Correct < 0 || cfg.Scoring.Wrong < 0 {
		return fmt.Errorf("--score-correct and --score-wrong must be >= 0")
	}
	return nil
}

func closeQuietly(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		logErrf("failed to close %s: %v\n", what, err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
