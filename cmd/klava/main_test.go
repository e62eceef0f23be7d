package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/klava/internal/config"
	"github.com/verte-zerg/klava/internal/exercise"
	"github.com/verte-zerg/klava/internal/keyboard"
	"github.com/verte-zerg/klava/internal/model"
)

func validConfig() model.Config {
	return model.Config{
		Count:    5,
		MinLines: 2,
		Guard: model.GuardSettings{
			SweepRequired:    8,
			SweepWindow:      700 * time.Millisecond,
			WrongStreakLimit: 3,
			StreakWindow:     time.Second,
			EscalateAfter:    3,
		},
		Scoring: model.ScoringSettings{Correct: 1, Wrong: 3},
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	bad := []func(*model.Config){
		func(c *model.Config) { c.Count = -1 },
		func(c *model.Config) { c.MinLines = 0 },
		func(c *model.Config) { c.Count = 1 },
		func(c *model.Config) { c.Guard.SweepWindow = 0 },
		func(c *model.Config) { c.Guard.WrongStreakLimit = 0 },
		func(c *model.Config) { c.Guard.EscalateAfter = -1 },
		func(c *model.Config) { c.Scoring.Wrong = -1 },
	}
	for i, mutate := range bad {
		cfg := validConfig()
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var b strings.Builder
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		b.WriteString(line + "\n")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Guard.SweepRequired == nil || *cfg.Guard.SweepRequired != 8 {
		t.Fatalf("unexpected sweep-required: %v", cfg.Guard.SweepRequired)
	}
	if cfg.Guard.SweepWindow == nil || *cfg.Guard.SweepWindow != 0.7 {
		t.Fatalf("unexpected sweep-window: %v", cfg.Guard.SweepWindow)
	}
	if cfg.Keyboard.Model == nil {
		t.Fatalf("expected keyboard model key")
	}
}

func TestLoadSentencesFallsBackToStarter(t *testing.T) {
	lines, err := loadSentences(filepath.Join(t.TempDir(), "missing.txt"), keyboard.DefaultModel())
	if err != nil {
		t.Fatalf("load sentences: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected starter sentences, got %v", lines)
	}
}

func TestCountOfAllOrAtLeastMinLinesIsValid(t *testing.T) {
	for _, count := range []int{0, 2, 7} {
		cfg := validConfig()
		cfg.Count = count
		if err := validateConfig(cfg); err != nil {
			t.Fatalf("count %d: unexpected error %v", count, err)
		}
	}
	cfg := validConfig()
	cfg.Count, cfg.MinLines = 1, 1
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("count 1 with min-lines 1: unexpected error %v", err)
	}
}

func writeSentences(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentences.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write sentences: %v", err)
	}
	return path
}

func TestMinLinesCheckedBeforePicking(t *testing.T) {
	cfg := validConfig()
	cfg.SentencesPath = writeSentences(t, "only one line")
	lines, err := loadSentences(cfg.SentencesPath, keyboard.DefaultModel())
	if err != nil {
		t.Fatalf("load sentences: %v", err)
	}
	err = checkMinLines(lines, cfg)
	if !errors.Is(err, exercise.ErrTooFewLines) {
		t.Fatalf("expected too few sentences for a one-line file, got %v", err)
	}

	cfg.SentencesPath = writeSentences(t, "a b", "c d", "e f", "g h")
	lines, err = loadSentences(cfg.SentencesPath, keyboard.DefaultModel())
	if err != nil {
		t.Fatalf("load sentences: %v", err)
	}
	if err := checkMinLines(lines, cfg); err != nil {
		t.Fatalf("four lines should satisfy min-lines 2: %v", err)
	}
}

func TestLoadSentencesRejectsUntypeableList(t *testing.T) {
	path := writeSentences(t, "123", "4 5 6")
	if _, err := loadSentences(path, keyboard.DefaultModel()); err == nil {
		t.Fatalf("expected error when no sentence fits the keyboard")
	}
}

func TestSeconds(t *testing.T) {
	if got := seconds(0.7); got != 700*time.Millisecond {
		t.Fatalf("unexpected duration %v", got)
	}
}
