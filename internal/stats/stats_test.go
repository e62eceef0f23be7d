package stats

import (
	"math"
	"testing"

	"github.com/verte-zerg/klava/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	wpm, cpm, acc := SessionMetrics(50, 0, 60000)
	if math.Abs(wpm-10) > 1e-9 || math.Abs(cpm-50) > 1e-9 || acc != 1 {
		t.Fatalf("unexpected metrics: %v %v %v", wpm, cpm, acc)
	}
	wpm, cpm, acc = SessionMetrics(3, 1, 0)
	if wpm != 0 || cpm != 0 || acc != 0.75 {
		t.Fatalf("unexpected metrics for zero duration: %v %v %v", wpm, cpm, acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}, 0); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{1, 2, 3, 4}, 2); len(got) != 2 {
		t.Fatalf("expected width 2, got %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}, 0); got != "+++" {
		t.Fatalf("flat series should render mid level, got %q", got)
	}
	if Sparkline(nil, 10) != "" {
		t.Fatalf("empty series should render nothing")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.SessionAggregate{
		{RunID: "a", Correct: 50, DurationMs: 60000, Score: 10, Locks: 1},
		{RunID: "b", Correct: 100, DurationMs: 60000, Score: 20, Locks: 2},
	})
	if s.Runs != 2 || s.Locks != 3 || s.AvgScore != 15 || s.BestWPM != 20 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestSelectWeakChars(t *testing.T) {
	weak := SelectWeakChars([]model.CharAggregate{
		{Char: "A", Correct: 9, Incorrect: 1},
		{Char: "B", Correct: 1, Incorrect: 1},
		{Char: "C", Correct: 10},
	}, 1)
	if _, ok := weak['B']; !ok || len(weak) != 1 {
		t.Fatalf("unexpected weak set: %v", weak)
	}
}
