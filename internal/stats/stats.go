// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/klava/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes WPM, CPM, and accuracy for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (wpm, cpm, accuracy float64) {
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return 0, 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	wpm = (float64(correct) / 5.0) / minutes
	cpm = float64(correct) / minutes
	return wpm, cpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders values as a single ASCII line, keeping the last width values.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	last := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[max(0, min(idx, last))])
	}
	return b.String()
}

// Summary holds headline numbers across sessions.
type Summary struct {
	Sessions    int
	Runs        int
	AvgWPM      float64
	BestWPM     float64
	AvgAccuracy float64
	AvgScore    float64
	Locks       int
}

// Summarize computes headline numbers for sessions.
func Summarize(sessions []model.SessionAggregate) Summary {
	s := Summary{Sessions: len(sessions)}
	if len(sessions) == 0 {
		return s
	}
	runs := map[string]struct{}{}
	var wpmSum, accSum, scoreSum float64
	for _, sess := range sessions {
		wpm, _, acc := SessionMetrics(sess.Correct, sess.Incorrect, sess.DurationMs)
		wpmSum += wpm
		accSum += acc
		scoreSum += float64(sess.Score)
		s.BestWPM = math.Max(s.BestWPM, wpm)
		s.Locks += sess.Locks
		runs[sess.RunID] = struct{}{}
	}
	n := float64(len(sessions))
	s.Runs = len(runs)
	s.AvgWPM = wpmSum / n
	s.AvgAccuracy = accSum / n
	s.AvgScore = scoreSum / n
	return s
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sentences: %d in %d runs", s.Sessions, s.Runs),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %.2f", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy*100),
		fmt.Sprintf("Avg Score: %.1f", s.AvgScore),
		fmt.Sprintf("Guard locks: %d", s.Locks),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints smoothed WPM and accuracy sparklines.
func RenderTrend(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		wpm, _, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		wpms[i] = wpm
		accs[i] = acc * 100
	}
	const label = "Accuracy "
	width -= len(label) + 2
	if width < 10 {
		width = 10
	}
	if _, err := fmt.Fprintf(w, "Trend (moving average of %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-9s|%s|\n", "WPM", Sparkline(MovingAverage(wpms, window), width)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-9s|%s|\n\n", "Accuracy", Sparkline(MovingAverage(accs, window), width)); err != nil {
		return err
	}
	return nil
}

// RenderCharTable prints per-key aggregates under title, weakest first.
func RenderCharTable(w io.Writer, title string, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No key stats found.")
		return err
	}
	sorted := make([]model.CharAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ai, aj := accuracy(sorted[i]), accuracy(sorted[j])
		if ai == aj {
			return sorted[i].Char < sorted[j].Char
		}
		return ai < aj
	})

	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		label := agg.Char
		if label == " " {
			label = "<space>"
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	headers := []string{"Key", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	out := renderTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})
	_, err := fmt.Fprintf(w, "%s\n%s\n\n", title, out)
	return err
}
