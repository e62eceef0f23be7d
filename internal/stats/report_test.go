package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/klava/internal/model"
	"github.com/verte-zerg/klava/internal/store"
)

func seedStore(t *testing.T, n int) (*store.Store, []int64) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "klava.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < n; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		stats := model.SessionStats{
			RunID:         "run",
			StartedAt:     start,
			EndedAt:       end,
			SentenceIndex: i,
			Sentence:      "AB AB",
			SentencesPath: "dummy",
			Correct:       10,
			Incorrect:     1,
			Score:         7,
			Locks:         1,
			DurationMs:    end.Sub(start).Milliseconds(),
		}
		charStats := []model.CharStats{
			{Char: "A", Correct: 5, Incorrect: 0},
			{Char: "B", Correct: 4, Incorrect: 1},
		}
		id, err := st.InsertSession(ctx, stats, charStats)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}
	return st, ids
}

func TestBuildReport(t *testing.T) {
	st, ids := seedStore(t, 3)
	cfg := model.StatsConfig{
		Last:        2,
		CurveWindow: 2,
	}
	report, err := BuildReport(context.Background(), st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 2 {
		t.Fatalf("expected 2 window session ids, got %d", len(report.WindowSessionIDs))
	}
	if len(report.CharAggsAll) == 0 {
		t.Fatalf("expected char aggregates for all sessions")
	}
	if len(report.CharAggsWindow) == 0 {
		t.Fatalf("expected char aggregates for window sessions")
	}
}

func TestReportRender(t *testing.T) {
	st, _ := seedStore(t, 4)
	cfg := model.StatsConfig{CurveWindow: 2, Top: 1}
	report, err := BuildReport(context.Background(), st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, cfg, 60); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sentences: 4 in 1 runs", "Guard locks: 4", "Avg Score: 7.0", "Trend", "Per-Key (last 2 sentences)"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestReportRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (Report{}).Render(&buf, model.StatsConfig{}, 80); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No sessions found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
