package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/klava/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "klava.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	start := time.Unix(100, 0).UTC()
	id, err := st.InsertSession(ctx, model.SessionStats{
		RunID:         "run",
		StartedAt:     start,
		EndedAt:       start.Add(10 * time.Second),
		SentenceIndex: 0,
		Sentence:      "HELLO",
		Correct:       5,
		Incorrect:     2,
		Score:         -1,
		Locks:         1,
		DurationMs:    10000,
	}, []model.CharStats{
		{Char: "H", Correct: 1, Incorrect: 2},
		{Char: "L", Correct: 2, LatencySumMs: 300, LatencyCount: 2},
	})
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}

	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.SessionID != id || got.RunID != "run" || got.Score != -1 || got.Locks != 1 {
		t.Fatalf("unexpected session: %+v", got)
	}

	aggs, err := st.ListCharAggregatesForSessions(ctx, []int64{id})
	if err != nil {
		t.Fatalf("list char aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 char aggregates, got %d", len(aggs))
	}

	weak, err := st.GetWeakChars(ctx, 5)
	if err != nil {
		t.Fatalf("get weak chars: %v", err)
	}
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak chars, got %d", len(weak))
	}
}

func TestListSessionsSince(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		end := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Hour)
		if _, err := st.InsertSession(ctx, model.SessionStats{RunID: "r", StartedAt: end, EndedAt: end, Sentence: "A"}, nil); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}
	since := time.Unix(0, 0).UTC().Add(90 * time.Minute)
	sessions, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session after since, got %d", len(sessions))
	}
}

func TestGuardEvents(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	at := time.Unix(50, 0).UTC()
	for _, state := range []string{"dimming", "restore", "normal"} {
		if err := st.InsertGuardEvent(ctx, model.GuardEvent{RunID: "run", At: at, State: state, Cause: "sweep"}); err != nil {
			t.Fatalf("insert guard event: %v", err)
		}
	}
	if err := st.InsertGuardEvent(ctx, model.GuardEvent{RunID: "other", At: at, State: "dimming", Cause: "streak"}); err != nil {
		t.Fatalf("insert guard event: %v", err)
	}

	events, err := st.ListGuardEvents(ctx, "run")
	if err != nil {
		t.Fatalf("list guard events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].State != "dimming" || events[2].State != "normal" {
		t.Fatalf("unexpected event order: %+v", events)
	}
	if !events[0].At.Equal(at) {
		t.Fatalf("unexpected timestamp: %v", events[0].At)
	}
}
