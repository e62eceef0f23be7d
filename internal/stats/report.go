package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/klava/internal/model"
	"github.com/verte-zerg/klava/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	CharAggsAll      []model.CharAggregate
	CharAggsWindow   []model.CharAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	charAggsAll, err := st.ListCharAggregatesForSessions(ctx, sessionIDs(sessions))
	if err != nil {
		return Report{}, fmt.Errorf("list key stats: %w", err)
	}
	charAggsWindow, err := st.ListCharAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, fmt.Errorf("list key stats: %w", err)
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		CharAggsAll:      charAggsAll,
		CharAggsWindow:   charAggsWindow,
	}, nil
}

// Render writes the summary, trend and per-key tables. Width bounds the trend lines.
func (r Report) Render(w io.Writer, cfg model.StatsConfig, width int) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	window := cfg.CurveWindow
	if window <= 0 {
		window = 1
	}
	if err := RenderTrend(w, r.Sessions, window, width); err != nil {
		return err
	}
	title := fmt.Sprintf("Per-Key (last %d sentences)", len(r.WindowSessionIDs))
	return RenderCharTable(w, title, onlyChars(r.CharAggsWindow, TopCharsByFrequency(r.CharAggsAll, cfg.Top)))
}

// onlyChars keeps the aggregates whose key is in keep. An empty keep returns all of them.
func onlyChars(aggs []model.CharAggregate, keep []string) []model.CharAggregate {
	if len(keep) == 0 {
		return aggs
	}
	set := make(map[string]struct{}, len(keep))
	for _, ch := range keep {
		set[ch] = struct{}{}
	}
	out := make([]model.CharAggregate, 0, len(keep))
	for _, agg := range aggs {
		if _, ok := set[agg.Char]; ok {
			out = append(out, agg)
		}
	}
	return out
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
