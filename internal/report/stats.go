package report

import (
	"math"
	"sort"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// ComputeStats aggregates count, total and rounded average duration.
func ComputeStats(entries []model.Entry) model.Stats {
	var total int
	for _, e := range entries {
		total += e.Duration
	}
	st := model.Stats{Count: len(entries), TotalMinutes: total}
	if st.Count > 0 {
		st.AverageMinutes = int(math.Round(float64(total) / float64(st.Count)))
	}
	return st
}

// WireStats converts Stats into the formatted form sent to the endpoint.
func WireStats(st model.Stats) model.ReportStats {
	return model.ReportStats{
		TotalProjects:    st.Count,
		TotalTime:        timecalc.FormatDuration(st.TotalMinutes),
		AverageTime:      timecalc.FormatDuration(st.AverageMinutes),
		TotalTimeMinutes: st.TotalMinutes,
	}
}

// SortByStart returns a copy of entries ordered by start time. Entries with
// equal start times keep their relative order.
func SortByStart(entries []model.Entry) []model.Entry {
	out := make([]model.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}
