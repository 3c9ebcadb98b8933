package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// Tracker holds the state of one form session: who is reporting, for which
// day, and the entries added so far. It is not safe for concurrent use.
type Tracker struct {
	UserName  string
	UserEmail string
	Date      time.Time

	entries []model.Entry
	newID   func() string
}

// NewTracker returns an empty Tracker for the given day.
func NewTracker(date time.Time) *Tracker {
	return &Tracker{
		Date:  date,
		newID: func() string { return uuid.New().String() },
	}
}

// Add validates and appends an entry. On error the entry list is unchanged.
func (t *Tracker) Add(name, description, start, end string) (model.Entry, error) {
	s, e := normalizeOrKeep(start), normalizeOrKeep(end)
	if err := ValidateEntry(name, s, e); err != nil {
		return model.Entry{}, err
	}
	dur, _ := timecalc.ComputeDuration(s, e)

	entry := model.Entry{
		ID:          t.newID(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		StartTime:   s,
		EndTime:     e,
		Duration:    dur,
	}
	t.entries = append(t.entries, entry)
	return entry, nil
}

// Remove deletes the entry with the given ID and reports whether it existed.
func (t *Tracker) Remove(id string) bool {
	for i, e := range t.entries {
		if e.ID == id {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns the entries in insertion order.
func (t *Tracker) Entries() []model.Entry {
	out := make([]model.Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Timeline returns the entries ordered by start time.
func (t *Tracker) Timeline() []model.Entry {
	return SortByStart(t.entries)
}

// Stats recomputes the aggregate over the current entries.
func (t *Tracker) Stats() model.Stats {
	return ComputeStats(t.entries)
}

// Reset clears the entries, keeping submitter details.
func (t *Tracker) Reset() {
	t.entries = nil
}

// Payload builds the report request for the current state.
func (t *Tracker) Payload(format model.Format) (model.ReportRequest, error) {
	return BuildPayload(t.UserName, timecalc.FormatDateLabel(t.Date), t.entries, t.UserEmail, format)
}

// normalizeOrKeep returns the "HH:MM" form of a time of day, or s unchanged
// when it does not parse so validation can report it.
func normalizeOrKeep(s string) string {
	if n, err := timecalc.NormalizeTimeOfDay(s); err == nil {
		return n
	}
	return s
}
