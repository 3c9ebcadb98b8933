package msgraph

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// describe combines bodyPreview and location into an entry description.
func describe(event CalendarEvent) string {
	parts := []string{}
	if s := strings.TrimSpace(event.BodyPreview); s != "" {
		parts = append(parts, s)
	}
	if event.Location.DisplayName != "" {
		parts = append(parts, event.Location.DisplayName)
	}
	return strings.Join(parts, " | ")
}

// shouldSkip returns true if the event should not become an entry.
func shouldSkip(event CalendarEvent) bool {
	switch {
	case event.IsCancelled, event.IsAllDay:
		return true
	case event.Sensitivity == "private":
		return true
	case event.ShowAs == "free":
		return true
	case event.Start.DateTime == "" || event.End.DateTime == "":
		return true
	}
	return false
}

// MapEventToEntry converts a calendar event into an entry without an ID.
// Events that do not start and end on day are rejected.
func MapEventToEntry(event CalendarEvent, day time.Time, loc *time.Location) (model.Entry, error) {
	start, err := parseGraphTime(event.Start.DateTime, loc)
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, loc)
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing end time: %w", err)
	}
	if !timecalc.SameDay(start, day) || !timecalc.SameDay(end, day) {
		return model.Entry{}, fmt.Errorf("event %q is not within %s", event.Subject, day.Format("2006-01-02"))
	}

	s, e := start.Format("15:04"), end.Format("15:04")
	dur, err := timecalc.ComputeDuration(s, e)
	if err != nil {
		return model.Entry{}, err
	}
	if dur <= 0 {
		return model.Entry{}, fmt.Errorf("event %q: %w", event.Subject, timecalc.ErrEndNotAfterStart)
	}
	return model.Entry{
		Name:        strings.TrimSpace(event.Subject),
		Description: describe(event),
		StartTime:   s,
		EndTime:     e,
		Duration:    dur,
	}, nil
}

// ImportResult holds the entries mapped from a calendar view and counters
// for the events that were left out.
type ImportResult struct {
	Entries []model.Entry
	Skipped int
	Errors  []error
}

// EventsToEntries maps events on day to entries. timezone is the IANA zone
// the event times are expressed in; "" means UTC.
func EventsToEntries(events []CalendarEvent, day time.Time, timezone string) (ImportResult, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return ImportResult{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
		}
		loc = l
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc)

	var res ImportResult
	for _, event := range events {
		if shouldSkip(event) {
			res.Skipped++
			continue
		}
		entry, err := MapEventToEntry(event, day, loc)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		if entry.Name == "" {
			entry.Name = "(no subject)"
		}
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}
