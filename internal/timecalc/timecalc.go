package timecalc

import (
	"errors"
	"fmt"
	"time"
)

// ErrEndNotAfterStart is returned when an entry would have a non-positive duration.
var ErrEndNotAfterStart = errors.New("end before or equal to start")

// referenceDay is the fixed calendar date time-of-day values are parsed against.
var referenceDay = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseTimeOfDay parses "HH:MM" (or "H:MM", optionally with seconds) into a
// time on the reference day.
func ParseTimeOfDay(s string) (time.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(referenceDay.Year(), referenceDay.Month(), referenceDay.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time of day %q (want HH:MM)", s)
}

// NormalizeTimeOfDay returns s as zero-padded "HH:MM" so that plain string
// comparison orders times correctly.
func NormalizeTimeOfDay(s string) (string, error) {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}

// ComputeDuration returns end minus start in whole minutes. The result is
// negative when end lies before start.
func ComputeDuration(start, end string) (int, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return 0, fmt.Errorf("start: %w", err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return 0, fmt.Errorf("end: %w", err)
	}
	return int(e.Sub(s) / time.Minute), nil
}

// ValidateRange rejects time ranges whose duration is not strictly positive.
func ValidateRange(start, end string) error {
	d, err := ComputeDuration(start, end)
	if err != nil {
		return err
	}
	if d <= 0 {
		return ErrEndNotAfterStart
	}
	return nil
}

// FormatDuration formats minutes as "1h 30m".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatTimeOfDay renders "13:30" as "1:30 PM". Unparsable input is returned as is.
func FormatTimeOfDay(s string) string {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return s
	}
	return t.Format("3:04 PM")
}

// FormatDateLabel returns a label like "Friday, February 27, 2026".
func FormatDateLabel(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// TimeOption is one selectable time of day.
type TimeOption struct {
	Value string // "09:15"
	Label string // "9:15 AM"
}

// TimeOptions lists the times from..to (inclusive) in step increments.
func TimeOptions(from, to string, step time.Duration) ([]TimeOption, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %s", step)
	}
	f, err := ParseTimeOfDay(from)
	if err != nil {
		return nil, err
	}
	t, err := ParseTimeOfDay(to)
	if err != nil {
		return nil, err
	}
	var opts []TimeOption
	for cur := f; !cur.After(t); cur = cur.Add(step) {
		opts = append(opts, TimeOption{Value: cur.Format("15:04"), Label: cur.Format("3:04 PM")})
	}
	return opts, nil
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
