package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/trivial-time-report/internal/config"
	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/msgraph"
	"github.com/Tiliavir/trivial-time-report/internal/report"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// parseEntry parses "name|start|end[|description]".
func parseEntry(s string) (name, start, end, description string, err error) {
	parts := strings.SplitN(s, "|", 4)
	if len(parts) < 3 {
		return "", "", "", "", fmt.Errorf("invalid entry %q (want name|start|end[|description])", s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 4 {
		description = parts[3]
	}
	return parts[0], parts[1], parts[2], description, nil
}

// parseDay parses a YYYY-MM-DD flag value; empty means today.
func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return timecalc.StartOfDay(now), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date value %q: %w", s, err)
	}
	return d, nil
}

// addEntries adds every --entry value to tr, stopping at the first error.
func addEntries(tr *report.Tracker, values []string) error {
	for _, v := range values {
		name, start, end, desc, err := parseEntry(v)
		if err != nil {
			return err
		}
		if _, err := tr.Add(name, desc, start, end); err != nil {
			return fmt.Errorf("entry %q: %w", v, err)
		}
	}
	return nil
}

// importOutlook adds the day's calendar events to tr. Events that cannot be
// mapped are reported on stderr and skipped.
func importOutlook(ctx context.Context, tr *report.Tracker) error {
	client, err := graphClient(ctx)
	if err != nil {
		return err
	}
	events, err := client.GetCalendarView(ctx, timecalc.StartOfDay(tr.Date), timecalc.EndOfDay(tr.Date), cfg.Outlook.Timezone)
	if err != nil {
		return fmt.Errorf("fetching calendar events: %w", err)
	}
	res, err := msgraph.EventsToEntries(events, tr.Date, cfg.Outlook.Timezone)
	if err != nil {
		return err
	}
	for _, e := range res.Entries {
		if _, err := tr.Add(e.Name, e.Description, e.StartTime, e.EndTime); err != nil {
			fmt.Fprintf(os.Stderr, "  ! Skipped %q: %v\n", e.Name, err)
		}
	}
	for _, err := range res.Errors {
		fmt.Fprintf(os.Stderr, "  ! %v\n", err)
	}
	fmt.Printf("Imported %d calendar events (%d skipped).\n", len(res.Entries), res.Skipped+len(res.Errors))
	return nil
}

// graphClient authorises against Microsoft Graph, running the device code
// flow when no cached token is usable.
func graphClient(ctx context.Context) (*msgraph.Client, error) {
	base, err := config.BaseDir()
	if err != nil {
		return nil, err
	}
	tokenPath := msgraph.TokenFile(base)
	tok, oc, err := msgraph.Authorize(ctx, cfg.Outlook.TenantID, cfg.Outlook.ClientID, tokenPath, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return msgraph.NewClient(ctx, tok, oc, tokenPath), nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderTimeline formats entries (sorted by start) and their stats.
func renderTimeline(entries []model.Entry) string {
	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString(mutedStyle.Render("No projects added yet."))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(titleStyle.Render("Timeline"))
	b.WriteString("\n")
	for i, e := range report.SortByStart(entries) {
		span := fmt.Sprintf("%8s – %-8s", timecalc.FormatTimeOfDay(e.StartTime), timecalc.FormatTimeOfDay(e.EndTime))
		fmt.Fprintf(&b, "%2d. %s  %-24s %s\n", i+1, timeStyle.Render(span), e.Name, timecalc.FormatDuration(e.Duration))
		if e.Description != "" {
			fmt.Fprintf(&b, "    %s\n", mutedStyle.Render(e.Description))
		}
	}
	st := report.ComputeStats(entries)
	b.WriteString(mutedStyle.Render("────────────────────────────────────────────────"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d   %s %s   %s %s\n",
		titleStyle.Render("Projects:"), st.Count,
		titleStyle.Render("Total:"), timecalc.FormatDuration(st.TotalMinutes),
		titleStyle.Render("Average:"), timecalc.FormatDuration(st.AverageMinutes))
	return b.String()
}
