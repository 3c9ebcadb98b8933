package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/trivial-time-report/internal/config"
	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/report"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		input                   string
		name, start, end, descr string
		wantErr                 bool
	}{
		{"Review|09:00|10:30", "Review", "09:00", "10:30", "", false},
		{" Design | 10:30 | 12:00 | Checkout flow ", "Design", "10:30", "12:00", "Checkout flow", false},
		{"Ops|13:00|14:00|a|b", "Ops", "13:00", "14:00", "a|b", false},
		{"Review|09:00", "", "", "", "", true},
		{"", "", "", "", "", true},
	}
	for _, tt := range tests {
		name, start, end, descr, err := parseEntry(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseEntry(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if name != tt.name || start != tt.start || end != tt.end || descr != tt.descr {
			t.Errorf("parseEntry(%q) = %q %q %q %q", tt.input, name, start, end, descr)
		}
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2026, 2, 27, 15, 4, 5, 0, time.UTC)

	got, err := parseDay("", now)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("parseDay(\"\") = %v, want %v", got, want)
	}

	got, err = parseDay("2026-03-01", now)
	if err != nil {
		t.Fatal(err)
	}
	if got.Month() != time.March || got.Day() != 1 {
		t.Errorf("parseDay = %v", got)
	}

	if _, err := parseDay("01.03.2026", now); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestAddEntries(t *testing.T) {
	tr := report.NewTracker(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC))
	if err := addEntries(tr, []string{"B|10:00|11:00", "A|09:00|09:45|notes"}); err != nil {
		t.Fatal(err)
	}
	if n := len(tr.Entries()); n != 2 {
		t.Fatalf("got %d entries, want 2", n)
	}

	err := addEntries(tr, []string{"Bad|11:00|10:00"})
	if err == nil {
		t.Fatal("expected error for reversed times")
	}
	if !strings.Contains(err.Error(), "end time must be after start time") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func sampleRequest(t *testing.T, format model.Format) model.ReportRequest {
	t.Helper()
	tr := report.NewTracker(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC))
	tr.UserName = "Ada Lovelace"
	if err := addEntries(tr, []string{"Design|10:30|12:00|Checkout, cart", "Review|09:00|10:30"}); err != nil {
		t.Fatal(err)
	}
	req, err := tr.Payload(format)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestRenderPreview(t *testing.T) {
	cfg = config.Default()
	ctx := context.Background()

	csv, err := renderPreview(ctx, sampleRequest(t, model.FormatNone), "csv")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want 3:\n%s", len(lines), csv)
	}
	if !strings.HasPrefix(lines[1], `"Friday, February 27, 2026",Ada Lovelace,Review,,09:00,10:30,90`) {
		t.Errorf("first csv row = %q", lines[1])
	}
	if !strings.Contains(lines[2], `"Checkout, cart"`) {
		t.Errorf("second csv row = %q", lines[2])
	}

	js, err := renderPreview(ctx, sampleRequest(t, model.FormatNone), "json")
	if err != nil {
		t.Fatal(err)
	}
	var decoded model.ReportRequest
	if err := json.Unmarshal(js, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Stats.TotalTimeMinutes != 180 || len(decoded.Projects) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}

	text, err := renderPreview(ctx, sampleRequest(t, model.FormatNone), "text")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(text), "Ada Lovelace") {
		t.Errorf("text preview missing user name:\n%s", text)
	}

	html, err := renderPreview(ctx, sampleRequest(t, model.FormatHTML), "html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "<html") || !strings.Contains(string(html), "Checkout, cart") {
		t.Errorf("html preview looks wrong:\n%s", html)
	}
}

func TestRenderTimeline(t *testing.T) {
	if got := renderTimeline(nil); !strings.Contains(got, "No projects added yet.") {
		t.Errorf("empty timeline = %q", got)
	}

	req := sampleRequest(t, model.FormatNone)
	got := renderTimeline(req.Projects)
	for _, want := range []string{"Review", "Design", "Checkout, cart", "1h 30m", "3h 0m"} {
		if !strings.Contains(got, want) {
			t.Errorf("timeline missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Review") > strings.Index(got, "Design") {
		t.Errorf("timeline not sorted by start:\n%s", got)
	}
}

func TestTimeOptions(t *testing.T) {
	opts, err := timeOptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 49 {
		t.Fatalf("got %d options, want 49", len(opts))
	}
	if opts[0].Key != "9:00 AM" || opts[0].Value != "09:00" {
		t.Errorf("first option = %q/%q", opts[0].Key, opts[0].Value)
	}
	if last := opts[len(opts)-1]; last.Key != "9:00 PM" || last.Value != "21:00" {
		t.Errorf("last option = %q/%q", last.Key, last.Value)
	}
}
