// Package render turns a report request into the email subject, plain text
// and HTML bodies, and optionally a PDF document.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

const (
	DefaultCompany = "Sense Projects Pvt Ltd"
	DefaultSystem  = "Sense Time Tracker System"
)

// Options carries the branding printed in the report footer.
type Options struct {
	Company string
	System  string
}

func (o Options) withDefaults() Options {
	if o.Company == "" {
		o.Company = DefaultCompany
	}
	if o.System == "" {
		o.System = DefaultSystem
	}
	return o
}

type projectView struct {
	Index       int
	Name        string
	Description string
	Start       string
	End         string
	Duration    string
}

type reportView struct {
	UserName    string
	Date        string
	Stats       model.ReportStats
	Projects    []projectView
	Company     string
	System      string
	GeneratedAt string
}

func projectViews(projects []model.Entry) []projectView {
	views := make([]projectView, len(projects))
	for i, p := range projects {
		views[i] = projectView{
			Index:       i + 1,
			Name:        p.Name,
			Description: p.Description,
			Start:       timecalc.FormatTimeOfDay(p.StartTime),
			End:         timecalc.FormatTimeOfDay(p.EndTime),
			Duration:    timecalc.FormatDuration(p.Duration),
		}
	}
	return views
}

// Subject returns the email subject line.
func Subject(req model.ReportRequest) string {
	return fmt.Sprintf("Daily Time Report - %s (%s)", req.UserName, req.Date)
}

// HTML renders the report document. All request fields are escaped.
func HTML(req model.ReportRequest, opts Options, generatedAt time.Time) (string, error) {
	opts = opts.withDefaults()
	view := reportView{
		UserName:    req.UserName,
		Date:        req.Date,
		Stats:       req.Stats,
		Projects:    projectViews(req.Projects),
		Company:     opts.Company,
		System:      opts.System,
		GeneratedAt: generatedAt.Format("1/2/2006, 3:04:05 PM"),
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("rendering report HTML: %w", err)
	}
	return buf.String(), nil
}

// Text renders the plain-text alternative body.
func Text(req model.ReportRequest, opts Options) string {
	opts = opts.withDefaults()
	var b strings.Builder
	b.WriteString("Dear HR Manager,\n\n")
	fmt.Fprintf(&b, "Please find below the daily time report for %s dated %s.\n\n", req.UserName, req.Date)
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "- Total Tasks: %d\n", req.Stats.TotalProjects)
	fmt.Fprintf(&b, "- Total Time Worked: %s\n", req.Stats.TotalTime)
	fmt.Fprintf(&b, "- Average Time per Task: %s\n\n", req.Stats.AverageTime)
	b.WriteString("Tasks completed:\n")
	for _, p := range projectViews(req.Projects) {
		fmt.Fprintf(&b, "%d. %s (%s - %s, Duration: %s)\n", p.Index, p.Name, p.Start, p.End, p.Duration)
	}
	fmt.Fprintf(&b, "\nBest regards,\n%s\n\n---\n", req.UserName)
	fmt.Fprintf(&b, "This report was generated automatically by the %s.\n", opts.System)
	return b.String()
}

// AttachmentName returns the file name for a report attachment, derived from
// the date label ("Friday, February 27, 2026" -> "time-report-friday-february-27-2026.pdf").
func AttachmentName(req model.ReportRequest, format model.Format) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(req.Date) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "report"
	}
	return "time-report-" + slug + "." + string(format)
}
