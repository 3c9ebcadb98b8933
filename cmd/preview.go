package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-report/internal/mail"
	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/render"
	"github.com/Tiliavir/trivial-time-report/internal/report"
)

var (
	previewName    string
	previewDate    string
	previewEntries []string
	previewFormat  string
	previewOut     string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a report locally without sending it",
	Long: `Render the report exactly as it would be mailed and write it to a file
or stdout. Formats: html, pdf, text, csv, json.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewName, "name", "", "Your name (required)")
	previewCmd.Flags().StringVar(&previewDate, "date", "", "Report date (YYYY-MM-DD); defaults to today")
	previewCmd.Flags().StringArrayVar(&previewEntries, "entry", nil, "Project as name|start|end[|description]; repeatable")
	previewCmd.Flags().StringVar(&previewFormat, "format", "html", "Output format: html, pdf, text, csv, json")
	previewCmd.Flags().StringVarP(&previewOut, "output", "o", "", "Output file; defaults to stdout (pdf defaults to the attachment name)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	day, err := parseDay(previewDate, time.Now())
	if err != nil {
		exit(1, err)
	}
	tr := report.NewTracker(day)
	tr.UserName = previewName
	if err := addEntries(tr, previewEntries); err != nil {
		exit(1, err)
	}

	attach := model.FormatNone
	switch previewFormat {
	case "html":
		attach = model.FormatHTML
	case "pdf":
		attach = model.FormatPDF
	case "text", "csv", "json":
	default:
		exit(1, fmt.Errorf("unknown format %q (want html, pdf, text, csv or json)", previewFormat))
	}
	req, err := tr.Payload(attach)
	if err != nil {
		exit(1, err)
	}

	data, err := renderPreview(ctx, req, previewFormat)
	if err != nil {
		exit(2, err)
	}

	out := previewOut
	if out == "" && previewFormat == "pdf" {
		out = render.AttachmentName(req, model.FormatPDF)
	}
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		exit(2, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", out, len(data))
	return nil
}

// renderPreview produces the bytes of one preview format. html and pdf go
// through the same composition path as the server, with a recording sender.
func renderPreview(ctx context.Context, req model.ReportRequest, format string) ([]byte, error) {
	opts := render.Options{Company: cfg.Report.Company, System: cfg.Report.System}
	switch format {
	case "text":
		return []byte(render.Text(req, opts)), nil
	case "json":
		data, err := json.MarshalIndent(req, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding JSON: %w", err)
		}
		return append(data, '\n'), nil
	case "csv":
		var b strings.Builder
		writeCSV(&b, req)
		return []byte(b.String()), nil
	}

	h := newHandler(&mail.Recorder{}, format == "pdf")
	msg, err := h.Compose(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(msg.Attachments) == 0 {
		return []byte(msg.HTML), nil
	}
	return msg.Attachments[0].Data, nil
}

func writeCSV(w io.Writer, req model.ReportRequest) {
	fmt.Fprintln(w, "date,name,project,description,start,end,duration_minutes")
	for _, p := range req.Projects {
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%d\n",
			csvEscape(req.Date),
			csvEscape(req.UserName),
			csvEscape(p.Name),
			csvEscape(p.Description),
			csvEscape(p.StartTime),
			csvEscape(p.EndTime),
			p.Duration,
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
