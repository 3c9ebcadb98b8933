package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-report/internal/client"
	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/report"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

const (
	pickerFrom = "09:00"
	pickerTo   = "21:00"
	pickerStep = 15 * time.Minute
)

const (
	actionAdd    = "add"
	actionRemove = "remove"
	actionSend   = "send"
	actionQuit   = "quit"
)

var (
	trackDate    string
	trackOutlook bool
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Interactively log today's projects and send the report",
	Args:  cobra.NoArgs,
	RunE:  runTrack,
}

func init() {
	trackCmd.Flags().StringVar(&trackDate, "date", "", "Report date (YYYY-MM-DD); defaults to today")
	trackCmd.Flags().BoolVar(&trackOutlook, "outlook", false, "Start with the day's Outlook calendar events")
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	day, err := parseDay(trackDate, time.Now())
	if err != nil {
		exit(1, err)
	}
	tr := report.NewTracker(day)

	fmt.Println(titleStyle.Render("Daily Time Tracker – " + timecalc.FormatDateLabel(day)))
	if err := submitterForm(tr).Run(); err != nil {
		return abortOr(err)
	}
	if trackOutlook {
		if err := importOutlook(ctx, tr); err != nil {
			fmt.Fprintln(os.Stderr, "Warning:", err)
		}
	}

	d := client.NewDispatcher(client.New(cfg.Endpoint.URL, cfg.Endpoint.Timeout))
	for {
		fmt.Println()
		fmt.Print(renderTimeline(tr.Entries()))

		action := actionAdd
		if err := actionForm(tr, &action).Run(); err != nil {
			return abortOr(err)
		}
		switch action {
		case actionAdd:
			if err := addProject(tr); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					continue
				}
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
		case actionRemove:
			if err := removeProject(tr); err != nil && !errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
		case actionSend:
			sendFromTracker(ctx, tr, d)
		case actionQuit:
			return nil
		}
	}
}

func abortOr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

func submitterForm(tr *report.Tracker) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Your name").
				Value(&tr.UserName).
				Validate(report.ValidateName),
			huh.NewInput().
				Title("Additional email (optional)").
				Description("A copy of the report is sent here as well").
				Value(&tr.UserEmail).
				Validate(report.ValidateEmail),
		),
	)
}

func actionForm(tr *report.Tracker, action *string) *huh.Form {
	opts := []huh.Option[string]{huh.NewOption("Add project", actionAdd)}
	if len(tr.Entries()) > 0 {
		opts = append(opts,
			huh.NewOption("Remove project", actionRemove),
			huh.NewOption("Send report", actionSend),
		)
	}
	opts = append(opts, huh.NewOption("Quit", actionQuit))
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What next?").
				Options(opts...).
				Value(action),
		),
	)
}

func timeOptions() ([]huh.Option[string], error) {
	times, err := timecalc.TimeOptions(pickerFrom, pickerTo, pickerStep)
	if err != nil {
		return nil, err
	}
	opts := make([]huh.Option[string], 0, len(times))
	for _, o := range times {
		opts = append(opts, huh.NewOption(o.Label, o.Value))
	}
	return opts, nil
}

func addProject(tr *report.Tracker) error {
	times, err := timeOptions()
	if err != nil {
		return err
	}
	var name, description, start, end string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&name).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("project name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description (optional)").
				Value(&description),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Start time").
				Options(times...).
				Height(8).
				Value(&start),
			huh.NewSelect[string]().
				Title("End time").
				Options(times...).
				Height(8).
				Value(&end).
				Validate(func(e string) error {
					return report.ValidateEntry(name, start, e)
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	_, err = tr.Add(name, description, start, end)
	return err
}

func removeProject(tr *report.Tracker) error {
	var opts []huh.Option[string]
	for _, e := range tr.Timeline() {
		label := fmt.Sprintf("%s (%s – %s)", e.Name, timecalc.FormatTimeOfDay(e.StartTime), timecalc.FormatTimeOfDay(e.EndTime))
		opts = append(opts, huh.NewOption(label, e.ID))
	}
	var id string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Remove which project?").
				Options(opts...).
				Value(&id),
		),
	).Run()
	if err != nil {
		return err
	}
	tr.Remove(id)
	return nil
}

// sendFromTracker asks for the attachment format and submits the report.
// Entries are cleared only after a confirmed success.
func sendFromTracker(ctx context.Context, tr *report.Tracker, d *client.Dispatcher) {
	format := cfg.Report.DefaultFormat
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Attachment").
				Options(
					huh.NewOption("None (email body only)", string(model.FormatNone)),
					huh.NewOption("HTML", string(model.FormatHTML)),
					huh.NewOption("PDF", string(model.FormatPDF)),
				).
				Value(&format),
		),
	).Run()
	if err != nil {
		return
	}

	req, err := tr.Payload(model.Format(format))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return
	}

	var res client.Result
	action := func() { res = d.Send(ctx, req) }
	if err := spinner.New().Title("Sending report...").Action(action).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return
	}
	if !res.OK() {
		fmt.Fprintln(os.Stderr, "Error:", res.Err)
		return
	}
	fmt.Println(res.Message)
	tr.Reset()
}
