package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-report/internal/client"
	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/report"
)

var (
	sendName    string
	sendEmail   string
	sendDate    string
	sendEntries []string
	sendFormat  string
	sendOutlook bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a daily report built from flags",
	Example: `  ttr send --name "Ada Lovelace" \
    --entry "Code review|09:30|10:15" \
    --entry "Design|10:15|12:00|Checkout flow" --format pdf`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendName, "name", "", "Your name (required)")
	sendCmd.Flags().StringVar(&sendEmail, "email", "", "Also send a copy to this address")
	sendCmd.Flags().StringVar(&sendDate, "date", "", "Report date (YYYY-MM-DD); defaults to today")
	sendCmd.Flags().StringArrayVar(&sendEntries, "entry", nil, "Project as name|start|end[|description]; repeatable")
	sendCmd.Flags().StringVar(&sendFormat, "format", "", "Attachment format: html, pdf (default from config)")
	sendCmd.Flags().BoolVar(&sendOutlook, "outlook", false, "Add the day's Outlook calendar events")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	day, err := parseDay(sendDate, time.Now())
	if err != nil {
		exit(1, err)
	}
	tr := report.NewTracker(day)
	tr.UserName = sendName
	tr.UserEmail = sendEmail
	if err := addEntries(tr, sendEntries); err != nil {
		exit(1, err)
	}
	if sendOutlook {
		if err := importOutlook(ctx, tr); err != nil {
			exit(2, err)
		}
	}

	format := sendFormat
	if !cmd.Flags().Changed("format") {
		format = cfg.Report.DefaultFormat
	}
	f, err := model.ParseFormat(format)
	if err != nil {
		exit(1, err)
	}

	req, err := tr.Payload(f)
	if err != nil {
		exit(1, err)
	}

	fmt.Print(renderTimeline(tr.Entries()))
	fmt.Println("Sending report...")

	d := client.NewDispatcher(client.New(cfg.Endpoint.URL, cfg.Endpoint.Timeout))
	res := d.Send(ctx, req)
	if !res.OK() {
		fmt.Fprintln(os.Stderr, "Error:", res.Err)
		os.Exit(2)
	}
	fmt.Println(res.Message)
	return nil
}
