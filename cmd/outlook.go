package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-report/internal/config"
	"github.com/Tiliavir/trivial-time-report/internal/msgraph"
	"github.com/Tiliavir/trivial-time-report/internal/report"
)

var outlookDate string

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Microsoft 365 and cache the token",
	Args:  cobra.NoArgs,
	RunE:  runOutlookLogin,
}

var outlookImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Show the entries a day's calendar would contribute",
	Args:  cobra.NoArgs,
	RunE:  runOutlookImport,
}

func init() {
	outlookImportCmd.Flags().StringVar(&outlookDate, "date", "", "Day to import (YYYY-MM-DD); defaults to today")
	outlookCmd.AddCommand(outlookLoginCmd)
	outlookCmd.AddCommand(outlookImportCmd)
}

func runOutlookLogin(cmd *cobra.Command, args []string) error {
	base, err := config.BaseDir()
	if err != nil {
		exit(2, err)
	}
	path := msgraph.TokenFile(base)
	if _, _, err := msgraph.Authorize(context.Background(), cfg.Outlook.TenantID, cfg.Outlook.ClientID, path, os.Stderr); err != nil {
		exit(1, fmt.Errorf("authentication failed: %w", err))
	}
	fmt.Println("Signed in. Token cached at", path)
	return nil
}

func runOutlookImport(cmd *cobra.Command, args []string) error {
	day, err := parseDay(outlookDate, time.Now())
	if err != nil {
		exit(1, err)
	}
	tr := report.NewTracker(day)
	if err := importOutlook(context.Background(), tr); err != nil {
		exit(2, err)
	}
	fmt.Println()
	fmt.Print(renderTimeline(tr.Entries()))
	return nil
}
