package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-report/internal/config"
	"github.com/Tiliavir/trivial-time-report/internal/logging"
)

// cfg is loaded once before any subcommand runs.
var cfg config.Config

var (
	logLevel  string
	logPretty bool
)

var rootCmd = &cobra.Command{
	Use:   "ttr",
	Short: "Trivial Time Report – log a day's projects and email the summary to HR",
	Long: `ttr collects the projects you worked on today, computes durations and
totals, and sends a formatted daily report (HTML or PDF) to HR.
Configuration lives in ~/.ttr/config.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Warning:", err)
		}
		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		return logging.Setup(os.Stderr, level, cfg.Log.Pretty || logPretty)
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", false, "Human readable log output")

	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(outlookCmd)
}

// exit prints err and terminates with code: 1 for invalid input, 2 for
// delivery and I/O failures.
func exit(code int, err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}
