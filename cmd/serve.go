package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-report/internal/config"
	"github.com/Tiliavir/trivial-time-report/internal/mail"
	"github.com/Tiliavir/trivial-time-report/internal/msgraph"
	"github.com/Tiliavir/trivial-time-report/internal/render"
	"github.com/Tiliavir/trivial-time-report/internal/server"
)

var (
	serveAddr  string
	serveNoPDF bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the report endpoint that renders and mails reports",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoPDF, "no-pdf", false, "Disable PDF rendering")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		exit(1, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender, err := newMailSender(ctx, cfg.Mail)
	if err != nil {
		exit(2, err)
	}
	h := newHandler(sender, !serveNoPDF)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	log.Info().Str("addr", addr).Str("transport", cfg.Mail.Transport).Strs("hr", cfg.Mail.HRRecipients).Msg("serving reports")
	if err := server.Serve(ctx, addr, h.Routes()); err != nil {
		exit(2, err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// newHandler builds a report handler from the loaded config.
func newHandler(sender mail.Sender, withPDF bool) *server.Handler {
	h := &server.Handler{
		Sender:     sender,
		From:       cfg.Mail.From,
		FromName:   cfg.Mail.FromName,
		Recipients: cfg.Mail.HRRecipients,
		Render: render.Options{
			Company: cfg.Report.Company,
			System:  cfg.Report.System,
		},
	}
	if withPDF {
		h.PDF = &render.ChromeRenderer{
			ExecPath:  cfg.PDF.ChromePath,
			Timeout:   cfg.PDF.Timeout,
			NoSandbox: cfg.PDF.NoSandbox,
		}
	}
	return h
}

// newMailSender selects the transport configured under mail.transport.
func newMailSender(ctx context.Context, mc config.MailConfig) (mail.Sender, error) {
	switch mc.Transport {
	case "graph":
		c, err := graphClient(ctx)
		if err != nil {
			return nil, err
		}
		return &msgraph.Mailer{Client: c}, nil
	case "smtp", "":
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     mc.SMTP.Host,
			Port:     mc.SMTP.Port,
			Username: mc.SMTP.Username,
			Password: mc.SMTP.Password,
		})
	default:
		return nil, fmt.Errorf("unknown mail transport %q", mc.Transport)
	}
}
