// Package server implements the report-generation endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Tiliavir/trivial-time-report/internal/mail"
	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/render"
	"github.com/Tiliavir/trivial-time-report/internal/report"
)

const maxRequestBytes = 1 << 20

// ErrPDFUnavailable is returned when a PDF is requested but no renderer is configured.
var ErrPDFUnavailable = errors.New("PDF rendering is not available")

// Handler renders and mails reports.
type Handler struct {
	Sender mail.Sender
	// PDF may be nil, in which case PDF requests fail.
	PDF        render.PDFRenderer
	From       string
	FromName   string
	Recipients []string
	Render     render.Options
	Now        func() time.Time
}

// Routes returns the HTTP handler serving the endpoint.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate-report", h.generateReport)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return logRequests(mux)
}

func (h *Handler) generateReport(w http.ResponseWriter, r *http.Request) {
	var req model.ReportRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ReportResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if err := report.ValidateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ReportResponse{Error: err.Error()})
		return
	}
	req = report.Recompute(req)

	msg, err := h.Deliver(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("user", req.UserName).Str("format", string(req.Format)).Msg("error sending report")
		writeJSON(w, http.StatusInternalServerError, model.ReportResponse{Error: "Failed to send report: " + err.Error()})
		return
	}
	log.Info().Str("user", req.UserName).Int("projects", len(req.Projects)).Str("format", string(req.Format)).Msg("report sent")
	writeJSON(w, http.StatusOK, model.ReportResponse{Success: true, Message: msg})
}

// Deliver renders req and sends one email to the HR recipients and the
// optional additional address. It returns the user facing success message.
func (h *Handler) Deliver(ctx context.Context, req model.ReportRequest) (string, error) {
	msg, err := h.Compose(ctx, req)
	if err != nil {
		return "", err
	}
	if err := h.Sender.Send(ctx, msg); err != nil {
		return "", err
	}
	extra := strings.TrimSpace(req.AdditionalEmail)
	if extra != "" {
		return "Daily report sent successfully to HR manager and " + extra, nil
	}
	return "Daily report sent successfully to HR manager", nil
}

// Compose renders the email for req, including the attachment selected by
// req.Format.
func (h *Handler) Compose(ctx context.Context, req model.ReportRequest) (mail.Message, error) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	html, err := render.HTML(req, h.Render, now())
	if err != nil {
		return mail.Message{}, err
	}
	msg := mail.Message{
		FromName: h.FromName,
		From:     h.From,
		To:       recipients(h.Recipients, req.AdditionalEmail),
		Subject:  render.Subject(req),
		Text:     render.Text(req, h.Render),
		HTML:     html,
	}

	switch req.Format {
	case model.FormatPDF:
		if h.PDF == nil {
			return mail.Message{}, ErrPDFUnavailable
		}
		data, err := h.PDF.Render(ctx, html)
		if err != nil {
			return mail.Message{}, err
		}
		msg.Attachments = append(msg.Attachments, mail.Attachment{
			Name:        render.AttachmentName(req, model.FormatPDF),
			ContentType: "application/pdf",
			Data:        data,
		})
	case model.FormatHTML:
		msg.Attachments = append(msg.Attachments, mail.Attachment{
			Name:        render.AttachmentName(req, model.FormatHTML),
			ContentType: "text/html; charset=utf-8",
			Data:        []byte(html),
		})
	}
	if err := msg.Validate(); err != nil {
		return mail.Message{}, fmt.Errorf("composing report email: %w", err)
	}
	return msg, nil
}

// recipients returns the fixed recipients plus extra, without duplicates.
func recipients(fixed []string, extra string) []string {
	out := make([]string, 0, len(fixed)+1)
	seen := map[string]bool{}
	for _, r := range append(append([]string{}, fixed...), strings.TrimSpace(extra)) {
		key := strings.ToLower(r)
		if r == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("writing response")
	}
}
