package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-report/internal/client"
	"github.com/Tiliavir/trivial-time-report/internal/mail"
	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/report"
)

type stubPDF struct {
	data []byte
	err  error
	html string
}

func (s *stubPDF) Render(_ context.Context, html string) ([]byte, error) {
	s.html = html
	return s.data, s.err
}

func newHandler(rec *mail.Recorder, pdf *stubPDF) *Handler {
	h := &Handler{
		Sender:     rec,
		From:       "tracker@example.com",
		FromName:   "Sense Time Tracker",
		Recipients: []string{"hr@example.com"},
		Now:        func() time.Time { return time.Date(2026, 2, 27, 18, 0, 0, 0, time.UTC) },
	}
	if pdf != nil {
		h.PDF = pdf
	}
	return h
}

func validRequest(t *testing.T) model.ReportRequest {
	t.Helper()
	req, err := report.BuildPayload("Ada", "Friday, February 27, 2026", []model.Entry{
		{Name: "A", StartTime: "10:00", EndTime: "10:30", Duration: 30},
		{Name: "B", StartTime: "09:30", EndTime: "10:00", Duration: 30},
	}, "", model.FormatNone)
	require.NoError(t, err)
	return req
}

func post(t *testing.T, h http.Handler, body any) (*httptest.ResponseRecorder, model.ReportResponse) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate-report", &buf))
	var resp model.ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestGenerateReport_HTMLBodyOnly(t *testing.T) {
	rec := &mail.Recorder{}
	w, resp := post(t, newHandler(rec, nil).Routes(), validRequest(t))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Daily report sent successfully to HR manager", resp.Message)

	sent := rec.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"hr@example.com"}, sent[0].To)
	assert.Equal(t, "Daily Time Report - Ada (Friday, February 27, 2026)", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "1. B")
	assert.Contains(t, sent[0].Text, "Dear HR Manager")
	assert.Empty(t, sent[0].Attachments)
}

func TestGenerateReport_AdditionalEmail(t *testing.T) {
	rec := &mail.Recorder{}
	req := validRequest(t)
	req.AdditionalEmail = "ada@example.com"

	_, resp := post(t, newHandler(rec, nil).Routes(), req)
	assert.Equal(t, "Daily report sent successfully to HR manager and ada@example.com", resp.Message)
	assert.Equal(t, []string{"hr@example.com", "ada@example.com"}, rec.Sent()[0].To)
}

func TestGenerateReport_HTMLAttachment(t *testing.T) {
	rec := &mail.Recorder{}
	req := validRequest(t)
	req.Format = model.FormatHTML

	w, _ := post(t, newHandler(rec, nil).Routes(), req)
	require.Equal(t, http.StatusOK, w.Code)
	att := rec.Sent()[0].Attachments
	require.Len(t, att, 1)
	assert.Equal(t, "time-report-friday-february-27-2026.html", att[0].Name)
	assert.Equal(t, rec.Sent()[0].HTML, string(att[0].Data))
}

func TestGenerateReport_PDFAttachment(t *testing.T) {
	rec := &mail.Recorder{}
	pdf := &stubPDF{data: []byte("%PDF-1.4 stub")}
	req := validRequest(t)
	req.Format = model.FormatPDF

	w, _ := post(t, newHandler(rec, pdf).Routes(), req)
	require.Equal(t, http.StatusOK, w.Code)
	att := rec.Sent()[0].Attachments
	require.Len(t, att, 1)
	assert.Equal(t, "application/pdf", att[0].ContentType)
	assert.Equal(t, pdf.data, att[0].Data)
	assert.Equal(t, rec.Sent()[0].HTML, pdf.html)
}

func TestGenerateReport_PDFFailureSendsNothing(t *testing.T) {
	rec := &mail.Recorder{}
	pdf := &stubPDF{err: errors.New("chrome crashed")}
	req := validRequest(t)
	req.Format = model.FormatPDF

	w, resp := post(t, newHandler(rec, pdf).Routes(), req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to send report: chrome crashed", resp.Error)
	assert.Empty(t, rec.Sent())
}

func TestGenerateReport_PDFUnavailable(t *testing.T) {
	req := validRequest(t)
	req.Format = model.FormatPDF
	w, resp := post(t, newHandler(&mail.Recorder{}, nil).Routes(), req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, resp.Error, ErrPDFUnavailable.Error())
}

func TestGenerateReport_MailFailure(t *testing.T) {
	rec := &mail.Recorder{Err: errors.New("535 authentication failed")}
	w, resp := post(t, newHandler(rec, nil).Routes(), validRequest(t))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Failed to send report: 535 authentication failed", resp.Error)
}

func TestGenerateReport_BadRequests(t *testing.T) {
	h := newHandler(&mail.Recorder{}, nil).Routes()

	w, resp := post(t, h, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error, "Invalid request body")

	noProjects := validRequest(t)
	noProjects.Projects = nil
	w, _ = post(t, h, noProjects)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	badTimes := validRequest(t)
	badTimes.Projects[0].EndTime = badTimes.Projects[0].StartTime
	w, resp = post(t, h, badTimes)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error, "end time must be after start time")
}

func TestRoutes_MethodAndHealth(t *testing.T) {
	h := newHandler(&mail.Recorder{}, nil).Routes()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/generate-report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRecipients(t *testing.T) {
	assert.Equal(t, []string{"hr@example.com"}, recipients([]string{"hr@example.com"}, "  "))
	assert.Equal(t, []string{"hr@example.com"}, recipients([]string{"hr@example.com"}, "HR@example.com"))
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, recipients([]string{"a@x.io"}, " b@x.io "))
}

func TestClientAgainstServer(t *testing.T) {
	rec := &mail.Recorder{}
	srv := httptest.NewServer(newHandler(rec, nil).Routes())
	defer srv.Close()

	c := client.New(srv.URL+"/generate-report", 5*time.Second)
	msg, err := c.SendReport(context.Background(), validRequest(t))
	require.NoError(t, err)
	assert.Equal(t, "Daily report sent successfully to HR manager", msg)

	rec.Err = errors.New("boom")
	_, err = c.SendReport(context.Background(), validRequest(t))
	require.Error(t, err)
	assert.Equal(t, "Failed to send report: boom", err.Error())
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to send report"))
}

func TestServeListener_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, ln, newHandler(&mail.Recorder{}, nil).Routes()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestGenerateReport_RecomputesDurationsAndStats(t *testing.T) {
	rec := &mail.Recorder{}
	req := validRequest(t)
	req.Projects[0].Duration = 500
	req.Stats = model.ReportStats{TotalProjects: 9, TotalTime: "42h 0m", AverageTime: "7h 0m", TotalTimeMinutes: 2520}

	w, _ := post(t, newHandler(rec, nil).Routes(), req)

	require.Equal(t, http.StatusOK, w.Code)
	sent := rec.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "- Total Tasks: 2")
	assert.Contains(t, sent[0].Text, "- Total Time Worked: 1h 0m")
	assert.Contains(t, sent[0].Text, "Duration: 0h 30m")
	assert.NotContains(t, sent[0].Text, "42h 0m")
	assert.NotContains(t, sent[0].HTML, "8h 20m")
}
