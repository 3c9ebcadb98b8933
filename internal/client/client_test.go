package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-report/internal/model"
)

func sampleRequest() model.ReportRequest {
	return model.ReportRequest{
		UserName: "Ada",
		Date:     "Friday, February 27, 2026",
		Projects: []model.Entry{{Name: "A", StartTime: "09:00", EndTime: "10:00", Duration: 60}},
		Stats:    model.ReportStats{TotalProjects: 1, TotalTime: "1h 0m", AverageTime: "1h 0m", TotalTimeMinutes: 60},
	}
}

func TestSendReport_Success(t *testing.T) {
	var got model.ReportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer srv.Close()

	msg, err := New(srv.URL, 0).SendReport(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", msg)
	assert.Equal(t, "Ada", got.UserName)
	assert.Equal(t, 60, got.Projects[0].Duration)
}

func TestSendReport_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).SendReport(context.Background(), sampleRequest())
	require.Error(t, err)
	var re *ReportError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "boom", re.Message)
	assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
}

func TestSendReport_NonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).SendReport(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, IsReportError(err))
	assert.Contains(t, err.Error(), "502")
}

func TestSendReport_OKWithoutSuccessFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).SendReport(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, "Failed to send report", err.Error())
}

func TestSendReport_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	_, err := New(srv.URL, 50*time.Millisecond).SendReport(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, IsReportError(err))
}
