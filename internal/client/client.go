package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Tiliavir/trivial-time-report/internal/model"
)

// DefaultTimeout bounds a single report request. Rendering a PDF on the
// server side can take several seconds, so this is generous.
const DefaultTimeout = 60 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// ReportError is a failure reported by the endpoint or the transport.
type ReportError struct {
	StatusCode int // 0 when no response was received
	Message    string
}

func (e *ReportError) Error() string {
	return e.Message
}

// Client posts report requests to the report-generation endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a Client for endpoint. A zero timeout selects DefaultTimeout.
func New(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient creates a Client using an existing http.Client.
func NewWithHTTPClient(endpoint string, hc *http.Client) *Client {
	return &Client{endpoint: endpoint, httpClient: hc}
}

// SendReport posts req and returns the server's success message. Any other
// outcome is returned as a *ReportError carrying the server's error text.
func (c *Client) SendReport(ctx context.Context, req model.ReportRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding report request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &ReportError{Message: fmt.Sprintf("report request failed: %v", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &ReportError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("reading response body: %v", err)}
	}

	var out model.ReportResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &ReportError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected response (%d): %s", resp.StatusCode, truncate(string(data), 200)),
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out.Success {
		return out.Message, nil
	}
	msg := out.Error
	if msg == "" {
		msg = "Failed to send report"
	}
	return "", &ReportError{StatusCode: resp.StatusCode, Message: msg}
}

// IsReportError reports whether err is a *ReportError.
func IsReportError(err error) bool {
	var re *ReportError
	return errors.As(err, &re)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
