package model

import "fmt"

// Format selects the attachment sent along with the report email.
type Format string

const (
	// FormatNone sends the HTML body without an attachment.
	FormatNone Format = ""
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatNone, FormatHTML, FormatPDF:
		return f, nil
	default:
		return FormatNone, fmt.Errorf("unknown report format %q (want html or pdf)", s)
	}
}

// ReportStats is the wire form of Stats with pre-formatted durations.
type ReportStats struct {
	TotalProjects    int    `json:"totalProjects"`
	TotalTime        string `json:"totalTime"`
	AverageTime      string `json:"averageTime"`
	TotalTimeMinutes int    `json:"totalTimeMinutes"`
}

// ReportRequest is the payload posted to the report endpoint.
type ReportRequest struct {
	UserName        string      `json:"userName"`
	Date            string      `json:"date"`
	Projects        []Entry     `json:"projects"`
	Stats           ReportStats `json:"stats"`
	AdditionalEmail string      `json:"additionalEmail,omitempty"`
	Format          Format      `json:"format,omitempty"`
}

// ReportResponse is the body returned by the report endpoint.
type ReportResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
