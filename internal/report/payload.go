package report

import (
	"strings"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// BuildPayload assembles the request sent to the report endpoint: entries
// sorted by start time, stats attached, and the extra recipient trimmed and
// dropped when blank.
func BuildPayload(userName, dateLabel string, entries []model.Entry, additionalEmail string, format model.Format) (model.ReportRequest, error) {
	if err := ValidateSubmitter(userName, additionalEmail); err != nil {
		return model.ReportRequest{}, err
	}
	if len(entries) == 0 {
		return model.ReportRequest{}, &ValidationError{Field: "projects", Message: "please add at least one project before sending the report"}
	}
	if _, err := model.ParseFormat(string(format)); err != nil {
		return model.ReportRequest{}, &ValidationError{Field: "format", Message: err.Error()}
	}

	sorted := SortByStart(entries)
	return model.ReportRequest{
		UserName:        strings.TrimSpace(userName),
		Date:            dateLabel,
		Projects:        sorted,
		Stats:           WireStats(ComputeStats(sorted)),
		AdditionalEmail: strings.TrimSpace(additionalEmail),
		Format:          format,
	}, nil
}

// Recompute derives durations and stats of a validated request from its time
// ranges, ignoring the numbers the sender supplied. Projects are returned
// sorted by start time.
func Recompute(req model.ReportRequest) model.ReportRequest {
	projects := make([]model.Entry, len(req.Projects))
	for i, p := range req.Projects {
		p.StartTime = normalizeOrKeep(p.StartTime)
		p.EndTime = normalizeOrKeep(p.EndTime)
		if d, err := timecalc.ComputeDuration(p.StartTime, p.EndTime); err == nil {
			p.Duration = d
		}
		projects[i] = p
	}
	req.Projects = SortByStart(projects)
	req.Stats = WireStats(ComputeStats(req.Projects))
	return req
}
