package model

// Entry represents one logged work item of a day.
type Entry struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// StartTime and EndTime are zero-padded wall-clock times ("09:30").
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	// Duration is EndTime minus StartTime in minutes.
	Duration int `json:"duration"`
}

// Stats is the aggregate over a set of entries.
type Stats struct {
	Count          int
	TotalMinutes   int
	AverageMinutes int
}
