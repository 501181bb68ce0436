package models

import "time"

// Insight periods.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// IssueSignature groups alerts by the leading words of their title.
type IssueSignature struct {
	Signature string `json:"signature"`
	Count     int    `json:"count"`
}

// AlertInsights summarizes alert history for a set of buildings over a period.
type AlertInsights struct {
	Period          string           `json:"period"`
	Since           time.Time        `json:"since"`
	TotalAlerts     int              `json:"total_alerts"`
	CriticalAlerts  int              `json:"critical_alerts"`
	ResolvedAlerts  int              `json:"resolved_alerts"`
	ResolutionRate  float64          `json:"resolution_rate"` // resolved/total, 0 when empty
	Trend           string           `json:"trend"`
	TopIssues       []IssueSignature `json:"top_issues"`
	Recommendations []string         `json:"recommendations"`
}

// BuildingRunResult is one building's entry in a generation run.
type BuildingRunResult struct {
	BuildingID   string `json:"building_id"`
	BuildingName string `json:"building_name"`
	Generated    int    `json:"generated"`
	Error        string `json:"error,omitempty"`
}

// GenerationResult is the outcome of a full generation pass.
type GenerationResult struct {
	Buildings      []BuildingRunResult `json:"buildings"`
	TotalGenerated int                 `json:"total_generated"`
	StartedAt      time.Time           `json:"started_at"`
	FinishedAt     time.Time           `json:"finished_at"`
}

// ResolutionResult is the outcome of an auto-resolution pass.
type ResolutionResult struct {
	Checked  int `json:"checked"`
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}
