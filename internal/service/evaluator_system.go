package service

import (
	"fmt"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
)

const (
	unresolvedCriticalAge = 24 * time.Hour
	alertStormWindow      = 2 * time.Hour
	alertStormThreshold   = 10
)

// SystemEvaluator inspects the building's own alert history for systemic
// problems: critical alerts nobody acted on, and alert storms.
type SystemEvaluator struct{}

func NewSystemEvaluator() *SystemEvaluator { return &SystemEvaluator{} }

func (e *SystemEvaluator) Name() string { return "system" }

func (e *SystemEvaluator) Evaluate(b models.Building, snap TelemetrySnapshot) []models.AlertCandidate {
	var out []models.AlertCandidate

	var staleCritical int
	for _, a := range snap.OpenAlerts {
		if a.Type == models.AlertCritical && a.Age(snap.Now) > unresolvedCriticalAge {
			staleCritical++
		}
	}
	if staleCritical > 0 {
		out = append(out, models.AlertCandidate{
			Type:     models.AlertCritical,
			Priority: models.PriorityCritical,
			Title:    TitleUnresolvedCritical,
			Message:  fmt.Sprintf("%d critical alert(s) have been open for more than 24 hours.", staleCritical),
			Category: models.CategoryUnresolvedCritical,
			Metadata: map[string]any{"count": staleCritical},
		})
	}

	if recent := len(snap.RecentAlerts); recent > alertStormThreshold {
		out = append(out, models.AlertCandidate{
			Type:     models.AlertWarning,
			Priority: models.PriorityHigh,
			Title:    TitleAlertFrequency,
			Message:  fmt.Sprintf("%d alerts were created in the last 2 hours; this may indicate a systemic fault.", recent),
			Category: models.CategoryAlertFrequency,
			Metadata: map[string]any{"count": recent},
		})
	}

	return out
}
