package service

import (
	"fmt"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
)

const (
	performanceMinReadings     = 3
	performanceFullWindow      = 7
	weeklyEfficiencyThreshold  = 50.0
	efficiencyDeclineFactor    = 0.9
	consumptionVariationCutoff = 0.3
	declineEdgeSize            = 3
)

// PerformanceEvaluator inspects the trailing 7 daily readings of a building.
// It stays silent below three readings: the statistics are meaningless.
type PerformanceEvaluator struct{}

func NewPerformanceEvaluator() *PerformanceEvaluator { return &PerformanceEvaluator{} }

func (e *PerformanceEvaluator) Name() string { return "performance" }

func (e *PerformanceEvaluator) Evaluate(b models.Building, snap TelemetrySnapshot) []models.AlertCandidate {
	readings := snap.DailyReadings
	if len(readings) < performanceMinReadings {
		return nil
	}

	var out []models.AlertCandidate

	avgEfficiency := mean(efficiencies(readings))
	if avgEfficiency < weeklyEfficiencyThreshold {
		out = append(out, models.AlertCandidate{
			Type:     models.AlertWarning,
			Priority: models.PriorityHigh,
			Title:    TitlePoorWeeklyEfficiency,
			Message:  fmt.Sprintf("Average efficiency over the last week is %.1f%%.", avgEfficiency),
			Category: models.CategoryPoorEfficiency,
			Metadata: map[string]any{"averageEfficiency": round1(avgEfficiency)},
		})
	}

	// Readings arrive newest-first: the head is the recent edge, the tail
	// the oldest.
	if len(readings) >= performanceFullWindow {
		recent := mean(efficiencies(readings[:declineEdgeSize]))
		oldest := mean(efficiencies(readings[len(readings)-declineEdgeSize:]))
		if oldest > 0 && recent < efficiencyDeclineFactor*oldest {
			out = append(out, models.AlertCandidate{
				Type:     models.AlertInfo,
				Priority: models.PriorityMedium,
				Title:    TitleEfficiencyDecline,
				Message: fmt.Sprintf("Efficiency declined from %.1f%% to %.1f%% over the week.",
					oldest, recent),
				Category: models.CategoryEfficiencyDecline,
				Metadata: map[string]any{
					"recentEfficiency": round1(recent),
					"oldestEfficiency": round1(oldest),
				},
			})
		}
	}

	cons := consumptions(readings)
	if m := mean(cons); m > 0 {
		if cv := stddev(cons) / m; cv > consumptionVariationCutoff {
			out = append(out, models.AlertCandidate{
				Type:     models.AlertInfo,
				Priority: models.PriorityLow,
				Title:    TitleUsageInconsistent,
				Message:  fmt.Sprintf("Daily consumption varies strongly (coefficient of variation %.2f).", cv),
				Category: models.CategoryUsageInconsistent,
				Metadata: map[string]any{"coefficientOfVariation": round2(cv)},
			})
		}
	}

	return out
}
