package service

import (
	"fmt"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
)

// Alert titles. The auto-resolver matches on these, so they are shared
// constants rather than inline strings.
const (
	TitleEnergyDataMissing     = "Energy Data Missing"
	TitleHighConsumption       = "High Energy Consumption"
	TitleCriticalConsumption   = "Critical Energy Consumption"
	TitleLowEfficiency         = "Low Energy Efficiency"
	TitleNoProduction          = "No Energy Production"
	TitleConsumptionTrend      = "Rising Consumption Trend"
	TitlePoorWeeklyEfficiency  = "Poor Weekly Efficiency"
	TitleEfficiencyDecline     = "Efficiency Declining"
	TitleUsageInconsistent     = "Inconsistent Energy Usage"
	TitleUnresolvedCritical    = "Unresolved Critical Alerts"
	TitleAlertFrequency        = "High Alert Frequency"
	titlePrefixSensorError     = "Sensor Error"
	titlePrefixSensorOffline   = "Sensor Offline"
	titlePrefixSensorDataStale = "Sensor Data Stale"
	titlePrefixValueHigh       = "Sensor Value High"
	titlePrefixValueLow        = "Sensor Value Low"
)

// Energy rule thresholds, expressed as multiples of the building's expected
// hourly consumption unless noted.
const (
	highConsumptionFactor     = 2.0
	severeConsumptionFactor   = 3.0
	criticalConsumptionFactor = 5.0
	lowEfficiencyThreshold    = 60.0
	poorEfficiencyThreshold   = 40.0
	trendFactor               = 1.3
	trendWindow               = 12
	productionHourStart       = 8
	productionHourEnd         = 18
)

// EnergyEvaluator inspects the trailing 24 hourly readings of a building.
type EnergyEvaluator struct{}

func NewEnergyEvaluator() *EnergyEvaluator { return &EnergyEvaluator{} }

func (e *EnergyEvaluator) Name() string { return "energy" }

func (e *EnergyEvaluator) Evaluate(b models.Building, snap TelemetrySnapshot) []models.AlertCandidate {
	readings := snap.HourlyReadings
	if len(readings) == 0 {
		return []models.AlertCandidate{{
			Type:     models.AlertWarning,
			Priority: models.PriorityMedium,
			Title:    TitleEnergyDataMissing,
			Message:  "No hourly energy readings were recorded in the last 24 hours.",
			Category: models.CategoryDataMissing,
		}}
	}

	var out []models.AlertCandidate

	latest := readings[0]
	expected := b.ExpectedHourly()

	if latest.Consumption > highConsumptionFactor*expected {
		priority := models.PriorityHigh
		if latest.Consumption > severeConsumptionFactor*expected {
			priority = models.PriorityCritical
		}
		out = append(out, models.AlertCandidate{
			Type:     models.AlertWarning,
			Priority: priority,
			Title:    TitleHighConsumption,
			Message: fmt.Sprintf("Current consumption %.1f kWh exceeds the expected hourly baseline of %.1f kWh.",
				latest.Consumption, expected),
			Category: models.CategoryHighConsumption,
			Metadata: map[string]any{
				"currentConsumption":  round1(latest.Consumption),
				"expectedConsumption": round1(expected),
				"exceedsBy":           round1(latest.Consumption - expected),
			},
		})
	}

	if latest.Consumption >= criticalConsumptionFactor*expected {
		out = append(out, models.AlertCandidate{
			Type:     models.AlertCritical,
			Priority: models.PriorityCritical,
			Title:    TitleCriticalConsumption,
			Message: fmt.Sprintf("Consumption %.1f kWh is at least five times the expected hourly baseline of %.1f kWh. Immediate inspection required.",
				latest.Consumption, expected),
			Category: models.CategoryCriticalConsumption,
			Metadata: map[string]any{
				"currentConsumption":  round1(latest.Consumption),
				"expectedConsumption": round1(expected),
			},
		})
	}

	if latest.Efficiency < lowEfficiencyThreshold {
		priority := models.PriorityMedium
		if latest.Efficiency < poorEfficiencyThreshold {
			priority = models.PriorityHigh
		}
		out = append(out, models.AlertCandidate{
			Type:     models.AlertWarning,
			Priority: priority,
			Title:    TitleLowEfficiency,
			Message:  fmt.Sprintf("Energy efficiency dropped to %.1f%%.", latest.Efficiency),
			Category: models.CategoryLowEfficiency,
			Metadata: map[string]any{"efficiency": round1(latest.Efficiency)},
		})
	}

	if b.Type != models.BuildingTypePool && latest.Production == 0 {
		if hour := snap.Now.Hour(); hour >= productionHourStart && hour <= productionHourEnd {
			out = append(out, models.AlertCandidate{
				Type:     models.AlertWarning,
				Priority: models.PriorityMedium,
				Title:    TitleNoProduction,
				Message:  "No energy production recorded during daytime hours.",
				Category: models.CategoryNoProduction,
				Metadata: map[string]any{"hour": hour},
			})
		}
	}

	if len(readings) >= 2*trendWindow {
		recent := mean(consumptions(readings[:trendWindow]))
		older := mean(consumptions(readings[trendWindow : 2*trendWindow]))
		if older > 0 && recent > trendFactor*older {
			out = append(out, models.AlertCandidate{
				Type:     models.AlertInfo,
				Priority: models.PriorityLow,
				Title:    TitleConsumptionTrend,
				Message: fmt.Sprintf("Average consumption rose from %.1f to %.1f kWh over the last 24 hours.",
					older, recent),
				Category: models.CategoryConsumptionTrend,
				Metadata: map[string]any{
					"recentAverage": round1(recent),
					"olderAverage":  round1(older),
				},
			})
		}
	}

	return out
}
