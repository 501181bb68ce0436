package service

import (
	"fmt"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
)

const (
	staleAfterHours         = 2.0
	staleSevereAfterHours   = 24.0
	freshReadingMaxAgeHours = 1.0
)

// SensorEvaluator inspects all sensors of a building. The status, staleness,
// and threshold rules are independent: a sensor can trigger several of them.
type SensorEvaluator struct{}

func NewSensorEvaluator() *SensorEvaluator { return &SensorEvaluator{} }

func (e *SensorEvaluator) Name() string { return "sensor" }

func (e *SensorEvaluator) Evaluate(b models.Building, snap TelemetrySnapshot) []models.AlertCandidate {
	var out []models.AlertCandidate
	for _, s := range snap.Sensors {
		out = append(out, evaluateSensor(s, snap.Now)...)
	}
	return out
}

func evaluateSensor(s models.Sensor, now time.Time) []models.AlertCandidate {
	var out []models.AlertCandidate

	switch s.Status {
	case models.SensorError:
		out = append(out, models.AlertCandidate{
			Type:     models.AlertCritical,
			Priority: models.PriorityCritical,
			Title:    fmt.Sprintf("%s: %s", titlePrefixSensorError, s.Name),
			Message:  fmt.Sprintf("Sensor %q reports an error state and needs attention.", s.Name),
			Category: models.CategorySensorError,
			Metadata: sensorMeta(s),
		})
	case models.SensorInactive:
		out = append(out, models.AlertCandidate{
			Type:     models.AlertWarning,
			Priority: models.PriorityHigh,
			Title:    fmt.Sprintf("%s: %s", titlePrefixSensorOffline, s.Name),
			Message:  fmt.Sprintf("Sensor %q is inactive and no longer delivering data.", s.Name),
			Category: models.CategorySensorOffline,
			Metadata: sensorMeta(s),
		})
	}

	if !s.LastReadingAt.IsZero() {
		hours := now.Sub(s.LastReadingAt).Hours()
		if hours > staleAfterHours {
			priority := models.PriorityMedium
			if hours > staleSevereAfterHours {
				priority = models.PriorityHigh
			}
			meta := sensorMeta(s)
			meta["hoursSinceReading"] = round1(hours)
			out = append(out, models.AlertCandidate{
				Type:     models.AlertWarning,
				Priority: priority,
				Title:    fmt.Sprintf("%s: %s", titlePrefixSensorDataStale, s.Name),
				Message:  fmt.Sprintf("Sensor %q has not reported for %.1f hours.", s.Name, hours),
				Category: models.CategoryStaleData,
				Metadata: meta,
			})
		}
	}

	if cand := evaluateThreshold(s); cand != nil {
		out = append(out, *cand)
	}

	return out
}

// evaluateThreshold checks the sensor's current value against its optional
// alerting band. Sensors without a value or a well-formed band are skipped.
func evaluateThreshold(s models.Sensor) *models.AlertCandidate {
	if s.CurrentValue == nil || s.AlertThreshold == nil {
		return nil
	}
	th := s.AlertThreshold
	if th.Min == nil && th.Max == nil {
		return nil
	}
	value := *s.CurrentValue

	if th.Max != nil && value > *th.Max {
		meta := sensorMeta(s)
		meta["value"] = value
		meta["threshold"] = *th.Max
		return &models.AlertCandidate{
			Type:     models.AlertWarning,
			Priority: models.PriorityMedium,
			Title:    fmt.Sprintf("%s: %s", titlePrefixValueHigh, s.Name),
			Message:  fmt.Sprintf("Sensor %q reads %.1f, above its maximum of %.1f.", s.Name, value, *th.Max),
			Category: models.CategoryValueHigh,
			Metadata: meta,
		}
	}
	if th.Min != nil && value < *th.Min {
		meta := sensorMeta(s)
		meta["value"] = value
		meta["threshold"] = *th.Min
		return &models.AlertCandidate{
			Type:     models.AlertWarning,
			Priority: models.PriorityMedium,
			Title:    fmt.Sprintf("%s: %s", titlePrefixValueLow, s.Name),
			Message:  fmt.Sprintf("Sensor %q reads %.1f, below its minimum of %.1f.", s.Name, value, *th.Min),
			Category: models.CategoryValueLow,
			Metadata: meta,
		}
	}
	return nil
}

func sensorMeta(s models.Sensor) map[string]any {
	return map[string]any{
		"sensorId":   s.ID,
		"sensorName": s.Name,
	}
}
