package models

import "time"

// AlertType classifies the severity class of an alert.
type AlertType string

const (
	AlertInfo     AlertType = "info"
	AlertWarning  AlertType = "warning"
	AlertCritical AlertType = "critical"
)

// AlertPriority orders alerts for operator attention. PriorityCritical is
// reserved for safety or operationally severe conditions.
type AlertPriority string

const (
	PriorityLow      AlertPriority = "low"
	PriorityMedium   AlertPriority = "medium"
	PriorityHigh     AlertPriority = "high"
	PriorityCritical AlertPriority = "critical"
)

// Alert categories emitted by the rule evaluators.
const (
	CategoryDataMissing         = "data_missing"
	CategoryHighConsumption     = "high_consumption"
	CategoryCriticalConsumption = "critical_consumption"
	CategoryLowEfficiency       = "low_efficiency"
	CategoryNoProduction        = "no_production"
	CategoryConsumptionTrend    = "consumption_trend"
	CategorySensorError         = "sensor_error"
	CategorySensorOffline       = "sensor_offline"
	CategoryStaleData           = "stale_data"
	CategoryValueHigh           = "value_high"
	CategoryValueLow            = "value_low"
	CategoryPoorEfficiency      = "poor_efficiency"
	CategoryEfficiencyDecline   = "efficiency_decline"
	CategoryUsageInconsistent   = "usage_inconsistent"
	CategoryUnresolvedCritical  = "unresolved_critical"
	CategoryAlertFrequency      = "alert_frequency"
)

// Alert is a persisted, de-duplicated finding against a building.
// Resolution is terminal: a recurring condition creates a new alert.
type Alert struct {
	ID             string         `json:"id"`
	BuildingID     string         `json:"building_id"`
	Type           AlertType      `json:"type"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Priority       AlertPriority  `json:"priority"`
	Category       string         `json:"category"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	IsRead         bool           `json:"is_read"`
	IsResolved     bool           `json:"is_resolved"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
	ResolvedBy     *string        `json:"resolved_by,omitempty"` // nil on a resolved alert means auto-resolved
	ResolutionNote string         `json:"resolution_note,omitempty"`
}

// Age returns how long the alert has been open relative to now.
func (a Alert) Age(now time.Time) time.Duration {
	return now.Sub(a.CreatedAt)
}

// AlertCandidate is an evaluator finding before deduplication and
// persistence. Candidates carry no identity or lifecycle fields.
type AlertCandidate struct {
	Type     AlertType      `json:"type"`
	Priority AlertPriority  `json:"priority"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Category string         `json:"category"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SensorID extracts the sensor reference some categories carry in metadata.
func (a Alert) SensorID() (string, bool) {
	if a.Metadata == nil {
		return "", false
	}
	id, ok := a.Metadata["sensorId"].(string)
	return id, ok && id != ""
}
