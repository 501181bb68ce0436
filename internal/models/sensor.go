package models

import "time"

// Sensor statuses.
const (
	SensorActive      = "active"
	SensorInactive    = "inactive"
	SensorError       = "error"
	SensorMaintenance = "maintenance"
)

// SensorThreshold is an optional alerting band for a sensor's value.
// Either bound may be absent.
type SensorThreshold struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Sensor is a physical or virtual measurement point attached to a building.
type Sensor struct {
	ID             string           `json:"id"`
	BuildingID     string           `json:"building_id"`
	Name           string           `json:"name"`
	Type           string           `json:"type"` // e.g. "temperature", "power"
	Status         string           `json:"status"`
	LastReadingAt  time.Time        `json:"last_reading_at"`
	CurrentValue   *float64         `json:"current_value,omitempty"`
	AlertThreshold *SensorThreshold `json:"alert_threshold,omitempty"`
}
