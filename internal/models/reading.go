package models

import "time"

// Reading granularities. Rules select the one matching their window.
const (
	GranularityHour = "hour"
	GranularityDay  = "day"
)

// EnergyReading is one point of a building's energy time series.
type EnergyReading struct {
	BuildingID  string    `json:"building_id"`
	Timestamp   time.Time `json:"timestamp"`
	Consumption float64   `json:"consumption"` // kWh
	Production  float64   `json:"production"`  // kWh
	Efficiency  float64   `json:"efficiency"`  // percent, 0..100
	CO2Saved    float64   `json:"co2_saved"`   // kg
	Granularity string    `json:"granularity"` // hour | day
}
