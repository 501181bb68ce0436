package models

// Building statuses. Only online buildings are evaluated.
const (
	BuildingOnline      = "online"
	BuildingOffline     = "offline"
	BuildingMaintenance = "maintenance"
)

// BuildingTypePool marks buildings whose zero production during daytime is
// expected (no rooftop generation).
const BuildingTypePool = "pool"

// hoursPerYear converts a yearly consumption figure into an hourly baseline.
const hoursPerYear = 365 * 24

// defaultYearlyConsumption is assumed when a building record carries no
// yearly figure (kWh).
const defaultYearlyConsumption = 100_000

// Building is a monitored site. Immutable during an engine run.
type Building struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"` // e.g. "office", "school", "pool"
	YearlyConsumption float64 `json:"yearly_consumption"` // kWh
	Status            string  `json:"status"`             // online | offline | maintenance
	OwnerID           string  `json:"owner_id"`
}

// ExpectedHourly returns the building's baseline hourly consumption derived
// from its yearly figure, falling back to the documented default when unset.
func (b Building) ExpectedHourly() float64 {
	yearly := b.YearlyConsumption
	if yearly <= 0 {
		yearly = defaultYearlyConsumption
	}
	return yearly / hoursPerYear
}
