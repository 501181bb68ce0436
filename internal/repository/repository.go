package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
)

// BuildingRepo is the building side of the telemetry store contract.
type BuildingRepo interface {
	List(ctx context.Context, status string) ([]models.Building, error)
	GetByID(ctx context.Context, id string) (*models.Building, error)
}

// ReadingRepo serves energy time series, newest-first.
type ReadingRepo interface {
	ListByBuilding(ctx context.Context, buildingID, granularity string, limit int, since time.Time) ([]models.EnergyReading, error)
	Append(ctx context.Context, r models.EnergyReading) error
}

// SensorRepo serves a building's sensors.
type SensorRepo interface {
	ListByBuilding(ctx context.Context, buildingID string) ([]models.Sensor, error)
	GetByID(ctx context.Context, id string) (*models.Sensor, error)
}

// AlertFilter narrows alert queries. Zero values mean "no constraint".
type AlertFilter struct {
	BuildingID string
	IsResolved *bool
	Priority   models.AlertPriority
	Since      time.Time
}

// AlertRepo is the alert store contract: create, find duplicates, update
// resolution state.
type AlertRepo interface {
	Insert(ctx context.Context, a models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	FindOpen(ctx context.Context, buildingID, title string, since time.Time) (*models.Alert, error)
	List(ctx context.Context, f AlertFilter) ([]models.Alert, error)
	UpdateResolution(ctx context.Context, id string, resolvedAt time.Time, resolvedBy *string, note string) error
	MarkRead(ctx context.Context, id string) error
}

// Repository bundles the store contracts behind one wiring point.
type Repository struct {
	Buildings BuildingRepo
	Readings  ReadingRepo
	Sensors   SensorRepo
	Alerts    AlertRepo
}

// NewRepository wires the SQL implementations for the given driver
// ("sqlite" or "postgres").
func NewRepository(conn *sql.DB, driver string) *Repository {
	return &Repository{
		Buildings: NewBuildingSQL(conn, driver),
		Readings:  NewReadingSQL(conn, driver),
		Sensors:   NewSensorSQL(conn, driver),
		Alerts:    NewAlertSQL(conn, driver),
	}
}
