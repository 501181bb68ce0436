package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository/db"
)

type SensorSQL struct {
	conn   *sql.DB
	driver string
}

func NewSensorSQL(conn *sql.DB, driver string) *SensorSQL {
	return &SensorSQL{conn: conn, driver: driver}
}

const sensorColumns = "id, building_id, name, type, status, last_reading_at, current_value, alert_threshold"

// ListByBuilding returns all sensors attached to a building.
func (r *SensorSQL) ListByBuilding(ctx context.Context, buildingID string) ([]models.Sensor, error) {
	q := db.Rebind(r.driver, `SELECT `+sensorColumns+` FROM sensors WHERE building_id = ? ORDER BY name ASC`)

	rows, err := r.conn.QueryContext(ctx, q, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list sensors for %s: %w", buildingID, err)
	}
	defer rows.Close()

	out := make([]models.Sensor, 0, 16)
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns a single sensor, or nil when it does not exist.
func (r *SensorSQL) GetByID(ctx context.Context, id string) (*models.Sensor, error) {
	q := db.Rebind(r.driver, `SELECT `+sensorColumns+` FROM sensors WHERE id = ?`)

	row := r.conn.QueryRowContext(ctx, q, id)
	s, err := scanSensor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sensor %s: %w", id, err)
	}
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSensor(row rowScanner) (models.Sensor, error) {
	var (
		s            models.Sensor
		lastReading  sql.NullTime
		currentValue sql.NullFloat64
		thresholdRaw sql.NullString
	)
	if err := row.Scan(&s.ID, &s.BuildingID, &s.Name, &s.Type, &s.Status, &lastReading, &currentValue, &thresholdRaw); err != nil {
		return models.Sensor{}, err
	}
	if lastReading.Valid {
		s.LastReadingAt = lastReading.Time.UTC()
	}
	if currentValue.Valid {
		v := currentValue.Float64
		s.CurrentValue = &v
	}
	if thresholdRaw.Valid && thresholdRaw.String != "" {
		var th models.SensorThreshold
		// Malformed threshold JSON leaves the threshold unset; the
		// evaluator then skips the value rule for this sensor.
		if err := json.Unmarshal([]byte(thresholdRaw.String), &th); err == nil {
			s.AlertThreshold = &th
		}
	}
	return s, nil
}
