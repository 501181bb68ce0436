package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository/db"
)

type ReadingSQL struct {
	conn   *sql.DB
	driver string
}

func NewReadingSQL(conn *sql.DB, driver string) *ReadingSQL {
	return &ReadingSQL{conn: conn, driver: driver}
}

// ListByBuilding returns readings for one building and granularity ordered
// newest-first. limit <= 0 means no limit; a zero since means no lower bound.
func (r *ReadingSQL) ListByBuilding(ctx context.Context, buildingID, granularity string, limit int, since time.Time) ([]models.EnergyReading, error) {
	q := `SELECT building_id, ts, consumption, production, efficiency, co2_saved, granularity
		FROM energy_readings WHERE building_id = ? AND granularity = ?`
	args := []any{buildingID, granularity}

	if !since.IsZero() {
		q += " AND ts >= ?"
		args = append(args, since.UTC())
	}
	q += " ORDER BY ts DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.conn.QueryContext(ctx, db.Rebind(r.driver, q), args...)
	if err != nil {
		return nil, fmt.Errorf("list readings for %s: %w", buildingID, err)
	}
	defer rows.Close()

	out := make([]models.EnergyReading, 0, limit)
	for rows.Next() {
		var rd models.EnergyReading
		if err := rows.Scan(&rd.BuildingID, &rd.Timestamp, &rd.Consumption, &rd.Production, &rd.Efficiency, &rd.CO2Saved, &rd.Granularity); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		rd.Timestamp = rd.Timestamp.UTC()
		out = append(out, rd)
	}
	return out, rows.Err()
}

// Append inserts one reading. The timestamp is normalized to UTC.
func (r *ReadingSQL) Append(ctx context.Context, rd models.EnergyReading) error {
	if rd.Timestamp.IsZero() {
		rd.Timestamp = time.Now().UTC()
	}
	q := db.Rebind(r.driver, `
		INSERT INTO energy_readings (building_id, ts, consumption, production, efficiency, co2_saved, granularity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.conn.ExecContext(ctx, q,
		rd.BuildingID,
		rd.Timestamp.UTC(),
		rd.Consumption,
		rd.Production,
		rd.Efficiency,
		rd.CO2Saved,
		rd.Granularity,
	)
	if err != nil {
		return fmt.Errorf("append reading for %s: %w", rd.BuildingID, err)
	}
	return nil
}
