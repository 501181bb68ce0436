package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository/db"
)

type BuildingSQL struct {
	conn   *sql.DB
	driver string
}

func NewBuildingSQL(conn *sql.DB, driver string) *BuildingSQL {
	return &BuildingSQL{conn: conn, driver: driver}
}

const buildingColumns = "id, name, type, yearly_consumption, status, owner_id"

// List returns buildings, optionally filtered by status.
func (r *BuildingSQL) List(ctx context.Context, status string) ([]models.Building, error) {
	q := `SELECT ` + buildingColumns + ` FROM buildings`
	var args []any
	if status = strings.TrimSpace(status); status != "" {
		q += " WHERE status = ?"
		args = append(args, status)
	}
	q += " ORDER BY name ASC"

	rows, err := r.conn.QueryContext(ctx, db.Rebind(r.driver, q), args...)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Building, 0, 16)
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Type, &b.YearlyConsumption, &b.Status, &b.OwnerID); err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetByID returns a single building, or nil when it does not exist.
func (r *BuildingSQL) GetByID(ctx context.Context, id string) (*models.Building, error) {
	q := db.Rebind(r.driver, `SELECT `+buildingColumns+` FROM buildings WHERE id = ?`)

	var b models.Building
	err := r.conn.QueryRowContext(ctx, q, id).
		Scan(&b.ID, &b.Name, &b.Type, &b.YearlyConsumption, &b.Status, &b.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get building %s: %w", id, err)
	}
	return &b, nil
}
