package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository/db"
)

// ErrDuplicateAlert reports that an open alert with the same
// (building_id, title) already exists. Callers treat it as suppression,
// not failure.
var ErrDuplicateAlert = errors.New("duplicate open alert")

// ErrAlertNotFound reports that no alert row matched the given id, or that
// the row was already in a terminal state.
var ErrAlertNotFound = errors.New("alert not found")

type AlertSQL struct {
	conn   *sql.DB
	driver string
}

func NewAlertSQL(conn *sql.DB, driver string) *AlertSQL {
	return &AlertSQL{conn: conn, driver: driver}
}

const alertColumns = `id, building_id, type, title, message, priority, category, metadata,
	created_at, is_read, is_resolved, resolved_at, resolved_by, resolution_note`

// Insert persists a new alert. A unique-index conflict on the open
// (building_id, title) pair is reported as ErrDuplicateAlert.
func (r *AlertSQL) Insert(ctx context.Context, a models.Alert) error {
	var metaPtr *string
	if a.Metadata != nil {
		if b, err := json.Marshal(a.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	q := db.Rebind(r.driver, `
		INSERT INTO alerts (id, building_id, type, title, message, priority, category, metadata,
			created_at, is_read, is_resolved, resolved_at, resolved_by, resolution_note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.conn.ExecContext(ctx, q,
		a.ID,
		a.BuildingID,
		string(a.Type),
		a.Title,
		a.Message,
		string(a.Priority),
		a.Category,
		metaPtr,
		a.CreatedAt.UTC(),
		a.IsRead,
		a.IsResolved,
		nullableTime(a.ResolvedAt),
		a.ResolvedBy,
		a.ResolutionNote,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAlert
		}
		return fmt.Errorf("insert alert %s: %w", a.Title, err)
	}
	return nil
}

// GetByID returns a single alert, or nil when it does not exist.
func (r *AlertSQL) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	q := db.Rebind(r.driver, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`)

	row := r.conn.QueryRowContext(ctx, q, id)
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert %s: %w", id, err)
	}
	return &a, nil
}

// FindOpen returns the newest unresolved alert matching (buildingID, title)
// created at or after since, or nil when none exists.
func (r *AlertSQL) FindOpen(ctx context.Context, buildingID, title string, since time.Time) (*models.Alert, error) {
	q := db.Rebind(r.driver, `
		SELECT `+alertColumns+` FROM alerts
		WHERE building_id = ? AND title = ? AND NOT is_resolved AND created_at >= ?
		ORDER BY created_at DESC LIMIT 1
	`)

	row := r.conn.QueryRowContext(ctx, q, buildingID, title, since.UTC())
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find open alert %q for %s: %w", title, buildingID, err)
	}
	return &a, nil
}

// List returns alerts matching the filter, newest first.
func (r *AlertSQL) List(ctx context.Context, f AlertFilter) ([]models.Alert, error) {
	var (
		conds []string
		args  []any
	)
	if f.BuildingID != "" {
		conds = append(conds, "building_id = ?")
		args = append(args, f.BuildingID)
	}
	if f.IsResolved != nil {
		conds = append(conds, "is_resolved = ?")
		args = append(args, *f.IsResolved)
	}
	if f.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, string(f.Priority))
	}
	if !f.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}

	q := `SELECT ` + alertColumns + ` FROM alerts`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.conn.QueryContext(ctx, db.Rebind(r.driver, q), args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	out := make([]models.Alert, 0, 64)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateResolution closes an open alert. Resolution is terminal: the update
// refuses rows that are already resolved and reports ErrAlertNotFound.
func (r *AlertSQL) UpdateResolution(ctx context.Context, id string, resolvedAt time.Time, resolvedBy *string, note string) error {
	q := db.Rebind(r.driver, `
		UPDATE alerts SET is_resolved = TRUE, resolved_at = ?, resolved_by = ?, resolution_note = ?
		WHERE id = ? AND NOT is_resolved
	`)
	res, err := r.conn.ExecContext(ctx, q, resolvedAt.UTC(), resolvedBy, note, id)
	if err != nil {
		return fmt.Errorf("resolve alert %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// MarkRead flags an alert as read. Read state does not affect resolution.
func (r *AlertSQL) MarkRead(ctx context.Context, id string) error {
	q := db.Rebind(r.driver, `UPDATE alerts SET is_read = TRUE WHERE id = ?`)
	res, err := r.conn.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("mark alert %s read: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func scanAlert(row rowScanner) (models.Alert, error) {
	var (
		a          models.Alert
		typ        string
		priority   string
		metaRaw    sql.NullString
		resolvedAt sql.NullTime
		resolvedBy sql.NullString
		note       sql.NullString
	)
	err := row.Scan(&a.ID, &a.BuildingID, &typ, &a.Title, &a.Message, &priority, &a.Category, &metaRaw,
		&a.CreatedAt, &a.IsRead, &a.IsResolved, &resolvedAt, &resolvedBy, &note)
	if err != nil {
		return models.Alert{}, err
	}
	a.Type = models.AlertType(typ)
	a.Priority = models.AlertPriority(priority)
	a.CreatedAt = a.CreatedAt.UTC()
	if metaRaw.Valid && metaRaw.String != "" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(metaRaw.String), &meta); err == nil {
			a.Metadata = meta
		}
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		a.ResolvedAt = &t
	}
	if resolvedBy.Valid {
		by := resolvedBy.String
		a.ResolvedBy = &by
	}
	if note.Valid {
		a.ResolutionNote = note.String
	}
	return a, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// isUniqueViolation recognizes unique-index conflicts for both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
